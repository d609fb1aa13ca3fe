package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joeblew999/plat-stay/internal/listing"
)

// OfferService serves the demo data feed: generated listings followed by
// accepted submissions. Submissions go to DuckDB when a connection is
// given and to memory otherwise.
type OfferService struct {
	db     *sql.DB
	seed   []listing.Listing
	offers []StoredOffer
	mu     sync.RWMutex
	bus    *EventBus
	now    func() time.Time
	logger *slog.Logger
}

// NewOfferService creates an offer service. conn and bus may be nil.
func NewOfferService(conn *sql.DB, seed []listing.Listing, bus *EventBus, logger *slog.Logger) *OfferService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OfferService{
		db:     conn,
		seed:   slices.Clone(seed),
		bus:    bus,
		now:    time.Now,
		logger: logger.With("component", "offers"),
	}
}

// List returns the seed listings followed by accepted offers, oldest first.
func (s *OfferService) List(ctx context.Context) ([]listing.Listing, error) {
	offers, err := s.Offers(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]listing.Listing, 0, len(s.seed)+len(offers))
	out = append(out, s.seed...)
	s.mu.RUnlock()
	for _, o := range offers {
		out = append(out, o.Listing)
	}
	return out, nil
}

// Offers returns the accepted offers, oldest first.
func (s *OfferService) Offers(ctx context.Context) ([]StoredOffer, error) {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return slices.Clone(s.offers), nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, created_at, listing FROM offers ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	var offers []StoredOffer
	for rows.Next() {
		var (
			o   StoredOffer
			raw string
		)
		if err := rows.Scan(&o.ID, &o.CreatedAt, &raw); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &o.Listing); err != nil {
			return nil, fmt.Errorf("decode offer %s: %w", o.ID, err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// Add stores an accepted listing and announces it on the bus.
func (s *OfferService) Add(ctx context.Context, l listing.Listing) (StoredOffer, error) {
	o := StoredOffer{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Listing:   l,
	}

	if s.db == nil {
		s.mu.Lock()
		s.offers = append(s.offers, o)
		s.mu.Unlock()
	} else {
		raw, err := json.Marshal(l)
		if err != nil {
			return StoredOffer{}, fmt.Errorf("encode offer: %w", err)
		}
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO offers (id, created_at, type, price, x, y, listing) VALUES (?, ?, ?, ?, ?, ?, ?)",
			o.ID, o.CreatedAt, string(l.Offer.Type), l.Offer.Price, l.Location.X, l.Location.Y, string(raw))
		if err != nil {
			return StoredOffer{}, fmt.Errorf("insert offer: %w", err)
		}
	}

	s.logger.Info("offer accepted", "id", o.ID, "type", l.Offer.Type, "price", l.Offer.Price)
	if s.bus != nil {
		s.bus.Publish(Event{Kind: EventOfferAdded, ID: o.ID})
	}
	return o, nil
}

// Count returns the number of listings List would return.
func (s *OfferService) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	n := len(s.seed)
	mem := len(s.offers)
	s.mu.RUnlock()
	if s.db == nil {
		return n + mem, nil
	}
	var stored int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM offers").Scan(&stored); err != nil {
		return 0, fmt.Errorf("count offers: %w", err)
	}
	return n + stored, nil
}
