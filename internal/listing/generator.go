package listing

import (
	"fmt"
	"math/rand/v2"
)

// Range is an inclusive integer interval.
type Range struct {
	Min int
	Max int
}

// GeneratorConfig holds the parameter pools used for demo listings.
type GeneratorConfig struct {
	Titles   []string
	Price    Range
	Types    []OfferType
	Rooms    Range
	Guests   Range
	Checkins []string
	Checkout []string
	Features []Feature
	Photos   []string
	X        Range
	Y        Range
}

// DefaultGeneratorConfig matches the demo data set of the widget.
var DefaultGeneratorConfig = GeneratorConfig{
	Titles: []string{
		"Big cozy flat",
		"Small uncomfortable flat",
		"Huge wonderful palace",
		"Small awful palace",
		"Pretty guest house",
		"Ugly inhospitable house",
		"Cozy bungalow far from the sea",
		"Uncomfortable bungalow knee-deep in water",
	},
	Price:    Range{Min: 1000, Max: 1000000},
	Types:    []OfferType{Palace, Flat, House, Bungalow},
	Rooms:    Range{Min: 1, Max: 5},
	Guests:   Range{Min: 1, Max: 9},
	Checkins: []string{"12:00", "13:00", "14:00"},
	Checkout: []string{"12:00", "13:00", "14:00"},
	Features: Features,
	Photos: []string{
		"http://o0.github.io/assets/images/tokyo/hotel1.jpg",
		"http://o0.github.io/assets/images/tokyo/hotel2.jpg",
		"http://o0.github.io/assets/images/tokyo/hotel3.jpg",
	},
	X: Range{Min: 300, Max: 900},
	Y: Range{Min: 130, Max: 630},
}

// Generator produces synthetic listings for demo mode.
// A Generator is not safe for concurrent use.
type Generator struct {
	cfg GeneratorConfig
	rnd *rand.Rand
}

// NewGenerator returns a generator seeded with seed. Equal seeds produce
// equal sequences.
func NewGenerator(cfg GeneratorConfig, seed uint64) *Generator {
	return &Generator{
		cfg: cfg,
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Generate returns n listings.
func (g *Generator) Generate(n int) []Listing {
	ads := make([]Listing, n)
	for i := range ads {
		ads[i] = g.generate(i)
	}
	return ads
}

func (g *Generator) generate(index int) Listing {
	x := g.inRange(g.cfg.X)
	y := g.inRange(g.cfg.Y)

	title := ""
	if len(g.cfg.Titles) > 0 {
		title = g.cfg.Titles[index%len(g.cfg.Titles)]
	}

	return Listing{
		Author: Author{Avatar: AvatarPath(index + 1)},
		Offer: Offer{
			Title:       title,
			Address:     fmt.Sprintf("%d, %d", x, y),
			Price:       g.inRange(g.cfg.Price),
			Type:        pick(g.rnd, g.cfg.Types),
			Rooms:       g.inRange(g.cfg.Rooms),
			Guests:      g.inRange(g.cfg.Guests),
			Checkin:     pick(g.rnd, g.cfg.Checkins),
			Checkout:    pick(g.rnd, g.cfg.Checkout),
			Features:    g.features(),
			Description: "",
			Photos:      append([]string(nil), g.cfg.Photos...),
		},
		Location: Location{X: x, Y: y},
	}
}

// features returns a random-length prefix of a shuffled copy of the pool.
func (g *Generator) features() []Feature {
	pool := append([]Feature(nil), g.cfg.Features...)
	g.rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) == 0 {
		return []Feature{}
	}
	return pool[:g.rnd.IntN(len(pool))]
}

func (g *Generator) inRange(r Range) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + g.rnd.IntN(r.Max-r.Min+1)
}

func pick[T any](rnd *rand.Rand, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[rnd.IntN(len(items))]
}

// AvatarPath returns the avatar image path for the n-th demo author.
func AvatarPath(n int) string {
	return fmt.Sprintf("img/avatars/user%02d.png", n)
}
