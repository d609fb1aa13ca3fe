package api

import (
	"context"
	"database/sql"

	"github.com/danielgtaylor/huma/v2"
)

// DBHandler serves aggregates over the offers stored in DuckDB.
type DBHandler struct {
	db *sql.DB
}

// NewDBHandler creates a new database handler.
func NewDBHandler(db *sql.DB) *DBHandler {
	return &DBHandler{db: db}
}

// RegisterRoutes registers database routes with Huma.
func (h *DBHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/offers/stats", h.Stats, huma.OperationTags("offers"))
}

// TypeStats summarizes the accepted offers of one housing type.
type TypeStats struct {
	Type     string  `json:"type" doc:"Housing type" example:"flat"`
	Count    int64   `json:"count" doc:"Number of offers"`
	AvgPrice float64 `json:"avgPrice" doc:"Average nightly price"`
	MinPrice int64   `json:"minPrice" doc:"Lowest nightly price"`
	MaxPrice int64   `json:"maxPrice" doc:"Highest nightly price"`
}

// StatsOutput is the response for offer statistics.
type StatsOutput struct {
	Body struct {
		Total int64       `json:"total" doc:"Number of stored offers"`
		Types []TypeStats `json:"types" doc:"Per type statistics"`
	}
}

const statsQuery = `
SELECT type, count(*), avg(price), min(price), max(price)
FROM offers
GROUP BY type
ORDER BY type`

// Stats aggregates the stored offers per housing type.
func (h *DBHandler) Stats(ctx context.Context, input *struct{}) (*StatsOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	rows, err := h.db.QueryContext(ctx, statsQuery)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to query offers", err)
	}
	defer rows.Close()

	out := &StatsOutput{}
	out.Body.Types = []TypeStats{}
	for rows.Next() {
		var s TypeStats
		if err := rows.Scan(&s.Type, &s.Count, &s.AvgPrice, &s.MinPrice, &s.MaxPrice); err != nil {
			return nil, huma.Error500InternalServerError("Failed to read offers", err)
		}
		out.Body.Total += s.Count
		out.Body.Types = append(out.Body.Types, s)
	}
	if err := rows.Err(); err != nil {
		return nil, huma.Error500InternalServerError("Failed to read offers", err)
	}
	return out, nil
}
