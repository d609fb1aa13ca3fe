// pagination.go — HATEOAS pagination via RFC 8288 Link headers.
//
// Response bodies implement the Pager interface to emit next/prev/first/last
// Link headers. LinkTransformer reads these and sets the headers.
package humastar

import (
	"fmt"
	"net/url"
)

// DefaultLimit is the page size used when a request gives none.
const DefaultLimit = 20

// Pager is implemented by response bodies that carry pagination metadata.
type Pager interface {
	PaginationLinks(basePath string) []string
}

// PageInput is the shared offset/limit query input.
type PageInput struct {
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Number of items to skip"`
	Limit  int `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Page size"`
}

// PageBody is a generic paginated response envelope.
// Any handler returning PageBody[T] gets automatic pagination Link headers.
type PageBody[T any] struct {
	Total  int `json:"total" doc:"Total number of items"`
	Offset int `json:"offset" doc:"Current offset"`
	Limit  int `json:"limit" doc:"Page size"`
	Data   []T `json:"data" doc:"Items"`

	// Query is carried into every link so filters survive paging.
	Query url.Values `json:"-"`
}

// Paginate cuts one page out of items.
func Paginate[T any](items []T, offset, limit int) PageBody[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	start := min(offset, len(items))
	end := min(start+limit, len(items))
	page := make([]T, end-start)
	copy(page, items[start:end])
	return PageBody[T]{Total: len(items), Offset: offset, Limit: limit, Data: page}
}

// PaginationLinks returns RFC 8288 Link header values for pagination rels.
func (p PageBody[T]) PaginationLinks(basePath string) []string {
	var links []string

	links = append(links, p.link(basePath, 0, "first"))

	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, p.link(basePath, prev, "prev"))
	}

	if p.Offset+p.Limit < p.Total {
		links = append(links, p.link(basePath, p.Offset+p.Limit, "next"))
	}

	lastOffset := ((p.Total - 1) / p.Limit) * p.Limit
	if lastOffset < 0 {
		lastOffset = 0
	}
	links = append(links, p.link(basePath, lastOffset, "last"))

	return links
}

func (p PageBody[T]) link(basePath string, offset int, rel string) string {
	q := url.Values{}
	for k, v := range p.Query {
		q[k] = v
	}
	q.Set("offset", fmt.Sprint(offset))
	q.Set("limit", fmt.Sprint(p.Limit))
	return fmt.Sprintf(`<%s?%s>; rel="%s"`, basePath, q.Encode(), rel)
}
