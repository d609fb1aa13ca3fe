// links.go — RFC 8288 Link headers derived from the OpenAPI spec.
//
// AutoLinks walks the registered JSON operations once at startup and
// records collection/item/entry-point relations. LinkTransformer emits
// them per response, together with pagination links from [Pager] bodies
// and state-dependent actions from [Actor] bodies.
package humastar

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// EntryPoint is the path every collection links back to.
const EntryPoint = "/health"

var (
	linkMu  sync.RWMutex
	linkMap map[string][]string
)

// AutoLinks walks the OpenAPI spec and generates hypermedia links.
// Operations tagged with any of skipTags (Datastar SSE endpoints) are left
// out. Call after all routes are registered.
func AutoLinks(api huma.API, skipTags ...string) {
	oapi := api.OpenAPI()
	links := map[string][]string{}
	add := func(from, to, rel string) {
		val := fmt.Sprintf(`<%s>; rel="%s"`, to, rel)
		if !slices.Contains(links[from], val) {
			links[from] = append(links[from], val)
		}
	}

	var collections, items []string
	for p, pi := range oapi.Paths {
		tags := primaryTags(pi)
		if slices.ContainsFunc(skipTags, func(t string) bool { return slices.Contains(tags, t) }) {
			continue
		}
		if strings.Contains(p, "{") {
			items = append(items, p)
		} else {
			collections = append(collections, p)
		}
	}
	slices.Sort(collections)
	slices.Sort(items)

	// Item → collection.
	for _, item := range items {
		parent := path.Dir(item)
		if _, ok := oapi.Paths[parent]; ok {
			add(item, parent, "collection")
			add(item, parent, "up")
		}
	}

	// Sub-resources such as /listings/geojson are alternates of their parent.
	for _, coll := range collections {
		if parent := path.Dir(coll); slices.Contains(collections, parent) {
			add(parent, coll, "alternate")
			add(coll, parent, "up")
		}
	}

	for _, coll := range collections {
		pi := oapi.Paths[coll]
		if pi.Post != nil {
			add(coll, coll, "create-form")
		}
		if coll != EntryPoint {
			add(coll, EntryPoint, "up")
			add(EntryPoint, coll, lastSegment(coll))
		}
	}

	add(EntryPoint, "/openapi.json", "describedby")
	add(EntryPoint, "/openapi.json", "service-desc")
	add(EntryPoint, "/docs", "service-doc")

	linkMu.Lock()
	linkMap = links
	linkMu.Unlock()
}

// LinkTransformer returns a Huma Transformer that injects the generated
// Link headers at runtime.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		linkMu.RLock()
		for _, link := range linkMap[op.Path] {
			ctx.AppendHeader("Link", link)
		}
		linkMu.RUnlock()

		// Item endpoints get a self link with the resolved URL.
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		if p, ok := v.(Pager); ok {
			for _, link := range p.PaginationLinks(ctx.URL().Path) {
				ctx.AppendHeader("Link", link)
			}
		}

		if a, ok := v.(Actor); ok {
			for _, action := range a.Actions() {
				ctx.AppendHeader("Link", action.LinkHeader())
			}
		}

		return v, nil
	}
}

// Links returns the generated Link headers for a path, for use by
// handlers outside Huma.
func Links(p string) []string {
	linkMu.RLock()
	defer linkMu.RUnlock()
	return slices.Clone(linkMap[p])
}

// Action is a state-dependent hypermedia action link.
type Action struct {
	Rel    string
	Href   string
	Method string
	Title  string
}

// Actor is implemented by response bodies that provide state-dependent actions.
type Actor interface {
	Actions() []Action
}

// LinkHeader formats the action as an RFC 8288 Link header value.
func (a Action) LinkHeader() string {
	h := fmt.Sprintf(`<%s>; rel="%s"`, a.Href, a.Rel)
	if a.Method != "" {
		h += fmt.Sprintf(`; method="%s"`, a.Method)
	}
	if a.Title != "" {
		h += fmt.Sprintf(`; title="%s"`, a.Title)
	}
	return h
}

func primaryTags(pi *huma.PathItem) []string {
	for _, op := range []*huma.Operation{pi.Get, pi.Post, pi.Put, pi.Patch, pi.Delete} {
		if op != nil && len(op.Tags) > 0 {
			return op.Tags
		}
	}
	return nil
}

func lastSegment(p string) string {
	parts := strings.Split(strings.TrimRight(p, "/"), "/")
	return parts[len(parts)-1]
}
