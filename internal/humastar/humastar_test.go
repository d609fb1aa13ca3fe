package humastar

import (
	"strings"
	"testing"
)

func TestParseSignals(t *testing.T) {
	s, err := ParseSignals([]byte(`{"sid":"abc","dx":12,"on":true,"ratio":0.5}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.String("sid") != "abc" || s.Int("dx") != 12 || !s.Bool("on") || s.Int("ratio") != 0 {
		t.Fatalf("signals=%v", s)
	}
	if s.String("missing") != "" || s.Int("missing") != 0 || s.Bool("missing") {
		t.Fatal("missing key reported")
	}

	empty, err := ParseSignals(nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty=%v err=%v", empty, err)
	}

	if _, err := (&SignalsInput{RawBody: []byte("{")}).MustParse(); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestQueryInput(t *testing.T) {
	s, err := (&QueryInput{Datastar: `{"sid":"x"}`}).MustParse()
	if err != nil || s.String("sid") != "x" {
		t.Fatalf("signals=%v err=%v", s, err)
	}
	s, err = (&QueryInput{}).MustParse()
	if err != nil || len(s) != 0 {
		t.Fatalf("signals=%v err=%v", s, err)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6}

	p := Paginate(items, 2, 3)
	if p.Total != 7 || len(p.Data) != 3 || p.Data[0] != 2 {
		t.Fatalf("page=%+v", p)
	}

	past := Paginate(items, 10, 3)
	if len(past.Data) != 0 || past.Data == nil {
		t.Fatalf("page past the end=%+v", past)
	}

	d := Paginate(items, -1, 0)
	if d.Offset != 0 || d.Limit != DefaultLimit || len(d.Data) != 7 {
		t.Fatalf("defaults=%+v", d)
	}
}

func TestPaginationLinks(t *testing.T) {
	p := Paginate([]int{0, 1, 2, 3, 4, 5, 6}, 3, 3)
	p.Query = map[string][]string{"type": {"flat"}}
	links := strings.Join(p.PaginationLinks("/api/v1/listings"), "\n")

	for _, want := range []string{
		`</api/v1/listings?limit=3&offset=0&type=flat>; rel="first"`,
		`</api/v1/listings?limit=3&offset=0&type=flat>; rel="prev"`,
		`</api/v1/listings?limit=3&offset=6&type=flat>; rel="next"`,
		`</api/v1/listings?limit=3&offset=6&type=flat>; rel="last"`,
	} {
		if !strings.Contains(links, want) {
			t.Fatalf("links missing %s:\n%s", want, links)
		}
	}
}

func TestActionLinkHeader(t *testing.T) {
	a := Action{Rel: "collection", Href: "/api/v1/listings", Method: "GET", Title: "All listings"}
	want := `</api/v1/listings>; rel="collection"; method="GET"; title="All listings"`
	if got := a.LinkHeader(); got != want {
		t.Fatalf("got=%q, want %q", got, want)
	}
}
