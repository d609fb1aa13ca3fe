package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/joeblew999/plat-stay/internal/listing"
)

var sidPattern = regexp.MustCompile(`sid&#34;:&#34;([0-9a-f-]{36})`)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	var srv *Server
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	var err error
	srv, err = New(Config{
		Host:      "127.0.0.1",
		Port:      "0",
		DataURL:   ts.URL + "/api/v1/data",
		SubmitURL: ts.URL + "/api/v1/offers",
		Demo:      true,
		Seed:      7,
		Ads:       8,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func post(t *testing.T, url string, signals map[string]any) string {
	t.Helper()
	raw, _ := json.Marshal(signals)
	resp, err := http.Post(url, "application/json", strings.NewReader(string(raw)))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST %s: status=%d body=%s", url, resp.StatusCode, body)
	}
	return string(body)
}

func TestHealthLinks(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/health")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	links := strings.Join(resp.Header.Values("Link"), ",")
	for _, want := range []string{`</api/v1/data>; rel="data"`, `</openapi.json>; rel="service-desc"`} {
		if !strings.Contains(links, want) {
			t.Fatalf("links missing %q: %s", want, links)
		}
	}
	if strings.Contains(links, "/api/v1/widget") {
		t.Fatalf("widget routes linked: %s", links)
	}
}

func TestOpenAPI(t *testing.T) {
	srv, _ := newTestServer(t)
	paths := srv.OpenAPI().Paths
	for _, p := range []string{
		"/health", "/api/v1/data", "/api/v1/listings", "/api/v1/offers",
		"/api/v1/widget/activate", "/api/v1/widget/cards/{index}",
	} {
		if _, ok := paths[p]; !ok {
			t.Fatalf("path %s missing", p)
		}
	}
}

func TestDemoFeed(t *testing.T) {
	_, ts := newTestServer(t)
	_, body := get(t, ts.URL+"/api/v1/data")
	var ads []listing.Listing
	if err := json.Unmarshal([]byte(body), &ads); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ads) != 8 {
		t.Fatalf("len=%d, want 8", len(ads))
	}
}

func TestWidgetRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)

	resp, page := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	m := sidPattern.FindStringSubmatch(page)
	if m == nil {
		t.Fatal("no session id in page")
	}
	sid := m[1]

	body := post(t, ts.URL+"/api/v1/widget/activate", map[string]any{"sid": sid})
	if !strings.Contains(body, `"active":true`) || strings.Count(body, "/api/v1/widget/cards/") != 8 {
		t.Fatalf("activate body=%s", body)
	}

	body = post(t, ts.URL+"/api/v1/widget/form/submit", map[string]any{
		"sid":            sid,
		"ad_title":       "A bright and quiet flat near the central park",
		"ad_type":        "flat",
		"ad_price":       "2500",
		"ad_timein":      "12:00",
		"ad_timeout":     "12:00",
		"ad_room_number": "1",
		"ad_capacity":    "1",
	})
	if !strings.Contains(body, `"success"`) || strings.Contains(body, "Form not sent") {
		t.Fatalf("submit body=%s", body)
	}

	_, feed := get(t, ts.URL+"/api/v1/data")
	var ads []listing.Listing
	if err := json.Unmarshal([]byte(feed), &ads); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ads) != 9 {
		t.Fatalf("len=%d, want 9", len(ads))
	}
	if got := ads[8].Location; got != (listing.Location{X: 602, Y: 454}) {
		t.Fatalf("location=%+v", got)
	}
}
