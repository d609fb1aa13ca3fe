package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const feed = `[
  {"author":{"avatar":"img/avatars/user01.png"},
   "offer":{"title":"Big cozy flat","address":"600, 350","price":5200,"type":"flat","rooms":2,"guests":3,
            "checkin":"12:00","checkout":"13:00","features":["wifi"],"description":"","photos":[]},
   "location":{"x":600,"y":350}},
  {"author":{"avatar":"img/avatars/user02.png"},
   "offer":{"title":"Bungalow","address":"300, 200","price":0,"type":"bungalo","rooms":1,"guests":1,
            "checkin":"14:00","checkout":"14:00","features":[],"description":"","photos":[]},
   "location":{"x":300,"y":200}}
]`

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method=%s, want GET", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	ads, err := NewClient(Config{DataURL: srv.URL}).Download(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ads) != 2 {
		t.Fatalf("len=%d, want 2", len(ads))
	}
	if ads[1].Offer.Type != "bungalow" {
		t.Fatalf("type=%q, want bungalow", ads[1].Offer.Type)
	}
}

func TestDownloadStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ads, err := NewClient(Config{DataURL: srv.URL}).Download(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if ads != nil {
		t.Fatalf("ads=%v, want nil", ads)
	}
	if KindOf(err) != KindStatus {
		t.Fatalf("kind=%v, want status", KindOf(err))
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("message %q does not contain 500", err.Error())
	}
}

func TestDownloadConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{DataURL: url}).Download(context.Background())
	if KindOf(err) != KindConnection {
		t.Fatalf("err=%v kind=%v, want connection", err, KindOf(err))
	}
}

func TestDownloadTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(Config{DataURL: srv.URL, Timeout: 50 * time.Millisecond}).Download(context.Background())
	if KindOf(err) != KindTimeout {
		t.Fatalf("err=%v kind=%v, want timeout", err, KindOf(err))
	}
	if !strings.Contains(err.Error(), "50ms") {
		t.Fatalf("message %q does not mention the timeout", err.Error())
	}
}

func TestDownloadMalformed(t *testing.T) {
	for _, body := range []string{`{"not":"an array"}`, `[{"offer":{}}]`, `not json`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		_, err := NewClient(Config{DataURL: srv.URL}).Download(context.Background())
		srv.Close()
		if KindOf(err) != KindPayload {
			t.Fatalf("body %q: err=%v, want payload error", body, err)
		}
	}
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method=%s, want POST", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.MultipartForm.Value["title"]; len(got) != 1 || got[0] != "Flat" {
			t.Errorf("title=%v", got)
		}
		if got := r.MultipartForm.Value["features"]; len(got) != 2 {
			t.Errorf("features=%v", got)
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	text, err := NewClient(Config{SubmitURL: srv.URL}).Upload(context.Background(), map[string][]string{
		"title":    {"Flat"},
		"features": {"wifi", "parking"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if text != "ok" {
		t.Fatalf("text=%q, want ok", text)
	}
}

func TestUploadStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(Config{SubmitURL: srv.URL}).Upload(context.Background(), nil)
	if err == nil || err.Error() != "Error 400: Bad Request" {
		t.Fatalf("err=%v", err)
	}
}
