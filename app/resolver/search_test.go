package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lysyi3m/tube-comb/app/feed"
)

func TestSearchStrategy_Resolve(t *testing.T) {
	var gotQuery, gotType, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotType = r.URL.Query().Get("type")
		gotKey = r.URL.Query().Get("key")
		w.Write([]byte(`{"items":[
			{"id":{"kind":"youtube#channel","channelId":"bogus"},"snippet":{"channelId":"bogus"}},
			{"id":{"kind":"youtube#channel","channelId":"UCabcdefghijklmnopqrstuv"},"snippet":{}}
		]}`))
	}))
	defer server.Close()

	s := NewSearchStrategy(server.Client(), server.URL, "secret")

	key, err := s.Resolve(context.Background(), &feed.Config{ID: "fx", Name: "FX アナリスト"})
	if err != nil {
		t.Fatal(err)
	}
	if key != testKey {
		t.Errorf("Expected key %s, got %s", testKey, key)
	}
	if gotQuery != "FX アナリスト" || gotType != "channel" || gotKey != "secret" {
		t.Errorf("Unexpected search parameters q=%q type=%q key=%q", gotQuery, gotType, gotKey)
	}
}

func TestSearchStrategy_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	s := NewSearchStrategy(server.Client(), server.URL, "secret")

	if _, err := s.Resolve(context.Background(), &feed.Config{ID: "fx", Name: "FX"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSearchStrategy_NoAPIKey(t *testing.T) {
	s := NewSearchStrategy(http.DefaultClient, "http://unused", "")

	if _, err := s.Resolve(context.Background(), &feed.Config{ID: "fx", Name: "FX"}); !errors.Is(err, errNotConfigured) {
		t.Errorf("Expected errNotConfigured, got %v", err)
	}
}
