package omdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/flickflock/internal/logger"
	"github.com/MrSnakeDoc/flickflock/internal/provider"
)

func TestParseAwards(t *testing.T) {
	tests := []struct {
		input                          string
		oscarWins, oscarNoms, wins, no int
		nilText                        bool
	}{
		{input: "Won 3 Oscars. 54 wins & 78 nominations total", oscarWins: 3, wins: 54, no: 78},
		{input: "Nominated for 1 Oscar. 15 wins & 60 nominations total", oscarNoms: 1, wins: 15, no: 60},
		{input: "2 wins & 3 nominations", wins: 2, no: 3},
		{input: "1 nomination", no: 1},
		{input: "N/A", nilText: true},
		{input: "", nilText: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseAwards(tt.input)
			if got.OscarWins != tt.oscarWins || got.OscarNoms != tt.oscarNoms ||
				got.Wins != tt.wins || got.Nominations != tt.no {
				t.Errorf("ParseAwards(%q) = %+v", tt.input, got)
			}
			if (got.Text == nil) != tt.nilText {
				t.Errorf("Text = %v, want nil %v", got.Text, tt.nilText)
			}
		})
	}
}

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	pc := provider.New(provider.Options{Name: "omdb", Timeout: time.Second, Burst: 5})
	return New(srv.URL+"/", apiKey, pc, logger.Nop())
}

func TestAwards(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("i") != "tt1375666" || r.URL.Query().Get("apikey") != "k" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"Title":"Inception","Awards":"Won 4 Oscars. 159 wins & 220 nominations total","Response":"True"}`))
	})

	got, err := c.Awards(context.Background(), "tt1375666")
	if err != nil {
		t.Fatalf("Awards() error = %v", err)
	}
	if got.OscarWins != 4 || got.Wins != 159 || got.Nominations != 220 {
		t.Errorf("Awards() = %+v", got)
	}
}

func TestAwardsNoResult(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	})

	got, err := c.Awards(context.Background(), "tt0")
	if err != nil || got.Text != nil {
		t.Errorf("Awards() = %+v, %v, want empty awards", got, err)
	}
}

func TestDisabledWithoutKey(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Error("disabled client reached upstream")
	})

	if c.Enabled() {
		t.Error("Enabled() = true without key")
	}
	if _, err := c.Awards(context.Background(), "tt1"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Awards() error = %v, want ErrDisabled", err)
	}
}
