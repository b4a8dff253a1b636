package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteClientRandom(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/random", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"Stay hungry.","author":"Steve Jobs"}`))
	}))
	defer srv.Close()

	q := NewQuoteClient(srv.URL + "/")
	assert.Equal(t, "Stay hungry. - Steve Jobs", q.Random(context.Background()))
	assert.Equal(t, "tags=motivational,inspirational,success", gotQuery)
}

func TestQuoteClientMissingAuthor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":"Ship it."}`))
	}))
	defer srv.Close()

	assert.Equal(t, "Ship it. - Unknown", NewQuoteClient(srv.URL).Random(context.Background()))
}

func TestQuoteClientFallback(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		},
		"empty content": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"content":"  ","author":"Nobody"}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			got := NewQuoteClient(srv.URL).Random(context.Background())
			assert.NotEmpty(t, got)
			assert.Contains(t, FallbackQuotes, got)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		q := NewQuoteClient(url)
		q.Pick = func(n int) int { return n - 1 }
		assert.Equal(t, FallbackQuotes[len(FallbackQuotes)-1], q.Random(context.Background()))
	})
}

func TestFallbackQuotes(t *testing.T) {
	assert.Len(t, FallbackQuotes, 5)
	q := &QuoteClient{Pick: func(int) int { return 99 }}
	assert.Equal(t, FallbackQuotes[0], q.fallback())
}
