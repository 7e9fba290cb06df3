package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/rl1809/rocketshoes-cart/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cacheSize int) (*HTTPClient, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	client, err := NewHTTPClient(Options{BaseURL: srv.URL + "/", Timeout: time.Second, CacheSize: cacheSize}, logger)
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}
	return client, srv
}

func TestNewHTTPClient_RequiresBaseURL(t *testing.T) {
	logger, _ := test.NewNullLogger()
	if _, err := NewHTTPClient(Options{}, logger); err == nil {
		t.Error("expected error for empty base url")
	}
}

func TestGetStock(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/3" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get(requestIDHeader) == "" {
			t.Error("expected request id header")
		}
		w.Write([]byte(`{"id":3,"amount":7}`))
	}, 0)

	stock, err := client.GetStock(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if stock != (domain.Stock{ID: 3, Amount: 7}) {
		t.Errorf("unexpected stock %+v", stock)
	}
}

func TestGetStock_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}, 0)

	_, err := client.GetStock(context.Background(), 3)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected *StatusError 404, got %v", err)
	}
}

func TestGetStock_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 0)

	_, err := client.GetStock(context.Background(), 3)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected non-404 status error, got: %v", err)
	}
}

func TestGetStock_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"id":3,`,
		"id mismatch":    `{"id":4,"amount":1}`,
		"negative stock": `{"id":3,"amount":-1}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}, 0)

			_, err := client.GetStock(context.Background(), 3)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got: %v", err)
			}
		})
	}
}

func TestGetStock_Unreachable(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, 0)
	srv.Close()

	if _, err := client.GetStock(context.Background(), 1); err == nil {
		t.Error("expected error for closed server")
	}
}

func TestGetProduct_Cached(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"id":1,"title":"Tênis de Caminhada Leve Confortável","price":179.9,"image":"https://example.com/1.jpg","amount":9}`))
	}, 8)

	want := domain.Product{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, Image: "https://example.com/1.jpg"}

	for i := 0; i < 3; i++ {
		got, err := client.GetProduct(context.Background(), 1)
		if err != nil {
			t.Fatalf("GetProduct failed: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("product mismatch (-want +got):\n%s", diff)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("expected 1 request, got %d", hits.Load())
	}
}

func TestGetProduct_NotCachedOnError(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"id":1,"title":"x","price":1,"image":"y"}`))
	}, 8)

	if _, err := client.GetProduct(context.Background(), 1); err == nil {
		t.Fatal("expected first call to fail")
	}
	if _, err := client.GetProduct(context.Background(), 1); err != nil {
		t.Fatalf("expected second call to succeed, got: %v", err)
	}
}

func TestListProducts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":1,"title":"a","price":1,"image":"i"},{"id":2,"title":"b","price":2,"image":"j"}]`))
	}, 0)

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 2 || products[1].ID != 2 {
		t.Errorf("unexpected products %+v", products)
	}
}
