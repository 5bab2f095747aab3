package rates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newRatesMockServer(byBase map[string]map[string]float64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := strings.TrimPrefix(r.URL.Path, "/latest/")
		w.Header().Set("Content-Type", "application/json")

		rates, ok := byBase[base]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]string{"result": "error", "error-type": "unsupported-code"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"result":    "success",
			"base_code": base,
			"rates":     rates,
		})
	}))
}

func TestClient_Fetch_Success(t *testing.T) {
	server := newRatesMockServer(map[string]map[string]float64{
		"USD": {"USD": 1, "EUR": 0.92, "MYR": 4.47},
	})
	defer server.Close()

	c := NewClient(server.Client(), server.URL+"/")
	table, err := c.Fetch(context.Background(), "usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(table) != 3 {
		t.Fatalf("expected 3 rates, got %d", len(table))
	}
	if rate, _ := table.Rate("MYR"); !rate.Equal(d("4.47")) {
		t.Errorf("MYR rate = %s, want 4.47", rate)
	}
}

func TestClient_Fetch_ProviderError(t *testing.T) {
	server := newRatesMockServer(map[string]map[string]float64{})
	defer server.Close()

	c := NewClient(server.Client(), server.URL)
	if _, err := c.Fetch(context.Background(), "ZZZ"); err == nil {
		t.Fatal("expected error for unsupported base")
	}
}

func TestClient_Fetch_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL)
	_, err := c.Fetch(context.Background(), "USD")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestClient_Fetch_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL)
	if _, err := c.Fetch(context.Background(), "USD"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_Fetch_BreakerOpensAfterFailures(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL)
	for i := 0; i < 5; i++ {
		if _, err := c.Fetch(context.Background(), "USD"); err == nil {
			t.Fatal("expected error")
		}
	}

	if requests.Load() != 3 {
		t.Errorf("expected breaker to stop upstream calls after 3 failures, got %d requests", requests.Load())
	}
}
