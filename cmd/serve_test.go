// ABOUTME: Tests for the serve command wiring
// ABOUTME: Exercises the middleware chain, rate limiting, and graceful shutdown

package cmd

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/markalston/vm-allocator/config"
	"github.com/markalston/vm-allocator/internal/client"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		CacheTTL:           60,
		CORSAllowedOrigins: []string{"http://app.example.com"},
		RateLimitEnabled:   true,
		RateLimitRPS:       1,
		RateLimitBurst:     2,
	}
}

func TestNewServer_MiddlewareChain(t *testing.T) {
	srv, cleanup, err := newServer(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected request ID header from logging middleware")
	}

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/allocations", nil)
	req.Header.Set("Origin", "http://app.example.com")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "http://app.example.com" {
		t.Errorf("expected allowed origin echoed, got %q", resp.Header.Get("Access-Control-Allow-Origin"))
	}
}

func TestNewServer_RateLimited(t *testing.T) {
	srv, cleanup, err := newServer(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	var statuses []int
	for i := 0; i < 3; i++ {
		resp, err := http.Get(ts.URL + "/api/v1/catalogs")
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK || statuses[2] != http.StatusTooManyRequests {
		t.Errorf("expected two allowed then 429, got %v", statuses)
	}
}

func TestNewServer_RateLimitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = false
	srv, cleanup, err := newServer(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	for i := 0; i < 5; i++ {
		resp, err := http.Get(ts.URL + "/api/v1/health")
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, resp.StatusCode)
		}
	}
}

func TestNewServer_CatalogFile(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = false
	cfg.CatalogFile = filepath.Join("..", "testdata", "catalogs.yaml")

	srv, cleanup, err := newServer(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	health, err := client.New(ts.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if health.Catalogs != 4 {
		t.Errorf("expected 4 catalogs, got %d", health.Catalogs)
	}

	cfg.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, _, err := newServer(cfg); err == nil {
		t.Error("expected error for missing catalog file")
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = false
	srv, cleanup, err := newServer(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, ln) }()

	url := "http://" + ln.Addr().String()
	health, err := client.New(url).Health(context.Background())
	if err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("expected ok, got %s", health.Status)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunServe_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := testConfig()
	cfg.Port = strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	err = runServe(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "failed to listen") {
		t.Errorf("expected listen error, got %v", err)
	}
}
