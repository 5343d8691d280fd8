package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mponcet/wololo/internal/infrastructure/config"
	"github.com/mponcet/wololo/internal/infrastructure/influxdb"
)

// fakeServer speaks the two InfluxDB v2 endpoints the client uses.
type fakeServer struct {
	*httptest.Server

	mu     sync.Mutex
	writes []string
	query  string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ping", "/health":
			w.WriteHeader(http.StatusNoContent)
		case "/api/v2/write":
			body, _ := io.ReadAll(r.Body)
			fs.mu.Lock()
			fs.writes = append(fs.writes, string(body))
			fs.query = r.URL.RawQuery
			fs.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fs.Close)

	return fs
}

// received returns all line protocol written so far.
func (fs *fakeServer) received() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return strings.Join(fs.writes, "")
}

// waitFor flushes until want shows up in the written data.
func waitFor(t *testing.T, client *influxdb.Client, fs *fakeServer, want string) string {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		client.Flush()
		if got := fs.received(); strings.Contains(got, want) {
			return got
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q, received %q", want, fs.received())
	return ""
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "wololo-test-token",
		Org:           "home",
		Bucket:        "wololo",
		BatchSize:     1,
		FlushInterval: 1,
	}
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect(t *testing.T) {
	fs := newFakeServer(t)

	client, err := influxdb.Connect(testConfig(fs.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:8086")
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	fs := newFakeServer(t)
	url := fs.URL
	fs.Close()

	_, err := influxdb.Connect(testConfig(url))
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_NegativeBatchSettings(t *testing.T) {
	fs := newFakeServer(t)
	cfg := testConfig(fs.URL)
	cfg.BatchSize = -5     // Negative, should use default
	cfg.FlushInterval = -1 // Negative, should use default

	client, err := influxdb.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect() with negative batch settings")
	}
}

// =============================================================================
// Health Check Tests
// =============================================================================

func TestHealthCheck(t *testing.T) {
	fs := newFakeServer(t)

	client, err := influxdb.Connect(testConfig(fs.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestHealthCheck_AfterClose(t *testing.T) {
	fs := newFakeServer(t)

	client, err := influxdb.Connect(testConfig(fs.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	client.Close()

	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() after Close error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Write Tests
// =============================================================================

func TestRecordWake(t *testing.T) {
	fs := newFakeServer(t)

	client, err := influxdb.Connect(testConfig(fs.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	client.RecordWake("pc1", "00:01:02:03:04:05", true)
	got := waitFor(t, client, fs, "wake_events")

	for _, want := range []string{"event=wake", "device=pc1", "sent=true"} {
		if !strings.Contains(got, want) {
			t.Errorf("written line %q missing %q", got, want)
		}
	}

	fs.mu.Lock()
	query := fs.query
	fs.mu.Unlock()
	if !strings.Contains(query, "bucket=wololo") || !strings.Contains(query, "org=home") {
		t.Errorf("write query = %q, want bucket and org", query)
	}
}

func TestRecordLiveness(t *testing.T) {
	fs := newFakeServer(t)

	client, err := influxdb.Connect(testConfig(fs.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	client.RecordLiveness("pc1", "10.0.0.5:22", false, 30*time.Second)
	got := waitFor(t, client, fs, "event=liveness")

	for _, want := range []string{"up=false", "waited_seconds=30"} {
		if !strings.Contains(got, want) {
			t.Errorf("written line %q missing %q", got, want)
		}
	}
}

func TestRecord_AfterCloseIsNoop(t *testing.T) {
	fs := newFakeServer(t)

	client, err := influxdb.Connect(testConfig(fs.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	client.Close()

	// Must not panic or block.
	client.RecordWake("pc1", "00:01:02:03:04:05", true)
	client.RecordLiveness("pc1", "10.0.0.5:22", true, time.Second)
	client.Flush()
}

func TestClose_Nil(t *testing.T) {
	var client influxdb.Client
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v", err)
	}
}

func TestClose_Twice(t *testing.T) {
	fs := newFakeServer(t)

	client, err := influxdb.Connect(testConfig(fs.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}
