package adminhttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/ycycse/alluxio/internal/config"
	"github.com/ycycse/alluxio/internal/metrics"
)

func newAdmin(t *testing.T) (*httptest.Server, *metrics.Registry) {
	t.Helper()

	reg := metrics.NewRegistry()
	metrics.RegisterWorkerMetrics(reg)
	cfg := &config.Config{ListenAddr: ":0"}

	s := httptest.NewServer(New(reg, cfg))
	t.Cleanup(s.Close)
	return s, reg
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func Test_Metrics_SnapshotAndReset(t *testing.T) {
	s, reg := newAdmin(t)

	reg.Inc(metrics.WorkerBytesRequested, 10)
	reg.Inc(metrics.WorkerBytesReadCache, 5)

	var snap map[string]float64
	getJSON(t, s.URL+"/metrics", &snap)
	if snap[metrics.WorkerBytesRequested] != 10 || snap[metrics.WorkerCacheHitRate] != 0.5 {
		t.Fatalf("snapshot: %+v", snap)
	}

	resp, err := http.Post(s.URL+"/metrics/reset", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("reset status: %d", resp.StatusCode)
	}

	getJSON(t, s.URL+"/metrics", &snap)
	if snap[metrics.WorkerBytesRequested] != 0 {
		t.Fatalf("snapshot after reset: %+v", snap)
	}
}

func Test_Metrics_Names(t *testing.T) {
	s, _ := newAdmin(t)

	var names []string
	getJSON(t, s.URL+"/metrics/names", &names)

	want := map[string]bool{
		metrics.WorkerBytesRequested: false,
		metrics.WorkerBytesReadCache: false,
		metrics.WorkerCacheHitRate:   false,
	}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Fatalf("metric %s is not listed: %v", n, names)
		}
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("names are not sorted: %v", names)
	}
}

func Test_ConfigEndpoint(t *testing.T) {
	s, _ := newAdmin(t)

	var cfg map[string]any
	getJSON(t, s.URL+"/admin/config", &cfg)
	if cfg["listen_addr"] != ":0" {
		t.Fatalf("config: %+v", cfg)
	}
}

func Test_Health(t *testing.T) {
	s, _ := newAdmin(t)

	var body map[string]bool
	getJSON(t, s.URL+"/health", &body)
	if !body["ok"] {
		t.Fatalf("health: %+v", body)
	}
}
