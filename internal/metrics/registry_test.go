package metrics

import "testing"

func Test_Registry_CountersAndHitRate(t *testing.T) {
	r := NewRegistry()
	RegisterWorkerMetrics(r)

	r.Inc(WorkerBytesRequested, 100)
	r.Inc(WorkerBytesReadCache, 75)

	snap := r.Snapshot()
	if snap[WorkerBytesRequested] != 100 || snap[WorkerBytesReadCache] != 75 {
		t.Fatalf("counters: %+v", snap)
	}
	if snap[WorkerCacheHitRate] != 0.75 {
		t.Fatalf("hit rate: %v", snap[WorkerCacheHitRate])
	}
}

func Test_Registry_HitRateWithoutTraffic(t *testing.T) {
	r := NewRegistry()
	RegisterWorkerMetrics(r)

	// Деления на ноль быть не должно.
	if got := r.Snapshot()[WorkerCacheHitRate]; got != 0 {
		t.Fatalf("hit rate without traffic: %v", got)
	}
}

func Test_Registry_Reset(t *testing.T) {
	r := NewRegistry()
	RegisterWorkerMetrics(r)

	r.Inc(WorkerBytesRequested, 10)
	r.Inc(WorkerBytesReadCache, 10)
	r.Reset()

	snap := r.Snapshot()
	if snap[WorkerBytesRequested] != 0 || snap[WorkerBytesReadCache] != 0 {
		t.Fatalf("counters after reset: %+v", snap)
	}
	// Gauge остаётся зарегистрированным и пересчитывается от нулей.
	if snap[WorkerCacheHitRate] != 0 {
		t.Fatalf("hit rate after reset: %v", snap[WorkerCacheHitRate])
	}

	r.Inc(WorkerBytesRequested, 4)
	r.Inc(WorkerBytesReadCache, 2)
	if got := r.Snapshot()[WorkerCacheHitRate]; got != 0.5 {
		t.Fatalf("hit rate after re-increment: %v", got)
	}
}

func Test_Registry_RegisterGaugeIfAbsent(t *testing.T) {
	r := NewRegistry()
	r.RegisterGaugeIfAbsent("g", func() float64 { return 1 })
	r.RegisterGaugeIfAbsent("g", func() float64 { return 2 })

	if got := r.Snapshot()["g"]; got != 1 {
		t.Fatalf("second registration must be ignored, got %v", got)
	}
}
