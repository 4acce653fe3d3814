// Package metrics реализует процессный реестр счётчиков и gauge-метрик.
// Реестр передаётся обработчикам явно, а не через глобальное состояние,
// чтобы ядро тестировалось изолированно.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Имена метрик data-plane воркера.
const (
	WorkerBytesRequested = "worker.http.bytes_requested"
	WorkerBytesReadCache = "worker.http.bytes_read_cache"
	WorkerCacheHitRate   = "worker.http.cache_hit_rate"
)

// Registry хранит именованные счётчики и производные gauge-функции.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*int64
	gauges   map[string]func() float64
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		counters: map[string]*int64{},
		gauges:   map[string]func() float64{},
	}
}

// Counter возвращает счётчик по имени, регистрируя его при первом обращении.
func (r *Registry) Counter(name string) *int64 {
	r.mu.RLock()
	c, ok := r.counters[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok = r.counters[name]; ok {
		return c
	}
	c = new(int64)
	r.counters[name] = c
	return c
}

// Inc увеличивает счётчик name на delta.
func (r *Registry) Inc(name string, delta int64) {
	atomic.AddInt64(r.Counter(name), delta)
}

// Get возвращает текущее значение счётчика.
func (r *Registry) Get(name string) int64 {
	return atomic.LoadInt64(r.Counter(name))
}

// RegisterGaugeIfAbsent регистрирует вычисляемую метрику; повторная
// регистрация под тем же именем игнорируется.
func (r *Registry) RegisterGaugeIfAbsent(name string, fn func() float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.gauges[name]; ok {
		return
	}
	r.gauges[name] = fn
}

// Reset обнуляет все счётчики. Gauge-функции остаются зарегистрированными
// и пересчитываются от обнулённых значений.
func (r *Registry) Reset() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.counters {
		atomic.StoreInt64(c, 0)
	}
}

// Snapshot возвращает значения всех счётчиков и gauge на момент вызова.
func (r *Registry) Snapshot() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]float64, len(r.counters)+len(r.gauges))
	for name, c := range r.counters {
		out[name] = float64(atomic.LoadInt64(c))
	}
	for name, fn := range r.gauges {
		out[name] = fn()
	}
	return out
}

// Names возвращает отсортированный список зарегистрированных метрик.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.counters)+len(r.gauges))
	for name := range r.counters {
		names = append(names, name)
	}
	for name := range r.gauges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterWorkerMetrics регистрирует счётчики воркера и производный
// cache-hit-rate = served / requested. Вызывается один раз при старте.
func RegisterWorkerMetrics(r *Registry) {
	requested := r.Counter(WorkerBytesRequested)
	served := r.Counter(WorkerBytesReadCache)

	r.RegisterGaugeIfAbsent(WorkerCacheHitRate, func() float64 {
		total := atomic.LoadInt64(requested)
		if total == 0 {
			return 0
		}
		return float64(atomic.LoadInt64(served)) / float64(total)
	})
}
