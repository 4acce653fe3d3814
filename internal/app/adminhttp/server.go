// Package adminhttp — служебный HTTP-интерфейс воркера: экспорт и сброс
// метрик, просмотр конфигурации. Живёт на отдельном слушателе и не
// участвует в data-plane.
package adminhttp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ycycse/alluxio/internal/config"
	"github.com/ycycse/alluxio/internal/metrics"
	"github.com/ycycse/alluxio/pkg/httperrors"
)

type Server struct {
	Metrics *metrics.Registry
	Cfg     *config.Config
}

// New создаёт обработчик служебного API.
func New(reg *metrics.Registry, cfg *config.Config) http.Handler {
	srv := &Server{
		Metrics: reg,
		Cfg:     cfg,
	}

	rtr := chi.NewRouter()
	rtr.Get("/metrics", srv.getMetrics)
	rtr.Get("/metrics/names", srv.getMetricNames)
	rtr.Post("/metrics/reset", srv.resetMetrics)
	rtr.Get("/admin/config", func(w http.ResponseWriter, r *http.Request) { _ = json.NewEncoder(w).Encode(cfg) })
	rtr.Get("/health", srv.health)

	return rtr
}

// getMetrics отдаёт снимок всех счётчиков и gauge.
func (s *Server) getMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Metrics.Snapshot()); err != nil {
		httperrors.Write(w, err)
	}
}

// getMetricNames перечисляет зарегистрированные метрики без значений.
func (s *Server) getMetricNames(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Metrics.Names()); err != nil {
		httperrors.Write(w, err)
	}
}

// resetMetrics — явная внешняя операция сброса; кроме неё счётчики не
// обнуляются никогда.
func (s *Server) resetMetrics(w http.ResponseWriter, _ *http.Request) {
	s.Metrics.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
