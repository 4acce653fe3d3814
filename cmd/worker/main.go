package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ycycse/alluxio/internal/app/adminhttp"
	"github.com/ycycse/alluxio/internal/app/workerhttp"
	"github.com/ycycse/alluxio/internal/config"
	"github.com/ycycse/alluxio/internal/metrics"
	"github.com/ycycse/alluxio/internal/ufs"
	"github.com/ycycse/alluxio/internal/usecase/loadsvc"
	"github.com/ycycse/alluxio/internal/usecase/pagesvc"
)

// main поднимает data-plane и admin серверы воркера и обеспечивает
// корректное завершение по сигналу.
func main() {
	addr := flag.String("addr", "", "data-plane listen address (overrides config)")
	adminAddr := flag.String("admin-addr", "", "admin listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *adminAddr != "" {
		cfg.AdminAddr = *adminAddr
	}
	if cfg.PageDir == "" {
		cfg.PageDir = "./pages"
	}
	if err := os.MkdirAll(cfg.PageDir, 0o755); err != nil {
		log.Fatal(err)
	}

	reg := metrics.NewRegistry()

	pages := pagesvc.New(pagesvc.Deps{
		PageDir:  cfg.PageDir,
		PageSize: cfg.PageSize,
	})
	ufsClient := ufs.NewLocal(cfg.UfsRoot)
	loader := loadsvc.New(loadsvc.Deps{
		Ufs:     ufsClient,
		Pages:   pages,
		Workers: cfg.LoadWorkers,
	})

	stopReaper := loadsvc.StartJobReaper(loader, time.Duration(cfg.JobTTLMin)*time.Minute, time.Minute)
	defer stopReaper()

	worker := workerhttp.NewServer(workerhttp.Deps{
		Pages:   pages,
		Ufs:     ufsClient,
		Loads:   loader,
		Metrics: reg,
	})

	admin := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminhttp.New(reg, cfg),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := worker.Shutdown(shutdownCtx); err != nil {
			log.Printf("WORKER shutdown error: %v", err)
		}
		if err := admin.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("ADMIN shutdown error: %v", err)
		}
	}()

	go func() {
		log.Printf("ADMIN listening on %s", cfg.AdminAddr)
		if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("ADMIN server error: %v", err)
			stop()
		}
	}()

	log.Printf("WORKER listening on %s (page_size=%d, page_dir=%s, ufs_root=%s)",
		cfg.ListenAddr, cfg.PageSize, cfg.PageDir, cfg.UfsRoot)
	if err := worker.ListenAndServe(cfg.ListenAddr); err != nil && !errors.Is(err, workerhttp.ErrServerClosed) {
		log.Fatal(err)
	}
	stop()
}
