package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/nodlAndHodl/btc-tray/internal/config"
	"github.com/nodlAndHodl/btc-tray/internal/handler"
	"github.com/nodlAndHodl/btc-tray/internal/job"
	"github.com/nodlAndHodl/btc-tray/internal/provider"
	"github.com/nodlAndHodl/btc-tray/internal/service"
	"github.com/nodlAndHodl/btc-tray/internal/state"
	"github.com/nodlAndHodl/btc-tray/internal/tui"
	"github.com/nodlAndHodl/btc-tray/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	openSettingsFunc       = config.OpenSettings
	initTracerFunc         = tracing.InitTracer
	newRouterFunc          = gin.Default
	startPollerFunc        = func(p *job.Poller, ctx context.Context) { go p.Start(ctx) }
	runProgramFunc         = func(p *tea.Program) error { _, err := p.Run(); return err }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()
	settings := openSettingsFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	store := state.New()

	bitstamp := provider.NewBitstampProvider(tracer)
	mempool := provider.NewMempoolProvider(tracer, settings.ActiveMempoolURL())

	refresher := service.NewRefreshService(tracer, store, bitstamp, mempool)

	poller := job.NewPoller(tracer, refresher, store, cfg.PricePollSecs, cfg.NetworkPollSecs)
	startPollerFunc(poller, ctx)

	// Optional local status API
	var srv *http.Server
	if cfg.APIEnabled {
		h := handler.New(tracer, store)

		r := newRouterFunc()
		r.Use(otelgin.Middleware("btc-tray"))
		r.Use(handler.APIKeyAuth(cfg.APIKey))
		h.RegisterRoutes(r)

		srv = &http.Server{
			Addr:    fmt.Sprintf("127.0.0.1:%d", cfg.APIPort),
			Handler: r,
		}
		go func() {
			log.Printf("Status API listening on %s", srv.Addr)
			if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
				log.Fatalf("listen: %s\n", err)
			}
		}()
	}

	model := tui.NewModel(store, refresher, settings, mempool)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if err := runProgramFunc(program); err != nil {
		log.Printf("dashboard error: %v", err)
	}
	log.Println("Shutting down...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
			log.Fatal("Server forced to shutdown:", err)
		}
	}

	log.Println("Exited")
}
