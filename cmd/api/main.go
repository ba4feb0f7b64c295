package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lv-marginrisk/internal/audit"
	"lv-marginrisk/internal/auth"
	"lv-marginrisk/internal/clients"
	"lv-marginrisk/internal/config"
	"lv-marginrisk/internal/db"
	"lv-marginrisk/internal/health"
	"lv-marginrisk/internal/httpserver"
	"lv-marginrisk/internal/instruments"
	"lv-marginrisk/internal/notifier"
	"lv-marginrisk/internal/risk"
	"lv-marginrisk/internal/trades"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	bus := notifier.NewBus()
	thresholds := risk.Thresholds{
		Safe:       cfg.SafeLevel,
		Warning:    cfg.WarningLevel,
		MarginCall: cfg.MarginCallLevel,
	}

	auditSvc := audit.NewService(pool)
	riskStore := risk.NewStore()
	instrStore := instruments.NewStore(pool)
	riskSvc := risk.NewService(pool, riskStore, auditSvc, bus, thresholds)
	tradesSvc := trades.NewService(pool, riskStore, riskSvc, instrStore)
	clientsSvc := clients.NewService(pool, riskStore, riskSvc, cfg.DefaultLeverage)
	authSvc := auth.NewService(pool, cfg.JWTIssuer, []byte(cfg.JWTSecret), cfg.JWTTTL)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandler:        auth.NewHandler(authSvc),
		HealthHandler:      health.NewHandler(pool, time.Now()),
		ClientsHandler:     clients.NewHandler(clientsSvc),
		RiskHandler:        risk.NewHandler(riskSvc),
		TradesHandler:      trades.NewHandler(tradesSvc),
		InstrumentsHandler: instruments.NewHandler(instrStore),
		AuditHandler:       audit.NewHandler(auditSvc),
		AuthService:        authSvc,
		InternalToken:      cfg.InternalToken,
		EventsWSHandler:    httpserver.NewEventsWSHandler(bus, cfg.WebSocketOrigin),
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	log.Printf("server listening on %s", cfg.HTTPAddr)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
