package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cantio.org/internal/authz"
	"cantio.org/internal/httpapi"
	"cantio.org/internal/identity"
	"cantio.org/internal/obs"
	"cantio.org/internal/store/pg"
)

// Overridden at build time via -ldflags.
var (
	version = "0.3.1"
	commit  = "none"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	dsn := os.Getenv("CANTIO_PG_DSN")
	if dsn == "" {
		log.Fatal("missing CANTIO_PG_DSN")
	}
	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	svc, err := identity.NewService(store)
	if err != nil {
		log.Fatalf("identity service: %v", err)
	}

	api := httpapi.New(httpapi.Config{
		Ready:    httpapi.ReadyProbe{DB: store.DB()},
		Version:  version,
		Store:    store,
		Auth:     svc,
		Provider: identity.TokenProvider{},
		Gate:     authz.NewGate(store),
	})

	var handler http.Handler = api.Handler()
	handler = httpapi.MaxBodyBytes(handler, 1<<20)
	handler = httpapi.RateLimit(handler, 50, 25)
	handler = httpapi.CORS(handler)
	handler = httpapi.SecurityHeaders(handler)
	handler = httpapi.Logging(handler)
	handler = httpapi.RequestID(handler)

	addr := os.Getenv("CANTIO_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting cantio-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
