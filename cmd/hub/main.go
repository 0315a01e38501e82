// fleetwatch-hub is the central server: it accepts agent connections over
// TCP, caches and multiplexes metric queries, and serves the browser
// dashboard over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/strand-protocol/fleetwatch/internal/config"
	"github.com/strand-protocol/fleetwatch/internal/httpapi"
	"github.com/strand-protocol/fleetwatch/internal/hub"
	"github.com/strand-protocol/fleetwatch/internal/metrics"
)

func main() {
	configPath := flag.String("config", "hub.toml", "path to the hub's TOML config file")
	flag.Parse()

	cfg, err := config.LoadHub(*configPath)
	if err != nil {
		log.Fatalf("hub: load config: %v", err)
	}
	log.Printf("hub: loaded config from %s (log_level=%s)", *configPath, cfg.LogLevel)

	registry := hub.NewRegistry()
	m := metrics.New()

	backendAddr := addrWithPort(cfg.BackendPort)
	listener, err := hub.Listen(backendAddr, registry)
	if err != nil {
		log.Fatalf("hub: listen on %s: %v", backendAddr, err)
	}
	log.Printf("hub: accepting agent connections on %s", listener.Addr())

	go func() {
		if err := listener.Serve(); err != nil {
			log.Printf("hub: agent listener stopped: %v", err)
		}
	}()

	httpServer := &http.Server{
		Addr:    addrWithPort(cfg.HTTPPort),
		Handler: httpapi.NewServer(registry, m),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("hub: shutdown signal received")
		cancel()

		shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutCancel()
		if err := httpServer.Shutdown(shutCtx); err != nil {
			log.Printf("hub: http shutdown error: %v", err)
		}
		if err := listener.Close(); err != nil {
			log.Printf("hub: agent listener close error: %v", err)
		}
	}()

	log.Printf("hub: serving dashboard on %s", httpServer.Addr)
	var serveErr error
	if cfg.EnableTLS {
		serveErr = httpServer.ListenAndServeTLS(cfg.CertPath, cfg.KeyPath)
	} else {
		serveErr = httpServer.ListenAndServe()
	}
	if serveErr != nil && serveErr != http.ErrServerClosed {
		log.Fatalf("hub: http server error: %v", serveErr)
	}
	<-ctx.Done()
}

func addrWithPort(port int) string {
	return ":" + strconv.Itoa(port)
}
