// fleetwatch-agent is the per-host metrics sampler: it dials the Hub once
// and answers metric requests for as long as the connection stays up. It
// does not retry on disconnect; a supervising process (systemd, a
// container runtime) is expected to restart it.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/strand-protocol/fleetwatch/internal/agentclient"
	"github.com/strand-protocol/fleetwatch/internal/config"
	"github.com/strand-protocol/fleetwatch/internal/sampler"
)

func main() {
	configPath := flag.String("config", "agent.toml", "path to the agent's TOML config file")
	poolSize := flag.Int("sampler-pool", 0, "max concurrent sampler goroutines (0 = runtime.NumCPU())")
	flag.Parse()

	cfg, err := config.LoadAgent(*configPath)
	if err != nil {
		log.Fatalf("agent: load config: %v", err)
	}

	nickname := cfg.Nickname
	if nickname == "" {
		if hostname, err := os.Hostname(); err == nil {
			nickname = hostname
		} else {
			nickname = "unknown-host"
		}
	}

	log.Printf("agent: starting, connecting to hub at %s as %q", cfg.FrontendAddr, nickname)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("agent: shutdown signal received")
		cancel()
	}()

	samplers := sampler.NewSet(cfg.Disks)
	client, err := agentclient.Dial(ctx, cfg.FrontendAddr, nickname, samplers, *poolSize)
	if err != nil {
		log.Fatalf("agent: connect to %s: %v", cfg.FrontendAddr, err)
	}
	defer client.Close()

	if err := client.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Println("agent: shut down cleanly")
			return
		}
		log.Fatalf("agent: connection ended: %v", err)
	}
}
