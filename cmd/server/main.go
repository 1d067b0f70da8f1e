package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/klass-lk/blogapi/internal/app"
	"github.com/klass-lk/blogapi/internal/config"
)

func main() {
	configPath := flag.String("config", os.Getenv("BLOG_CONFIG"), "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[config] %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("[server] %v", err)
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		log.Printf("[server] %v", err)
	}
}
