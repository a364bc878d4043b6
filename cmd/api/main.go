package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gotabstat/internal/config"
	"gotabstat/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := c.NewAPIServer()
	if err := server.Start(ctx, ":"+cfg.Server.Port); err != nil {
		c.Logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}
