package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raushankrgupta/fitly-atelier/api"
	"github.com/raushankrgupta/fitly-atelier/config"
	"github.com/raushankrgupta/fitly-atelier/session"
	"github.com/raushankrgupta/fitly-atelier/store"
	"github.com/raushankrgupta/fitly-atelier/utils"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()

	if err := utils.InitLogger(config.LogMode); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.SyncLogger()

	ctx := context.Background()

	if utils.S3Enabled() {
		if err := utils.InitS3(); err != nil {
			utils.Logger.Fatal("failed to initialize S3", zap.Error(err))
		}
	} else {
		utils.Logger.Warn("AWS_BUCKET_NAME not set, images are kept inline")
	}

	backend, err := store.Open(ctx, config.StoreDriver)
	if err != nil {
		utils.Logger.Fatal("failed to open store", zap.String("driver", config.StoreDriver), zap.Error(err))
	}

	gen, err := utils.NewGeminiGenerator(ctx, config.GeminiAPIKey, config.GeminiModel)
	if err != nil {
		utils.Logger.Fatal("failed to create Gemini client", zap.Error(err))
	}
	defer gen.Close()

	registry := session.NewRegistry(gen, backend.Records, utils.Logger,
		session.WithRecorder(backend.Gallery),
		session.WithCascadeRollback(config.CascadeRollback),
	)
	server := api.NewServer(registry, backend.Gallery)

	evictCtx, stopEviction := context.WithCancel(ctx)
	defer stopEviction()
	go registry.RunEviction(evictCtx, time.Minute, config.SessionIdleTimeout)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Logger.Info("server starting", zap.String("port", config.Port), zap.String("store", config.StoreDriver))
		fmt.Printf("Usage: curl -F photo=@me.jpg \"http://localhost:%s/sessions\"\n", config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.Warn("shutdown interrupted", zap.Error(err))
	}
	if err := backend.Close(shutdownCtx); err != nil {
		utils.Logger.Warn("closing store failed", zap.Error(err))
	}
	utils.Logger.Info("server stopped")
}
