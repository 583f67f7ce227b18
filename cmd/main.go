package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"sitesketch/config"
	"sitesketch/internal/ai"
	"sitesketch/internal/annotate"
	"sitesketch/internal/api"
	"sitesketch/internal/chat"
	"sitesketch/internal/publish"
	"sitesketch/internal/render"
)

func main() {
	// --- Load .env file ---
	// Must happen before viper reads the environment.
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		} else {
			log.Println("Info: .env file not found, relying on system environment variables.")
		}
	} else {
		log.Println("Info: Loaded environment variables from .env file.")
	}

	// --- Configuration Loading ---
	cfg, err := config.LoadConfig(".") // Load from config.yaml or env vars
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	// --- Dependency Initialization ---

	// Chat model client (OpenAI or any compatible endpoint)
	aiGenerator := ai.NewGenerator(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.ChatModel)
	log.Printf("Info: Using chat model %s", aiGenerator.Model())

	// Headless Chrome renders the preview document for annotation captures.
	// The browser itself starts on the first capture.
	rasterizer := render.NewChromeRasterizer(render.Options{
		ExecPath:          cfg.ChromePath,
		DeviceScaleFactor: cfg.DeviceScaleFactor,
		MaxConcurrent:     cfg.MaxConcurrentRenders,
	})
	defer rasterizer.Close()

	chatService := chat.NewService(chat.NewStore(), aiGenerator, rasterizer,
		annotate.WithPadding(cfg.AnnotationPadding),
		annotate.WithQuality(cfg.AnnotationJPEGQuality),
	)

	publisher := publish.NewPublisher(cfg.PublishDir, cfg.PublishCommand)

	apiHandler := api.NewAPIHandler(chatService, publisher)

	// --- Start API Server ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in Gin Debug Mode")
	}

	router := gin.New()        // Use gin.New() for more control over middleware
	router.Use(gin.Logger())   // Add structured logger middleware
	router.Use(gin.Recovery()) // Add panic recovery middleware

	api.RegisterRoutes(router, apiHandler) // Register API endpoints

	server := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
		// Captures and model calls can take a while; keep the write timeout generous.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting API server on %s\n", cfg.ServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server listen error: %s\n", err)
		}
		log.Println("API server has stopped listening.")
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal: %s. Shutting down server...", sig)

	shutdownCtx, serverCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer serverCancel()

	log.Println("Shutting down API server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server forced shutdown error: %v", err)
	} else {
		log.Println("API server gracefully stopped.")
	}

	log.Println("Application exiting.")
}
