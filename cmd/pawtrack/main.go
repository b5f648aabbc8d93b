package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mkeren/pawtrack/internal/backup"
	"github.com/mkeren/pawtrack/internal/logging"
	"github.com/mkeren/pawtrack/internal/push"
	"github.com/mkeren/pawtrack/internal/server"
	"github.com/mkeren/pawtrack/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(os.Getenv("PAWTRACK_LOG_LEVEL"))

	port := os.Getenv("PAWTRACK_PORT")
	if port == "" {
		port = "8000"
	}

	docPath := os.Getenv("PAWTRACK_DB_PATH")
	if docPath == "" {
		docPath = "db.json"
	}

	st := store.Open(docPath, logger.With("component", "store"))
	if err := st.EnsureDir(); err != nil {
		log.Fatalf("prepare data dir: %v", err)
	}

	cfg := server.Config{
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("PAWTRACK_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("PAWTRACK_VAPID_PRIVATE_KEY"),
			Subscriber:      os.Getenv("PAWTRACK_VAPID_SUBSCRIBER"),
		},
		Backup: backup.Config{
			Endpoint:   os.Getenv("PAWTRACK_S3_ENDPOINT"),
			Bucket:     os.Getenv("PAWTRACK_S3_BUCKET"),
			Region:     os.Getenv("PAWTRACK_S3_REGION"),
			AccessKey:  os.Getenv("PAWTRACK_S3_ACCESS_KEY"),
			SecretKey:  os.Getenv("PAWTRACK_S3_SECRET_KEY"),
			Prefix:     os.Getenv("PAWTRACK_S3_PREFIX"),
			Passphrase: os.Getenv("PAWTRACK_BACKUP_PASSPHRASE"),
		},
	}

	srv := server.New(st, cfg, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("pawtrack listening", "port", port, "document", docPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
