// forum/main.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/depsterr/slutprojektWSP21/config"
	"github.com/depsterr/slutprojektWSP21/database"
	"github.com/depsterr/slutprojektWSP21/handlers"
	"github.com/depsterr/slutprojektWSP21/models"
	"github.com/depsterr/slutprojektWSP21/utils"
)

type Application struct {
	engine     *database.ForumService
	writes     *models.WriteLimiter
	sessions   *handlers.SessionStore
	logger     *slog.Logger
	stagingDir string
	avatarDir  string
}

// Methods to satisfy the handlers.App interface
func (a *Application) Engine() *database.ForumService   { return a.engine }
func (a *Application) Writes() *models.WriteLimiter     { return a.writes }
func (a *Application) Sessions() *handlers.SessionStore { return a.sessions }
func (a *Application) Logger() *slog.Logger             { return a.logger }
func (a *Application) StagingDir() string               { return a.stagingDir }
func (a *Application) AvatarDir() string                { return a.avatarDir }

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// --- External Configuration ---
	port := utils.GetEnv("FORUM_PORT", "8080")
	dbPath := utils.GetEnv("FORUM_DB_PATH", "./forum.db?_journal_mode=WAL&_foreign_keys=on")
	stagingDir := utils.GetEnv("FORUM_STAGING_DIR", "./staging")
	avatarDir := utils.GetEnv("FORUM_AVATAR_DIR", "./avatars")

	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		logger.Error("FATAL: Could not create staging directory", "path", stagingDir, "error", err)
		os.Exit(1)
	}

	writeEvery, err := time.ParseDuration(utils.GetEnv("FORUM_WRITE_EVERY", config.DefaultWriteLimitEvery))
	if err != nil {
		logger.Warn("Invalid FORUM_WRITE_EVERY duration, using default", "default", config.DefaultWriteLimitEvery)
		writeEvery, _ = time.ParseDuration(config.DefaultWriteLimitEvery)
	}
	writeBurst, err := strconv.Atoi(utils.GetEnv("FORUM_WRITE_BURST", strconv.Itoa(config.DefaultWriteLimitBurst)))
	if err != nil {
		logger.Warn("Invalid FORUM_WRITE_BURST integer, using default", "default", config.DefaultWriteLimitBurst)
		writeBurst = config.DefaultWriteLimitBurst
	}
	writePrune, err := time.ParseDuration(utils.GetEnv("FORUM_WRITE_PRUNE", config.DefaultWriteLimitPrune))
	if err != nil {
		logger.Warn("Invalid FORUM_WRITE_PRUNE duration, using default", "default", config.DefaultWriteLimitPrune)
		writePrune, _ = time.ParseDuration(config.DefaultWriteLimitPrune)
	}
	writeExpire, err := time.ParseDuration(utils.GetEnv("FORUM_WRITE_EXPIRE", config.DefaultWriteLimitExpire))
	if err != nil {
		logger.Warn("Invalid FORUM_WRITE_EXPIRE duration, using default", "default", config.DefaultWriteLimitExpire)
		writeExpire, _ = time.ParseDuration(config.DefaultWriteLimitExpire)
	}

	// --- Avatar Storage Init ---
	var avatarStore models.AvatarStore
	localAvatarDir := ""
	if utils.GetEnv("FORUM_S3_ENABLED", "false") == "true" {
		endpoint := utils.GetEnv("FORUM_S3_ENDPOINT", "")
		accessKey := utils.GetEnv("FORUM_S3_ACCESS_KEY", "")
		secretKey := utils.GetEnv("FORUM_S3_SECRET_KEY", "")
		bucket := utils.GetEnv("FORUM_S3_BUCKET", "")
		region := utils.GetEnv("FORUM_S3_REGION", "us-east-1")
		publicURL := utils.GetEnv("FORUM_S3_PUBLIC_URL", "")
		useSSL := utils.GetEnv("FORUM_S3_USE_SSL", "true") == "true"

		avatarStore, err = utils.NewS3Storage(endpoint, accessKey, secretKey, bucket, region, publicURL, useSSL)
		if err != nil {
			logger.Error("Failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		logger.Info("S3 avatar storage initialized", "endpoint", endpoint, "bucket", bucket)
	} else {
		local, err := utils.NewLocalStorage(avatarDir)
		if err != nil {
			logger.Error("Failed to initialize local storage", "error", err)
			os.Exit(1)
		}
		avatarStore = local
		localAvatarDir = avatarDir
		logger.Info("Local avatar storage initialized", "dir", avatarDir)
	}

	attempts := models.NewAttemptLimiter(config.AuthAttemptWindowSeconds*time.Second, config.AuthAttemptMax)

	engine, err := database.InitDB(dbPath, attempts, avatarStore, logger)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := engine.DB.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	if name := utils.GetEnv("FORUM_BOOTSTRAP_ADMIN", ""); name != "" {
		if err := engine.PromoteByName(name); err != nil {
			logger.Warn("Could not promote bootstrap admin", "username", name, "error", err)
		} else {
			logger.Info("Bootstrap admin promoted", "username", name)
		}
	}

	app := &Application{
		engine:     engine,
		writes:     models.NewWriteLimiter(writeEvery, writeBurst, writePrune, writeExpire),
		sessions:   handlers.NewSessionStore(24*time.Hour, time.Hour),
		logger:     logger,
		stagingDir: stagingDir,
		avatarDir:  localAvatarDir,
	}
	defer app.writes.Close()
	defer app.sessions.Close()

	mux := handlers.SetupRouter(app)

	// --- Graceful Shutdown ---
	server := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("Forum server started successfully",
		"version", config.AppVersion,
		"address", "http://localhost:"+port,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("Server exiting")
}
