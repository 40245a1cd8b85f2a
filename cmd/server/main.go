// Speechmeter scores spoken-language proficiency from ASR transcripts:
// grammar errors, filler words, word error rate and speaking rate are
// normalized into penalties and combined into a 0-100 score with a
// per-component breakdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"github.com/voxlab/speechmeter/internal/adapters"
	"github.com/voxlab/speechmeter/internal/cache"
	"github.com/voxlab/speechmeter/internal/errors"
	"github.com/voxlab/speechmeter/internal/monitoring"
	"github.com/voxlab/speechmeter/internal/pipeline"
	"github.com/voxlab/speechmeter/internal/ratelimit"
	"github.com/voxlab/speechmeter/internal/scoring"
	"github.com/voxlab/speechmeter/internal/security"
)

const version = "1.0.0"

// maxBatchSize bounds one batch scoring request.
const maxBatchSize = 100

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	port := getEnvOrDefault("PORT", "8080")
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	languageToolURL := os.Getenv("LANGUAGETOOL_URL")
	whisperURL := os.Getenv("WHISPER_URL")
	whisperModel := getEnvOrDefault("WHISPER_MODEL", "small")
	defaultProfile := getEnvOrDefault("SCORING_PROFILE", scoring.DefaultProfile)
	rateLimitPerMin := getEnvIntOrDefault("RATE_LIMIT_PER_MIN", 60)

	// Load the startup profile once so a broken calibration fails here,
	// never inside a scoring call.
	profiles := scoring.NewProfileStore(dataDir)
	if _, err := profiles.Load(defaultProfile); err != nil {
		slog.Error("Invalid scoring profile", "profile", defaultProfile, "error", err)
		os.Exit(1)
	}

	// External collaborators
	var checker adapters.GrammarChecker
	var ltAdapter *adapters.LanguageToolAdapter
	if languageToolURL != "" {
		ltAdapter = adapters.NewLanguageToolAdapter(languageToolURL)
		checker = ltAdapter
		slog.Info("Grammar checker configured", "url", languageToolURL)
	} else {
		slog.Warn("LANGUAGETOOL_URL not set, scoring without grammar findings")
	}

	var transcriber adapters.Transcriber
	var whisperAdapter *adapters.WhisperAdapter
	if whisperURL != "" {
		whisperAdapter = adapters.NewWhisperAdapter(whisperURL, whisperModel)
		transcriber = whisperAdapter
		slog.Info("Transcription provider configured", "url", whisperURL, "model", whisperModel)
	} else {
		slog.Warn("WHISPER_URL not set, audio_url requests will be rejected")
	}

	// Monitoring
	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	scorer := pipeline.New(profiles, checker, transcriber, appLogger, appMetrics)

	r := gin.New()
	r.Use(monitoring.Middleware(appMetrics, appLogger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())
	r.Use(security.HeadersMiddleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMin: rateLimitPerMin,
		Burst:          rateLimitPerMin / 3,
	})
	r.Use(ratelimit.Middleware(limiter, appMetrics))

	// Scoring is deterministic, so identical requests can be replayed
	// from cache until the calibration changes.
	appCache := cache.New(15 * time.Minute)
	r.Use(appCache.Middleware(appMetrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"version":   version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"metrics":   appMetrics.GetStats(),
		})
	})

	// Full pipeline: transcript (or audio_url) in, scored report out.
	r.POST("/score", func(c *gin.Context) {
		var req pipeline.Request
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError("invalid request body", err.Error())
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		start := time.Now()
		report, err := scorer.Score(c.Request.Context(), req)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(slog.Default(), appErr, "path", c.Request.URL.Path, "ip", c.ClientIP())
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		appLogger.ScoringLogger(report.ASR.WordCount, report.Metrics.FinalScore,
			profileName(req.Profile, defaultProfile), time.Since(start), c.GetBool("cache_hit"))
		c.JSON(http.StatusOK, report)
	})

	// Pure engine endpoint: pre-measured features in, ScoreResult out.
	r.POST("/score/features", func(c *gin.Context) {
		var req featuresRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError("invalid request body", err.Error())
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		if err := req.validate(); err != nil {
			appErr := errors.ToAppError(err)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		engine, appErr := buildEngine(profiles, req.Profile)
		if appErr != nil {
			errors.LogError(slog.Default(), appErr, "path", c.Request.URL.Path)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		res := engine.Score(req.FeatureSet)
		appMetrics.IncrementScore()
		c.JSON(http.StatusOK, res)
	})

	// Batch endpoint: independent samples fan out across the CPUs, one
	// scoring call per sample, no shared state beyond the calibration.
	r.POST("/score/batch", func(c *gin.Context) {
		var req batchRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError("invalid request body", err.Error())
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		if len(req.Samples) == 0 || len(req.Samples) > maxBatchSize {
			appErr := errors.NewValidationError("batch must hold between 1 and 100 samples")
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		engine, appErr := buildEngine(profiles, req.Profile)
		if appErr != nil {
			errors.LogError(slog.Default(), appErr, "path", c.Request.URL.Path)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		results := make([]scoring.ScoreResult, len(req.Samples))
		g, _ := errgroup.WithContext(c.Request.Context())
		g.SetLimit(runtime.NumCPU())
		for i, fs := range req.Samples {
			g.Go(func() error {
				results[i] = engine.Score(fs)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			appErr := errors.ToAppError(err)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		appMetrics.IncrementScore()
		c.JSON(http.StatusOK, gin.H{"results": results})
	})

	r.GET("/profiles", func(c *gin.Context) {
		names, err := profiles.List()
		if err != nil {
			appErr := errors.NewInternalError("failed to list scoring profiles", err)
			errors.LogError(slog.Default(), appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		c.JSON(http.StatusOK, gin.H{"profiles": names, "default": defaultProfile})
	})

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, appCache.Stats())
	})

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port, "profile", defaultProfile)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if ltAdapter != nil {
		ltAdapter.Close()
	}
	if whisperAdapter != nil {
		whisperAdapter.Close()
	}

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// featuresRequest is the pure-engine scoring request: the measured
// FeatureSet plus an optional profile name.
type featuresRequest struct {
	scoring.FeatureSet
	Profile string `json:"profile"`
}

func (r featuresRequest) validate() error {
	if r.WordCount < 0 {
		return errors.NewValidationError("word_count must be non-negative")
	}
	if r.GrammarErrorCount < 0 || r.FillerCount < 0 {
		return errors.NewValidationError("counts must be non-negative")
	}
	if r.WordErrorRate != nil && (*r.WordErrorRate < 0 || *r.WordErrorRate > 1) {
		return errors.NewValidationError("word_error_rate must be in [0,1]")
	}
	return nil
}

type batchRequest struct {
	Samples []scoring.FeatureSet `json:"samples"`
	Profile string               `json:"profile"`
}

// buildEngine loads and validates a profile, mapping any failure to the
// configuration error contract.
func buildEngine(profiles *scoring.ProfileStore, profile string) (*scoring.Engine, *errors.AppError) {
	cfg, err := profiles.Load(profile)
	if err != nil {
		return nil, errors.ToAppError(err)
	}
	engine, err := scoring.NewEngine(cfg)
	if err != nil {
		return nil, errors.ToAppError(err)
	}
	return engine, nil
}

func profileName(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	return fallback
}

// Helper function for environment variables with defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
