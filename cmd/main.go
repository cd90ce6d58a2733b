package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/ai_doctor/internal/ai"
	"github.com/Vovarama1992/ai_doctor/internal/audio"
	"github.com/Vovarama1992/ai_doctor/internal/config"
	"github.com/Vovarama1992/ai_doctor/internal/delivery"
	"github.com/Vovarama1992/ai_doctor/internal/domain"
	"github.com/Vovarama1992/ai_doctor/internal/speech"
	"github.com/Vovarama1992/ai_doctor/internal/telegram"
	"github.com/Vovarama1992/ai_doctor/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const serviceName = "ai_doctor"

func main() {

	// =========================================================================
	// LOGGER / CONFIG
	// =========================================================================

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	cfg, err := config.Load()
	if err != nil {
		baseLogger.Fatal("config", zap.Error(err))
	}
	if err := cfg.RequireAPIKey(); err != nil {
		baseLogger.Fatal("missing credentials", zap.Error(err))
	}
	if err := cfg.EnsureDirectories(); err != nil {
		baseLogger.Fatal("directories", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// CLIENTS (STT / VISION / TTS)
	// =========================================================================

	groqClient := ai.NewOpenAIClient(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.GroqTimeout())

	engine, err := speech.NewEngine(cfg, &http.Client{Timeout: cfg.SpeechTimeout()})
	if err != nil {
		baseLogger.Fatal("speech engine", zap.Error(err))
	}

	// =========================================================================
	// DOMAIN
	// =========================================================================

	pool := worker.NewPool(cfg.Workers.Size)
	defer pool.Close()

	consultService := domain.NewConsultationService(
		domain.Collaborators{
			Normalizer:  audio.NewNormalizer(cfg.Audio.FFmpegPath, cfg.Audio.FFprobePath, cfg.Paths.WorkDir, nil, baseLogger),
			Transcriber: speech.NewGroqTranscriber(groqClient, cfg.Groq.TranscriptionModel, cfg.Speech.Language, baseLogger),
			Encoder:     ai.NewImageEncoder(),
			Analyzer:    ai.NewVisionClient(groqClient, baseLogger),
			Synthesizer: speech.NewSynthesizer(
				engine,
				speech.NewHTTPProber(cfg.Speech.ReachabilityURL, 5*time.Second),
				baseLogger,
			),
		},
		domain.Persona{
			Prompt:              cfg.Persona.Prompt,
			NoImageReply:        cfg.Persona.NoImageReply,
			NoAnalysisReply:     cfg.Persona.NoAnalysisReply,
			TranscriptionFailed: cfg.Persona.TranscriptionFailed,
		},
		cfg.Groq.VisionModel,
		cfg.Paths.OutputDir,
		pool,
		baseLogger,
	)

	// =========================================================================
	// TELEGRAM BOT (optional)
	// =========================================================================

	if cfg.Telegram.Token != "" {
		botApp, err := telegram.NewBotApp(cfg.Telegram.Token, consultService, cfg.Paths.WorkDir, baseLogger)
		if err != nil {
			baseLogger.Error("telegram bot disabled", zap.Error(err))
		} else {
			go botApp.Run(ctx)
		}
	}

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	maxUpload := cfg.Server.MaxUploadMB << 20

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	delivery.RegisterRoutes(
		r,
		delivery.NewPageHandler("AI Doctor with Vision and Voice", maxUpload, zl),
		delivery.NewConsultHandler(consultService, cfg.Paths.WorkDir, cfg.Paths.OutputDir, maxUpload, zl),
		cfg.Server.RateLimit,
	)

	// =========================================================================
	// START SERVER
	// =========================================================================

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + cfg.Server.Addr,
		Service: serviceName,
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		baseLogger.Fatal("server error", zap.Error(err))
	}
}
