// Package main Telegram -> Gemini gatekeeper bot.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/telegram-gatekeeper-bot/config"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/delivery/telegram"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/delivery/webhook"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/infrastructure/gemini"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/infrastructure/parser"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/infrastructure/storage"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/limiter"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/logx"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/usecase"
)

const (
	limiterCleanupInterval = time.Minute
	shutdownTimeout        = 10 * time.Second
	violationBufferSize    = 1000
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: konfiguratsiya yuklanmadi: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Str("model", cfg.GeminiModel).
		Dur("min_interval", cfg.MinInterval).
		Int("max_warnings", cfg.MaxWarnings).
		Int("admins", len(cfg.AdminIDs)).
		Bool("webhook", cfg.UseWebhook()).
		Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		logx.Fatal(err, "bot stopped with error")
	}
	logx.Info("bot gracefully stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Repository lar
	userStore, err := storage.NewJSONUserStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("user store: %w", err)
	}

	violations, closeViolations := openViolationLog(cfg.ViolationDBPath)
	defer closeViolations()

	// Detectorlar
	excel := parser.NewExcelParser()
	terms := cfg.DenylistTerms
	if cfg.DenylistFile != "" {
		fileTerms, err := excel.ParseTerms(ctx, cfg.DenylistFile)
		if err != nil {
			return fmt.Errorf("denylist file: %w", err)
		}
		terms = append(terms, fileTerms...)
	}
	denylist := usecase.NewDenylistDetector(terms)
	links, err := usecase.NewLinkDetector(cfg.LinkPattern)
	if err != nil {
		return fmt.Errorf("link pattern: %w", err)
	}
	logx.Info("detectors ready", "denylist_terms", len(denylist.Terms()))

	rateLimiter := limiter.NewUserRateLimiter(cfg.MinInterval)
	go rateLimiter.Run(ctx, limiterCleanupInterval)

	// AI client
	aiClient, err := gemini.NewGeminiClient(ctx, gemini.Options{
		APIKey:       cfg.GeminiAPIKey,
		Model:        cfg.GeminiModel,
		SystemPrompt: cfg.SystemPrompt,
		Concurrency:  cfg.ResponderConcurrency,
	})
	if err != nil {
		return err
	}
	defer aiClient.Close()

	// Use case lar
	moderation := usecase.NewModerationUseCase(userStore, violations, cfg.MaxWarnings, links, denylist)
	session := usecase.NewSessionUseCase(userStore, aiClient, usecase.SessionOptions{
		ResponderTimeout: cfg.ResponderTimeout,
		PromptPrefix:     cfg.PromptPrefix,
	})
	gatekeeper := usecase.NewGatekeeperUseCase(userStore, rateLimiter, moderation, session, cfg.MaxWarnings, cfg.AllowedUsernames)
	admin := usecase.NewAdminUseCase(cfg.AdminIDs, userStore, violations, excel, parser.NewReportWriter(), denylist)

	// Telegram
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}
	bot.Debug = false
	logx.Info("bot authorized", "username", bot.Self.UserName)

	handler := telegram.NewBotHandler(bot, gatekeeper, admin)

	server := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: webhook.Router(webhook.Deps{
			Secret:      cfg.WebhookSecret,
			BaseContext: ctx,
			Dispatcher:  handler,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logx.Info("http server starting", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Error(err, "http server failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logx.Error(err, "http server forced to shutdown")
		}
		handler.Wait()
	}()

	if cfg.UseWebhook() {
		return runWebhook(ctx, bot, handler, cfg)
	}

	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		logx.Warn("webhook not removed", "error", err.Error())
	}
	return handler.Start(ctx)
}

// runWebhook webhook ni ro'yxatdan o'tkazib, to'xtash signalini kutish
func runWebhook(ctx context.Context, bot *tgbotapi.BotAPI, handler *telegram.BotHandler, cfg *config.Config) error {
	url := strings.TrimRight(cfg.WebhookURL, "/") + "/webhook/" + cfg.WebhookSecret
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook config: %w", err)
	}
	if _, err := bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	logx.Info("webhook registered", "base_url", cfg.WebhookURL)

	<-ctx.Done()
	handler.Wait()
	return ctx.Err()
}

// openViolationLog SQLite audit log; ochilmasa xotiradagi log bilan davom etadi
func openViolationLog(path string) (repository.ViolationRepository, func()) {
	if path == "" {
		return storage.NewMemoryViolationRepository(violationBufferSize), func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logx.Warn("violation db dir not created, using memory log", "error", err.Error())
		return storage.NewMemoryViolationRepository(violationBufferSize), func() {}
	}
	repo, err := storage.NewSQLiteViolationRepository(path)
	if err != nil {
		logx.Warn("violation db not opened, using memory log", "path", path, "error", err.Error())
		return storage.NewMemoryViolationRepository(violationBufferSize), func() {}
	}
	return repo, func() {
		if err := repo.Close(); err != nil {
			logx.Error(err, "violation db close failed")
		}
	}
}
