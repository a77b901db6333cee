package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "time/tzdata"

	"calendar-assistant/config"
	tgDelivery "calendar-assistant/internal/event/delivery/telegram"
	"calendar-assistant/internal/event/oracle"
	"calendar-assistant/internal/event/usecase"
	"calendar-assistant/internal/httpserver"
	"calendar-assistant/internal/middleware"
	"calendar-assistant/internal/preferences"
	"calendar-assistant/internal/storage/sqlite"
	"calendar-assistant/pkg/gcalendar"
	"calendar-assistant/pkg/gemini"
	"calendar-assistant/pkg/log"
	"calendar-assistant/pkg/telegram"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Calendar Assistant...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	// 3. Storage
	store, err := sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		logger.Fatalf(ctx, "Failed to open storage: %v", err)
	}
	defer store.Close()
	logger.Infof(ctx, "Storage ready at %s", store.Path())

	// 4. Assistant components
	var telegramHandler tgDelivery.Handler

	if cfg.Telegram.BotToken != "" && cfg.Gemini.APIKey != "" {
		// Telegram Bot client
		telegramBot := telegram.NewBot(cfg.Telegram.BotToken)

		// Gemini LLM client
		geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)

		// Google Calendar client
		calendarClient, calErr := gcalendar.NewClientFromCredentialsFile(ctx, cfg.GoogleCalendar.CredentialsPath, cfg.GoogleCalendar.CalendarID)
		if calErr != nil {
			logger.Fatalf(ctx, "Google Calendar not available: %v", calErr)
		}
		logger.Info(ctx, "Google Calendar initialized")

		// Preferences with timezone fallback
		prefs, prefErr := preferences.NewService(logger, store.Preferences(), cfg.Assistant.DefaultTimezone)
		if prefErr != nil {
			logger.Fatalf(ctx, "Failed to initialize preferences: %v", prefErr)
		}

		// Event UseCase
		eventOracle := oracle.New(logger, geminiClient)
		eventUC := usecase.New(logger, eventOracle, calendarClient, store.PendingActions(), prefs)

		// Telegram delivery handler
		telegramHandler = tgDelivery.New(logger, eventUC, prefs, telegramBot)

		// Register webhook: auto-detect ngrok or fall back to manual config
		webhookURL := cfg.Telegram.WebhookURL
		if webhookURL == "" {
			ngrokURL, ngrokErr := detectNgrokURL(ctx, "http://ngrok:4040")
			if ngrokErr != nil {
				logger.Warnf(ctx, "Could not detect ngrok URL: %v", ngrokErr)
			} else {
				webhookURL = ngrokURL + "/webhook/telegram"
				logger.Infof(ctx, "Auto-detected ngrok URL: %s", webhookURL)
			}
		}
		if webhookURL != "" {
			if whErr := telegramBot.SetWebhook(webhookURL, cfg.Telegram.WebhookSecret); whErr != nil {
				logger.Warnf(ctx, "Failed to set Telegram webhook: %v", whErr)
			} else {
				logger.Infof(ctx, "Telegram webhook registered at %s", webhookURL)
			}
		}
	} else {
		logger.Warn(ctx, "Assistant disabled: TELEGRAM_BOT_TOKEN or GEMINI_API_KEY is missing")
	}

	// 5. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:          logger,
		Port:            cfg.HTTPServer.Port,
		Mode:            cfg.HTTPServer.Mode,
		Environment:     cfg.Environment.Name,
		Middleware:      middleware.New(logger, cfg.Telegram.WebhookSecret),
		TelegramHandler: telegramHandler,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 6. Run
	if err := httpServer.Run(); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
