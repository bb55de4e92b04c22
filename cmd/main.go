package main

import (
	"bytes"
	"context"
	"crypto-alert-bot/config"
	"crypto-alert-bot/internal/alert"
	"crypto-alert-bot/internal/commands"
	"crypto-alert-bot/internal/metrics"
	"crypto-alert-bot/internal/price"
	"crypto-alert-bot/internal/telegram"
	"crypto-alert-bot/lib/translation"
	"fmt"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
)

type priceSource interface {
	alert.PriceSource
	commands.Resolver
}

func init() {
	config.InitConfig()
	setupLogging()
}

func main() {
	translation.Configure(config.GetString("locales_dir"), config.GetString("lang"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := newPriceSource()
	if err != nil {
		log.Fatalf("Failed to create price source: %v", err)
	}
	log.Infof("Using price source %v", source)

	store := alert.NewStore(config.GetInt("max_alerts_per_user"))
	handler := commands.NewHandler(store, source, source, config.GetDuration("price_lookup_timeout"))

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          config.GetString("telegram_bot_token"),
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: 60,
		RequestTimeout: config.GetDuration("notify_timeout"),
	}, handler)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	checker := alert.NewChecker(store, source, bot, alert.CheckerConfig{
		Interval:      config.GetDuration("alert_check_interval"),
		FirstDelay:    config.GetDuration("alert_first_delay"),
		LookupTimeout: config.GetDuration("price_lookup_timeout"),
		NotifyTimeout: config.GetDuration("notify_timeout"),
	})
	checker.Start(ctx)

	updates, err := bot.GetUpdatesChannel()
	if err != nil {
		log.Fatalf("Failed to get updates channel: %v", err)
	}

	go handleUpdates(ctx, bot, updates)

	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
		log.Println("Shutting down...")
		os.Exit(0)
	}()

	if err := launchMetricsAndHealthServer(config.GetInt("metrics_port")); err != nil {
		log.Fatalf("Failed to start metrics and health server: %v", err)
	}
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting telegram bot...")
}

func newPriceSource() (priceSource, error) {
	timeout := config.GetDuration("price_lookup_timeout")

	switch strings.ToLower(config.GetString("price_source")) {
	case "coinpaprika":
		return price.NewCoinpaprikaSource(config.GetString("api_pro_key"), timeout), nil
	case "coingecko":
		return price.NewCoingeckoSource(config.GetString("coingecko_url"), timeout), nil
	default:
		return nil, fmt.Errorf("unknown price source %q", config.GetString("price_source"))
	}
}

func handleUpdates(ctx context.Context, bot *telegram.Bot, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil {
			log.Debug("Received non-message or non-command")
			continue
		}

		if !update.Message.IsCommand() {
			continue
		}

		chatID := update.Message.Chat.ID
		chatName := update.Message.Chat.Title
		if chatName == "" {
			chatName = fmt.Sprintf("%s-%d", "PrivateChat", chatID)
		}

		metrics.Bot.TrackMessage(chatID, chatName)

		handleCommand(ctx, bot, update)
	}
}

func handleCommand(ctx context.Context, bot *telegram.Bot, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			log.Errorf("Recovered from panic: %v\nStack trace: %s", r, stackTrace)
		}
	}()

	err := bot.SendMessage(telegram.Message{
		ChatID:    update.Message.Chat.ID,
		Text:      bot.HandleUpdate(ctx, update),
		MessageID: update.Message.MessageID,
	})

	if err != nil {
		log.Errorf("Failed to send message: %v", err)
	} else {
		metrics.Bot.CommandsProcessed.Inc()
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func launchMetricsAndHealthServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", healthCheckHandler)

	log.Infof("Launching metrics and health endpoint on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), http.DefaultServeMux)
}
