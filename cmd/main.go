package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"market-monitor-bot/config"
	"market-monitor-bot/internal/alert"
	"market-monitor-bot/internal/commands"
	"market-monitor-bot/internal/database"
	"market-monitor-bot/internal/metrics"
	"market-monitor-bot/internal/notify"
	"market-monitor-bot/internal/price"
	"market-monitor-bot/internal/render"
	"market-monitor-bot/internal/telegram"
	"market-monitor-bot/lib/translation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func init() {
	config.InitConfig()
	setupLogging()
}

func main() {
	translation.Configure("locales", config.GetString("lang"))

	db, err := database.Open(config.GetString("db_path"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	botMetrics := metrics.NewBotMetrics(prometheus.DefaultRegisterer)
	alertMetrics := metrics.NewAlertMetrics(prometheus.DefaultRegisterer)
	botMetrics.Load(db)

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          config.GetString("telegram_bot_token"),
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: 60,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	source := newPriceSource()

	var renderer notify.Renderer
	if config.GetBool("render_images") {
		renderer = render.NewCard()
	}
	dispatcher := notify.NewDispatcher(telegram.NewTransport(bot), renderer)

	engine := alert.NewEngine(
		price.WithRetry(source, config.GetInt("price_fetch_retries")),
		alert.EngineConfig{
			Quote:        config.GetString("alert_quote_currency"),
			FetchTimeout: config.GetDuration("price_fetch_timeout"),
			Concurrency:  config.GetInt("price_fetch_concurrency"),
		},
		alertMetrics,
	)
	alerts := alert.NewService(alert.NewStore(), engine, dispatcher, config.GetDuration("alert_interval"), alertMetrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	alerts.Start(ctx)

	handler := telegram.NewHandler(alerts, commands.NewLookup(source))
	go handleUpdates(ctx, bot, handler, botMetrics, bot.GetUpdatesChannel())

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				botMetrics.Save(db)
			}
		}
	}()

	go func() {
		if err := launchMetricsAndHealthServer(config.GetInt("metrics_port")); err != nil {
			log.Fatalf("Failed to start metrics and health server: %v", err)
		}
	}()

	<-ctx.Done()
	bot.StopUpdates()
	alerts.Stop()
	botMetrics.Save(db)
	log.Info("Metrics saved, shutting down...")
}

func newPriceSource() price.Source {
	forex := price.NewAlphaVantage(config.GetString("forex_api_url"), config.GetString("alpha_vantage_api_key"))

	var crypto price.CryptoProvider
	switch strings.ToLower(config.GetString("crypto_provider")) {
	case "coinpaprika":
		crypto = price.NewCoinPaprika(config.GetString("api_pro_key"))
	default:
		crypto = price.NewCoinGecko(config.GetString("crypto_api_url"))
	}
	return price.NewClient(forex, crypto)
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting telegram bot...")
}

func handleUpdates(ctx context.Context, bot *telegram.Bot, handler *telegram.Handler, m *metrics.BotMetrics, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			log.Debug("Received non-message or non-command")
			continue
		}

		m.MessagesHandled.Inc()

		chatID := update.Message.Chat.ID
		chatName := update.Message.Chat.Title
		if chatName == "" {
			chatName = fmt.Sprintf("%s-%d", "PrivateChat", chatID)
		}

		m.SeenChannel(chatID, chatName)
		m.MessagesPerChannel.WithLabelValues(fmt.Sprintf("%d", chatID), chatName).Inc()

		// each command may block on a price lookup
		go handleCommand(ctx, bot, handler, m, update)
	}
}

func handleCommand(ctx context.Context, bot *telegram.Bot, handler *telegram.Handler, m *metrics.BotMetrics, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			log.Errorf("Recovered from panic: %v\nStack trace: %s", r, stackTrace)
		}
	}()

	err := bot.Send(telegram.Message{
		ChatID:    update.Message.Chat.ID,
		Text:      handler.HandleUpdate(ctx, update),
		MessageID: update.Message.MessageID,
	})

	if err != nil {
		log.Errorf("Failed to send message: %v", err)
	} else {
		m.CommandsProcessed.Inc()
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
