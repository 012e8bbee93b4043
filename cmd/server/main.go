package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mo-hanxuan/crypto-converter/internal/bot"
	"github.com/mo-hanxuan/crypto-converter/internal/cache"
	"github.com/mo-hanxuan/crypto-converter/internal/config"
	"github.com/mo-hanxuan/crypto-converter/internal/handler"
	"github.com/mo-hanxuan/crypto-converter/internal/httpx"
	"github.com/mo-hanxuan/crypto-converter/internal/job"
	"github.com/mo-hanxuan/crypto-converter/internal/provider"
	"github.com/mo-hanxuan/crypto-converter/internal/service"
	"github.com/mo-hanxuan/crypto-converter/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initTracerFunc         = tracing.InitTracer
	newRedisStoreFunc      = cache.NewRedis
	startPollerFunc        = func(p *job.RatePoller, ctx context.Context) { go p.Start(ctx) }
	startBotFunc           = func(b *bot.Bot, token string) { b.Start(token) }
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Crypto Converter API
// @version         1.0
// @description     Fiat and crypto currency conversion with provider fallback.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		logrus.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			logrus.Warnf("error shutting down tracer provider: %v", err)
		}
	}()

	var store cache.Store = cache.NewMemory()
	if cfg.RedisURL != "" {
		redisStore, err := newRedisStoreFunc(ctx, cfg.RedisURL)
		if err != nil {
			logrus.Warnf("redis unavailable, using in-process cache: %v", err)
		} else {
			store = redisStore
		}
	}

	client := httpx.NewClient(httpx.Options{
		Store:   store,
		TTL:     cfg.CacheTTL,
		Spacing: cfg.RequestSpacing,
		Timeout: cfg.RequestTimeout,
		Tracer:  tracer,
	})

	gecko := provider.NewCoinGecko(client, cfg.CoinGeckoBaseURL)
	paprika := provider.NewCoinPaprika(client, cfg.CoinPaprikaBaseURL)
	lore := provider.NewCoinLore(client, cfg.CoinLoreBaseURL)
	binance := provider.NewBinance(client, cfg.BinanceBaseURL)
	fiat := provider.NewExchangeRate(client, cfg.ExchangeRateBaseURL, cfg.ExchangeRateAPIKey)

	resolver := provider.NewResolver(tracer,
		[]provider.Adapter{gecko, paprika, lore, binance},
		[]provider.Adapter{gecko, paprika, binance},
	)

	convertService := service.NewConvertService(tracer, resolver, fiat)

	if cfg.RatePollSecs > 0 {
		poller := job.NewRatePoller(tracer, resolver, cfg.RatePollSecs)
		startPollerFunc(poller, ctx)
	}

	startBotFunc(bot.New(convertService), cfg.TelegramBotToken)

	h := handler.New(tracer, convertService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("crypto-converter"))

	h.RegisterRoutes(r, cfg.APIKey)

	srv := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logrus.Info("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exiting")
}
