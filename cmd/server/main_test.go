package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/mo-hanxuan/crypto-converter/internal/bot"
	"github.com/mo-hanxuan/crypto-converter/internal/cache"
	"github.com/mo-hanxuan/crypto-converter/internal/config"
	"github.com/mo-hanxuan/crypto-converter/internal/job"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func stubServerDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitTracer := initTracerFunc
	origNewRedisStore := newRedisStoreFunc
	origStartPoller := startPollerFunc
	origStartBot := startBotFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			BindAddr:       ":0",
			RequestSpacing: time.Millisecond,
			CacheTTL:       time.Second,
			RequestTimeout: time.Second,
			RatePollSecs:   1,
		}
	}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newRedisStoreFunc = func(context.Context, string) (*cache.Redis, error) { return nil, nil }
	startPollerFunc = func(*job.RatePoller, context.Context) {}
	startBotFunc = func(*bot.Bot, string) {}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initTracerFunc = origInitTracer
		newRedisStoreFunc = origNewRedisStore
		startPollerFunc = origStartPoller
		startBotFunc = origStartBot
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}
