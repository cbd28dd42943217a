package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/gateway"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/interaction"
	"github.com/fjod/go_cart/storefront/internal/logging"
	"github.com/fjod/go_cart/storefront/internal/menu"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/reconciler"
	"github.com/fjod/go_cart/storefront/internal/session"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, os.Stdout)

	appCtx, stop := context.WithCancel(context.Background())
	defer stop()

	store := session.NewStore()
	api := gateway.New(gateway.Config{
		BaseURL:          cfg.APIBaseURL,
		Timeout:          cfg.RequestTimeout,
		FailureThreshold: cfg.BreakerThreshold,
		OpenTimeout:      cfg.BreakerTimeout,
	}, store, log.WithField("component", "gateway"))

	// Redis is optional: the catalog falls through to the API when the cache errors.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	pingCtx, cancelPing := context.WithTimeout(appCtx, 2*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unavailable, menu cache disabled until it recovers")
	}
	cancelPing()

	sink := notify.NewSink()
	defer sink.Close()

	cart := reconciler.New(api, store, log.WithField("component", "reconciler"))
	cart.Attach(appCtx)
	defer cart.Close()

	authService := auth.NewService(api, store, sink, log.WithField("component", "auth"))
	if cfg.AuthToken != "" {
		bootCtx, cancelBoot := context.WithTimeout(appCtx, cfg.RequestTimeout)
		if user, err := authService.Bootstrap(bootCtx, cfg.AuthToken); err != nil {
			log.WithError(err).Warn("stored token rejected, starting anonymous")
		} else {
			log.WithField("user_id", user.ID).Info("session restored")
		}
		cancelBoot()
	}

	catalog := menu.NewCatalog(api, cache.NewRedisCache(rdb), log.WithField("component", "menu"))
	orderService := orders.NewService(api, cart, sink, log.WithField("component", "orders"))
	lines := interaction.NewCartLines(cart, sink, log.WithField("component", "cart_lines"))
	adds := interaction.NewMenuActions(cart, store, sink, log.WithField("component", "menu_actions"))

	router := h.NewRouter(h.Handlers{
		Cart:          h.NewCartHandler(cart, lines, adds, cfg.RequestTimeout),
		Menu:          h.NewMenuHandler(catalog, cfg.RequestTimeout),
		Auth:          h.NewAuthHandler(authService, store, cfg.RequestTimeout),
		Orders:        h.NewOrdersHandler(orderService, cfg.RequestTimeout),
		Notifications: h.NewNotificationsHandler(sink),
		Identity:      store,
	}, cfg.RequestTimeout, log.WithField("component", "http"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.HTTPPort, "api": cfg.APIBaseURL}).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	log.Info("server exited")
}
