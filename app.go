package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"WooWithTypesense/internal/collections"
	"WooWithTypesense/internal/config"
	"WooWithTypesense/internal/database"
	"WooWithTypesense/internal/extensions/bundle"
	httphandler "WooWithTypesense/internal/handlers/http"
	"WooWithTypesense/internal/revalidate"
	"WooWithTypesense/internal/session"
	"WooWithTypesense/internal/settings"
	wsync "WooWithTypesense/internal/sync"
	"WooWithTypesense/internal/telegram"
	"WooWithTypesense/internal/typesense"
	"WooWithTypesense/internal/version"
	"WooWithTypesense/internal/wooapi"
	wp_api "WooWithTypesense/internal/wp-api"
	"WooWithTypesense/pkg/logging"
)

type app struct {
	cfg        *config.Config
	db         *sqlx.DB
	woo        wooapi.WOOAPI
	settings   *settings.Settings
	revalidate *revalidate.Revalidator
	sessions   *session.Store
	sync       *wsync.Service
}

func newApp(cfg *config.Config) (*app, error) {
	logger := logging.GetLogger()
	logger.Info("Start newApp")
	defer logger.Info("End newApp")
	logger.Infof("Version %s", version.GetVersion().String())

	logging.SetDebug(cfg.LOG.Debug == 1)

	notifier, err := telegram.NewBot(cfg.TELEGRAM.BotToken, cfg.TELEGRAM.ChatID, cfg.TELEGRAM.Debug == 1)
	if err != nil {
		logger.Errorf("telegram disabled: %v", err)
	}
	telegram.SetNotifier(notifier)

	db, err := database.Connect(cfg.DBSQLITE.DB)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, db: db}
	a.woo = wooapi.NewAPI(cfg.WOOCOMMERCE.URL, cfg.WOOCOMMERCE.Key, cfg.WOOCOMMERCE.Secret,
		cfg.WOOCOMMERCE.RPS, cfg.WOOCOMMERCE.QueryStringAuth == 1)
	wp := wp_api.NewAPI(cfg.WORDPRESS.URL, cfg.WORDPRESS.User, cfg.WORDPRESS.Password)

	a.settings = settings.New(db, connector(cfg), cfg.WORDPRESS.URL, cfg.WORDPRESS.HomeURL)
	a.revalidate = revalidate.New(db, func() string {
		secret, err := a.settings.Option(settings.TypesenseAPIKey)
		if err != nil {
			logger.Errorf("failed to read %s: %v", settings.TypesenseAPIKey, err)
		}
		return secret
	}, revalidate.Options{
		FrontendURL: cfg.REVALIDATE.FrontendURL,
		SiteURL:     cfg.WORDPRESS.URL,
		Delay:       time.Duration(cfg.REVALIDATE.DelaySeconds) * time.Second,
		Poll:        time.Duration(cfg.REVALIDATE.PollSeconds) * time.Second,
	})
	a.sessions = session.NewStore(db, time.Duration(cfg.SESSION.ExpiryHours)*time.Hour, cfg.SESSION.CookieDomain)

	a.sync = wsync.NewService(a.woo, wp, a.settings, a.revalidate, wsync.Options{
		Product: collections.ProductOptionsFromConfig(cfg),
		MyAccount: collections.MyAccountMenu{
			PageURL:   strings.TrimRight(cfg.WORDPRESS.URL, "/") + cfg.WOOCOMMERCE.MyAccountPath,
			Endpoints: cfg.WOOCOMMERCE.AccountEndpoint,
		},
		ProductBundles: cfg.SYNC.ProductBundles == 1,
		StoreFrontURL:  a.revalidate.FrontendURL(),
	})
	return a, nil
}

// connector opens Typesense clients against the configured clusters.
func connector(cfg *config.Config) settings.ConnectFunc {
	return func(c settings.Credentials) (typesense.Client, error) {
		return typesense.NewClient(typesense.Connection{
			APIKey:      c.APIKey,
			StoreID:     c.StoreID,
			Environment: c.Environment,
			HostLive:    cfg.TYPESENSE.HostLive,
			HostTest:    cfg.TYPESENSE.HostTest,
			Protocol:    cfg.TYPESENSE.Protocol,
			Port:        cfg.TYPESENSE.Port,
			Timeout:     time.Duration(cfg.TYPESENSE.Timeout) * time.Second,
		})
	}
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		logging.GetLogger().Error(err)
	}
}

func (a *app) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		if _, err := a.sessions.Cleanup(); err != nil {
			logging.GetLogger().Errorf("failed session cleanup: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Serve runs the HTTP server and the background workers until ctx ends.
func (a *app) Serve(ctx context.Context) error {
	logger := logging.GetLogger()
	logger.Info("Start Serve")
	defer logger.Info("End Serve")

	go a.revalidate.Run(ctx)
	go a.cleanupSessions(ctx)
	if a.cfg.SYNC.IntervalMinutes > 0 {
		go a.sync.RunWithRecovered(ctx, time.Duration(a.cfg.SYNC.IntervalMinutes)*time.Minute)
	}

	h := &httphandler.Handler{
		Sync:          a.sync,
		Settings:      a.settings,
		Sessions:      a.sessions,
		AdminToken:    a.cfg.SERVICE.AdminToken,
		WebhookSecret: a.cfg.WOOCOMMERCE.WebhookSecret,
	}
	if a.cfg.SYNC.ProductBundles == 1 {
		h.Bundle = bundle.New(a.woo)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.SERVICE.PORT),
		Handler: h.Routes(a.cfg.SERVICE.AllowedOrigins),
	}
	errs := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", srv.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}
