package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tb-treatment-plans/internal/adapters/reminders/gcalendar"
	"tb-treatment-plans/internal/adapters/reminders/logonly"
	"tb-treatment-plans/internal/adapters/reminders/semaphore"
	pg "tb-treatment-plans/internal/adapters/storage/postgres"
	"tb-treatment-plans/internal/config"
	"tb-treatment-plans/internal/platform/logger"
	ports "tb-treatment-plans/internal/ports/reminders"
	"tb-treatment-plans/internal/reminders"
	"tb-treatment-plans/internal/router"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the daily reminder sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), v)
		},
	}
}

func runServe(parent context.Context, v *viper.Viper) error {
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.UsePostgres() {
		db, err = pg.Open(ctx, cfg.DBDSN, pg.PoolConfig{
			MaxOpenConns: cfg.DBMaxOpenConns,
			PingTimeout:  cfg.DBPingTimeout,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		if err := pg.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("using postgres storage", nil)
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	builder, err := reminders.NewBuilder(reminders.BuilderConfig{
		TimeZone:         cfg.ReminderTimeZone,
		Mode:             reminders.MessageMode(cfg.ReminderMessageMode),
		DefaultRecipient: cfg.ReminderSMSRecipient,
	})
	if err != nil {
		return err
	}
	calendar, sms, err := newReminderAdapters(cfg, log)
	if err != nil {
		return err
	}

	dispatcher := reminders.NewDispatcher(builder, calendar, sms, log, reminders.DispatcherConfig{
		Concurrency:      cfg.ReminderConcurrency,
		Timeout:          cfg.ReminderTimeout,
		SMSRatePerSecond: cfg.SMSRatePerSecond,
		SMSBurst:         cfg.SMSBurst,
	})
	svc := router.NewService(db, nil, dispatcher)

	sweeper := reminders.NewSweeper(svc, sms, builder, log, cfg.ReminderSweepAt)
	if err := sweeper.Start(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.NewRouter(router.Options{Logger: log, Service: svc}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		sweeper.Stop()
		dispatcher.Close()
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	sweeper.Stop()
	dispatcher.Close()
	log.Info("server stopped", nil)
	return err
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
}

// newReminderAdapters usa los gateways reales si están configurados; si no, logonly.
func newReminderAdapters(cfg *config.Config, log logger.Logger) (ports.CalendarPublisher, ports.SMSSender, error) {
	fallback := logonly.New(log)

	var calendar ports.CalendarPublisher = fallback
	if cfg.CalendarConfigured() {
		c, err := gcalendar.NewClient(gcalendar.Config{
			BaseURL:    cfg.CalendarBaseURL,
			CalendarID: cfg.CalendarID,
			Token:      cfg.CalendarToken,
		})
		if err != nil {
			return nil, nil, err
		}
		calendar = c
	} else {
		log.Warn("calendar not configured, events will only be logged", nil)
	}

	var sms ports.SMSSender = fallback
	if cfg.SMSConfigured() {
		c, err := semaphore.NewClient(semaphore.Config{
			BaseURL:    cfg.SemaphoreBaseURL,
			APIKey:     cfg.SemaphoreAPIKey,
			SenderName: cfg.SemaphoreSenderName,
		})
		if err != nil {
			return nil, nil, err
		}
		sms = c
	} else {
		log.Warn("sms gateway not configured, messages will only be logged", nil)
	}

	return calendar, sms, nil
}
