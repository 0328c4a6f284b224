package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	tele "gopkg.in/telebot.v4"

	"github.com/kosmatov/palbot/bot"
	"github.com/kosmatov/palbot/config"
	"github.com/kosmatov/palbot/jobs"
	"github.com/kosmatov/palbot/llm"
	"github.com/kosmatov/palbot/notify"
	"github.com/kosmatov/palbot/observability"
	"github.com/kosmatov/palbot/persona"
	"github.com/kosmatov/palbot/sched"
	"github.com/kosmatov/palbot/status"
	"github.com/kosmatov/palbot/weather"
)

func init() {
	BotCMD.Flags().AddFlagSet(config.FlagSet)
}

var BotCMD = cobra.Command{
	Use:  "bot",
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		cfg, err := config.LoadAndValidate(cmd.Flags())
		if err != nil {
			slog.Error("configuration invalid", "error", err)
			return err
		}

		if cfg.Bot.Debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
			slog.Debug("configuration", "config", cfg.String())
		} else {
			slog.SetLogLoggerLevel(slog.LevelInfo)
		}

		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		otelShutdown := observability.Init(ctx, "palbot", observability.Config{
			Enable:          cfg.Observe.Enable,
			Exporter:        cfg.Observe.Exporter,
			TraceEndpoint:   cfg.Observe.TraceEndpoint,
			MetricsEndpoint: cfg.Observe.MetricsEndpoint,
			Secure:          cfg.Observe.Secure,
		})
		defer func() {
			_ = otelShutdown(context.Background())
		}()

		// transport
		b, err := tele.NewBot(tele.Settings{
			Token:  cfg.Bot.Token,
			Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		})
		if err != nil {
			slog.Error("failed to start telegram bot", "error", err)
			return err
		}

		// text generator
		ai, err := llm.New(ctx, cfg.Provider.Name, cfg.Provider.Model, cfg.Provider.ApiKey, cfg.Provider.Endpoint)
		if err != nil {
			slog.Error("failed to init provider", "provider", cfg.Provider.Name, "error", err)
			return err
		}

		wc := weather.New(cfg.Weather.Endpoint, cfg.Weather.Latitude, cfg.Weather.Longitude, cfg.Weather.CacheTTL)
		dialogs := bot.NewDialogCache(cfg.Dialog.Capacity, cfg.Dialog.TTL)
		dedup := notify.NewDeduper(notify.Options{
			Cooldown:            cfg.Dedup.Cooldown,
			HistorySize:         cfg.Dedup.History,
			SimilarityThreshold: cfg.Dedup.Threshold,
			MinSimilarityLen:    cfg.Dedup.MinLength,
		})

		// scheduled jobs
		group := tele.ChatID(cfg.Bot.GroupChat)
		send := func(text string) error {
			_, err := b.Send(group, text)
			return err
		}
		runner := jobs.NewRunner(ctx, dedup, ai, send, wc, loc, cfg.Bot.TargetName, persona.QuietWindow{
			From:  cfg.Schedule.Hourly.QuietFrom,
			Until: cfg.Schedule.Hourly.QuietUntil,
		})

		scheduler := sched.New(loc)
		registrar := notify.NewRegistrar(scheduler)
		specs, err := runner.Specs(cfg.Schedule)
		if err != nil {
			return err
		}
		// Without its timers the bot silently loses a user-visible
		// feature, so a registration failure is fatal.
		if err := registrar.Setup(specs); err != nil {
			slog.Error("job registration failed", "error", err)
			return err
		}

		bot.Handle(b, bot.NewHandler(ctx, cfg.Bot, ai, dialogs, wc))

		if cfg.Status.Address != "" {
			srv := status.New(cfg.Status.Address, scheduler, registrar)
			go func() {
				if err := srv.Start(ctx); err != nil {
					slog.Error("status server failed", "error", err)
				}
			}()
		}

		scheduler.Start()
		defer scheduler.Stop()

		srvErr := make(chan error, 1)
		go func() {
			b.Start()
			srvErr <- nil
		}()
		slog.Info("palbot started", "jobs", scheduler.Len(), "timezone", loc.String())

		select {
		case err = <-srvErr:
			return err
		case <-ctx.Done():
			stop()
		}

		b.Stop()
		return nil
	},
}
