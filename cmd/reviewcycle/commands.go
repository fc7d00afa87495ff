package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"review_cycle_service/internal/app"
	"review_cycle_service/internal/infra/config"
	idb "review_cycle_service/internal/infra/database"
	"review_cycle_service/internal/infra/logger"
	"review_cycle_service/internal/infra/scheduler"
	"review_cycle_service/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reviewcycle",
		Short:         "Review cycle lifecycle service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newSweepCmd(), newLaunchCmd())
	return root
}

// core holds the wired lifecycle components shared by every command.
type core struct {
	cfg        *config.AppConfig
	db         *sql.DB
	clock      app.Clock
	location   *time.Location
	runner     *app.BackgroundRunner
	dispatcher *app.EvaluationDispatcher
	sweeper    *app.TransitionSweeper
	cycleRepo  *idb.PostgresCycleRepository
	evalRepo   *idb.PostgresEvaluationRepository
	log        *logrus.Entry
}

func (c *core) Close() {
	c.runner.Wait()
	c.db.Close()
}

// buildCore loads configuration and wires repositories and services.
// onError receives background task failures in addition to the runner's own logging.
func buildCore(ctx context.Context, onError func(*config.AppConfig) app.ErrorHandler) (*core, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"timezone":    cfg.TimeZone,
	}).Info("Configuration loaded")

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	mainLogger.Info("Database connection established successfully.")

	if cfg.ApplySchema {
		if err := idb.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		mainLogger.Info("Database schema applied.")
	}

	cycleRepo := idb.NewPostgresCycleRepository(db, logger.Component("database"))
	rosterRepo := idb.NewPostgresRosterRepository(db)
	evalRepo := idb.NewPostgresEvaluationRepository(db)
	equalizationRepo := idb.NewPostgresEqualizationRepository(db)

	var handler app.ErrorHandler
	if onError != nil {
		handler = onError(cfg)
	}
	clock := app.NewSystemClock(loc)
	runner := app.NewBackgroundRunner(logger.Component("app"), clock, handler)
	dispatcher := app.NewEvaluationDispatcher(cycleRepo, rosterRepo, evalRepo, logger.Component("app"))
	sweeper := app.NewTransitionSweeper(cycleRepo, dispatcher, runner, equalizationRepo, clock, logger.Component("app"))

	return &core{
		cfg:        cfg,
		db:         db,
		clock:      clock,
		location:   loc,
		runner:     runner,
		dispatcher: dispatcher,
		sweeper:    sweeper,
		cycleRepo:  cycleRepo,
		evalRepo:   evalRepo,
		log:        mainLogger,
	}, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daily sweep scheduler and the admin bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var bot *telebot.Bot
			var botErr error
			c, err := buildCore(ctx, func(cfg *config.AppConfig) app.ErrorHandler {
				if cfg.TelegramToken == "" {
					return nil
				}
				bot, botErr = telebot.NewBot(telebot.Settings{
					Token:  cfg.TelegramToken,
					Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
					OnError: func(err error, tc telebot.Context) {
						entry := logger.Component("telegram").WithError(err)
						if tc != nil && tc.Sender() != nil {
							entry = entry.WithField("sender_id", tc.Sender().ID)
						}
						entry.Error("Telegram handler error")
					},
				})
				if botErr != nil {
					return nil
				}
				adapter := telegram.NewTelebotAdapter(bot, cfg.AdminTelegramID)
				return app.NewAlertingErrorHandler(adapter, logger.Component("alerts"))
			})
			if err != nil {
				return err
			}
			defer c.Close()
			if botErr != nil {
				return fmt.Errorf("could not create Telegram bot: %w", botErr)
			}

			cycleScheduler := scheduler.NewCycleScheduler(c.sweeper, logger.Component("scheduler"), c.cfg.CronSpecSweep, c.location, c.cfg.SweepTimeout)
			if err := cycleScheduler.Start(); err != nil {
				return err
			}

			if bot != nil {
				adminService := app.NewAdminService(c.cycleRepo, c.evalRepo, c.dispatcher, c.runner, c.sweeper, c.clock, c.cfg.AdminTelegramID)
				handlerLogger := logger.Component("telegram")
				telegram.RegisterBotCommands(bot, c.cfg.AdminTelegramID, handlerLogger)
				telegram.RegisterAdminHandlers(ctx, bot, adminService, c.cfg.AdminTelegramID, handlerLogger)
				go bot.Start()
				c.log.Info("Admin bot started.")
			} else {
				c.log.Info("TELEGRAM_TOKEN not set; admin bot disabled.")
			}

			c.log.Info("Application setup complete. Scheduler is running.")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			c.log.Info("Shutting down application...")
			if bot != nil {
				bot.Stop()
			}
			cycleScheduler.Stop()
			c.log.Info("Waiting for background tasks to finish...")
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one phase transition sweep and wait for the dispatches it starts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := buildCore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.SweepTimeout)
			defer cancel()
			report, err := c.sweeper.Tick(ctx)
			if err != nil {
				return err
			}
			c.runner.Wait()
			fmt.Fprintf(cmd.OutOrStdout(), "checked=%d transitioned=%d failed=%d\n", report.Checked, report.Transitioned, report.Failed)
			return nil
		},
	}
}

func newLaunchCmd() *cobra.Command {
	var leader bool
	cmd := &cobra.Command{
		Use:   "launch <cycle-id>",
		Short: "Generate a cycle's evaluations now, e.g. after a failed phase-entry dispatch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cycleID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || cycleID <= 0 {
				return fmt.Errorf("invalid cycle id %q", args[0])
			}

			c, err := buildCore(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer c.Close()

			var result *app.DispatchResult
			if leader {
				result, err = c.dispatcher.LaunchLeaderCollaborator(cmd.Context(), cycleID)
			} else {
				result, err = c.dispatcher.Launch(cmd.Context(), cycleID)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cycle=%d inserted=%d\n", result.CycleID, result.Inserted)
			return nil
		},
	}
	cmd.Flags().BoolVar(&leader, "leader", false, "generate leader-evaluates-collaborator evaluations instead")
	return cmd
}
