/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alex20507/tg-card/config"
	"github.com/Alex20507/tg-card/internal/bot"
	"github.com/Alex20507/tg-card/internal/db"
	"github.com/Alex20507/tg-card/internal/dialogue"
	"github.com/Alex20507/tg-card/internal/server"
	"github.com/Alex20507/tg-card/internal/services"
	"github.com/Alex20507/tg-card/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// botCmd represents the bot command
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Starts the card-registry bot",
	Long: `Starts the card-registry bot. Usage:

	tg-card bot
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if cfg.Bot.Token == "" {
			return fmt.Errorf("BOT_TOKEN is required")
		}

		log := newLogger(cfg.LogLevel)
		ctx := cmd.Context()

		dbConn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer dbConn.Close()

		driver, _, err := db.BuildDSN(cfg.Database)
		if err != nil {
			return err
		}
		if err := db.Migrate(dbConn, driver); err != nil {
			return err
		}

		directory := services.NewDirectory(store.NewUserRepository(dbConn))
		cards := services.NewCardService(store.NewCardRepository(dbConn))
		audit := services.NewAuditLog(store.NewLogRepository(dbConn), directory)
		tracker := dialogue.NewTracker(dialogue.NewMemoryStore(), cards, audit, log)
		router := bot.NewRouter(directory, cards, audit, tracker, log)

		if cfg.Bot.AdminID != 0 {
			if err := directory.GrantAdmin(ctx, cfg.Bot.AdminID, ""); err != nil {
				return fmt.Errorf("bootstrap admin: %w", err)
			}
		}

		tg, err := bot.NewTelegram(cfg.Bot.Token, router, log)
		if err != nil {
			return fmt.Errorf("connect to telegram: %w", err)
		}

		health := server.New(cfg.ServerPort, dbConn)
		go func() {
			if err := health.Start(); err != nil {
				log.WithError(err).Warn("health server stopped")
			}
		}()
		defer health.Shutdown()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-stop
			log.Info("shutting down")
			tg.Stop()
		}()

		tg.Start()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}
