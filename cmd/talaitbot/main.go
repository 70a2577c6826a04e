package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/talait/talaitbot"
	"github.com/talait/talaitbot/api"
	"github.com/talait/talaitbot/database"
	"github.com/talait/talaitbot/verifier"
	"golang.org/x/sync/errgroup"
)

const (
	botName         = "talait"
	shutdownTimeout = 5 * time.Second
)

var log = &logrus.Logger{
	Out:       os.Stderr,
	Formatter: new(logrus.TextFormatter),
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.InfoLevel,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Errorln(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:          botName + "bot",
		Short:        "Discord bot for talAIt coding challenges",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.Warnln("Failed to load .env:", err)
			}
			cfg, err := loadConfig(v, cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
	}
	addFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg talaitbot.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	files, err := openLogFiles(log, cfg.LogDir, cfg.LogBackups)
	if err != nil {
		return err
	}
	defer files.Close()

	if cfg.Token == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}

	db, err := database.OpenDatabase(cfg.DBPath, log)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	bot, err := talaitbot.New(cfg, log, db, newVerifier(ctx, cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize bot: %w", err)
	}
	if err := bot.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer bot.Disconnect()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.RunChallengeCloser(ctx) })
	g.Go(func() error { return bot.RunMonthlyReset(ctx) })
	g.Go(func() error { return files.rotate(ctx, time.Duration(cfg.LogRotateDays)*24*time.Hour) })
	if cfg.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewServer(db, log).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Infof("HTTP API listening on %s", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	// run until interrupted
	err = g.Wait()
	log.Infoln("Shutting down")
	return err
}

func newVerifier(ctx context.Context, cfg talaitbot.Config) verifier.Verifier {
	if cfg.GeminiAPIKey == "" {
		log.Warnln("GEMINI_API_KEY is not set, using basic verification")
		return verifier.Basic{}
	}
	g, err := verifier.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		log.Errorln("Failed to init Gemini, using basic verification:", err)
		return verifier.Basic{}
	}
	return g
}
