package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lockchat/internal/config"
	"lockchat/internal/service/app"
	redisSvc "lockchat/internal/service/redis"
	"lockchat/internal/utils/log"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	cfg.LogFile = "lockchat-client.log"

	cmd := &cobra.Command{
		Use:   "lockchat <username> <recipient>",
		Short: "Terminal chat encrypted with a Diffie-Hellman derived Vigenere key",
		Long: "Opens a chat with <recipient>. The first message triggers a key exchange\n" +
			"over the relay; compare the fingerprint shown on both screens to detect a\n" +
			"man in the middle. -g and -n are published on first use.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := log.Init(cfg.LogLevel, cfg.LogFile); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()
			return run(cmd.Context(), cfg, args[0], args[1])
		},
	}
	cfg.BindFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg config.Config, username, toName string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	redis := redisSvc.NewRedis(rdb)
	defer redis.Close()

	a := app.NewApp(cfg, redis)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-done
		a.Stop()
	}()

	err := a.Run(ctx, username, toName)
	a.Stop()
	if err != nil {
		log.Error("client exited", zap.Error(err))
	}
	return err
}
