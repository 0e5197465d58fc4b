package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lockchat/internal/config"
	"lockchat/internal/repository/user"
	redisSvc "lockchat/internal/service/redis"
	"lockchat/internal/service/server"
	"lockchat/internal/utils/log"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "lockchat-server",
		Short: "Relay for lockchat clients",
		Long: "Relays chat frames between connected clients over websockets, queues\n" +
			"frames for offline users in Redis and publishes each user's key exchange\n" +
			"parameters from MongoDB. It only ever sees public contributions and\n" +
			"ciphertext.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := log.Init(cfg.LogLevel, cfg.LogFile); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()
			return run(cmd.Context(), cfg)
		},
	}
	cfg.BindFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	mongoDBClient, err := initMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Error("connect mongo failed", zap.Error(err))
		return err
	}
	defer mongoDBClient.Disconnect(context.Background())

	db := mongoDBClient.Database(cfg.MongoDatabase)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	redis := redisSvc.NewRedis(rdb)
	defer redis.Close()
	if err := redis.Ping(ctx); err != nil {
		log.Error("connect redis failed", zap.Error(err))
		return err
	}

	userRepo := user.NewUserRepo(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Error("create user indexes failed", zap.Error(err))
		return err
	}

	c := server.NewHttpServer(cfg.ServerAddr, userRepo, redis)
	c.Run()

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	<-done

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Shutdown(shutdownCtx)
}

func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return client, client.Ping(ctx, nil)
}
