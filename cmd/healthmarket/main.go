// Command healthmarket serves the health-data marketplace API: wallet
// challenge/response authentication in front of a ledger-backed record
// registry.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vitalis-labs/healthmarket/adapters/events"
	"github.com/vitalis-labs/healthmarket/adapters/noncestore"
	"github.com/vitalis-labs/healthmarket/adapters/registry"
	"github.com/vitalis-labs/healthmarket/adapters/storage"
	"github.com/vitalis-labs/healthmarket/adapters/tokenizer"
	"github.com/vitalis-labs/healthmarket/internal/config"
	"github.com/vitalis-labs/healthmarket/ports"
	"github.com/vitalis-labs/healthmarket/service"
	transport "github.com/vitalis-labs/healthmarket/transport/http"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		nonces    ports.NonceStore
		grants    ports.GrantStore
		payloads  ports.PayloadStore
		publisher message.Publisher
	)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to parse Redis URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)

		nonces = noncestore.NewRedisStore(redisClient)
		redisStorage := storage.NewRedisStore(redisClient)
		grants, payloads = redisStorage, redisStorage

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			logger.Fatal("failed to create Redis publisher", zap.Error(err))
		}
	} else {
		logger.Warn("REDIS_URL not set, using in-process stores; challenges will not survive restarts")
		nonces = noncestore.NewMemoryStore()
		memStorage := storage.NewMemoryStore()
		grants, payloads = memStorage, memStorage
		publisher = gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	}

	var records ports.RecordRegistry
	if cfg.EthRPCURL != "" && cfg.ContractAddress != "" {
		operatorKey, err := ethcrypto.HexToECDSA(strings.TrimPrefix(cfg.OperatorKey, "0x"))
		if err != nil {
			logger.Fatal("failed to parse operator key", zap.Error(err))
		}

		dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		records, err = registry.NewEthRegistry(dialCtx, cfg.EthRPCURL, cfg.ContractAddress, operatorKey)
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to registry", zap.Error(err))
		}
		logger.Info("registry connected", zap.String("contract", cfg.ContractAddress))
	} else {
		logger.Warn("CONTRACT_ADDRESS not set, using in-memory registry")
		records = registry.NewMemoryRegistry()
	}

	authService := service.NewAuthService(nonces, tokenizer.NewJWTTokenizer(cfg.JWTSecret), cfg.SessionTTL, logger)
	recordService := service.NewRecordService(records, grants, payloads, events.NewWatermillPublisher(publisher), cfg.SealKey, logger)

	router := transport.SetupRouter(authService, recordService, logger)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
