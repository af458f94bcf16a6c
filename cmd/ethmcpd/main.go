package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"EthMCP-Wallet/internal/config"
	"EthMCP-Wallet/internal/ledger"
	"EthMCP-Wallet/internal/tokens"
	"EthMCP-Wallet/internal/tools"
	"EthMCP-Wallet/internal/web3"
	"EthMCP-Wallet/pkg/logger"
)

// main 是钱包 MCP 守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("ethmcpd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("ETHMCP_CONFIG")
	if configPath == "" {
		candidate := filepath.Join("configs", "ethmcp.json")
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
		Audit: logger.AuditConfig{
			Enabled:   cfg.Logging.Audit.Enabled,
			Path:      cfg.Logging.Audit.Path,
			MaxSizeMB: cfg.Logging.Audit.MaxSizeMB,
		},
	}); err != nil {
		return err
	}
	defer logger.Sync()

	if err := os.MkdirAll(cfg.Runtime.DataDir, 0o755); err != nil {
		return err
	}

	var store ledger.Store
	switch cfg.Ledger.Driver {
	case "file", "":
		fileStore, err := ledger.NewFileStore(cfg.Runtime.DataDir)
		if err != nil {
			return err
		}
		store = fileStore
	case "mysql":
		mysqlStore, err := ledger.NewMySQLStore(ctx, cfg.Ledger.DSN)
		if err != nil {
			return err
		}
		store = mysqlStore
	case "redis":
		redisStore, err := ledger.NewRedisStore(ctx, ledger.RedisStoreConfig{
			Address:  cfg.Ledger.Redis.Address,
			Password: cfg.Ledger.Redis.Password,
			DB:       cfg.Ledger.Redis.DB,
			Prefix:   cfg.Ledger.Redis.Prefix,
		})
		if err != nil {
			return err
		}
		store = redisStore
	default:
		return fmt.Errorf("未知的存储驱动: %s", cfg.Ledger.Driver)
	}
	defer store.Close()

	gateway, err := web3.NewGateway(ctx, web3.Config{RPCURL: cfg.Web3.RPCURL})
	if err != nil {
		return err
	}
	defer gateway.Close()

	registry, err := tokens.LoadRegistry(cfg.Tokens.Source)
	if err != nil {
		return err
	}

	handlers := tools.NewHandlers(store, gateway, registry, logger.Named("tools"), logger.Audit())
	server := tools.NewServer(handlers, logger.L())

	return server.Serve(ctx)
}
