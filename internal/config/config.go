package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	xerrors "EthMCP-Wallet/internal/errors"
)

// EnvRPCURL 是链端点的环境变量名，优先于配置文件。缺失时启动失败。
const EnvRPCURL = "ETH_RPC_URL"

// Config 描述了 ethmcpd 在启动阶段需要加载的核心配置。
type Config struct {
	Ledger  LedgerConfig  `json:"ledger"`
	Web3    Web3Config    `json:"web3"`
	Tokens  TokensConfig  `json:"tokens"`
	Logging LoggingConfig `json:"logging"`
	Runtime RuntimeConfig `json:"runtime"`
}

// LedgerConfig 选择联系人与钱包记录的存储驱动。
type LedgerConfig struct {
	Driver string      `json:"driver"`
	DSN    string      `json:"dsn"`
	Redis  RedisConfig `json:"redis"`
}

// RedisConfig 描述 Redis 存储驱动的连接参数。
type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

// Web3Config 包含访问区块链节点所需的 RPC 地址。
type Web3Config struct {
	RPCURL string `json:"rpc_url"`
}

// TokensConfig 指向可选的代币登记文件，用于扩展内置的常用代币表。
type TokensConfig struct {
	Source string `json:"source"`
}

// LoggingConfig 控制日志输出与审计日志。
type LoggingConfig struct {
	Level  string      `json:"level"`
	Format string      `json:"format"`
	Output string      `json:"output"`
	Audit  AuditConfig `json:"audit"`
}

// AuditConfig 控制审计日志文件。
type AuditConfig struct {
	Enabled   bool   `json:"enabled"`
	Path      string `json:"path"`
	MaxSizeMB int    `json:"max_size_mb"`
}

// RuntimeConfig 用于放置运行时的通用参数。
type RuntimeConfig struct {
	DataDir string `json:"data_dir"`
}

// Load 解析指定路径的 JSON 配置文件并叠加环境变量。path 为空时仅使用
// 默认值与环境变量。
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("打开配置文件失败: %w", err)
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := json.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("解析配置失败: %w", err)
		}
		cfg.applyDefaults(filepath.Dir(path))
	} else {
		cfg.applyDefaults(".")
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Ledger.Driver == "" {
		c.Ledger.Driver = "file"
	}
	if c.Ledger.Redis.Prefix == "" {
		c.Ledger.Redis.Prefix = "ethmcp"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Runtime.DataDir == "" {
		c.Runtime.DataDir = filepath.Join(baseDir, "data")
	} else if !filepath.IsAbs(c.Runtime.DataDir) {
		c.Runtime.DataDir = filepath.Join(baseDir, c.Runtime.DataDir)
	}
	if c.Logging.Audit.Enabled && c.Logging.Audit.Path == "" {
		c.Logging.Audit.Path = filepath.Join(c.Runtime.DataDir, "audit.log")
	}
	if c.Tokens.Source != "" && !filepath.IsAbs(c.Tokens.Source) {
		c.Tokens.Source = filepath.Join(baseDir, c.Tokens.Source)
	}
}

// applyEnv 叠加环境变量。环境变量始终优先于配置文件。
func (c *Config) applyEnv() {
	if rpc := strings.TrimSpace(os.Getenv(EnvRPCURL)); rpc != "" {
		c.Web3.RPCURL = rpc
	}
}

// validate 检查启动必需的配置项。RPC 端点缺失属于致命错误。
func (c *Config) validate() error {
	if strings.TrimSpace(c.Web3.RPCURL) == "" {
		return xerrors.Newf(xerrors.CodeConfigMissing,
			"未配置以太坊 RPC 端点, 请设置 %s 或在配置文件中填写 web3.rpc_url", EnvRPCURL)
	}
	switch c.Ledger.Driver {
	case "file", "mysql", "redis":
	default:
		return xerrors.Newf(xerrors.CodeInvalidArgument, "不支持的存储驱动: %s", c.Ledger.Driver)
	}
	return nil
}
