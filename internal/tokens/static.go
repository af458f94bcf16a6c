package tokens

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"EthMCP-Wallet/internal/web3"
)

// builtin 是内置的主网常用代币表。list_popular_tokens 直接返回该映射，
// 不发起任何网络调用。
var builtin = map[string]string{
	"USDT":  "0xdAC17F958D2ee523a2206206994597C13D831ec7",
	"USDC":  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	"DAI":   "0x6B175474E89094C44Da98b954EedeAC495271d0F",
	"XRT":   "0x7dE91B204C1C737bcEe6F000AAA6569Cf7061cb7",
	"wETH":  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
	"stETH": "0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84",
}

// Registry 提供代币符号到合约地址的静态映射。
type Registry struct {
	entries map[string]string
}

// registryFile models the structure of the optional tokens YAML file.
type registryFile struct {
	Tokens map[string]string `yaml:"tokens"`
}

// NewRegistry 返回只含内置代币的登记表。
func NewRegistry() *Registry {
	entries := make(map[string]string, len(builtin))
	for symbol, address := range builtin {
		entries[symbol] = address
	}
	return &Registry{entries: entries}
}

// LoadRegistry 在内置代币之上合并 YAML 文件中的补充条目。path 为空时
// 等价于 NewRegistry。文件中的非法地址在加载阶段即拒绝。
func LoadRegistry(path string) (*Registry, error) {
	registry := NewRegistry()
	if strings.TrimSpace(path) == "" {
		return registry, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取代币登记文件失败: %w", err)
	}
	var file registryFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("解析代币登记文件失败: %w", err)
	}

	for symbol, address := range file.Tokens {
		normalized, err := web3.NormalizeAddress(address)
		if err != nil {
			return nil, fmt.Errorf("代币 %s 的地址非法: %w", symbol, err)
		}
		registry.entries[symbol] = normalized.Hex()
	}
	return registry, nil
}

// List 返回符号到地址的映射副本。
func (r *Registry) List() map[string]string {
	entries := make(map[string]string, len(r.entries))
	for symbol, address := range r.entries {
		entries[symbol] = address
	}
	return entries
}

// Lookup 按符号查找代币地址。
func (r *Registry) Lookup(symbol string) (string, bool) {
	address, ok := r.entries[symbol]
	return address, ok
}
