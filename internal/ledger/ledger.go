package ledger

import (
	"context"
	"sort"

	xerrors "EthMCP-Wallet/internal/errors"
)

// Contact 表示一条联系人记录。地址在进入存储前已经完成校验和归一化，
// 存储层只负责保存。
type Contact struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	CreatedAt int64  `json:"created_at"`
}

// Wallet 表示一条钱包记录。Secret 为助记词或私钥原文，仅在签名时读取，
// 任何列表接口都不会返回它。
type Wallet struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Secret    string `json:"secret"`
	Address   string `json:"address"`
	CreatedAt int64  `json:"created_at"`
}

// WalletSummary 是对外暴露的钱包视图，不含密钥材料。
type WalletSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	CreatedAt int64  `json:"created_at"`
}

// Summary 返回去除密钥后的钱包视图。
func (w Wallet) Summary() WalletSummary {
	return WalletSummary{
		ID:        w.ID,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
	}
}

var (
	// ErrDuplicateName 表示同名记录已经存在。
	ErrDuplicateName = xerrors.New(xerrors.CodeDuplicateName, "name already exists")
	// ErrNotFound 表示指定 ID 的记录不存在。
	ErrNotFound = xerrors.New(xerrors.CodeNotFound, "record not found")
	// ErrWalletNotFound 表示指定名称的钱包不存在。
	ErrWalletNotFound = xerrors.New(xerrors.CodeWalletNotFound, "wallet not found")
)

// Store 抽象联系人与钱包记录的持久化接口。所有操作都是整条记录的
// 同步读写，不存在部分更新。
type Store interface {
	ListContacts(ctx context.Context) ([]Contact, error)
	AddContact(ctx context.Context, contact Contact) error
	DeleteContact(ctx context.Context, id string) error

	ListWallets(ctx context.Context) ([]WalletSummary, error)
	AddWallet(ctx context.Context, wallet Wallet) error
	DeleteWallet(ctx context.Context, id string) error
	GetWalletByName(ctx context.Context, name string) (*Wallet, error)

	Close() error
}

// 列表输出统一按名称排序，与原始存储无关。
func sortContacts(contacts []Contact) {
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].Name < contacts[j].Name })
}

func sortSummaries(wallets []WalletSummary) {
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].Name < wallets[j].Name })
}
