package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	xerrors "EthMCP-Wallet/internal/errors"
)

// FileStore 把联系人与钱包分别保存为两个 JSON 文件。每次变更整体重写，
// 先写临时文件再原子替换，崩溃时不会留下截断的数据。
type FileStore struct {
	mu           sync.RWMutex
	contactsPath string
	walletsPath  string
	contacts     []Contact
	wallets      []Wallet
}

// NewFileStore 在 dataDir 下打开（或初始化）记录文件。
func NewFileStore(dataDir string) (*FileStore, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	s := &FileStore{
		contactsPath: filepath.Join(dataDir, "contacts.json"),
		walletsPath:  filepath.Join(dataDir, "wallets.json"),
	}
	if err := loadRecords(s.contactsPath, &s.contacts); err != nil {
		return nil, err
	}
	if err := loadRecords(s.walletsPath, &s.wallets); err != nil {
		return nil, err
	}
	return s, nil
}

func loadRecords(path string, out any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("读取记录文件失败: %w", err)
	}
	if len(content) == 0 {
		return nil
	}
	if err := json.Unmarshal(content, out); err != nil {
		return fmt.Errorf("解析记录文件 %s 失败: %w", path, err)
	}
	return nil
}

// writeAtomic 先写入同目录下的临时文件, fsync 后再 rename 覆盖。
func writeAtomic(path string, records any) error {
	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化记录失败: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".ledger-*")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("落盘失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("替换记录文件失败: %w", err)
	}
	return nil
}

// ListContacts 实现 Store 接口。
func (s *FileStore) ListContacts(_ context.Context) ([]Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contacts := make([]Contact, len(s.contacts))
	copy(contacts, s.contacts)
	sortContacts(contacts)
	return contacts, nil
}

// AddContact 实现 Store 接口。同名联系人已存在时返回 ErrDuplicateName。
func (s *FileStore) AddContact(_ context.Context, contact Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.contacts {
		if existing.Name == contact.Name {
			return ErrDuplicateName
		}
	}
	next := append(append([]Contact(nil), s.contacts...), contact)
	if err := writeAtomic(s.contactsPath, next); err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "保存联系人失败")
	}
	s.contacts = next
	return nil
}

// DeleteContact 实现 Store 接口。ID 不存在时返回 ErrNotFound。
func (s *FileStore) DeleteContact(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]Contact, 0, len(s.contacts))
	found := false
	for _, existing := range s.contacts {
		if existing.ID == id {
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		return ErrNotFound
	}
	if err := writeAtomic(s.contactsPath, next); err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "保存联系人失败")
	}
	s.contacts = next
	return nil
}

// ListWallets 实现 Store 接口，返回不含密钥的摘要。
func (s *FileStore) ListWallets(_ context.Context) ([]WalletSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]WalletSummary, 0, len(s.wallets))
	for _, wallet := range s.wallets {
		summaries = append(summaries, wallet.Summary())
	}
	sortSummaries(summaries)
	return summaries, nil
}

// AddWallet 实现 Store 接口。
func (s *FileStore) AddWallet(_ context.Context, wallet Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.wallets {
		if existing.Name == wallet.Name {
			return ErrDuplicateName
		}
	}
	next := append(append([]Wallet(nil), s.wallets...), wallet)
	if err := writeAtomic(s.walletsPath, next); err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "保存钱包失败")
	}
	s.wallets = next
	return nil
}

// DeleteWallet 实现 Store 接口。
func (s *FileStore) DeleteWallet(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]Wallet, 0, len(s.wallets))
	found := false
	for _, existing := range s.wallets {
		if existing.ID == id {
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		return ErrNotFound
	}
	if err := writeAtomic(s.walletsPath, next); err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "保存钱包失败")
	}
	s.wallets = next
	return nil
}

// GetWalletByName 实现 Store 接口。密钥随记录一并返回，调用方负责不泄露。
func (s *FileStore) GetWalletByName(_ context.Context, name string) (*Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, existing := range s.wallets {
		if existing.Name == name {
			wallet := existing
			return &wallet, nil
		}
	}
	return nil, ErrWalletNotFound
}

// Close 实现 Store 接口。文件存储没有需要释放的资源。
func (s *FileStore) Close() error {
	return nil
}
