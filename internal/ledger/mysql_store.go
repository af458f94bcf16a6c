package ledger

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	xerrors "EthMCP-Wallet/internal/errors"
)

// mysqlDuplicateEntry 是 MySQL 唯一键冲突的错误号。
const mysqlDuplicateEntry = 1062

// MySQLStore 使用 MySQL 保存联系人与钱包记录。
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore 创建连接池并初始化数据表。
func NewMySQLStore(ctx context.Context, dsn string) (*MySQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("MySQL DSN 不能为空")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("连接 MySQL 失败: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法连接到 MySQL: %w", err)
	}

	store := &MySQLStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *MySQLStore) initSchema(ctx context.Context) error {
	const contacts = `CREATE TABLE IF NOT EXISTS contacts (
        id VARCHAR(36) PRIMARY KEY,
        name VARCHAR(255) NOT NULL UNIQUE,
        address VARCHAR(42) NOT NULL,
        created_at BIGINT NOT NULL
)`
	const wallets = `CREATE TABLE IF NOT EXISTS wallets (
        id VARCHAR(36) PRIMARY KEY,
        name VARCHAR(255) NOT NULL UNIQUE,
        secret TEXT NOT NULL,
        address VARCHAR(42) NOT NULL,
        created_at BIGINT NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, contacts); err != nil {
		return fmt.Errorf("初始化 contacts 表失败: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, wallets); err != nil {
		return fmt.Errorf("初始化 wallets 表失败: %w", err)
	}
	return nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return stdErrors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// ListContacts 实现 Store 接口。
func (s *MySQLStore) ListContacts(ctx context.Context) ([]Contact, error) {
	const query = `SELECT id, name, address, created_at FROM contacts ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询联系人失败")
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var contact Contact
		if err := rows.Scan(&contact.ID, &contact.Name, &contact.Address, &contact.CreatedAt); err != nil {
			return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "读取联系人失败")
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "读取联系人失败")
	}
	return contacts, nil
}

// AddContact 实现 Store 接口。唯一键冲突映射为 ErrDuplicateName。
func (s *MySQLStore) AddContact(ctx context.Context, contact Contact) error {
	const stmt = `INSERT INTO contacts (id, name, address, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, stmt, contact.ID, contact.Name, contact.Address, contact.CreatedAt); err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateName
		}
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "保存联系人失败")
	}
	return nil
}

// DeleteContact 实现 Store 接口。
func (s *MySQLStore) DeleteContact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "删除联系人失败")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "删除联系人失败")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWallets 实现 Store 接口，不读取 secret 列。
func (s *MySQLStore) ListWallets(ctx context.Context) ([]WalletSummary, error) {
	const query = `SELECT id, name, address, created_at FROM wallets ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询钱包失败")
	}
	defer rows.Close()

	var wallets []WalletSummary
	for rows.Next() {
		var wallet WalletSummary
		if err := rows.Scan(&wallet.ID, &wallet.Name, &wallet.Address, &wallet.CreatedAt); err != nil {
			return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "读取钱包失败")
		}
		wallets = append(wallets, wallet)
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "读取钱包失败")
	}
	return wallets, nil
}

// AddWallet 实现 Store 接口。
func (s *MySQLStore) AddWallet(ctx context.Context, wallet Wallet) error {
	const stmt = `INSERT INTO wallets (id, name, secret, address, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, stmt, wallet.ID, wallet.Name, wallet.Secret, wallet.Address, wallet.CreatedAt); err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateName
		}
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "保存钱包失败")
	}
	return nil
}

// DeleteWallet 实现 Store 接口。
func (s *MySQLStore) DeleteWallet(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wallets WHERE id = ?`, id)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "删除钱包失败")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "删除钱包失败")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetWalletByName 实现 Store 接口。
func (s *MySQLStore) GetWalletByName(ctx context.Context, name string) (*Wallet, error) {
	const query = `SELECT id, name, secret, address, created_at FROM wallets WHERE name = ?`
	var wallet Wallet
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&wallet.ID, &wallet.Name, &wallet.Secret, &wallet.Address, &wallet.CreatedAt)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询钱包失败")
	}
	return &wallet, nil
}

// Close 实现 Store 接口。
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
