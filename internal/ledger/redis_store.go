package ledger

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	xerrors "EthMCP-Wallet/internal/errors"
)

// RedisStoreConfig 描述 Redis 存储驱动的连接参数。
type RedisStoreConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// redisClient 是存储层用到的 Redis 命令子集，测试用假实现替换。
type redisClient interface {
	HSetNX(ctx context.Context, key, field string, value any) *redis.BoolCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	Close() error
}

// RedisStore 把记录保存在 Redis hash 中：ID 到 JSON 记录一张表，
// 名称到 ID 的索引一张表，用索引上的 HSetNX 保证名称唯一。
type RedisStore struct {
	client redisClient
	prefix string
}

// NewRedisStore 建立连接并返回 Redis 存储实例。
func NewRedisStore(ctx context.Context, cfg RedisStoreConfig) (*RedisStore, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("Redis address 不能为空")
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "ethmcp"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) contactsKey() string     { return s.prefix + ":contacts" }
func (s *RedisStore) contactNamesKey() string { return s.prefix + ":contact_names" }
func (s *RedisStore) walletsKey() string      { return s.prefix + ":wallets" }
func (s *RedisStore) walletNamesKey() string  { return s.prefix + ":wallet_names" }

func (s *RedisStore) add(ctx context.Context, recordsKey, namesKey, id, name string, record any) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "序列化记录失败")
	}

	reserved, err := s.client.HSetNX(ctx, namesKey, name, id).Result()
	if err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "写入名称索引失败")
	}
	if !reserved {
		return ErrDuplicateName
	}
	if err := s.client.HSet(ctx, recordsKey, id, encoded).Err(); err != nil {
		// 回滚名称索引，保持全有或全无。
		s.client.HDel(ctx, namesKey, name)
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "保存记录失败")
	}
	return nil
}

func (s *RedisStore) delete(ctx context.Context, recordsKey, namesKey, id, name string) error {
	// 记录与名称索引在一个 MULTI/EXEC 中一起删除，不会留下挡住
	// 同名重建的悬空索引。
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, recordsKey, id)
		pipe.HDel(ctx, namesKey, name)
		return nil
	})
	if err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "删除记录失败")
	}
	if removed.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListContacts 实现 Store 接口。
func (s *RedisStore) ListContacts(ctx context.Context) ([]Contact, error) {
	values, err := s.client.HGetAll(ctx, s.contactsKey()).Result()
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询联系人失败")
	}
	contacts := make([]Contact, 0, len(values))
	for _, raw := range values {
		var contact Contact
		if err := json.Unmarshal([]byte(raw), &contact); err != nil {
			return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "解析联系人失败")
		}
		contacts = append(contacts, contact)
	}
	sortContacts(contacts)
	return contacts, nil
}

// AddContact 实现 Store 接口。
func (s *RedisStore) AddContact(ctx context.Context, contact Contact) error {
	return s.add(ctx, s.contactsKey(), s.contactNamesKey(), contact.ID, contact.Name, contact)
}

// DeleteContact 实现 Store 接口。
func (s *RedisStore) DeleteContact(ctx context.Context, id string) error {
	raw, err := s.client.HGet(ctx, s.contactsKey(), id).Result()
	if err != nil {
		if stdErrors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询联系人失败")
	}
	var contact Contact
	if err := json.Unmarshal([]byte(raw), &contact); err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "解析联系人失败")
	}
	return s.delete(ctx, s.contactsKey(), s.contactNamesKey(), id, contact.Name)
}

// ListWallets 实现 Store 接口，返回不含密钥的摘要。
func (s *RedisStore) ListWallets(ctx context.Context) ([]WalletSummary, error) {
	values, err := s.client.HGetAll(ctx, s.walletsKey()).Result()
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询钱包失败")
	}
	wallets := make([]WalletSummary, 0, len(values))
	for _, raw := range values {
		var wallet Wallet
		if err := json.Unmarshal([]byte(raw), &wallet); err != nil {
			return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "解析钱包失败")
		}
		wallets = append(wallets, wallet.Summary())
	}
	sortSummaries(wallets)
	return wallets, nil
}

// AddWallet 实现 Store 接口。
func (s *RedisStore) AddWallet(ctx context.Context, wallet Wallet) error {
	return s.add(ctx, s.walletsKey(), s.walletNamesKey(), wallet.ID, wallet.Name, wallet)
}

// DeleteWallet 实现 Store 接口。
func (s *RedisStore) DeleteWallet(ctx context.Context, id string) error {
	raw, err := s.client.HGet(ctx, s.walletsKey(), id).Result()
	if err != nil {
		if stdErrors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询钱包失败")
	}
	var wallet Wallet
	if err := json.Unmarshal([]byte(raw), &wallet); err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "解析钱包失败")
	}
	return s.delete(ctx, s.walletsKey(), s.walletNamesKey(), id, wallet.Name)
}

// GetWalletByName 实现 Store 接口。
func (s *RedisStore) GetWalletByName(ctx context.Context, name string) (*Wallet, error) {
	id, err := s.client.HGet(ctx, s.walletNamesKey(), name).Result()
	if err != nil {
		if stdErrors.Is(err, redis.Nil) {
			return nil, ErrWalletNotFound
		}
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询钱包索引失败")
	}
	raw, err := s.client.HGet(ctx, s.walletsKey(), id).Result()
	if err != nil {
		if stdErrors.Is(err, redis.Nil) {
			return nil, ErrWalletNotFound
		}
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询钱包失败")
	}
	var wallet Wallet
	if err := json.Unmarshal([]byte(raw), &wallet); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "解析钱包失败")
	}
	return &wallet, nil
}

// Close 实现 Store 接口。
func (s *RedisStore) Close() error {
	return s.client.Close()
}
