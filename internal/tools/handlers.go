package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	xerrors "EthMCP-Wallet/internal/errors"
	"EthMCP-Wallet/internal/ledger"
	"EthMCP-Wallet/internal/tokens"
	"EthMCP-Wallet/internal/wallet"
	"EthMCP-Wallet/internal/web3"
)

// Gateway 是调度层看到的链网关能力。具体实现由 internal/web3 提供，
// 测试用假实现替换。
type Gateway interface {
	EthBalance(ctx context.Context, address string) (string, error)
	TokenBalance(ctx context.Context, address, tokenAddress string) (string, error)
	TransferETH(ctx context.Context, fromAddress, toAddress, amount, privateKey string) (string, error)
	TransferToken(ctx context.Context, secret, tokenAddress, toAddress, amount string) (string, error)
}

// Handlers 持有各组件并实现全部工具调用。任何组件的失败都会被兜住，
// 以 {kind, message} 负载返回，绝不向协议层抛出原始错误。
type Handlers struct {
	store    ledger.Store
	gateway  Gateway
	registry *tokens.Registry
	log      *slog.Logger
	audit    *slog.Logger
}

// NewHandlers 构造调度层。
func NewHandlers(store ledger.Store, gateway Gateway, registry *tokens.Registry, log, audit *slog.Logger) *Handlers {
	if registry == nil {
		registry = tokens.NewRegistry()
	}
	if log == nil {
		log = slog.Default()
	}
	if audit == nil {
		audit = log
	}
	return &Handlers{store: store, gateway: gateway, registry: registry, log: log, audit: audit}
}

// requireString 读取必填字符串参数。缺失或为空都是参数错误。
func requireString(req mcp.CallToolRequest, key string) (string, error) {
	value, err := req.RequireString(key)
	if err != nil {
		return "", xerrors.Newf(xerrors.CodeInvalidArgument, "缺少参数 %s", key)
	}
	if strings.TrimSpace(value) == "" {
		return "", xerrors.Newf(xerrors.CodeInvalidArgument, "参数 %s 不能为空", key)
	}
	return value, nil
}

// jsonResult 把任意结果序列化为 JSON 文本内容。
func (h *Handlers) jsonResult(v any) (*mcp.CallToolResult, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return h.errorResult(xerrors.Wrap(xerrors.CodeUnknown, err, "序列化结果失败"))
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

// errorPayload 是工具调用失败时返回给调用方的结构化负载。
type errorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// errorResult 把组件错误转换为结构化的错误结果。需要告警的错误同时
// 记录一条错误日志。
func (h *Handlers) errorResult(err error) (*mcp.CallToolResult, error) {
	payload := errorPayload{
		Kind:    string(xerrors.CodeOf(err)),
		Message: xerrors.MessageOf(err),
	}
	if xerrors.ShouldAlert(err) {
		h.log.Error("工具调用失败", "kind", payload.Kind, "severity", string(xerrors.SeverityOf(err)), "error", err)
	}
	encoded, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return mcp.NewToolResultError(payload.Kind + ": " + payload.Message), nil
	}
	return mcp.NewToolResultError(string(encoded)), nil
}

func (h *Handlers) listContacts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contacts, err := h.store.ListContacts(ctx)
	if err != nil {
		return h.errorResult(err)
	}
	if contacts == nil {
		contacts = []ledger.Contact{}
	}
	return h.jsonResult(contacts)
}

func (h *Handlers) addContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requireString(req, "name")
	if err != nil {
		return h.errorResult(err)
	}
	address, err := requireString(req, "address")
	if err != nil {
		return h.errorResult(err)
	}
	normalized, err := web3.NormalizeAddress(address)
	if err != nil {
		return h.errorResult(err)
	}

	contact := ledger.Contact{
		ID:        uuid.NewString(),
		Name:      name,
		Address:   normalized.Hex(),
		CreatedAt: time.Now().Unix(),
	}
	if err := h.store.AddContact(ctx, contact); err != nil {
		return h.errorResult(err)
	}
	h.audit.Info("contact added", "id", contact.ID, "name", contact.Name, "address", contact.Address)
	return h.jsonResult(contact)
}

func (h *Handlers) deleteContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req, "contact_id")
	if err != nil {
		return h.errorResult(err)
	}
	if err := h.store.DeleteContact(ctx, id); err != nil {
		return h.errorResult(err)
	}
	h.audit.Info("contact deleted", "id", id)
	return h.jsonResult(map[string]any{"deleted": true, "id": id})
}

func (h *Handlers) listWallets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	wallets, err := h.store.ListWallets(ctx)
	if err != nil {
		return h.errorResult(err)
	}
	if wallets == nil {
		wallets = []ledger.WalletSummary{}
	}
	return h.jsonResult(wallets)
}

func (h *Handlers) generateWallet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requireString(req, "name")
	if err != nil {
		return h.errorResult(err)
	}
	generated, err := wallet.Generate()
	if err != nil {
		return h.errorResult(err)
	}

	record := ledger.Wallet{
		ID:        uuid.NewString(),
		Name:      name,
		Secret:    generated.Mnemonic,
		Address:   generated.Address.Hex(),
		CreatedAt: time.Now().Unix(),
	}
	if err := h.store.AddWallet(ctx, record); err != nil {
		return h.errorResult(err)
	}
	h.audit.Info("wallet generated", "id", record.ID, "name", record.Name, "address", record.Address)

	// 助记词仅在这里返回一次，之后只存在于记录存储中。
	return h.jsonResult(map[string]any{
		"id":          record.ID,
		"name":        record.Name,
		"address":     record.Address,
		"seed_phrase": generated.Mnemonic,
	})
}

func (h *Handlers) addWallet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requireString(req, "name")
	if err != nil {
		return h.errorResult(err)
	}
	secret, err := requireString(req, "seed_phrase")
	if err != nil {
		return h.errorResult(err)
	}
	derived, err := wallet.DeriveAddress(secret)
	if err != nil {
		return h.errorResult(err)
	}

	record := ledger.Wallet{
		ID:        uuid.NewString(),
		Name:      name,
		Secret:    secret,
		Address:   derived.Hex(),
		CreatedAt: time.Now().Unix(),
	}
	if err := h.store.AddWallet(ctx, record); err != nil {
		return h.errorResult(err)
	}
	h.audit.Info("wallet imported", "id", record.ID, "name", record.Name, "address", record.Address)
	return h.jsonResult(record.Summary())
}

func (h *Handlers) deleteWallet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req, "wallet_id")
	if err != nil {
		return h.errorResult(err)
	}
	if err := h.store.DeleteWallet(ctx, id); err != nil {
		return h.errorResult(err)
	}
	h.audit.Info("wallet deleted", "id", id)
	return h.jsonResult(map[string]any{"deleted": true, "id": id})
}

func (h *Handlers) getEthBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := requireString(req, "address")
	if err != nil {
		return h.errorResult(err)
	}
	balance, err := h.gateway.EthBalance(ctx, address)
	if err != nil {
		return h.errorResult(err)
	}
	return h.jsonResult(map[string]any{"address": address, "balance": balance, "unit": "ether"})
}

func (h *Handlers) getTokenBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := requireString(req, "address")
	if err != nil {
		return h.errorResult(err)
	}
	tokenAddress, err := requireString(req, "token_address")
	if err != nil {
		return h.errorResult(err)
	}
	balance, err := h.gateway.TokenBalance(ctx, address, tokenAddress)
	if err != nil {
		return h.errorResult(err)
	}
	return h.jsonResult(map[string]any{
		"address":       address,
		"token_address": tokenAddress,
		"balance":       balance,
	})
}

func (h *Handlers) listPopularTokens(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.jsonResult(h.registry.List())
}

func (h *Handlers) transferEth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := requireString(req, "from_address")
	if err != nil {
		return h.errorResult(err)
	}
	to, err := requireString(req, "to_address")
	if err != nil {
		return h.errorResult(err)
	}
	amount, err := requireString(req, "amount")
	if err != nil {
		return h.errorResult(err)
	}
	privateKey, err := requireString(req, "private_key")
	if err != nil {
		return h.errorResult(err)
	}

	hash, err := h.gateway.TransferETH(ctx, from, to, amount, privateKey)
	if err != nil {
		return h.errorResult(err)
	}
	h.audit.Info("eth transferred", "from", from, "to", to, "amount", amount, "tx", hash)
	return h.jsonResult(map[string]any{"transaction_hash": hash})
}

func (h *Handlers) sendToken(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	walletName, err := requireString(req, "wallet_name")
	if err != nil {
		return h.errorResult(err)
	}
	tokenAddress, err := requireString(req, "token_address")
	if err != nil {
		return h.errorResult(err)
	}
	to, err := requireString(req, "to_address")
	if err != nil {
		return h.errorResult(err)
	}
	amount, err := requireString(req, "amount")
	if err != nil {
		return h.errorResult(err)
	}

	// 钱包名先在本地解析，未命中时不发起任何网络调用。
	record, err := h.store.GetWalletByName(ctx, walletName)
	if err != nil {
		return h.errorResult(err)
	}

	hash, err := h.gateway.TransferToken(ctx, record.Secret, tokenAddress, to, amount)
	if err != nil {
		return h.errorResult(err)
	}
	h.audit.Info("token transferred",
		"wallet", walletName, "from", record.Address, "token", tokenAddress,
		"to", to, "amount", amount, "tx", hash)
	return h.jsonResult(map[string]any{"transaction_hash": hash, "from": record.Address})
}
