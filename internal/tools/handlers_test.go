package tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"EthMCP-Wallet/internal/ledger"
	"EthMCP-Wallet/internal/wallet"
)

// fakeGateway 记录调用次数并返回预设结果，避免任何网络交互。
type fakeGateway struct {
	calls         int
	ethBalance    func(ctx context.Context, address string) (string, error)
	tokenBalance  func(ctx context.Context, address, tokenAddress string) (string, error)
	transferETH   func(ctx context.Context, fromAddress, toAddress, amount, privateKey string) (string, error)
	transferToken func(ctx context.Context, secret, tokenAddress, toAddress, amount string) (string, error)
}

func (f *fakeGateway) EthBalance(ctx context.Context, address string) (string, error) {
	f.calls++
	return f.ethBalance(ctx, address)
}

func (f *fakeGateway) TokenBalance(ctx context.Context, address, tokenAddress string) (string, error) {
	f.calls++
	return f.tokenBalance(ctx, address, tokenAddress)
}

func (f *fakeGateway) TransferETH(ctx context.Context, fromAddress, toAddress, amount, privateKey string) (string, error) {
	f.calls++
	return f.transferETH(ctx, fromAddress, toAddress, amount, privateKey)
}

func (f *fakeGateway) TransferToken(ctx context.Context, secret, tokenAddress, toAddress, amount string) (string, error) {
	f.calls++
	return f.transferToken(ctx, secret, tokenAddress, toAddress, amount)
}

func newTestHandlers(t *testing.T, gateway *fakeGateway) *Handlers {
	t.Helper()
	store, err := ledger.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandlers(store, gateway, nil, quiet, quiet)
}

func request(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func decodeJSON(t *testing.T, res *mcp.CallToolResult, out any) {
	t.Helper()
	if err := json.Unmarshal([]byte(textOf(t, res)), out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func assertErrorKind(t *testing.T, res *mcp.CallToolResult, kind string) {
	t.Helper()
	if !res.IsError {
		t.Fatalf("expected error result, got %s", textOf(t, res))
	}
	var payload struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}
	decodeJSON(t, res, &payload)
	if payload.Kind != kind {
		t.Fatalf("kind = %s, want %s (message: %s)", payload.Kind, kind, payload.Message)
	}
	if payload.Message == "" {
		t.Fatal("error payload must carry a message")
	}
}

func TestAddContactAndList(t *testing.T) {
	ctx := context.Background()
	h := newTestHandlers(t, &fakeGateway{})

	res, err := h.addContact(ctx, request(map[string]any{
		"name":    "alice",
		"address": "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
	}))
	if err != nil {
		t.Fatalf("add contact: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error: %s", textOf(t, res))
	}

	var added ledger.Contact
	decodeJSON(t, res, &added)
	if added.ID == "" {
		t.Fatal("contact must be assigned an id")
	}
	// 地址按校验和形式保存。
	if added.Address != "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed" {
		t.Fatalf("address = %s", added.Address)
	}

	res, err = h.listContacts(ctx, request(nil))
	if err != nil {
		t.Fatalf("list contacts: %v", err)
	}
	var contacts []ledger.Contact
	decodeJSON(t, res, &contacts)
	if len(contacts) != 1 || contacts[0].Name != "alice" {
		t.Fatalf("unexpected contacts: %+v", contacts)
	}
}

func TestAddContactRejectsBadAddress(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{})
	res, err := h.addContact(context.Background(), request(map[string]any{
		"name":    "alice",
		"address": "0x123",
	}))
	if err != nil {
		t.Fatalf("add contact: %v", err)
	}
	assertErrorKind(t, res, "INVALID_ADDRESS")
}

func TestAddContactDuplicateName(t *testing.T) {
	ctx := context.Background()
	h := newTestHandlers(t, &fakeGateway{})

	args := map[string]any{"name": "alice", "address": "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}
	if _, err := h.addContact(ctx, request(args)); err != nil {
		t.Fatalf("add contact: %v", err)
	}
	res, err := h.addContact(ctx, request(args))
	if err != nil {
		t.Fatalf("add contact again: %v", err)
	}
	assertErrorKind(t, res, "DUPLICATE_NAME")
}

func TestDeleteContactUnknownID(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{})
	res, err := h.deleteContact(context.Background(), request(map[string]any{"contact_id": "missing"}))
	if err != nil {
		t.Fatalf("delete contact: %v", err)
	}
	assertErrorKind(t, res, "NOT_FOUND")
}

func TestMissingArgumentIsInvalidArgument(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{})
	res, err := h.addContact(context.Background(), request(map[string]any{"name": "alice"}))
	if err != nil {
		t.Fatalf("add contact: %v", err)
	}
	assertErrorKind(t, res, "INVALID_ARGUMENT")
}

func TestGenerateWalletReturnsSeedOnce(t *testing.T) {
	ctx := context.Background()
	h := newTestHandlers(t, &fakeGateway{})

	res, err := h.generateWallet(ctx, request(map[string]any{"name": "hot"}))
	if err != nil {
		t.Fatalf("generate wallet: %v", err)
	}
	var created struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Address    string `json:"address"`
		SeedPhrase string `json:"seed_phrase"`
	}
	decodeJSON(t, res, &created)
	if created.SeedPhrase == "" {
		t.Fatal("seed phrase must be returned on creation")
	}
	derived, err := wallet.DeriveAddress(created.SeedPhrase)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if derived.Hex() != created.Address {
		t.Fatalf("address = %s, derived %s", created.Address, derived.Hex())
	}

	// 列表接口永远不暴露密钥材料。
	listRes, err := h.listWallets(ctx, request(nil))
	if err != nil {
		t.Fatalf("list wallets: %v", err)
	}
	var listed []map[string]any
	decodeJSON(t, listRes, &listed)
	if len(listed) != 1 {
		t.Fatalf("expected one wallet, got %d", len(listed))
	}
	for _, key := range []string{"seed_phrase", "secret"} {
		if _, ok := listed[0][key]; ok {
			t.Fatalf("wallet list leaks %s", key)
		}
	}
}

func TestAddWalletDerivesAddress(t *testing.T) {
	const mnemonic = "legal winner thank year wave sausage worth useful legal winner thank yellow"
	ctx := context.Background()
	h := newTestHandlers(t, &fakeGateway{})

	res, err := h.addWallet(ctx, request(map[string]any{"name": "imported", "seed_phrase": mnemonic}))
	if err != nil {
		t.Fatalf("add wallet: %v", err)
	}
	var summary ledger.WalletSummary
	decodeJSON(t, res, &summary)

	want, err := wallet.DeriveAddress(mnemonic)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if summary.Address != want.Hex() {
		t.Fatalf("address = %s, want %s", summary.Address, want.Hex())
	}
}

func TestAddWalletRejectsBadSecret(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{})
	res, err := h.addWallet(context.Background(), request(map[string]any{
		"name":        "bad",
		"seed_phrase": "definitely not a mnemonic",
	}))
	if err != nil {
		t.Fatalf("add wallet: %v", err)
	}
	assertErrorKind(t, res, "INVALID_KEY")
}

func TestGetEthBalance(t *testing.T) {
	gw := &fakeGateway{
		ethBalance: func(_ context.Context, address string) (string, error) {
			return "1.5", nil
		},
	}
	h := newTestHandlers(t, gw)

	res, err := h.getEthBalance(context.Background(), request(map[string]any{
		"address": "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	}))
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	var payload struct {
		Balance string `json:"balance"`
		Unit    string `json:"unit"`
	}
	decodeJSON(t, res, &payload)
	if payload.Balance != "1.5" || payload.Unit != "ether" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestListPopularTokens(t *testing.T) {
	h := newTestHandlers(t, &fakeGateway{})
	res, err := h.listPopularTokens(context.Background(), request(nil))
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	var entries map[string]string
	decodeJSON(t, res, &entries)
	if len(entries) != 6 {
		t.Fatalf("expected 6 tokens, got %d", len(entries))
	}
	if entries["USDT"] != "0xdAC17F958D2ee523a2206206994597C13D831ec7" {
		t.Fatalf("USDT = %s", entries["USDT"])
	}
}

func TestTransferEthReturnsHash(t *testing.T) {
	gw := &fakeGateway{
		transferETH: func(_ context.Context, from, to, amount, key string) (string, error) {
			return "0xhash", nil
		},
	}
	h := newTestHandlers(t, gw)

	res, err := h.transferEth(context.Background(), request(map[string]any{
		"from_address": "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"to_address":   "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"amount":       "0.5",
		"private_key":  "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
	}))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	var payload struct {
		Hash string `json:"transaction_hash"`
	}
	decodeJSON(t, res, &payload)
	if payload.Hash != "0xhash" {
		t.Fatalf("hash = %s", payload.Hash)
	}
}

func TestSendTokenUnknownWalletSkipsNetwork(t *testing.T) {
	gw := &fakeGateway{}
	h := newTestHandlers(t, gw)

	res, err := h.sendToken(context.Background(), request(map[string]any{
		"wallet_name":   "missing",
		"token_address": "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		"to_address":    "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"amount":        "1",
	}))
	if err != nil {
		t.Fatalf("send token: %v", err)
	}
	assertErrorKind(t, res, "WALLET_NOT_FOUND")
	if gw.calls != 0 {
		t.Fatalf("gateway was called %d times for an unknown wallet", gw.calls)
	}
}

func TestSendTokenUsesStoredSecret(t *testing.T) {
	const mnemonic = "legal winner thank year wave sausage worth useful legal winner thank yellow"
	ctx := context.Background()

	var gotSecret string
	gw := &fakeGateway{
		transferToken: func(_ context.Context, secret, token, to, amount string) (string, error) {
			gotSecret = secret
			return "0xhash", nil
		},
	}
	h := newTestHandlers(t, gw)

	if _, err := h.addWallet(ctx, request(map[string]any{"name": "hot", "seed_phrase": mnemonic})); err != nil {
		t.Fatalf("add wallet: %v", err)
	}

	res, err := h.sendToken(ctx, request(map[string]any{
		"wallet_name":   "hot",
		"token_address": "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		"to_address":    "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"amount":        "12.5",
	}))
	if err != nil {
		t.Fatalf("send token: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error: %s", textOf(t, res))
	}
	if gotSecret != mnemonic {
		t.Fatalf("gateway received secret %q", gotSecret)
	}

	var payload struct {
		Hash string `json:"transaction_hash"`
		From string `json:"from"`
	}
	decodeJSON(t, res, &payload)
	if payload.Hash != "0xhash" {
		t.Fatalf("hash = %s", payload.Hash)
	}
	want, _ := wallet.DeriveAddress(mnemonic)
	if payload.From != want.Hex() {
		t.Fatalf("from = %s, want %s", payload.From, want.Hex())
	}
}
