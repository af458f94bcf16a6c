package web3

import (
	"context"
	"math/big"
	"strings"

	gethcore "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	xerrors "EthMCP-Wallet/internal/errors"
	"EthMCP-Wallet/internal/wallet"
)

// 交易的固定 gas 上限。ETH 转账恒定 21000；ERC20 transfer 采用保守上限，
// 与原始实现保持一致，不做估算。
const (
	ethTransferGasLimit   = 21_000
	tokenTransferGasLimit = 100_000
)

// Config describes how to construct the chain gateway.
type Config struct {
	RPCURL string
}

// backend mirrors the subset of ethclient methods the gateway relies on so
// tests can substitute a fake without a running node.
type backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg gethcore.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *coretypes.Transaction) error
}

// Gateway 包装单个 RPC 端点，完成余额查询与交易广播。除连接句柄外不持有
// 任何状态；每次调用都是独立的一次网络交互，失败即终止，没有重试。
type Gateway struct {
	eth     *ethclient.Client
	backend backend
	signer  *wallet.Signer
}

// NewGateway dials the configured RPC endpoint and binds the signer to the
// endpoint's chain ID.
func NewGateway(ctx context.Context, cfg Config) (*Gateway, error) {
	rpcURL := strings.TrimSpace(cfg.RPCURL)
	if rpcURL == "" {
		return nil, xerrors.New(xerrors.CodeConfigMissing, "未配置以太坊 RPC 地址")
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeNetwork, err, "连接以太坊节点失败")
	}
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, xerrors.Wrap(xerrors.CodeNetwork, err, "获取链 ID 失败")
	}

	return &Gateway{eth: eth, backend: eth, signer: wallet.NewSigner(chainID)}, nil
}

// NewGatewayWithBackend wires an arbitrary backend, used by tests.
func NewGatewayWithBackend(b backend, chainID *big.Int) *Gateway {
	return &Gateway{backend: b, signer: wallet.NewSigner(chainID)}
}

// Close releases the RPC connection.
func (g *Gateway) Close() {
	if g.eth != nil {
		g.eth.Close()
		g.eth = nil
	}
}

// EthBalance 查询地址的 ETH 余额，以 ether 为单位渲染。
func (g *Gateway) EthBalance(ctx context.Context, address string) (string, error) {
	account, err := NormalizeAddress(address)
	if err != nil {
		return "", err
	}
	balance, err := g.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeNetwork, err, "查询余额失败")
	}
	return FormatUnits(balance, EtherDecimals), nil
}

// TokenBalance 查询地址的 ERC20 余额，按代币声明的精度渲染。
func (g *Gateway) TokenBalance(ctx context.Context, address, tokenAddress string) (string, error) {
	account, err := NormalizeAddress(address)
	if err != nil {
		return "", err
	}
	token, err := NormalizeAddress(tokenAddress)
	if err != nil {
		return "", xerrors.Newf(xerrors.CodeInvalidAddress, "无效的代币合约地址: %s", tokenAddress)
	}

	decimals, err := g.tokenDecimals(ctx, token)
	if err != nil {
		return "", err
	}

	outputs, err := g.callERC20(ctx, token, "balanceOf", account)
	if err != nil {
		return "", err
	}
	balance, ok := outputs[0].(*big.Int)
	if !ok {
		return "", xerrors.New(xerrors.CodeContractCall, "balanceOf 返回了意外的类型")
	}
	return FormatUnits(balance, decimals), nil
}

// TransferETH 从给定私钥对应的地址向目标地址转账。余额不足在广播前
// 就会被拒绝；广播成功返回交易哈希，不等待回执。
func (g *Gateway) TransferETH(ctx context.Context, fromAddress, toAddress, amount, privateKey string) (string, error) {
	from, err := NormalizeAddress(fromAddress)
	if err != nil {
		return "", err
	}
	to, err := NormalizeAddress(toAddress)
	if err != nil {
		return "", err
	}

	derived, err := wallet.DeriveAddress(privateKey)
	if err != nil {
		return "", err
	}
	if derived != from {
		return "", xerrors.New(xerrors.CodeInvalidKey, "私钥与发送地址不匹配")
	}

	value, err := ParseAmount(amount, EtherDecimals)
	if err != nil {
		return "", err
	}
	if value.Sign() == 0 {
		return "", xerrors.New(xerrors.CodeInvalidArgument, "转账金额必须大于零")
	}

	nonce, err := g.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeNetwork, err, "查询 nonce 失败")
	}
	gasPrice, err := g.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeNetwork, err, "查询 gas 价格失败")
	}
	balance, err := g.backend.BalanceAt(ctx, from, nil)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeNetwork, err, "查询余额失败")
	}

	cost := new(big.Int).Mul(gasPrice, big.NewInt(ethTransferGasLimit))
	cost.Add(cost, value)
	if balance.Cmp(cost) < 0 {
		return "", xerrors.Newf(xerrors.CodeInsufficientFunds,
			"余额不足: 需要 %s wei, 仅有 %s wei", cost.String(), balance.String())
	}

	tx := coretypes.NewTx(&coretypes.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      ethTransferGasLimit,
		GasPrice: gasPrice,
	})
	return g.signAndSend(ctx, tx, privateKey)
}

// TransferToken 执行 ERC20 transfer。金额按代币的 decimals 转换为最小单位。
func (g *Gateway) TransferToken(ctx context.Context, secret, tokenAddress, toAddress, amount string) (string, error) {
	token, err := NormalizeAddress(tokenAddress)
	if err != nil {
		return "", xerrors.Newf(xerrors.CodeInvalidAddress, "无效的代币合约地址: %s", tokenAddress)
	}
	to, err := NormalizeAddress(toAddress)
	if err != nil {
		return "", err
	}
	from, err := wallet.DeriveAddress(secret)
	if err != nil {
		return "", err
	}

	decimals, err := g.tokenDecimals(ctx, token)
	if err != nil {
		return "", err
	}
	units, err := ParseAmount(amount, decimals)
	if err != nil {
		return "", err
	}
	if units.Sign() == 0 {
		return "", xerrors.New(xerrors.CodeInvalidArgument, "转账金额必须大于零")
	}

	parsed, err := erc20ABI()
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeContractCall, err, "解析 ERC20 ABI 失败")
	}
	input, err := parsed.Pack("transfer", to, units)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeContractCall, err, "编码 transfer 调用失败")
	}

	nonce, err := g.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeNetwork, err, "查询 nonce 失败")
	}
	gasPrice, err := g.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", xerrors.Wrap(xerrors.CodeNetwork, err, "查询 gas 价格失败")
	}

	tx := coretypes.NewTx(&coretypes.LegacyTx{
		Nonce:    nonce,
		To:       &token,
		Value:    big.NewInt(0),
		Gas:      tokenTransferGasLimit,
		GasPrice: gasPrice,
		Data:     input,
	})
	return g.signAndSend(ctx, tx, secret)
}

// signAndSend 完成签名与单次广播。广播即终点：不等待回执，也不重试。
func (g *Gateway) signAndSend(ctx context.Context, tx *coretypes.Transaction, secret string) (string, error) {
	signed, err := g.signer.Sign(tx, secret)
	if err != nil {
		return "", err
	}
	if err := g.backend.SendTransaction(ctx, signed); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "insufficient funds") {
			return "", xerrors.Wrap(xerrors.CodeInsufficientFunds, err, "余额不足")
		}
		return "", xerrors.Wrap(xerrors.CodeNetwork, err, "广播交易失败")
	}
	return signed.Hash().Hex(), nil
}

// tokenDecimals 查询代币声明的精度。目标不是 ERC20 合约时返回
// CONTRACT_CALL_FAILED。
func (g *Gateway) tokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	outputs, err := g.callERC20(ctx, token, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := outputs[0].(uint8)
	if !ok {
		return 0, xerrors.New(xerrors.CodeContractCall, "decimals 返回了意外的类型")
	}
	return decimals, nil
}

// callERC20 对代币合约发起只读调用并解码返回值。
func (g *Gateway) callERC20(ctx context.Context, token common.Address, method string, args ...any) ([]any, error) {
	parsed, err := erc20ABI()
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeContractCall, err, "解析 ERC20 ABI 失败")
	}
	input, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, xerrors.Wrapf(xerrors.CodeContractCall, err, "编码 %s 调用失败", method)
	}

	output, err := g.backend.CallContract(ctx, gethcore.CallMsg{To: &token, Data: input}, nil)
	if err != nil {
		return nil, xerrors.Wrapf(xerrors.CodeContractCall, err, "调用 %s 失败", method)
	}
	if len(output) == 0 {
		return nil, xerrors.Newf(xerrors.CodeContractCall, "合约没有实现 %s, 目标可能不是 ERC20 代币", method)
	}

	outputs, err := parsed.Unpack(method, output)
	if err != nil {
		return nil, xerrors.Wrapf(xerrors.CodeContractCall, err, "解码 %s 返回值失败", method)
	}
	if len(outputs) == 0 {
		return nil, xerrors.Newf(xerrors.CodeContractCall, "%s 没有返回值", method)
	}
	return outputs, nil
}
