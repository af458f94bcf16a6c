package wallet

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"

	xerrors "EthMCP-Wallet/internal/errors"
)

// Signer 包装密钥材料完成交易签名。它从不记录也从不返回密钥本身。
type Signer struct {
	chainID *big.Int
}

// NewSigner 创建绑定到指定链 ID 的签名器。
func NewSigner(chainID *big.Int) *Signer {
	return &Signer{chainID: new(big.Int).Set(chainID)}
}

// ChainID 返回签名器绑定的链 ID。
func (s *Signer) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// Sign 用给定密钥材料对交易签名，返回已签名的交易。
func (s *Signer) Sign(tx *types.Transaction, secret string) (*types.Transaction, error) {
	key, err := ParseSecret(secret)
	if err != nil {
		return nil, err
	}
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), key)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeInvalidKey, err, "交易签名失败")
	}
	return signed, nil
}
