package wallet

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	bip39 "github.com/tyler-smith/go-bip39"

	xerrors "EthMCP-Wallet/internal/errors"
)

// Generated 描述一次新钱包生成的结果。助记词只在这里出现一次，
// 之后仅保存在记录存储中。
type Generated struct {
	Mnemonic string
	Address  common.Address
}

// Generate 生成 24 词 BIP-39 助记词并推导对应地址。
func Generate() (Generated, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return Generated{}, xerrors.Wrap(xerrors.CodeUnknown, err, "生成熵失败")
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return Generated{}, xerrors.Wrap(xerrors.CodeUnknown, err, "生成助记词失败")
	}
	address, err := DeriveAddress(mnemonic)
	if err != nil {
		return Generated{}, err
	}
	return Generated{Mnemonic: mnemonic, Address: address}, nil
}

// ParseSecret 把助记词或十六进制私钥解析为签名私钥。两种形式都接受：
// 历史数据中存在以"助记词"名义保存的原始私钥。
func ParseSecret(secret string) (*ecdsa.PrivateKey, error) {
	trimmed := strings.Join(strings.Fields(secret), " ")
	if trimmed == "" {
		return nil, xerrors.New(xerrors.CodeInvalidKey, "密钥材料不能为空")
	}

	if bip39.IsMnemonicValid(trimmed) {
		// 推导是确定性的：同一助记词永远得到同一私钥。
		seed := bip39.NewSeed(trimmed, "")
		key, err := crypto.ToECDSA(seed[:32])
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodeInvalidKey, err, "从助记词推导私钥失败")
		}
		return key, nil
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(trimmed, "0x"))
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeInvalidKey, err, "无效的助记词或私钥")
	}
	return key, nil
}

// DeriveAddress 返回密钥材料对应的以太坊地址。
func DeriveAddress(secret string) (common.Address, error) {
	key, err := ParseSecret(secret)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}
