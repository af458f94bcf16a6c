package web3

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	xerrors "EthMCP-Wallet/internal/errors"
)

// NormalizeAddress 校验以太坊地址并返回 EIP-55 校验和形式。
// 全小写或全大写的地址直接归一化；混合大小写的地址必须与校验和一致。
func NormalizeAddress(input string) (common.Address, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return common.Address{}, xerrors.New(xerrors.CodeInvalidAddress, "地址不能为空")
	}
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		trimmed = "0x" + trimmed
	}
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, xerrors.Newf(xerrors.CodeInvalidAddress, "无效的以太坊地址: %s", input)
	}

	address := common.HexToAddress(trimmed)
	// 校验和只覆盖地址本体，前缀 0x/0X 不参与比较。
	body := trimmed[2:]
	mixedCase := body != strings.ToLower(body) && body != strings.ToUpper(body)
	if mixedCase && body != address.Hex()[2:] {
		return common.Address{}, xerrors.Newf(xerrors.CodeInvalidAddress, "地址校验和不匹配: %s", input)
	}
	return address, nil
}
