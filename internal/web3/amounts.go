package web3

import (
	"math/big"
	"strings"

	xerrors "EthMCP-Wallet/internal/errors"
)

// EtherDecimals 是 ETH 的精度（wei 为最小单位）。
const EtherDecimals uint8 = 18

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// isDecimalString 只接受数字与至多一个小数点。big.Rat 额外支持的
// 分数和指数写法不算合法金额。
func isDecimalString(s string) bool {
	if s == "" || s == "." {
		return false
	}
	seenDot := false
	for _, r := range s {
		if r == '.' {
			if seenDot {
				return false
			}
			seenDot = true
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseAmount 把十进制金额字符串转换为代币最小单位。超出精度的小数位
// 视为参数错误而不是静默截断。
func ParseAmount(text string, decimals uint8) (*big.Int, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "金额不能为空")
	}
	if !isDecimalString(trimmed) {
		return nil, xerrors.Newf(xerrors.CodeInvalidArgument, "无法解析金额: %s", text)
	}
	amount, ok := new(big.Rat).SetString(trimmed)
	if !ok {
		return nil, xerrors.Newf(xerrors.CodeInvalidArgument, "无法解析金额: %s", text)
	}
	scaled := new(big.Rat).Mul(amount, new(big.Rat).SetInt(pow10(decimals)))
	if !scaled.IsInt() {
		return nil, xerrors.Newf(xerrors.CodeInvalidArgument, "金额超出代币精度 (%d 位小数): %s", decimals, text)
	}
	return new(big.Int).Set(scaled.Num()), nil
}

// FormatUnits 把最小单位的整数余额渲染为十进制字符串，去掉多余的零。
// 零余额渲染为 "0"。
func FormatUnits(value *big.Int, decimals uint8) string {
	if value == nil || value.Sign() == 0 {
		return "0"
	}

	quo, rem := new(big.Int).QuoRem(value, pow10(decimals), new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}

	frac := rem.String()
	for len(frac) < int(decimals) {
		frac = "0" + frac
	}
	frac = strings.TrimRight(frac, "0")
	return quo.String() + "." + frac
}
