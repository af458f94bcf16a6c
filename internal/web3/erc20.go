package web3

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// erc20ABIJSON 是本网关用到的最小 ERC20 接口: balanceOf / decimals / transfer。
const erc20ABIJSON = `[
  {
    "constant": true,
    "inputs": [{"name": "_owner", "type": "address"}],
    "name": "balanceOf",
    "outputs": [{"name": "balance", "type": "uint256"}],
    "type": "function"
  },
  {
    "constant": true,
    "inputs": [],
    "name": "decimals",
    "outputs": [{"name": "", "type": "uint8"}],
    "type": "function"
  },
  {
    "constant": false,
    "inputs": [
      {"name": "_to", "type": "address"},
      {"name": "_value", "type": "uint256"}
    ],
    "name": "transfer",
    "outputs": [{"name": "", "type": "bool"}],
    "type": "function"
  }
]`

var (
	erc20Once sync.Once
	erc20     abi.ABI
	erc20Err  error
)

// erc20ABI 延迟解析并缓存 ERC20 ABI。
func erc20ABI() (abi.ABI, error) {
	erc20Once.Do(func() {
		erc20, erc20Err = abi.JSON(strings.NewReader(erc20ABIJSON))
	})
	return erc20, erc20Err
}
