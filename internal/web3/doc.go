// Package web3 是链网关：包装单个 RPC 端点，提供余额查询、ERC20 调用与
// 交易广播。单位转换在提交前按代币精度完成，避免浮点精度损失。
package web3
