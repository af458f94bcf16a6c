// Package tokens 维护常用 ERC20 代币的静态登记表，可由 YAML 文件扩展。
package tokens
