// Package wallet 是签名门面：解析助记词或私钥、确定性推导地址、
// 生成新钱包、对交易签名。密钥材料不出本包。
package wallet
