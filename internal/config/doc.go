// Package config 负责加载 ethmcpd 的启动配置：JSON 配置文件叠加环境变量，
// 其中链端点 ETH_RPC_URL 为必填项。
package config
