// Package ledger 持久化联系人与钱包记录。它只做整条记录的增删查，
// 地址与密钥的校验发生在调度层，存储驱动之间可以通过配置切换。
package ledger
