// Package errors 定义统一的错误码与错误类型。调度层依赖它把任意组件的
// 失败转换为结构化的 {kind, message} 结果。
package errors
