// Package tools 定义全部 MCP 工具及其调度逻辑。工具结果一律是 JSON 文本：
// 成功时是业务数据，失败时是 {kind, message} 结构化错误。
package tools
