package tools

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version 是对外上报的服务版本。
const Version = "0.1.0"

// Server 把全部钱包工具挂到一个 stdio MCP 服务上。请求由底层协议层
// 逐条读入并同步分发，工具之间不存在并发执行。
type Server struct {
	mcp *server.MCPServer
	log *slog.Logger
}

// NewServer 注册全部工具并返回可监听的服务实例。
func NewServer(handlers *Handlers, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := server.NewMCPServer(
		"ethmcp-wallet",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	registrations := []struct {
		tool    mcp.Tool
		handler server.ToolHandlerFunc
	}{
		{toolListContacts, handlers.listContacts},
		{toolAddContact, handlers.addContact},
		{toolDeleteContact, handlers.deleteContact},
		{toolListWallets, handlers.listWallets},
		{toolGenerateWallet, handlers.generateWallet},
		{toolAddWallet, handlers.addWallet},
		{toolDeleteWallet, handlers.deleteWallet},
		{toolGetEthBalance, handlers.getEthBalance},
		{toolGetTokenBalance, handlers.getTokenBalance},
		{toolListPopularTokens, handlers.listPopularTokens},
		{toolTransferEth, handlers.transferEth},
		{toolSendToken, handlers.sendToken},
	}
	for _, reg := range registrations {
		s.AddTool(reg.tool, reg.handler)
	}

	return &Server{mcp: s, log: log}
}

// Serve 在标准输入输出上运行服务，直到 ctx 取消或输入流关闭。
// 日志必须走 stderr，stdout 被协议流独占。
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("MCP 服务启动", "name", "ethmcp-wallet", "version", Version)
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}
