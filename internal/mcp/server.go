package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/tariffwatch/internal/classify"
	"github.com/ppiankov/tariffwatch/internal/logging"
)

// Server exposes the classification workflow as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	svc       *classify.Service
	logger    *slog.Logger
}

// New creates an MCP server backed by svc.
func New(svc *classify.Service, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		svc:    svc,
		logger: logger.With(slog.String("component", "mcp")),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "tariffwatch",
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all tariffwatch tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "tariff_classify",
		Description: "Classify a product for tariff purposes. Low-confidence results open a human review ticket and are not final.",
	}, s.handleClassify)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "tariff_reviews",
		Description: "List review tickets, or show one ticket's classification report when id is set.",
	}, s.handleReviews)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "tariff_review_decide",
		Description: "Approve or reject an open review ticket. A ticket can be decided only once.",
	}, s.handleDecide)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "tariff_summary",
		Description: "Count review tickets by status and verify the audit trail hash chain.",
	}, s.handleSummary)
}
