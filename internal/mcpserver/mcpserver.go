// Package mcpserver exposes the task analytics pipeline as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tasknexus/tasknexus/internal/cache"
	"github.com/tasknexus/tasknexus/pkg/config"
)

// Server wraps the MCP server and registers all tasknexus tools.
type Server struct {
	server *mcp.Server
	config *config.Config
	cache  *cache.Cache
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the configuration used by every tool call.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

// WithCache shares a normalized-task cache across tool calls.
func WithCache(c *cache.Cache) Option {
	return func(s *Server) {
		s.cache = c
	}
}

// NewServer creates a new MCP server with all tools and prompts registered.
func NewServer(version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "tasknexus",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.DefaultConfig()
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_tasks",
		Description: describeAnalyzeTasks(),
	}, s.handleAnalyzeTasks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "normalize_tasks",
		Description: describeNormalizeTasks(),
	}, s.handleNormalizeTasks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "category_heatmap",
		Description: describeCategoryHeatmap(),
	}, s.handleCategoryHeatmap)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "task_trends",
		Description: describeTaskTrends(),
	}, s.handleTaskTrends)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "workload_summary",
		Description: describeWorkloadSummary(),
	}, s.handleWorkloadSummary)
}
