package mcpserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tasknexus/tasknexus/internal/output"
	"github.com/tasknexus/tasknexus/internal/service/analysis"
	"github.com/tasknexus/tasknexus/pkg/analyzer/category"
	"github.com/tasknexus/tasknexus/pkg/analyzer/trend"
	"github.com/tasknexus/tasknexus/pkg/analyzer/workload"
	"github.com/tasknexus/tasknexus/pkg/models"
)

// TaskInput is the base input for tools reading a task export.
type TaskInput struct {
	Path   string `json:"path" jsonschema:"Path to a task export (.json, .jsonl, .yaml or .yml)."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// NormalizeInput adds normalization options.
type NormalizeInput struct {
	TaskInput
	Limit int `json:"limit,omitempty" jsonschema:"Return at most this many tasks. Default all."`
}

// HeatmapInput adds heatmap options.
type HeatmapInput struct {
	TaskInput
	Mode string `json:"mode,omitempty" jsonschema:"Cell aggregation: average or most_common. Defaults to the configured mode."`
}

// TrendInput adds trend pagination options.
type TrendInput struct {
	TaskInput
	Page    int `json:"page,omitempty" jsonschema:"1-based page of groups. Default 1."`
	PerPage int `json:"per_page,omitempty" jsonschema:"Groups per page. Default 4."`
	MinSize int `json:"min_size,omitempty" jsonschema:"Minimum tasks in a group for a trend fit, at least 3. Default 3."`
}

// WorkloadInput reads a captured distribution response.
type WorkloadInput struct {
	Path      string   `json:"path" jsonschema:"Path to a JSON object mapping assignee ids to their assigned tasks."`
	Assignees []string `json:"assignees,omitempty" jsonschema:"Only summarize these assignees. Default all."`
	Format    string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// Helper functions

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := output.Marshal(format, data)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

var errNoPath = errors.New("path is required")

func (s *Server) service(opts ...analysis.Option) *analysis.Service {
	base := []analysis.Option{analysis.WithConfig(s.config)}
	if s.cache != nil {
		base = append(base, analysis.WithCache(s.cache))
	}
	return analysis.New(append(base, opts...)...)
}

// Tool handlers

func (s *Server) handleAnalyzeTasks(ctx context.Context, req *mcp.CallToolRequest, input TaskInput) (*mcp.CallToolResult, any, error) {
	if input.Path == "" {
		return toolError(errNoPath.Error())
	}
	report, err := s.service().RunFile(ctx, input.Path)
	if err != nil {
		return toolError(err.Error())
	}

	// The full task list is available from normalize_tasks.
	result := struct {
		Metadata analysis.Metadata    `json:"metadata"`
		Counts   category.Counts      `json:"counts"`
		Heatmap  category.HeatmapData `json:"heatmap"`
		Bars     category.BarData     `json:"bars"`
		Trends   *trend.Analysis      `json:"trends"`
	}{report.Metadata, report.Counts, report.Heatmap, report.Bars, report.Trends}
	return toolResult(result, getFormat(input.Format))
}

func (s *Server) handleNormalizeTasks(ctx context.Context, req *mcp.CallToolRequest, input NormalizeInput) (*mcp.CallToolResult, any, error) {
	if input.Path == "" {
		return toolError(errNoPath.Error())
	}
	n, err := s.service().NormalizeFile(ctx, input.Path)
	if err != nil {
		return toolError(err.Error())
	}

	tasks := n.Tasks
	if input.Limit > 0 && input.Limit < len(tasks) {
		tasks = tasks[:input.Limit]
	}
	result := struct {
		Metadata analysis.Metadata       `json:"metadata"`
		Tasks    []models.NormalizedTask `json:"tasks"`
	}{n.Metadata, tasks}
	return toolResult(result, getFormat(input.Format))
}

func (s *Server) handleCategoryHeatmap(ctx context.Context, req *mcp.CallToolRequest, input HeatmapInput) (*mcp.CallToolResult, any, error) {
	if input.Path == "" {
		return toolError(errNoPath.Error())
	}
	var opts []analysis.Option
	if input.Mode != "" {
		mode, err := category.ParseHeatmapMode(input.Mode)
		if err != nil {
			return toolError(err.Error())
		}
		opts = append(opts, analysis.WithHeatmapMode(mode))
	}

	svc := s.service(opts...)
	n, err := svc.NormalizeFile(ctx, input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(svc.Categories(n), getFormat(input.Format))
}

func (s *Server) handleTaskTrends(ctx context.Context, req *mcp.CallToolRequest, input TrendInput) (*mcp.CallToolResult, any, error) {
	if input.Path == "" {
		return toolError(errNoPath.Error())
	}
	if err := trend.CheckMinGroupSize(input.MinSize); err != nil {
		return toolError(err.Error())
	}
	svc := s.service(analysis.WithMinGroupSize(input.MinSize))
	n, err := svc.NormalizeFile(ctx, input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	page, err := svc.TrendPage(ctx, n, input.Page, input.PerPage)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(page, getFormat(input.Format))
}

func (s *Server) handleWorkloadSummary(ctx context.Context, req *mcp.CallToolRequest, input WorkloadInput) (*mcp.CallToolResult, any, error) {
	if input.Path == "" {
		return toolError(errNoPath.Error())
	}
	d, err := workload.NewStaticDistributorFromFile(input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	summary, err := s.service().Workload(ctx, d, workload.Request{Assignees: input.Assignees})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(summary, getFormat(input.Format))
}
