package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over stdio",
	Long: `Starts a Model Context Protocol server exposing the analysis tools:
analyze_tasks, normalize_tasks, category_heatmap, task_trends and
workload_summary. Logs go to stderr so stdout stays reserved for the protocol.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

var mcpManifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Print the MCP server manifest (server.json)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpManifestCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	opts := []mcpserver.Option{mcpserver.WithConfig(cfg)}
	if c := openCache(); c != nil {
		opts = append(opts, mcpserver.WithCache(c))
	}
	return mcpserver.NewServer(version, opts...).Run(cmd.Context())
}
