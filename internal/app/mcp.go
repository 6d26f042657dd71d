package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/interlog/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server exposing interlog analysis",
	Long: `Start a Model Context Protocol stdio server. The server exposes three tools:

  analyze_session   Summary metrics, rage clicks, pauses and intensity for an event log
  list_analyses     Most recent stored analyses
  compare_latest    Metric changes between the two most recent analyses

Analysis defaults and the history database come from the interlog config.
Register it with an MCP client as:
  {"mcpServers":{"interlog":{"command":"interlog","args":["mcp"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	srv := mcp.NewServer(mcp.Options{
		Version:  appVersion,
		Analysis: cfg.Analysis.AnalyzerConfig(),
		DBPath:   cfg.DBPath,
	})
	return srv.Run(contextOrBackground(cmd.Context()), cmd.InOrStdin(), cmd.OutOrStdout())
}
