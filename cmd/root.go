package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/paperforge/internal/bank"
)

var rootCmd = &cobra.Command{
	Use:   "paperforge",
	Short: "Assemble test papers from a tagged question bank",
	Long:  "Paperforge — builds multi-section test papers from a question bank under per-chapter quotas and pool splits.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PAPERFORGE_DB env var)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PAPERFORGE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, bank.EnsureDir(p)
	}
	return bank.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*bank.Store, error) {
	path, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	return bank.Open(path)
}
