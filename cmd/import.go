package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/paperforge/internal/bank"
)

var importCmd = &cobra.Command{
	Use:   "import <file.yaml | dir>",
	Short: "Import questions from a YAML document or a directory of them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		var report *bank.ImportReport
		if info.IsDir() {
			report, err = s.ImportDir(cmd.Context(), args[0])
		} else {
			report, err = s.ImportFile(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}

		fmt.Printf("Added %d question(s), skipped %d\n", report.Added, report.Skipped)
		for _, d := range report.Duplicates {
			fmt.Printf("  duplicate: %s\n", d)
		}
		for _, w := range report.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		return nil
	},
}
