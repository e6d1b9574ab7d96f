package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show question bank statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Questions: %d (%d with images)\n", stats.Total, stats.WithImages)
		printBreakdown("By pool", stats.ByPool)
		printBreakdown("By chapter", stats.ByChapter)
		return nil
	},
}

func printBreakdown(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println(title + ":")
	for _, k := range keys {
		label := k
		if label == "" {
			label = "(untagged)"
		}
		fmt.Printf("  %-24s %d\n", label, counts[k])
	}
}
