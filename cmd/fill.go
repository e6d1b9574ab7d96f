package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/abhisek/paperforge/internal/autoselect"
	"github.com/abhisek/paperforge/internal/bank"
	"github.com/abhisek/paperforge/internal/selection"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill section quotas from the bank using a policy file",
	Long: "Selects questions for every section declared in the policy file, honoring " +
		"chapter quotas, pool percentage splits and class targets. With --project the " +
		"resulting selection is saved and can be exported.",
	RunE: func(cmd *cobra.Command, args []string) error {
		policyPath, _ := cmd.Flags().GetString("policy")
		project, _ := cmd.Flags().GetString("project")

		sections, opts, err := autoselect.LoadPolicy(policyPath)
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		result, err := autoselect.New(s, s).Fill(ctx, sections, opts)
		if err != nil {
			return err
		}

		fmt.Printf("Run %s\n", result.RunID)
		for _, sec := range result.Sections {
			fmt.Printf("%s: %d selected\n", sec.Name, len(sec.Selected))
			printPicks("pool", sec.ByPool)
		}
		for _, sf := range result.Shortfalls() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", sf)
		}

		if project == "" {
			return nil
		}
		for _, sec := range result.Sections {
			rows, err := selectionRows(cmd, s, sec.Selected)
			if err != nil {
				return err
			}
			if err := s.SaveSelection(ctx, project, sec.Name, rows); err != nil {
				return fmt.Errorf("save section %s: %w", sec.Name, err)
			}
		}
		fmt.Printf("Saved selection for project %s\n", project)
		return nil
	},
}

func init() {
	fillCmd.Flags().String("policy", "", "Path to the YAML fill policy (required)")
	fillCmd.Flags().String("project", "", "Save the selection under this project identifier")
	fillCmd.MarkFlagRequired("policy")
}

// selectionRows resolves picked identifiers into snapshot rows, filed
// under each item's own chapter and difficulty.
func selectionRows(cmd *cobra.Command, s *bank.Store, ids []string) ([]bank.SelectionRow, error) {
	rows := make([]bank.SelectionRow, 0, len(ids))
	for _, id := range ids {
		it, ok, err := s.Item(cmd.Context(), id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("selected item %s not found in bank", id)
		}
		rows = append(rows, bank.SelectionRow{
			ItemID:      it.ID,
			ChapterCode: it.Chapter,
			ChapterName: it.Chapter,
			Difficulty:  it.Difficulty,
			Division:    it.Division(),
			Status:      string(selection.StatusAccepted),
		})
	}
	return rows, nil
}

func printPicks(dim string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s %s: %d\n", dim, k, counts[k])
	}
}
