package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/paperforge/internal/export"
	"github.com/abhisek/paperforge/internal/selection"
	"github.com/abhisek/paperforge/internal/workflow"
)

var exportCmd = &cobra.Command{
	Use:   "export <project>",
	Short: "Export a project's saved selection as a paper document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		names, err := s.SelectionSections(ctx, project)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return fmt.Errorf("project %s has no saved selection", project)
		}

		sections := make([]workflow.SectionSelection, 0, len(names))
		for _, name := range names {
			rows, err := s.LoadSelection(ctx, project, name)
			if err != nil {
				return err
			}
			sec := workflow.SectionSelection{Name: name}
			for _, row := range rows {
				sec.Records = append(sec.Records, selection.Record{
					ItemID:      row.ItemID,
					ChapterCode: row.ChapterCode,
					ChapterName: row.ChapterName,
					Difficulty:  row.Difficulty,
					Division:    row.Division,
					Status:      selection.Status(row.Status),
				})
			}
			sections = append(sections, sec)
		}

		paper, err := export.Build(ctx, s, project, sections)
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		switch format {
		case "json":
			return export.WriteJSON(w, paper)
		case "yaml":
			return export.WriteYAML(w, paper)
		default:
			return fmt.Errorf("unknown format %q (want json or yaml)", format)
		}
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "Output format: json or yaml")
	exportCmd.Flags().String("out", "", "Write to this file instead of stdout")
}
