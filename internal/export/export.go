// Package export assembles a completed project into a structured paper
// payload and serializes it. Anything fancier than JSON/YAML output is
// someone else's concern.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/paperforge/internal/bank"
	"github.com/abhisek/paperforge/internal/classify"
	"github.com/abhisek/paperforge/internal/workflow"
)

// Paper is the top-level export structure for an assembled test.
type Paper struct {
	Project     string    `json:"project" yaml:"project"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Sections    []Section `json:"sections" yaml:"sections"`
}

// Section holds one section's questions in selection order.
type Section struct {
	Name        string     `json:"name" yaml:"name"`
	DivisionOne int        `json:"division_one" yaml:"division_one"`
	DivisionTwo int        `json:"division_two" yaml:"division_two"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Question is one exported question with its bank fields and the
// selection annotations.
type Question struct {
	ID         string `json:"id" yaml:"id"`
	Text       string `json:"text" yaml:"text"`
	ImageURL   string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	OptionA    Option `json:"option_a" yaml:"option_a"`
	OptionB    Option `json:"option_b" yaml:"option_b"`
	OptionC    Option `json:"option_c" yaml:"option_c"`
	OptionD    Option `json:"option_d" yaml:"option_d"`
	Answer     string `json:"answer" yaml:"answer"`
	Chapter    string `json:"chapter" yaml:"chapter"`
	Difficulty string `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Division   int    `json:"division" yaml:"division"`
	Status     string `json:"status" yaml:"status"`
	Pool       string `json:"pool" yaml:"pool"`
	Year       string `json:"year,omitempty" yaml:"year,omitempty"`
}

// Option mirrors a bank option for serialization.
type Option struct {
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// Build resolves every selection record against the bank and assembles
// the paper payload.
func Build(ctx context.Context, lookup bank.ItemLookup, project string, sections []workflow.SectionSelection) (*Paper, error) {
	paper := &Paper{
		Project:     project,
		GeneratedAt: time.Now().UTC(),
	}

	for _, sec := range sections {
		out := Section{Name: sec.Name}
		for _, rec := range sec.Records {
			item, ok, err := lookup.Item(ctx, rec.ItemID)
			if err != nil {
				return nil, fmt.Errorf("resolve item %s: %w", rec.ItemID, err)
			}
			if !ok {
				return nil, fmt.Errorf("selection references missing item %s", rec.ItemID)
			}
			if rec.Division == classify.DivisionOne {
				out.DivisionOne++
			} else {
				out.DivisionTwo++
			}
			out.Questions = append(out.Questions, Question{
				ID:         item.ID,
				Text:       item.Question,
				ImageURL:   item.QuestionImageURL,
				OptionA:    Option(item.OptionA),
				OptionB:    Option(item.OptionB),
				OptionC:    Option(item.OptionC),
				OptionD:    Option(item.OptionD),
				Answer:     item.Answer,
				Chapter:    rec.ChapterCode,
				Difficulty: string(rec.Difficulty),
				Division:   int(rec.Division),
				Status:     string(rec.Status),
				Pool:       item.Pool,
				Year:       item.Year,
			})
		}
		paper.Sections = append(paper.Sections, out)
	}

	return paper, nil
}

// WriteJSON serializes the paper as indented JSON.
func WriteJSON(w io.Writer, p *Paper) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode paper: %w", err)
	}
	return nil
}

// WriteYAML serializes the paper as YAML.
func WriteYAML(w io.Writer, p *Paper) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode paper: %w", err)
	}
	return nil
}
