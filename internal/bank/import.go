package bank

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/paperforge/internal/classify"
)

// MaxTags is the number of tag columns a question may carry.
const MaxTags = 4

// ImportDoc is a YAML ingestion document: pool-level metadata plus a
// list of questions.
type ImportDoc struct {
	Pool      string           `yaml:"pool"`
	Year      string           `yaml:"year"`
	Questions []ImportQuestion `yaml:"questions"`
}

// ImportQuestion is one question as authored in an ingestion document.
// Options may be plain strings or {text, image_url} maps.
type ImportQuestion struct {
	Question   string       `yaml:"question"`
	ImageURL   string       `yaml:"image_url"`
	A          ImportOption `yaml:"A"`
	B          ImportOption `yaml:"B"`
	C          ImportOption `yaml:"C"`
	D          ImportOption `yaml:"D"`
	Answer     string       `yaml:"answer"`
	Chapter    string       `yaml:"chapter"`
	Difficulty string       `yaml:"difficulty"`
	Override   int          `yaml:"division"`
	Class      int          `yaml:"class"`
	Tags       []string     `yaml:"tags"`
}

// ImportOption accepts either a bare string or a {text, image_url} map.
type ImportOption struct {
	Option
}

func (o *ImportOption) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.Text = node.Value
		return nil
	}
	return node.Decode(&o.Option)
}

func (o ImportOption) empty() bool {
	return o.Text == "" && o.ImageURL == ""
}

// ImportReport summarizes one ingestion run.
type ImportReport struct {
	Added      int
	Skipped    int
	Duplicates []string
	Warnings   []string
}

// ImportFile reads a YAML ingestion document and inserts its questions.
func (s *Store) ImportFile(ctx context.Context, path string) (*ImportReport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ingestion file: %w", err)
	}
	var doc ImportDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse ingestion file: %w", err)
	}
	return s.Import(ctx, doc)
}

// ImportDir ingests every YAML document in a directory in name order and
// aggregates the per-file reports, prefixing warnings with the file they
// came from. Non-YAML entries and subdirectories are skipped. A directory
// without a single YAML document is an error.
func (s *Store) ImportDir(ctx context.Context, dir string) (*ImportReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read ingestion dir: %w", err)
	}

	total := &ImportReport{}
	imported := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
		default:
			continue
		}

		report, err := s.ImportFile(ctx, filepath.Join(dir, e.Name()))
		if err != nil {
			return total, fmt.Errorf("%s: %w", e.Name(), err)
		}
		total.Added += report.Added
		total.Skipped += report.Skipped
		total.Duplicates = append(total.Duplicates, report.Duplicates...)
		for _, w := range report.Warnings {
			total.Warnings = append(total.Warnings, e.Name()+": "+w)
		}
		imported++
	}

	if imported == 0 {
		return nil, fmt.Errorf("no YAML documents in %s", dir)
	}
	return total, nil
}

// Import validates and inserts the questions of an ingestion document.
// Questions lacking required parts are skipped with a warning; questions
// whose normalized text already exists in the bank are reported as
// duplicates and skipped. Import never fails on a bad question, only on
// document-level or database faults.
func (s *Store) Import(ctx context.Context, doc ImportDoc) (*ImportReport, error) {
	if doc.Pool == "" {
		return nil, fmt.Errorf("ingestion document missing pool")
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("ingestion document has no questions")
	}

	existing, err := s.existingQuestionTexts(ctx)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{}
	for i, q := range doc.Questions {
		n := i + 1

		text := strings.TrimSpace(q.Question)
		if text == "" && q.ImageURL == "" {
			report.warn("question %d has neither text nor image", n)
			continue
		}
		if q.Answer == "" {
			report.warn("question %d has no answer", n)
			continue
		}
		if bad := missingOption(q); bad != "" {
			report.warn("question %d option %s has neither text nor image", n, bad)
			continue
		}

		key := strings.ToLower(text)
		if text != "" && existing[key] {
			report.Duplicates = append(report.Duplicates, text)
			report.Skipped++
			continue
		}

		tags := q.Tags
		if len(tags) > MaxTags {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("question %d has %d tags, keeping first %d", n, len(tags), MaxTags))
			tags = tags[:MaxTags]
		}

		chapter := q.Chapter
		if chapter == "" && len(tags) > 0 {
			chapter = tags[0]
		}

		it := Item{
			ID:               importID(text, doc.Pool, doc.Year),
			Question:         text,
			QuestionImageURL: q.ImageURL,
			OptionA:          q.A.Option,
			OptionB:          q.B.Option,
			OptionC:          q.C.Option,
			OptionD:          q.D.Option,
			Answer:           q.Answer,
			Chapter:          chapter,
			Difficulty:       Difficulty(strings.ToLower(q.Difficulty)),
			Pool:             doc.Pool,
			Year:             doc.Year,
			Override:         classify.Override(q.Override),
			Class:            ClassTag(q.Class),
			Tags:             tags,
		}

		added, err := s.Insert(ctx, it)
		if err != nil {
			return report, fmt.Errorf("question %d: %w", n, err)
		}
		if !added {
			report.warn("question %d collides with an existing identifier", n)
			continue
		}
		report.Added++
		if text != "" {
			existing[key] = true
		}
	}

	return report, nil
}

func (r *ImportReport) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
	r.Skipped++
}

func missingOption(q ImportQuestion) string {
	switch {
	case q.A.empty():
		return "A"
	case q.B.empty():
		return "B"
	case q.C.empty():
		return "C"
	case q.D.empty():
		return "D"
	}
	return ""
}

// importID derives a stable identifier from the question text and pool
// metadata; image-only questions get a random one.
func importID(text, pool, year string) string {
	if text == "" {
		return uuid.NewString()
	}
	sum := md5.Sum([]byte(text + pool + year))
	return hex.EncodeToString(sum[:])[:12]
}

func (s *Store) existingQuestionTexts(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT question FROM questions")
	if err != nil {
		return nil, fmt.Errorf("load existing questions: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan existing question: %w", err)
		}
		existing[strings.ToLower(strings.TrimSpace(text))] = true
	}
	return existing, rows.Err()
}
