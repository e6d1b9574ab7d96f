package autoselect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/paperforge/internal/bank"
	"github.com/abhisek/paperforge/internal/classify"
)

// policySchema constrains fill-policy documents before a run touches the
// bank. Validation errors surface with exact paths instead of zero
// values silently emptying a section.
const policySchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["sections"],
	"properties": {
		"sections": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "division", "chapters"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"division": {"enum": [1, 2]},
					"chapters": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["chapter", "count"],
							"properties": {
								"chapter": {"type": "string", "minLength": 1},
								"count": {"type": "integer", "minimum": 1}
							}
						}
					},
					"pool_shares": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["pool", "percent"],
							"properties": {
								"pool": {"type": "string", "minLength": 1},
								"percent": {"type": "integer", "minimum": 0, "maximum": 100}
							}
						}
					},
					"class_targets": {
						"type": "object",
						"additionalProperties": {"type": "integer", "minimum": 0}
					}
				}
			}
		},
		"prefer_least_used": {"type": "boolean"},
		"bump_frequency": {"type": "boolean"}
	}
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func compiledPolicySchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(policySchema), &def); err != nil {
			compileErr = fmt.Errorf("parse policy schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://fill-policy.json", def); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("schema://fill-policy.json")
	})
	return compiledSchema, compileErr
}

type policyDoc struct {
	Sections []struct {
		Name         string          `yaml:"name"`
		Division     int             `yaml:"division"`
		Chapters     []ChapterTarget `yaml:"chapters"`
		PoolShares   []PoolShare     `yaml:"pool_shares"`
		ClassTargets map[string]int  `yaml:"class_targets"`
	} `yaml:"sections"`
	PreferLeastUsed bool `yaml:"prefer_least_used"`
	BumpFrequency   bool `yaml:"bump_frequency"`
}

// LoadPolicy reads a YAML fill-policy document, validates it against the
// embedded schema and converts it into section requests plus options.
func LoadPolicy(path string) ([]SectionRequest, Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, Options{}, fmt.Errorf("read policy: %w", err)
	}
	return ParsePolicy(raw)
}

// ParsePolicy validates and converts a raw YAML policy document.
func ParsePolicy(raw []byte) ([]SectionRequest, Options, error) {
	var parsed any
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, Options{}, fmt.Errorf("parse policy: %w", err)
	}

	// The schema validator wants a JSON-shaped value; round-trip through
	// encoding/json to normalize YAML's types.
	jsonBytes, err := json.Marshal(parsed)
	if err != nil {
		return nil, Options{}, fmt.Errorf("normalize policy: %w", err)
	}
	normalized, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonBytes))
	if err != nil {
		return nil, Options{}, fmt.Errorf("normalize policy: %w", err)
	}

	schema, err := compiledPolicySchema()
	if err != nil {
		return nil, Options{}, err
	}
	if err := schema.Validate(normalized); err != nil {
		return nil, Options{}, fmt.Errorf("invalid policy document: %w", err)
	}

	var doc policyDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, Options{}, fmt.Errorf("decode policy: %w", err)
	}

	sections := make([]SectionRequest, len(doc.Sections))
	for i, sec := range doc.Sections {
		req := SectionRequest{
			Name:       sec.Name,
			Division:   classify.Division(sec.Division),
			Chapters:   sec.Chapters,
			PoolShares: sec.PoolShares,
		}
		shareSum := 0
		for _, sh := range sec.PoolShares {
			shareSum += sh.Percent
		}
		if shareSum > 100 {
			return nil, Options{}, fmt.Errorf("section %s: pool shares sum to %d%%, limit is 100", sec.Name, shareSum)
		}
		if len(sec.ClassTargets) > 0 {
			req.ClassTargets = make(map[bank.ClassTag]int, len(sec.ClassTargets))
			for key, n := range sec.ClassTargets {
				tag, err := strconv.Atoi(key)
				if err != nil || tag <= 0 {
					return nil, Options{}, fmt.Errorf("section %s: class target key %q is not a class tag", sec.Name, key)
				}
				req.ClassTargets[bank.ClassTag(tag)] = n
			}
		}
		sections[i] = req
	}

	opts := Options{
		PreferLeastUsed: doc.PreferLeastUsed,
		BumpFrequency:   doc.BumpFrequency,
	}
	return sections, opts, nil
}
