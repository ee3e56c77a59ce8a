// Package schemafile loads csv.Schema definitions from YAML, HCL or JSON files.
//
// YAML:
//
//	allow_missing_columns: true
//	columns:
//	  - name: name
//	    required: true
//	  - name: age
//	    type: number
//
// HCL:
//
//	allow_missing_columns = true
//
//	column "name" {
//	  required = true
//	}
//
//	column "age" {
//	  type = "number"
//	}
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"gopkg.in/yaml.v3"

	"github.com/shapestone/shape-linecsv/pkg/csv"
)

// File is the on-disk form of a schema.
type File struct {
	AllowExtraColumns   bool     `yaml:"allow_extra_columns" hcl:"allow_extra_columns,optional"`
	AllowMissingColumns bool     `yaml:"allow_missing_columns" hcl:"allow_missing_columns,optional"`
	Columns             []Column `yaml:"columns" hcl:"column,block"`
}

// Column is the on-disk form of a csv.ColumnDefinition.
type Column struct {
	Name          string   `yaml:"name" hcl:"name,label"`
	Type          string   `yaml:"type" hcl:"type,optional"`
	Required      bool     `yaml:"required" hcl:"required,optional"`
	Nullable      bool     `yaml:"nullable" hcl:"nullable,optional"`
	Default       string   `yaml:"default" hcl:"default,optional"`
	AllowedValues []string `yaml:"allowed_values" hcl:"allowed_values,optional"`
	MinLength     int      `yaml:"min_length" hcl:"min_length,optional"`
	MaxLength     int      `yaml:"max_length" hcl:"max_length,optional"`
	// Pattern is a regular expression the whole value must match.
	Pattern string `yaml:"pattern" hcl:"pattern,optional"`
}

// ErrPatternMismatch is returned by the column hook of a Pattern column.
var ErrPatternMismatch = errors.New("value does not match pattern")

// Load reads the schema file at path. The format follows the extension:
// .yaml and .yml are YAML, .hcl is HCL native syntax, .json is HCL JSON.
func Load(path string) (*csv.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes a schema from data; name selects the format by extension.
func Parse(name string, data []byte) (*csv.Schema, error) {
	var f File
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode schema %s: %w", name, err)
		}
	case ".hcl", ".json":
		if err := hclsimple.Decode(name, data, nil, &f); err != nil {
			return nil, fmt.Errorf("decode schema %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("unsupported schema format %q", ext)
	}
	return f.Schema()
}

// Schema converts the file into a csv.Schema, checking every column.
func (f File) Schema() (*csv.Schema, error) {
	if len(f.Columns) == 0 {
		return nil, errors.New("schema has no columns")
	}

	schema := csv.NewSchema()
	schema.AllowExtraColumns = f.AllowExtraColumns
	schema.AllowMissingColumns = f.AllowMissingColumns

	seen := make(map[string]bool, len(f.Columns))
	for i, c := range f.Columns {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d: name is required", i)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("column %q: duplicate name", c.Name)
		}
		seen[c.Name] = true

		col, err := c.definition()
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		schema.AddColumn(col)
	}
	return schema, nil
}

func (c Column) definition() (csv.ColumnDefinition, error) {
	colType, err := csv.ParseColumnType(c.Type)
	if err != nil {
		return csv.ColumnDefinition{}, err
	}
	if c.MinLength < 0 || c.MaxLength < 0 || (c.MaxLength > 0 && c.MinLength > c.MaxLength) {
		return csv.ColumnDefinition{}, fmt.Errorf("invalid length range [%d, %d]", c.MinLength, c.MaxLength)
	}

	col := csv.ColumnDefinition{
		Name:          c.Name,
		Type:          colType,
		Required:      c.Required,
		Nullable:      c.Nullable,
		Default:       c.Default,
		AllowedValues: c.AllowedValues,
		MinLength:     c.MinLength,
		MaxLength:     c.MaxLength,
	}
	if c.Pattern != "" {
		re, err := regexp.Compile("^(?:" + c.Pattern + ")$")
		if err != nil {
			return csv.ColumnDefinition{}, fmt.Errorf("pattern: %w", err)
		}
		col.Validator = func(value string) error {
			if !re.MatchString(value) {
				return fmt.Errorf("%w %s", ErrPatternMismatch, c.Pattern)
			}
			return nil
		}
	}
	return col, nil
}
