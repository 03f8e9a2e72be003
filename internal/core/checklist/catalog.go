// Package checklist holds the refund checklist catalogs and the engine that
// evaluates them against the documents found in a source file.
package checklist

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/common"
	"github.com/joseph-ayodele/refund-checklist/internal/entity"
)

//go:embed catalogs.json
var defaultCatalogs []byte

//go:embed catalog.schema.json
var catalogSchema []byte

// Catalogs are the ordered checklists of both request categories. Values
// returned by its methods are copies.
type Catalogs struct {
	Misional   []entity.ChecklistItemDefinition `json:"misional"`
	NoMisional []entity.ChecklistItemDefinition `json:"no_misional"`
}

// For returns the checklist of category.
func (c *Catalogs) For(category constants.RequestCategory) []entity.ChecklistItemDefinition {
	if category == constants.NoMisional {
		return slices.Clone(c.NoMisional)
	}
	return slices.Clone(c.Misional)
}

// Filter keeps the items whose id is in ids, preserving catalog order.
func Filter(items []entity.ChecklistItemDefinition, ids []string) []entity.ChecklistItemDefinition {
	out := make([]entity.ChecklistItemDefinition, 0, len(ids))
	for _, it := range items {
		if slices.Contains(ids, it.ID) {
			out = append(out, it)
		}
	}
	return out
}

// LoadCatalogs returns the built-in catalogs.
func LoadCatalogs() (*Catalogs, error) {
	return ParseCatalogs(defaultCatalogs)
}

// LoadCatalogFile reads catalogs from path, or the built-in ones when path
// is empty.
func LoadCatalogFile(path string) (*Catalogs, error) {
	if path == "" {
		return LoadCatalogs()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", common.ErrCatalog, path, err)
	}
	return ParseCatalogs(data)
}

// ParseCatalogs validates data against the catalog schema and decodes it.
// Item ids must be unique within a category.
func ParseCatalogs(data []byte) (*Catalogs, error) {
	if err := validateAgainstSchema(catalogSchema, data); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCatalog, err)
	}
	var c Catalogs
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", common.ErrCatalog, err)
	}
	for name, items := range map[string][]entity.ChecklistItemDefinition{
		string(constants.Misional):   c.Misional,
		string(constants.NoMisional): c.NoMisional,
	} {
		seen := make(map[string]struct{}, len(items))
		for _, it := range items {
			if _, dup := seen[it.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate item id %q in %s", common.ErrCatalog, it.ID, name)
			}
			seen[it.ID] = struct{}{}
		}
	}
	return &c, nil
}

func validateAgainstSchema(schemaDoc, data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.schema.json", bytes.NewReader(schemaDoc)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("catalog.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("catalog does not match schema: %w", err)
	}
	return nil
}
