// ABOUTME: VM size catalog sources: built-in presets and YAML/JSON catalog files
// ABOUTME: CatalogRegistry resolves catalogs by name for the CLI and HTTP API

package services

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"sigs.k8s.io/yaml"

	"github.com/markalston/vm-allocator/models"
)

// DefaultCatalogName is used when no catalog is named explicitly
const DefaultCatalogName = "D3"

// Built-in catalogs (Azure list prices per vCPU-hour)
var catalogPresets = []struct {
	name  string
	rate  string
	sizes []int
}{
	{"D3", "0.0585", []int{2, 4, 8, 16, 32, 48, 64}},
	{"Das v5", "0.043", []int{2, 4, 8, 16, 32, 48, 64, 96}},
}

// PresetCatalogs returns fresh copies of the built-in catalogs.
func PresetCatalogs() []*models.VMSizeCatalog {
	catalogs := make([]*models.VMSizeCatalog, 0, len(catalogPresets))
	for _, p := range catalogPresets {
		catalogs = append(catalogs, &models.VMSizeCatalog{
			Name:       p.name,
			CostPerCPU: decimal.RequireFromString(p.rate),
			Sizes:      append([]int(nil), p.sizes...),
		})
	}
	return catalogs
}

// catalogFile is the on-disk layout of a catalog file
type catalogFile struct {
	Catalogs []*models.VMSizeCatalog `json:"catalogs"`
}

// LoadCatalogs reads a YAML or JSON catalog file. Every catalog is validated and
// names must be unique within the file.
func LoadCatalogs(path string) ([]*models.VMSizeCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalogs(data)
}

// ParseCatalogs decodes catalog file contents.
func ParseCatalogs(data []byte) ([]*models.VMSizeCatalog, error) {
	var file catalogFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, fmt.Errorf("invalid catalog file: %w", err)
	}
	if len(file.Catalogs) == 0 {
		return nil, fmt.Errorf("catalog file defines no catalogs")
	}

	seen := make(map[string]bool, len(file.Catalogs))
	for i, c := range file.Catalogs {
		if c == nil {
			return nil, fmt.Errorf("catalog %d: %w", i, models.ErrNilCatalog)
		}
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("catalog %d: name is required", i)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("catalog %q: %w", c.Name, err)
		}
		key := strings.ToLower(c.Name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate catalog name %q", c.Name)
		}
		seen[key] = true
	}

	return file.Catalogs, nil
}

// CatalogRegistry looks catalogs up by case-insensitive name.
type CatalogRegistry struct {
	catalogs map[string]*models.VMSizeCatalog
}

// NewCatalogRegistry registers the presets followed by the given catalogs.
// Later catalogs replace earlier ones with the same name.
func NewCatalogRegistry(extra ...*models.VMSizeCatalog) *CatalogRegistry {
	r := &CatalogRegistry{catalogs: make(map[string]*models.VMSizeCatalog)}
	for _, c := range PresetCatalogs() {
		r.Add(c)
	}
	for _, c := range extra {
		r.Add(c)
	}
	return r
}

// NewCatalogRegistryFromFile builds a registry from the presets plus a catalog
// file. An empty path yields the presets only.
func NewCatalogRegistryFromFile(path string) (*CatalogRegistry, error) {
	if path == "" {
		return NewCatalogRegistry(), nil
	}
	catalogs, err := LoadCatalogs(path)
	if err != nil {
		return nil, err
	}
	return NewCatalogRegistry(catalogs...), nil
}

// Add registers a catalog under its name.
func (r *CatalogRegistry) Add(c *models.VMSizeCatalog) {
	r.catalogs[strings.ToLower(c.Name)] = c
}

// Get returns the catalog with the given name.
func (r *CatalogRegistry) Get(name string) (*models.VMSizeCatalog, bool) {
	c, ok := r.catalogs[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// List returns all catalogs sorted by name.
func (r *CatalogRegistry) List() []*models.VMSizeCatalog {
	list := make([]*models.VMSizeCatalog, 0, len(r.catalogs))
	for _, c := range r.catalogs {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})
	return list
}

// Names returns the registered catalog names in sorted order.
func (r *CatalogRegistry) Names() []string {
	list := r.List()
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	return names
}
