package domain

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v2"
)

//go:embed departments.yaml
var departmentsYAML []byte

// Department is one entry of the department catalog.
type Department struct {
	Name      string   `yaml:"name"`
	Positions []string `yaml:"positions"`
}

// Catalog is the fixed set of departments an employee may belong to, with the
// positions customarily used in each. Positions are advisory only.
type Catalog struct {
	departments []Department
	index       map[string]int
}

type catalogFile struct {
	Departments []Department `yaml:"departments"`
}

// LoadCatalog parses a YAML department catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse department catalog: %w", err)
	}
	if len(f.Departments) == 0 {
		return nil, fmt.Errorf("department catalog is empty")
	}

	c := &Catalog{
		departments: f.Departments,
		index:       make(map[string]int, len(f.Departments)),
	}
	for i, d := range f.Departments {
		if d.Name == "" {
			return nil, fmt.Errorf("department #%d has no name", i+1)
		}
		if _, dup := c.index[d.Name]; dup {
			return nil, fmt.Errorf("duplicate department %q", d.Name)
		}
		c.index[d.Name] = i
	}
	return c, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadCatalog(departmentsYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// HasDepartment reports whether name is a catalog department.
func (c *Catalog) HasDepartment(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Departments returns the department names in catalog order.
func (c *Catalog) Departments() []string {
	names := make([]string, len(c.departments))
	for i, d := range c.departments {
		names[i] = d.Name
	}
	return names
}

// Positions returns the positions listed for a department, or nil.
func (c *Catalog) Positions(department string) []string {
	i, ok := c.index[department]
	if !ok {
		return nil
	}
	return append([]string(nil), c.departments[i].Positions...)
}

// IsListedPosition reports whether position is listed under department.
func (c *Catalog) IsListedPosition(department, position string) bool {
	for _, p := range c.Positions(department) {
		if p == position {
			return true
		}
	}
	return false
}
