// Package catalog loads the plant definitions the farm grows from.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
)

// Plant is one catalog entry. Only the growth time matters to the engine;
// the rest is carried for the economy layer.
type Plant struct {
	Time       int     `json:"time"`
	Level      int     `json:"level,omitempty"`
	Buy        int     `json:"buy,omitempty"`
	Price      float64 `json:"price,omitempty"`
	Crop       int     `json:"crop,omitempty"`
	Again      bool    `json:"again,omitempty"`
	Experience int     `json:"experience,omitempty"`
}

type document struct {
	Plant map[string]Plant `json:"plant"`
}

// Catalog is an immutable set of plants keyed by name.
type Catalog struct {
	plants  map[string]Plant
	skipped []string
}

// New builds a catalog from plants. Entries without a name or with a
// non-positive growth time are left out and reported by Skipped.
func New(plants map[string]Plant) *Catalog {
	c := &Catalog{plants: make(map[string]Plant, len(plants))}
	for name, p := range plants {
		switch {
		case name == "":
			c.skipped = append(c.skipped, "empty plant name")
		case p.Time <= 0:
			c.skipped = append(c.skipped, fmt.Sprintf("plant %q has growth time %d", name, p.Time))
		default:
			c.plants[name] = p
		}
	}
	sort.Strings(c.skipped)
	return c
}

// Parse reads the JSON plant document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse plant catalog: %w", err)
	}
	return New(doc.Plant), nil
}

// Load reads the plant document at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plant catalog: %w", err)
	}
	return Parse(data)
}

// LoadOptional is Load for a file that may be missing. found is false and
// the catalog is empty when path does not exist.
func LoadOptional(path string) (c *Catalog, found bool, err error) {
	c, err = Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Catalog{plants: map[string]Plant{}}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// GrowthHours returns how long plant takes to mature.
func (c *Catalog) GrowthHours(plant string) (int, bool) {
	p, ok := c.plants[plant]
	if !ok {
		return 0, false
	}
	return p.Time, true
}

func (c *Catalog) Plant(name string) (Plant, bool) {
	p, ok := c.plants[name]
	return p, ok
}

// Skipped describes the entries New left out, sorted.
func (c *Catalog) Skipped() []string {
	return c.skipped
}

// Names returns the plant names sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.plants))
	for n := range c.plants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
