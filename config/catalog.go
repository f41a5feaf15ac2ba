package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var catalogSchemaJSON string

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var ErrUnknownItemType = errors.New("unknown item type")

// ItemType is the static description of a kind of carriable item.
type ItemType struct {
	Name string `yaml:"-"`

	BaseValue float64 `yaml:"base_value"`
	MinValue  float64 `yaml:"min_value"`
	Mass      float64 `yaml:"mass"`
	Size      Vec3    `yaml:"size"` // Full extents in meters

	Fragile           bool    `yaml:"fragile"`
	FragileMultiplier float64 `yaml:"fragile_multiplier"` // 0 = Damage.FragileMultiplier
	TwoHanded         bool    `yaml:"two_handed"`

	HoldOffset   Vec3 `yaml:"hold_offset"`   // Relative to the attach point
	HoldRotation Vec3 `yaml:"hold_rotation"` // Euler degrees (x, y, z)

	DamagePerCollision float64 `yaml:"damage_per_collision"` // 0 = Damage.DamagePerCollision
	CollisionThreshold float64 `yaml:"collision_threshold"`  // 0 = Damage.CollisionThreshold
}

// Catalog maps item type names to their description.
type Catalog struct {
	Types map[string]ItemType `yaml:"types"`
}

var catalogSchema = jsonschema.MustCompileString("catalog.schema.json", catalogSchemaJSON)

// ParseCatalog validates raw YAML against the catalog schema and decodes it.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalog yaml: %w", err)
	}
	// The validator wants JSON values (float64 numbers, string keyed maps).
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("catalog to json: %w", err)
	}
	var jsonDoc any
	if err := json.Unmarshal(b, &jsonDoc); err != nil {
		return nil, fmt.Errorf("catalog to json: %w", err)
	}
	if err := catalogSchema.Validate(jsonDoc); err != nil {
		return nil, fmt.Errorf("catalog schema: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("catalog yaml: %w", err)
	}
	for name, t := range c.Types {
		if t.MinValue >= t.BaseValue {
			return nil, fmt.Errorf("item type %q: min_value %g must be below base_value %g", name, t.MinValue, t.BaseValue)
		}
		t.Name = name
		c.Types[name] = t
	}
	return &c, nil
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := ParseCatalog(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Lookup returns the item type with the given name.
func (c *Catalog) Lookup(name string) (ItemType, error) {
	t, ok := c.Types[name]
	if !ok {
		return ItemType{}, fmt.Errorf("%w: %q", ErrUnknownItemType, name)
	}
	return t, nil
}

// Names returns the sorted type names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Types))
	for name := range c.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DamageScale returns the per-type damage numbers with Damage defaults filled in.
func (t ItemType) DamageScale(d DamageConfig) (perCollision, threshold, fragile float64) {
	perCollision = t.DamagePerCollision
	if perCollision == 0 {
		perCollision = d.DamagePerCollision
	}
	threshold = t.CollisionThreshold
	if threshold == 0 {
		threshold = d.CollisionThreshold
	}
	fragile = 1
	if t.Fragile {
		fragile = t.FragileMultiplier
		if fragile == 0 {
			fragile = d.FragileMultiplier
		}
	}
	return perCollision, threshold, fragile
}
