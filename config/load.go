package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File mirrors the global config sections for YAML overrides. Sections or
// fields missing from the file keep their current values.
type File struct {
	Server  ServerConfig  `yaml:"server"`
	Physics PhysicsConfig `yaml:"physics"`
	Carry   CarryConfig   `yaml:"carry"`
	Damage  DamageConfig  `yaml:"damage"`
	Holder  HolderConfig  `yaml:"holder"`
}

// Current returns a snapshot of the global configuration.
func Current() File {
	return File{
		Server:  Server,
		Physics: Physics,
		Carry:   Carry,
		Damage:  Damage,
		Holder:  Holder,
	}
}

// Apply replaces the global configuration with f.
func Apply(f File) {
	Server = f.Server
	Physics = f.Physics
	Carry = f.Carry
	Damage = f.Damage
	Holder = f.Holder
}

// ParseOverrides decodes raw YAML over the current configuration without
// applying it.
func ParseOverrides(raw []byte) (File, error) {
	f := Current()
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("config yaml: %w", err)
	}
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

// LoadOverrides reads a YAML file and applies it over the globals.
func LoadOverrides(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	f, err := ParseOverrides(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	Apply(f)
	return nil
}

// Validate rejects values the simulation cannot run with.
func (f File) Validate() error {
	switch {
	case f.Server.TickRate <= 0:
		return fmt.Errorf("server.tick_rate must be positive, got %d", f.Server.TickRate)
	case f.Server.PhysicsHz < f.Server.TickRate:
		return fmt.Errorf("server.physics_hz (%d) must be >= tick_rate (%d)", f.Server.PhysicsHz, f.Server.TickRate)
	case f.Carry.Smoothing <= 0 || f.Carry.Smoothing > 1:
		return fmt.Errorf("carry.smoothing must be in (0, 1], got %g", f.Carry.Smoothing)
	case f.Carry.MaxLinearSpeed <= 0 || f.Carry.MaxAngularSpeed <= 0:
		return fmt.Errorf("carry max speeds must be positive")
	case f.Damage.CollisionThreshold <= 0:
		return fmt.Errorf("damage.collision_threshold must be positive, got %g", f.Damage.CollisionThreshold)
	case f.Damage.DropFraction < 0:
		return fmt.Errorf("damage.drop_fraction must not be negative, got %g", f.Damage.DropFraction)
	case f.Physics.CellSize <= 0:
		return fmt.Errorf("physics.cell_size must be positive, got %d", f.Physics.CellSize)
	}
	return nil
}
