package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/dynamitemc/voxelstore/level"
)

// DefaultPath is the config file used when none is given.
const DefaultPath = "voxelstore.yml"

type World struct {
	// Layers is the number of sections in a chunk.
	Layers int `yaml:"layers"`
}

// Version is a protocol version to encode for. Remap converts global block ids
// to the ids of that version; ids that are not listed are sent unchanged.
type Version struct {
	Protocol int32             `yaml:"protocol"`
	Remap    map[uint32]uint32 `yaml:"remap,omitempty"`
}

type Config struct {
	World    World     `yaml:"world"`
	Debug    bool      `yaml:"debug"`
	LogFile  string    `yaml:"log_file"`
	Versions []Version `yaml:"versions"`
}

// Default returns the config written when no file exists.
func Default() *Config {
	return &Config{
		World: World{
			Layers: level.DefaultLayers,
		},
		Debug:   false,
		LogFile: "",
		Versions: []Version{
			{Protocol: 47},
			{Protocol: 340},
			{Protocol: 393},
			{Protocol: 477},
			{Protocol: 573},
			{Protocol: 735},
			{Protocol: 757},
		},
	}
}

// Load reads the config at path. If the file does not exist, it is created with
// the default config, which is then returned.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		config := Default()
		return config, Save(path, config)
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := &Config{}
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Save writes config to path, replacing any existing file.
func Save(path string, config *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	e := yaml.NewEncoder(file)
	if err := e.Encode(config); err != nil {
		return err
	}
	return e.Close()
}

func (c *Config) Validate() error {
	if c.World.Layers <= 0 {
		return fmt.Errorf("world.layers must be positive, got %d", c.World.Layers)
	}
	seen := make(map[int32]bool, len(c.Versions))
	for _, v := range c.Versions {
		if v.Protocol <= 0 {
			return fmt.Errorf("invalid protocol %d", v.Protocol)
		}
		if seen[v.Protocol] {
			return fmt.Errorf("protocol %d is listed twice", v.Protocol)
		}
		seen[v.Protocol] = true
		if _, err := v.inverse(); err != nil {
			return fmt.Errorf("protocol %d: %w", v.Protocol, err)
		}
	}
	return nil
}

// To returns the remap from global ids to the ids of this version.
func (v Version) To() level.Remap {
	if len(v.Remap) == 0 {
		return nil
	}
	return lookup(v.Remap)
}

// From returns the remap from the ids of this version back to global ids.
// It is nil if the remap cannot be inverted; Validate reports that case.
func (v Version) From() level.Remap {
	inv, err := v.inverse()
	if err != nil || len(inv) == 0 {
		return nil
	}
	return lookup(inv)
}

func (v Version) inverse() (map[uint32]uint32, error) {
	inv := make(map[uint32]uint32, len(v.Remap))
	for from, to := range v.Remap {
		if prev, ok := inv[to]; ok {
			return nil, fmt.Errorf("ids %d and %d both map to %d", prev, from, to)
		}
		inv[to] = from
	}
	// An id that is sent unchanged must not collide with a remapped one.
	for to := range inv {
		if _, ok := v.Remap[to]; !ok && to != inv[to] {
			return nil, fmt.Errorf("id %d is both sent unchanged and used by %d", to, inv[to])
		}
	}
	return inv, nil
}

func lookup(m map[uint32]uint32) level.Remap {
	return func(id uint32) uint32 {
		if v, ok := m[id]; ok {
			return v
		}
		return id
	}
}
