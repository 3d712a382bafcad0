package seed

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"splitters/pkg/models"

	"gopkg.in/yaml.v3"
)

//go:embed default_locations.yaml
var defaultLocations []byte

type file struct {
	Teams     []models.Team     `yaml:"teams"`
	Locations []models.Location `yaml:"locations"`
}

// Default returns the built-in inventory used to initialise an empty store.
func Default() []models.Location {
	locations, err := decode(defaultLocations)
	if err != nil {
		panic(fmt.Sprintf("embedded seed is invalid: %v", err))
	}

	return locations
}

func Load(r io.Reader) ([]models.Location, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	return decode(raw)
}

func LoadFile(path string) ([]models.Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func decode(raw []byte) ([]models.Location, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	for i := range f.Locations {
		loc := &f.Locations[i]
		if loc.Splitters == nil {
			loc.Splitters = []models.Splitter{}
		}
		for j := range loc.Splitters {
			loc.Splitters[j].LocationID = loc.ID
		}
	}

	return f.Locations, nil
}

// LoadTeamsFile reads the optional teams section of a seed file.
func LoadTeamsFile(path string) ([]models.Team, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	return f.Teams, nil
}
