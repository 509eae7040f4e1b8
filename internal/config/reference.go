package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"salespulse/pkg/contracts/domain"
)

// Coordinate is a geographic point for a factory, passed through to the
// presentation layer's map view. Never used in computation.
type Coordinate struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// ReferenceData holds the static lookup tables injected into the pipeline at
// construction time. Immutable after load.
type ReferenceData struct {
	// Factories maps product name to the factory producing it.
	Factories map[string]string `yaml:"factories"`
	// Coordinates maps factory name to its location.
	Coordinates map[string]Coordinate `yaml:"coordinates"`
}

// FactoryFor returns the producing factory for a product name, or the
// explicit Unknown category when the product is not in the table.
func (r ReferenceData) FactoryFor(product string) string {
	if f, ok := r.Factories[product]; ok {
		return f
	}
	return domain.UnknownFactory
}

// DefaultReferenceData returns the built-in product-to-factory table for the
// 15 known products and the factory coordinates.
func DefaultReferenceData() ReferenceData {
	return ReferenceData{
		Factories: map[string]string{
			"Wonka Bar - Milk Chocolate":       "Lot's O' Nuts",
			"Wonka Bar - Nutty Crunch":         "Lot's O' Nuts",
			"Wonka Bar - Fudge Mallows":        "Lot's O' Nuts",
			"Wonka Bar - Triple Dazzle Caramel": "Lot's O' Nuts",
			"Wonka Bar - Scrumdiddlyumptious":  "Lot's O' Nuts",
			"Everlasting Gobstopper":           "Secret Factory",
			"Wonka Gum":                        "Secret Factory",
			"Laffy Taffy":                      "Sugar Shack",
			"Nerds":                            "Sugar Shack",
			"Fun Dip":                          "Sugar Shack",
			"SweeTARTS":                        "Sugar Shack",
			"Lik-M-Aid":                        "Sugar Shack",
			"Kazookles":                        "The Other Factory",
			"Fizzy Lifting Drinks":             "The Other Factory",
			"Hair Toffee":                      "The Other Factory",
		},
		Coordinates: map[string]Coordinate{
			"Lot's O' Nuts":      {Lat: 32.3512601, Lon: -95.3010624},
			"Secret Factory":     {Lat: 41.2033216, Lon: -77.1945247},
			"Sugar Shack":        {Lat: 44.3148443, Lon: -85.6023643},
			"The Other Factory":  {Lat: 39.0457549, Lon: -76.6412712},
			domain.UnknownFactory: {},
		},
	}
}

// LoadReferenceData reads reference data from a YAML file, falling back to
// the built-in tables when path is empty.
func LoadReferenceData(path string) (ReferenceData, error) {
	if path == "" {
		return DefaultReferenceData(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ReferenceData{}, fmt.Errorf("read reference file %s: %w", path, err)
	}

	var ref ReferenceData
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return ReferenceData{}, fmt.Errorf("parse reference file %s: %w", path, err)
	}

	if len(ref.Factories) == 0 {
		return ReferenceData{}, fmt.Errorf("reference file %s contains no factory mappings", path)
	}
	if ref.Coordinates == nil {
		ref.Coordinates = map[string]Coordinate{}
	}

	return ref, nil
}
