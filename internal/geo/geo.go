// Package geo resolves two-letter country and state codes to display names.
package geo

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var defaultRegions []byte

// Reference answers country and region name lookups.
type Reference interface {
	CountryName(code string) string
	RegionName(countryCode, regionCode string) string
}

// Tables resolves countries through CLDR data and regions through a state table
// keyed by country code.
type Tables struct {
	countries display.Namer
	regions   map[string]map[string]string
}

// Default returns Tables backed by the embedded region list.
func Default() *Tables {
	t, err := parse(defaultRegions)
	if err != nil {
		panic(fmt.Sprintf("geo: embedded regions: %v", err))
	}
	return t
}

// Load reads a region table from path, falling back to the embedded table when path is empty.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}
	return parse(raw)
}

func parse(raw []byte) (*Tables, error) {
	var regions map[string]map[string]string
	if err := yaml.Unmarshal(raw, &regions); err != nil {
		return nil, fmt.Errorf("decode regions: %w", err)
	}
	normalized := make(map[string]map[string]string, len(regions))
	for country, states := range regions {
		byCode := make(map[string]string, len(states))
		for code, name := range states {
			byCode[strings.ToUpper(code)] = name
		}
		normalized[strings.ToUpper(country)] = byCode
	}
	return &Tables{
		countries: display.Regions(language.English),
		regions:   normalized,
	}, nil
}

// CountryName returns the English name of an ISO 3166 alpha-2 code, or "" when unknown.
func (t *Tables) CountryName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return ""
	}
	return t.countries.Name(region)
}

// RegionName returns the state name for regionCode within countryCode, or "".
func (t *Tables) RegionName(countryCode, regionCode string) string {
	states := t.regions[strings.ToUpper(strings.TrimSpace(countryCode))]
	if states == nil {
		return ""
	}
	return states[strings.ToUpper(strings.TrimSpace(regionCode))]
}
