package geography

import (
	_ "embed"
	"encoding/json"
	"strings"

	"googlemaps.github.io/maps"

	"fleet-crm/pkg/utils"
)

//go:embed states.json
var statesJSON []byte

type state struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

var states map[string]state

func init() {
	if err := json.Unmarshal(statesJSON, &states); err != nil {
		panic("failed to load states.json: " + err.Error())
	}
}

// Region returns the macro-region (Norte, Nordeste, Centro-Oeste, Sudeste, Sul) of a UF.
// Returns empty string for unknown states.
func Region(uf string) string {
	return states[utils.NormalizeUF(uf)].Region
}

// StateName returns the full name of a UF, or "" when unknown.
func StateName(uf string) string {
	return states[utils.NormalizeUF(uf)].Name
}

// StateFromName resolves "São Paulo" / "sao paulo" / "SP" to the UF.
func StateFromName(name string) string {
	if uf := utils.NormalizeUF(name); uf != "" {
		return uf
	}
	n := fold(name)
	for uf, s := range states {
		if fold(s.Name) == n {
			return uf
		}
	}
	return ""
}

// LocationPath builds "region|UF|city|district" from geocoder address components.
// Only components that are present are included; results outside Brazil give "".
func LocationPath(components []maps.AddressComponent) string {
	var country, uf, city, district string
	for _, c := range components {
		for _, t := range c.Types {
			switch t {
			case "country":
				country = c.ShortName
			case "administrative_area_level_1":
				uf = StateFromName(c.ShortName)
				if uf == "" {
					uf = StateFromName(c.LongName)
				}
			case "administrative_area_level_2":
				if city == "" {
					city = c.LongName
				}
			case "locality":
				city = c.LongName
			case "sublocality", "sublocality_level_1":
				district = c.LongName
			}
		}
	}
	if country != "" && !strings.EqualFold(country, "BR") {
		return ""
	}

	var parts []string
	if uf != "" {
		parts = append(parts, Region(uf), uf)
	}
	for _, p := range []string{city, district} {
		if p != "" {
			parts = append(parts, NormalizeName(p))
		}
	}
	return strings.Join(parts, "|")
}

// NormalizeName converts a string to lowercase with spaces replaced by underscores.
func NormalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(normalized, " ", "_")
}

var accents = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ç", "c",
)

func fold(s string) string {
	return accents.Replace(strings.ToLower(strings.TrimSpace(s)))
}
