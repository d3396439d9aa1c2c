package geography

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"googlemaps.github.io/maps"
)

func TestRegion(t *testing.T) {
	tests := []struct {
		uf       string
		expected string
	}{
		{"SP", "Sudeste"},
		{"rs", "Sul"},
		{" df ", "Centro-Oeste"},
		{"BA", "Nordeste"},
		{"AM", "Norte"},
		{"XX", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.uf, func(t *testing.T) {
			assert.Equal(t, tt.expected, Region(tt.uf))
		})
	}
	assert.Len(t, states, 27)
}

func TestStateFromName(t *testing.T) {
	assert.Equal(t, "SP", StateFromName("São Paulo"))
	assert.Equal(t, "SP", StateFromName("sao paulo"))
	assert.Equal(t, "PR", StateFromName("pr"))
	assert.Equal(t, "", StateFromName("Texas"))
	assert.Equal(t, "Espírito Santo", StateName("es"))
}

func TestLocationPath(t *testing.T) {
	comps := []maps.AddressComponent{
		{LongName: "Pinheiros", Types: []string{"sublocality_level_1", "sublocality", "political"}},
		{LongName: "São Paulo", Types: []string{"administrative_area_level_2", "political"}},
		{LongName: "São Paulo", ShortName: "SP", Types: []string{"administrative_area_level_1", "political"}},
		{LongName: "Brasil", ShortName: "BR", Types: []string{"country", "political"}},
	}
	assert.Equal(t, "Sudeste|SP|são_paulo|pinheiros", LocationPath(comps))

	comps[3].ShortName = "AR"
	assert.Equal(t, "", LocationPath(comps))
	assert.Equal(t, "", LocationPath(nil))
}
