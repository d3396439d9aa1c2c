package enrichment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"fleet-crm/internal/models"
	errs "fleet-crm/pkg/errors"
)

type mockGeocoder struct {
	calls   int
	lastReq *maps.GeocodingRequest
	results []maps.GeocodingResult
	err     error
}

func (m *mockGeocoder) Geocode(_ context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	m.calls++
	m.lastReq = r
	return m.results, m.err
}

func paulista() maps.GeocodingResult {
	return maps.GeocodingResult{
		FormattedAddress: "Av. Paulista - Bela Vista, São Paulo - SP, 01310-100, Brasil",
		AddressComponents: []maps.AddressComponent{
			{LongName: "Avenida Paulista", ShortName: "Av. Paulista", Types: []string{"route"}},
			{LongName: "Bela Vista", ShortName: "Bela Vista", Types: []string{"sublocality_level_1", "sublocality", "political"}},
			{LongName: "São Paulo", ShortName: "São Paulo", Types: []string{"administrative_area_level_2", "political"}},
			{LongName: "São Paulo", ShortName: "SP", Types: []string{"administrative_area_level_1", "political"}},
			{LongName: "01310-100", ShortName: "01310-100", Types: []string{"postal_code"}},
		},
		Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: -23.56, Lng: -46.65}},
	}
}

func TestEnrichAddress_FillsBlanksOnly(t *testing.T) {
	mg := &mockGeocoder{results: []maps.GeocodingResult{paulista()}}
	e := NewWithClient(mg, 100, nil)

	in := models.Address{Street: "Rua Minha", Number: "1000", Zip: "01310-100"}
	res, err := e.EnrichAddress(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "Rua Minha", res.Address.Street)
	assert.Equal(t, "Bela Vista", res.Address.District)
	assert.Equal(t, "São Paulo", res.Address.City)
	assert.Equal(t, "SP", res.Address.State)
	assert.Equal(t, "01310-100", res.Address.Zip)
	assert.Equal(t, []string{"district", "city", "state"}, res.Filled)
	assert.InDelta(t, -23.56, res.Lat, 1e-9)
	assert.Equal(t, "Sudeste", res.Region)
	assert.Equal(t, "Sudeste|SP|são_paulo|bela_vista", res.Path)

	assert.Equal(t, "01310100", mg.lastReq.Components[maps.ComponentPostalCode])
	assert.Equal(t, "BR", mg.lastReq.Components[maps.ComponentCountry])
	assert.Empty(t, in.City)
}

func TestEnrichAddress_Errors(t *testing.T) {
	e := NewWithClient(nil, 1, nil)
	_, err := e.EnrichAddress(context.Background(), models.Address{Zip: "01310100"})
	assert.ErrorIs(t, err, ErrDisabled)

	mg := &mockGeocoder{}
	e = NewWithClient(mg, 100, nil)
	_, err = e.EnrichAddress(context.Background(), models.Address{Zip: "123"})
	assert.True(t, errs.Is(err, errs.ErrValidation))
	assert.Zero(t, mg.calls)

	_, err = e.EnrichAddress(context.Background(), models.Address{Zip: "01310100"})
	assert.True(t, errs.Is(err, errs.ErrNotFound))

	mg.err = errors.New("quota")
	_, err = e.EnrichAddress(context.Background(), models.Address{Zip: "01310100"})
	assert.True(t, errs.Is(err, errs.ErrExternal))
}

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	e, err := New("", 0, nil)
	require.NoError(t, err)
	assert.False(t, e.Enabled())
}

func TestEnrichAddress_CancelledWhileRateLimited(t *testing.T) {
	e := NewWithClient(&mockGeocoder{results: []maps.GeocodingResult{paulista()}}, 0.001, nil)
	_, err := e.EnrichAddress(context.Background(), models.Address{Zip: "01310100"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.EnrichAddress(ctx, models.Address{Zip: "01310100"})
	assert.Error(t, err)
}
