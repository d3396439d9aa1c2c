// Package enrichment fills missing address fields from a CEP using Google geocoding.
// It only ever fills blanks; user-entered values are never overwritten.
package enrichment

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"

	"fleet-crm/internal/models"
	"fleet-crm/pkg/circuit"
	errs "fleet-crm/pkg/errors"
	"fleet-crm/pkg/geography"
	"fleet-crm/pkg/logging"
	"fleet-crm/pkg/metrics"
	"fleet-crm/pkg/utils"
)

// ErrDisabled is returned when no Google Maps API key is configured.
var ErrDisabled = errors.New("enrichment disabled: GOOGLE_MAPS_API_KEY not set")

// GeocodeClient is the subset of *maps.Client used here.
type GeocodeClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// Result lists what was found and which fields were filled.
type Result struct {
	Address          models.Address `json:"address"`
	FormattedAddress string         `json:"formatted_address,omitempty"`
	Filled           []string       `json:"filled"`
	Lat              float64        `json:"lat,omitempty"`
	Lng              float64        `json:"lng,omitempty"`
	Region           string         `json:"region,omitempty"`
	Path             string         `json:"path,omitempty"`
}

type Enricher struct {
	client  GeocodeClient
	limiter *rate.Limiter
	breaker *circuit.Breaker
	log     *logging.ComponentLogger

	lookups *metrics.Counter
	misses  *metrics.Counter
}

// New creates an enricher backed by the Google Geocoding API. An empty key disables it.
func New(apiKey string, ratePerSec float64, logger *logging.Logger) (*Enricher, error) {
	if apiKey == "" {
		return NewWithClient(nil, ratePerSec, logger), nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, errs.NewExternal("enrichment.New", "google", "failed to create maps client", err)
	}
	return NewWithClient(client, ratePerSec, logger), nil
}

func NewWithClient(client GeocodeClient, ratePerSec float64, logger *logging.Logger) *Enricher {
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return &Enricher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		breaker: circuit.New(circuit.DefaultConfig("google_geocode"), logger),
		log:     logger.WithComponent("enrichment"),
		lookups: metrics.Default.Counter("geocode_lookups_total", "Geocoding requests sent"),
		misses:  metrics.Default.Counter("geocode_misses_total", "Geocoding requests without a usable result"),
	}
}

func (e *Enricher) Enabled() bool { return e.client != nil }

// EnrichAddress geocodes addr.Zip (restricted to Brazil) and fills blank street, district,
// city and state. The input is not modified.
func (e *Enricher) EnrichAddress(ctx context.Context, addr models.Address) (Result, error) {
	if !e.Enabled() {
		return Result{}, ErrDisabled
	}
	cep := utils.NormalizeCEP(addr.Zip)
	if len(cep) != 8 {
		return Result{}, errs.NewValidation("enrichment.EnrichAddress", "CEP inválido", nil)
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	var results []maps.GeocodingResult
	e.lookups.Inc(1)
	err := e.breaker.Do(ctx, func(ctx context.Context) error {
		var gerr error
		results, gerr = e.client.Geocode(ctx, &maps.GeocodingRequest{
			Components: map[maps.Component]string{
				maps.ComponentPostalCode: cep,
				maps.ComponentCountry:    "BR",
			},
			Language: "pt-BR",
			Region:   "br",
		})
		return gerr
	})
	if err != nil {
		e.log.Warn("geocode failed", logging.String("cep", cep), logging.Error(err))
		return Result{}, errs.NewExternal("enrichment.EnrichAddress", "google", "geocode failed", err)
	}
	if len(results) == 0 {
		e.misses.Inc(1)
		return Result{}, errs.NewNotFound("enrichment.EnrichAddress", "cep", cep)
	}

	return merge(addr, results[0]), nil
}

// merge copies components from g into the blank fields of addr.
func merge(addr models.Address, g maps.GeocodingResult) Result {
	found := components(g)
	res := Result{
		FormattedAddress: g.FormattedAddress,
		Lat:              g.Geometry.Location.Lat,
		Lng:              g.Geometry.Location.Lng,
		Filled:           []string{},
		Path:             geography.LocationPath(g.AddressComponents),
	}
	fill := func(field string, dst *string, v string) {
		if utils.Blank(*dst) && v != "" {
			*dst = v
			res.Filled = append(res.Filled, field)
		}
	}
	fill("street", &addr.Street, found["route"])
	fill("district", &addr.District, found["sublocality"])
	fill("city", &addr.City, found["city"])
	fill("state", &addr.State, found["state"])
	res.Address = addr
	res.Region = geography.Region(addr.State)
	return res
}

func components(g maps.GeocodingResult) map[string]string {
	out := make(map[string]string)
	for _, c := range g.AddressComponents {
		for _, t := range c.Types {
			switch t {
			case "route":
				out["route"] = c.LongName
			case "sublocality", "sublocality_level_1":
				out["sublocality"] = c.LongName
			case "administrative_area_level_2":
				if out["city"] == "" {
					out["city"] = c.LongName
				}
			case "locality":
				out["city"] = c.LongName
			case "administrative_area_level_1":
				out["state"] = geography.StateFromName(c.ShortName)
				if out["state"] == "" {
					out["state"] = geography.StateFromName(c.LongName)
				}
			}
		}
	}
	return out
}
