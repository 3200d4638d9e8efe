package lib

import (
	"context"
	"parkspot/src/config"

	"googlemaps.github.io/maps"
)

var mapsClient *maps.Client

func GetMapsClient() (*maps.Client, error) {
	if mapsClient != nil {
		return mapsClient, nil
	}
	cli, err := maps.NewClient(maps.WithAPIKey(config.GAPI_API_KEY))
	if err != nil {
		return nil, err
	}
	mapsClient = cli
	return cli, nil
}

// GeocodeAddress resolves a street address to coordinates, used to
// pre-fill a marker position before the owner fine-tunes it on the map.
func GeocodeAddress(ctx context.Context, address string) (lat float64, lng float64, err error) {
	cli, err := GetMapsClient()
	if err != nil {
		return 0, 0, err
	}
	results, err := cli.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	loc := results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}
