package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/storelake/remodel-cli/internal/model"
)

// BuildSellers builds and commits tp2_sellers_geo: each seller with its
// geocoded point when the zip prefix resolves to valid coordinates.
func (p *Pipeline) BuildSellers(ctx context.Context) (int, error) {
	sellers, err := p.store.SourceSellers(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read sellers")
	}
	geo, err := p.store.Geolocation(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: read geolocation")
	}

	docs := buildSellers(sellers, geo)
	if err := p.store.UpsertSellers(ctx, docs); err != nil {
		return 0, eris.Wrap(err, "pipeline: write sellers")
	}
	return len(docs), nil
}

func buildSellers(sellers []model.SourceSeller, geo []model.GeolocationRow) []model.SellerGeo {
	geoByZip := indexGeoByZip(geo)

	out := make([]model.SellerGeo, 0, len(sellers))
	for _, s := range sellers {
		doc := model.SellerGeo{
			SellerID:  s.SellerID,
			ZipPrefix: s.ZipPrefix,
			CityNorm:  s.CityRaw,
		}
		var geoRow *model.GeolocationRow
		if s.ZipPrefix != nil {
			geoRow = geoByZip[*s.ZipPrefix]
		}
		if gp := buildGeoPoint(geoRow); gp != nil {
			doc.Geo = gp
			doc.HasGeo = true
		}
		out = append(out, doc)
	}
	return out
}
