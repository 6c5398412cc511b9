package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelake/remodel-cli/internal/model"
)

func TestBuildSellersWithGeo(t *testing.T) {
	sellers := []model.SourceSeller{{SellerID: "s1", CityRaw: ptr("Campinas"), ZipPrefix: ptr(13000)}}
	geo := []model.GeolocationRow{{ZipPrefix: ptr(13000), City: ptr("campinas"), State: ptr("SP"), Lat: -22.9, Lng: -47.06}}

	docs := buildSellers(sellers, geo)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "s1", doc.SellerID)
	assert.Equal(t, 13000, *doc.ZipPrefix)
	assert.Equal(t, "Campinas", *doc.CityNorm)
	assert.True(t, doc.HasGeo)
	require.NotNil(t, doc.Geo)
	assert.Equal(t, []float64{-47.06, -22.9}, doc.Geo.Location.Coordinates)
	assert.Equal(t, "SP", *doc.Geo.State)
}

func TestBuildSellersGeoAbsentCases(t *testing.T) {
	tests := []struct {
		name string
		geo  []model.GeolocationRow
	}{
		{"no geolocation row", nil},
		{"string coordinates", []model.GeolocationRow{{ZipPrefix: ptr(13000), Lat: "-22.9", Lng: "-47.06"}}},
		{"missing coordinates", []model.GeolocationRow{{ZipPrefix: ptr(13000)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sellers := []model.SourceSeller{{SellerID: "s1", ZipPrefix: ptr(13000)}}
			docs := buildSellers(sellers, tt.geo)

			assert.False(t, docs[0].HasGeo)
			assert.Nil(t, docs[0].Geo)
		})
	}
}

func TestBuildSellersWithoutZip(t *testing.T) {
	docs := buildSellers([]model.SourceSeller{{SellerID: "s1", CityRaw: ptr("itu")}}, []model.GeolocationRow{{ZipPrefix: ptr(1), Lat: 1.0, Lng: 2.0}})

	require.Len(t, docs, 1)
	assert.Nil(t, docs[0].ZipPrefix)
	assert.False(t, docs[0].HasGeo)
	assert.Nil(t, docs[0].Geo)
	assert.Equal(t, "itu", *docs[0].CityNorm)
}
