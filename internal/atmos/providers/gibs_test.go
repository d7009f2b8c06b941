package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorldviewSnapshot(t *testing.T) {
	w := NewWorldview("https://wvs.earthdata.nasa.gov/api/v1/snapshot")
	when := time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)

	src := w.Snapshot(40.7, -74.0, when, "MODIS_Terra_Aerosol")

	assert.Equal(t, "GIBS Worldview MODIS_Terra_Aerosol", src.Name)
	assert.False(t, src.AuthRequired)
	assert.Contains(t, src.URL, "TIME=2024-06-01")
	assert.Contains(t, src.URL, "BBOX=40.5000,-74.2000,40.9000,-73.8000")
	assert.Contains(t, src.URL, "LAYERS=MODIS_Terra_Aerosol")
	assert.Contains(t, src.URL, "FORMAT=image/geotiff")
	assert.Contains(t, src.URL, "WIDTH=1024")
}
