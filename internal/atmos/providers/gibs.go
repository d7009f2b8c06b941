package providers

import (
	"fmt"
	"strings"
	"time"

	"github.com/openatmos/airhealth-api/internal/atmos"
	"github.com/openatmos/airhealth-api/internal/geo"
)

// Worldview builds GIBS Worldview snapshot references: GeoTIFF downloads
// over a bounding box around a point. Descriptor only, never fetched, no
// authentication.
type Worldview struct {
	base string
}

// NewWorldview builds the imagery reference builder.
func NewWorldview(base string) *Worldview {
	return &Worldview{base: strings.TrimRight(base, "/")}
}

// Snapshot returns a GeoTIFF snapshot reference for the given layer on a
// 0.4°-wide box centered on the point.
func (w *Worldview) Snapshot(lat, lon float64, when time.Time, layer string) atmos.SourceDescriptor {
	return w.snapshot(lat, lon, when, layer, 0.2, 1024, 1024)
}

func (w *Worldview) snapshot(lat, lon float64, when time.Time, layer string, bboxHalfDeg float64, width, height int) atmos.SourceDescriptor {
	bbox := geo.PointBBox(lat, lon, bboxHalfDeg)
	url := fmt.Sprintf("%s?REQUEST=GetSnapshot&TIME=%s&BBOX=%.4f,%.4f,%.4f,%.4f&CRS=EPSG:4326&LAYERS=%s&FORMAT=image/geotiff&WIDTH=%d&HEIGHT=%d",
		w.base, when.UTC().Format("2006-01-02"), bbox.South, bbox.West, bbox.North, bbox.East, layer, width, height)

	return atmos.SourceDescriptor{
		Name:         "GIBS Worldview " + layer,
		URL:          url,
		Note:         "GeoTIFF via Worldview Snapshots; direct download, no auth",
		AuthRequired: false,
	}
}
