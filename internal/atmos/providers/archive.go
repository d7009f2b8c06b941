package providers

import (
	"github.com/openatmos/airhealth-api/internal/atmos"
)

// Archive serves static search templates for archives that only appear as
// references in descriptor mode: AIRS daily temperature/humidity, and the
// PO.DAAC ocean-wind products.
type Archive struct{}

// NewArchive builds the static catalog.
func NewArchive() *Archive {
	return &Archive{}
}

// TemperatureSources returns the AIRS L3 daily archive template.
func (a *Archive) TemperatureSources() []atmos.SourceDescriptor {
	return []atmos.SourceDescriptor{
		{
			Name:         "AIRS L3 Daily (OPeNDAP)",
			URL:          "https://acdisc.gesdisc.eosdis.nasa.gov/opendap/Aqua_AIRS_Level3/AIRS3STD.006/<YYYY>/<AIRS*.hdf>",
			Note:         "daily temperature/humidity; Earthdata required",
			AuthRequired: true,
		},
	}
}

// OceanWindSources returns the satellite ocean-wind search templates.
func (a *Archive) OceanWindSources() []atmos.SourceDescriptor {
	return []atmos.SourceDescriptor{
		{
			Name:         "CYGNSS Winds (PO.DAAC) - template",
			URL:          "https://podaac.earthdata.nasa.gov/search?q=CYGNSS%20winds",
			Note:         "granule download via Earthdata; filter by bbox/time",
			AuthRequired: true,
		},
		{
			Name:         "AMSR2 Ocean Surface Winds - template",
			URL:          "https://podaac.earthdata.nasa.gov/search?q=AMSR2%20wind",
			Note:         "AMSR2 (JAXA) indexed at PO.DAAC; use bbox/time",
			AuthRequired: true,
		},
	}
}
