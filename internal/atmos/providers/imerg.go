package providers

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openatmos/airhealth-api/internal/atmos"
)

// IMERG half-hourly grid: 0.1° over [-90,90] (1800 rows) and [-180,180]
// (3600 columns).
const (
	imergMaxLatIdx = 1799
	imergMaxLonIdx = 3599
)

const imergCollection = "GPM_3IMERGHH.07"

var imergCellRe = regexp.MustCompile(`precipitationCal\[\d+\]\[\d+\]\s*=\s*([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)`)

// Loose numeric-token scan used when the primary pattern yields nothing.
var numberRe = regexp.MustCompile(`[-+]?\d*\.?\d+(?:[eE][-+]?\d+)?`)

// IMERG fetches the satellite-derived precipitation rate (precipitationCal,
// mm/h) for the grid cell nearest a point, via OPeNDAP ascii subsetting of
// the half-hourly V07 product. Requires Earthdata basic auth.
type IMERG struct {
	base     string
	username string
	password string
	fetcher  *Fetcher
	log      *zap.Logger
}

// NewIMERG builds the precipitation adapter.
func NewIMERG(base, username, password string, fetcher *Fetcher, log *zap.Logger) *IMERG {
	return &IMERG{
		base:     strings.TrimRight(base, "/"),
		username: username,
		password: password,
		fetcher:  fetcher,
		log:      log,
	}
}

func imergLatIdx(lat float64) int {
	return clampIdx(int(math.Round((lat+90.0)*10.0)), imergMaxLatIdx)
}

func imergLonIdx(lon float64) int {
	return clampIdx(int(math.Round((lon+180.0)*10.0)), imergMaxLonIdx)
}

// halfHourWindow returns the half-hour bucket containing t.
func halfHourWindow(t time.Time) (time.Time, time.Time) {
	minute := 0
	if t.Minute() >= 30 {
		minute = 30
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, 0, 0, t.Location())
	end := start.Add(29*time.Minute + 59*time.Second)
	return start, end
}

// granuleName builds the half-hourly granule filename for the bucket
// containing when.
func granuleName(when time.Time) string {
	start, end := halfHourWindow(when)
	return fmt.Sprintf("3B-HHR-L.MS.MRG.3IMERG.%s-S%s-E%s.V07B.HDF5",
		when.Format("20060102"), start.Format("150405"), end.Format("150405"))
}

func (p *IMERG) asciiURL(when time.Time) string {
	return fmt.Sprintf("%s/opendap/GPM_L3/%s/%04d/%02d/%02d/%s.ascii",
		p.base, imergCollection, when.Year(), int(when.Month()), when.Day(), granuleName(when))
}

// Rate returns the precipitation rate in mm/h at the nearest grid cell, or
// the average over a (2r+1)² cell neighborhood when radiusCells > 0.
func (p *IMERG) Rate(ctx context.Context, lat, lon float64, when time.Time, radiusCells int) atmos.Result {
	when = when.UTC()
	iy := imergLatIdx(lat)
	ix := imergLonIdx(lon)

	y0, y1 := clampIdx(iy-radiusCells, imergMaxLatIdx), clampIdx(iy+radiusCells, imergMaxLatIdx)
	x0, x1 := clampIdx(ix-radiusCells, imergMaxLonIdx), clampIdx(ix+radiusCells, imergMaxLonIdx)

	url := fmt.Sprintf("%s?precipitationCal[%d:%d][%d:%d]", p.asciiURL(when), y0, y1, x0, x1)

	var opts []RequestOption
	if p.username != "" && p.password != "" {
		opts = append(opts, WithBasicAuth(p.username, p.password))
	}

	txt, err := p.fetcher.GetText(ctx, url, opts...)
	if err != nil {
		p.log.Debug("imerg fetch failed", zap.Error(err))
		return atmos.Absent(atmos.SourceDescriptor{
			Name:         "IMERG (error)",
			URL:          url,
			Note:         "OPeNDAP request or credentials failed",
			AuthRequired: true,
		})
	}

	vals := parseImergCells(txt)
	if len(vals) == 0 {
		return atmos.Absent(atmos.SourceDescriptor{
			Name:         "IMERG (ascii subset)",
			URL:          url,
			Note:         "no data at pixel",
			AuthRequired: true,
		})
	}

	var sum float64
	for _, v := range vals {
		sum += v
	}
	avg := sum / float64(len(vals))

	return atmos.Ok(avg, atmos.SourceDescriptor{
		Name:         "IMERG precipitationCal (mm/h)",
		URL:          url,
		Note:         "OPeNDAP subset .ascii",
		AuthRequired: true,
	})
}

// parseImergCells extracts cell values via the documented pattern, falling
// back to a loose numeric scan of the Data: section.
func parseImergCells(body string) []float64 {
	var vals []float64
	for _, m := range imergCellRe.FindAllStringSubmatch(body, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			vals = append(vals, v)
		}
	}
	if len(vals) > 0 {
		return vals
	}

	section := body
	if idx := strings.Index(body, "Data:"); idx >= 0 {
		section = body[idx+len("Data:"):]
	}
	for _, tok := range numberRe.FindAllString(section, -1) {
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			vals = append(vals, v)
		}
	}
	return vals
}

// Templates returns archive references covering [when-hoursBack, when+hoursFwd]:
// the ascii subset endpoint for the center granule plus a search template for
// the full window. Descriptor mode only.
func (p *IMERG) Templates(when time.Time, hoursBack, hoursFwd int) []atmos.SourceDescriptor {
	when = when.UTC()
	from := when.Add(-time.Duration(hoursBack) * time.Hour)
	to := when.Add(time.Duration(hoursFwd) * time.Hour)

	return []atmos.SourceDescriptor{
		{
			Name:         "IMERG V07 half-hourly (OPeNDAP)",
			URL:          p.asciiURL(when),
			Note:         "ascii subset of precipitationCal; Earthdata required",
			AuthRequired: true,
		},
		{
			Name: "IMERG V07 granule search",
			URL:  fmt.Sprintf("%s/opendap/GPM_L3/%s/contents.html", p.base, imergCollection),
			Note: fmt.Sprintf("half-hourly granules %s .. %s",
				from.Format(time.RFC3339), to.Format(time.RFC3339)),
			AuthRequired: true,
		},
	}
}
