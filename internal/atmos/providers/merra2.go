package providers

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openatmos/airhealth-api/internal/atmos"
)

// MERRA-2 M2T1NXSLV grid: latitude 0.5° over [-90,90] (361 rows), longitude
// 0.625° over [-180,180] (576 columns), hourly time steps.
const (
	merra2MaxLatIdx = 360
	merra2MaxLonIdx = 575
)

const merra2Collection = "M2T1NXSLV.5.12.4"

// kelvinZeroC is the Kelvin offset applied exactly once per adapter call.
const kelvinZeroC = 273.15

// MERRA2 fetches point scalars from the MERRA-2 reanalysis archive via
// OPeNDAP ascii subsetting. Requires Earthdata basic auth; a missing
// credential degrades to absent results, never to an error.
type MERRA2 struct {
	base     string
	username string
	password string
	fetcher  *Fetcher
	log      *zap.Logger
}

// NewMERRA2 builds the reanalysis adapter.
func NewMERRA2(base, username, password string, fetcher *Fetcher, log *zap.Logger) *MERRA2 {
	return &MERRA2{
		base:     strings.TrimRight(base, "/"),
		username: username,
		password: password,
		fetcher:  fetcher,
		log:      log,
	}
}

func merra2LatIdx(lat float64) int {
	return clampIdx(int(math.Round((lat+90.0)/0.5)), merra2MaxLatIdx)
}

func merra2LonIdx(lon float64) int {
	return clampIdx(int(math.Round((lon+180.0)/0.625)), merra2MaxLonIdx)
}

func clampIdx(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// merra2Stream selects the production stream for a year. Recent years all
// live on stream 400.
func merra2Stream(year int) string {
	return "400"
}

func (m *MERRA2) asciiURL(when time.Time) string {
	stream := merra2Stream(when.Year())
	return fmt.Sprintf("%s/opendap/MERRA2/%s/%04d/%02d/MERRA2_%s.tavg1_2d_slv_Nx.%s.nc4.ascii",
		m.base, merra2Collection, when.Year(), int(when.Month()), stream, when.Format("20060102"))
}

// fetchScalar pulls one grid-cell value for variable at (lat, lon) and the
// hour bucket of when. Every failure mode maps to an absent result whose
// descriptor note explains what happened.
func (m *MERRA2) fetchScalar(ctx context.Context, variable string, lat, lon float64, when time.Time) atmos.Result {
	when = when.UTC()
	t := when.Hour()
	j := merra2LatIdx(lat)
	i := merra2LonIdx(lon)

	url := fmt.Sprintf("%s?%s[%d:%d][%d:%d][%d:%d]", m.asciiURL(when), variable, t, t, j, j, i, i)

	var opts []RequestOption
	if m.username != "" && m.password != "" {
		opts = append(opts, WithBasicAuth(m.username, m.password))
	}

	txt, err := m.fetcher.GetText(ctx, url, opts...)
	if err != nil {
		m.log.Debug("merra2 fetch failed", zap.String("variable", variable), zap.Error(err))
		return atmos.Absent(atmos.SourceDescriptor{
			Name:         fmt.Sprintf("MERRA-2 %s (error)", variable),
			URL:          url,
			Note:         "OPeNDAP request or credentials failed",
			AuthRequired: true,
		})
	}

	val, ok := parseAsciiScalar(variable, txt)
	if !ok {
		return atmos.Absent(atmos.SourceDescriptor{
			Name:         fmt.Sprintf("MERRA-2 %s (ascii subset)", variable),
			URL:          url,
			Note:         "empty subset or index out of range",
			AuthRequired: true,
		})
	}

	return atmos.Ok(val, atmos.SourceDescriptor{
		Name:         fmt.Sprintf("MERRA-2 %s", variable),
		URL:          url,
		Note:         "OPeNDAP subset .ascii",
		AuthRequired: true,
	})
}

// parseAsciiScalar extracts "VAR[t][j][i] = value" from an OPeNDAP ascii body.
func parseAsciiScalar(variable, body string) (float64, bool) {
	re := regexp.MustCompile(regexp.QuoteMeta(variable) + `\[\d+\]\[\d+\]\[\d+\]\s*=\s*([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)`)
	match := re.FindStringSubmatch(body)
	if match == nil {
		return 0, false
	}
	val, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// Temperature returns the 2 m air temperature in °C (archive stores Kelvin).
func (m *MERRA2) Temperature(ctx context.Context, lat, lon float64, when time.Time) atmos.Result {
	res := m.fetchScalar(ctx, "T2M", lat, lon, when)
	if !res.OK {
		return res
	}
	return atmos.Ok(res.Value-kelvinZeroC, res.Sources...)
}

// Humidity returns the 2 m relative humidity in %.
func (m *MERRA2) Humidity(ctx context.Context, lat, lon float64, when time.Time) atmos.Result {
	return m.fetchScalar(ctx, "RH2M", lat, lon, when)
}

// SkinTemp returns the surface skin temperature in °C.
func (m *MERRA2) SkinTemp(ctx context.Context, lat, lon float64, when time.Time) atmos.Result {
	res := m.fetchScalar(ctx, "TS", lat, lon, when)
	if !res.OK {
		return res
	}
	return atmos.Ok(res.Value-kelvinZeroC, res.Sources...)
}

// WindSpeed returns the 10 m wind magnitude in m/s from the U10M and V10M
// components. The two component fetches are independent and run concurrently;
// both must resolve for a live value.
func (m *MERRA2) WindSpeed(ctx context.Context, lat, lon float64, when time.Time) atmos.Result {
	var (
		wg         sync.WaitGroup
		uRes, vRes atmos.Result
	)
	wg.Add(2)
	go func() { defer wg.Done(); uRes = m.fetchScalar(ctx, "U10M", lat, lon, when) }()
	go func() { defer wg.Done(); vRes = m.fetchScalar(ctx, "V10M", lat, lon, when) }()
	wg.Wait()

	sources := append(uRes.Sources, vRes.Sources...)
	if !uRes.OK || !vRes.OK {
		return atmos.Absent(sources...)
	}

	speed := math.Sqrt(uRes.Value*uRes.Value + vRes.Value*vRes.Value)
	return atmos.Ok(speed, sources...)
}

// URLTemplates returns OPeNDAP archive templates for the hourly single-level
// product. Descriptor mode only.
func (m *MERRA2) URLTemplates(variables []string) []atmos.SourceDescriptor {
	return []atmos.SourceDescriptor{
		{
			Name:         "MERRA-2 (OPeNDAP 1h single-level)",
			URL:          fmt.Sprintf("%s/opendap/MERRA2/%s/<YYYY>/<MM>/MERRA2_<stream>.<YYYYMMDD>.nc4", m.base, merra2Collection),
			Note:         fmt.Sprintf("Vars: %s | subset by lat/lon/time | Earthdata required", strings.Join(variables, ", ")),
			AuthRequired: true,
		},
	}
}
