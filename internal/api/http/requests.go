package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/openatmos/airhealth-api/internal/atmos"
	"github.com/openatmos/airhealth-api/internal/timeutil"
)

var validate = validator.New()

// locationBody uses pointers so that 0 (equator, prime meridian) passes the
// required check.
type locationBody struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

// baseBody holds the fields shared by every data endpoint.
type baseBody struct {
	Location     locationBody `json:"location"`
	When         string       `json:"when"`
	RadiusKM     *float64     `json:"radius_km" validate:"omitempty,gt=0"`
	LocationName string       `json:"location_name"`
	OutputMode   string       `json:"output_mode" validate:"omitempty,oneof=raw predict"`
}

func (b *baseBody) predict() bool {
	return b.OutputMode == "predict"
}

// toBundleRequest validates the shared fields and resolves defaults: radius
// 25 km, timestamp "now" in UTC when absent.
func (b *baseBody) toBundleRequest() (atmos.BundleRequest, error) {
	when, err := timeutil.ParseWhen(b.When)
	if err != nil {
		return atmos.BundleRequest{}, err
	}

	radius := 25.0
	if b.RadiusKM != nil {
		radius = *b.RadiusKM
	}

	return atmos.BundleRequest{
		Location:     atmos.Location{Lat: *b.Location.Lat, Lon: *b.Location.Lon},
		When:         when,
		RadiusKM:     radius,
		LocationName: b.LocationName,
	}, nil
}

type airQualityBody struct {
	baseBody
	IncludeGround *bool  `json:"include_ground"`
	IncludeSat    *bool  `json:"include_sat"`
	GIBSLayer     string `json:"gibs_layer"`
}

type precipBody struct {
	baseBody
	HoursBack *int `json:"hours_back" validate:"omitempty,gte=0"`
	HoursFwd  *int `json:"hours_fwd" validate:"omitempty,gte=0"`
}

type temperatureBody struct {
	baseBody
	DaysBack *int `json:"days_back" validate:"omitempty,gte=0"`
	DaysFwd  *int `json:"days_fwd" validate:"omitempty,gte=0"`
}

type windBody struct {
	baseBody
	HoursBack *int `json:"hours_back" validate:"omitempty,gte=0"`
	HoursFwd  *int `json:"hours_fwd" validate:"omitempty,gte=0"`
}

// bindBody parses and validates a JSON request body into out.
func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func boolDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
