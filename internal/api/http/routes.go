package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/openatmos/airhealth-api/internal/atmos"
)

// RegisterRoutes wires the data endpoints into the Fiber app. Each endpoint
// accepts a JSON body and returns either a descriptor bundle (output_mode
// "raw", the default) or a synthesized bundle (output_mode "predict"). A
// malformed request is the only 4xx case; upstream trouble never surfaces as
// an error, only as fallback provenance.
func RegisterRoutes(app *fiber.App, service *atmos.Service) {
	data := app.Group("/data")

	data.Post("/air_quality", func(c *fiber.Ctx) error {
		var body airQualityBody
		if err := bindBody(c, &body); err != nil {
			return err
		}
		base, err := body.toBundleRequest()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		layer := body.GIBSLayer
		if layer == "" {
			layer = "MODIS_Terra_Aerosol"
		}
		req := atmos.AirQualityRequest{
			BundleRequest: base,
			IncludeGround: boolDefault(body.IncludeGround, true),
			IncludeSat:    boolDefault(body.IncludeSat, true),
			GIBSLayer:     layer,
		}

		if body.predict() {
			return c.JSON(service.AirQualityPredict(c.Context(), req))
		}
		return c.JSON(service.AirQualityRaw(c.Context(), req))
	})

	data.Post("/precipitation", func(c *fiber.Ctx) error {
		var body precipBody
		if err := bindBody(c, &body); err != nil {
			return err
		}
		base, err := body.toBundleRequest()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		req := atmos.PrecipRequest{
			BundleRequest: base,
			HoursBack:     intDefault(body.HoursBack, 24),
			HoursFwd:      intDefault(body.HoursFwd, 24),
		}

		if body.predict() {
			return c.JSON(service.PrecipitationPredict(c.Context(), req))
		}
		return c.JSON(service.PrecipitationRaw(c.Context(), req))
	})

	data.Post("/temperature", func(c *fiber.Ctx) error {
		var body temperatureBody
		if err := bindBody(c, &body); err != nil {
			return err
		}
		base, err := body.toBundleRequest()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		req := atmos.TemperatureRequest{
			BundleRequest: base,
			DaysBack:      intDefault(body.DaysBack, 2),
			DaysFwd:       intDefault(body.DaysFwd, 2),
		}

		if body.predict() {
			return c.JSON(service.TemperaturePredict(c.Context(), req))
		}
		return c.JSON(service.TemperatureRaw(c.Context(), req))
	})

	data.Post("/wind", func(c *fiber.Ctx) error {
		var body windBody
		if err := bindBody(c, &body); err != nil {
			return err
		}
		base, err := body.toBundleRequest()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		req := atmos.WindRequest{
			BundleRequest: base,
			HoursBack:     intDefault(body.HoursBack, 24),
			HoursFwd:      intDefault(body.HoursFwd, 48),
		}

		if body.predict() {
			return c.JSON(service.WindPredict(c.Context(), req))
		}
		return c.JSON(service.WindRaw(c.Context(), req))
	})
}
