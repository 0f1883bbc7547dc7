package httpapi

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/drying-rack-forecast/internal/forecast"
)

var validate = validator.New()

// ViewConfig controls how the view endpoint derives labels.
type ViewConfig struct {
	Location    forecast.Location
	DefaultLang string
	// Zone is the time zone "today" is taken in. Nil means time.Local.
	Zone *time.Location
	// Now replaces time.Now, mainly for tests.
	Now func() time.Time
}

func (c ViewConfig) today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	zone := c.Zone
	if zone == nil {
		zone = time.Local
	}
	return now().In(zone)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, session *forecast.Session, cfg ViewConfig) {
	v1 := app.Group("/api/v1")

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		return c.JSON(session.State())
	})

	v1.Get("/forecast/view", func(c *fiber.Ctx) error {
		q := viewQuery{Lang: c.Query("lang")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		lang := q.Lang
		if lang == "" {
			lang = cfg.DefaultLang
		}

		view := forecast.BuildView(session.State(), cfg.Location, cfg.today(), forecast.LocaleFor(lang))
		return c.JSON(view)
	})

	v1.Post("/forecast/refresh", func(c *fiber.Ctx) error {
		if !session.Retry() {
			return fiber.NewError(fiber.StatusConflict, "forecast fetch already in progress")
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"started": true,
		})
	})
}

// RegisterHealth adds the health endpoint reporting data provenance.
func RegisterHealth(app *fiber.App, session *forecast.Session, service string) {
	app.Get("/health", func(c *fiber.Ctx) error {
		st := session.State()
		resp := fiber.Map{
			"status":      "ok",
			"service":     service,
			"fallback":    st.IsFallback,
			"loading":     st.IsLoading,
			"lastUpdated": st.LastUpdated,
		}
		if st.LastError != nil {
			resp["lastError"] = st.LastError.Kind
		}
		return c.JSON(resp)
	})
}

// ErrorHandler renders errors in the service's JSON error shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// viewQuery holds query parameters for the view endpoint.
type viewQuery struct {
	Lang string `validate:"omitempty,oneof=th en"`
}
