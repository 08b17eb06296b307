package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/jhoicas/produmax-api/pkg/logger"
)

// HeaderRequestID cabecera de correlación devuelta en cada respuesta.
const HeaderRequestID = "X-Request-ID"

// httpObserver es el contrato mínimo del recolector de métricas HTTP.
// Lo implementa *observability.Metrics.
type httpObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// CommonOptions dependencias de los middlewares compartidos.
type CommonOptions struct {
	Log         *logger.Logger
	Metrics     httpObserver
	CORSOrigins string // lista separada por comas; vacío = "*"
}

// UseCommon instala los middlewares de toda la app: log de peticiones, recover, CORS,
// cabeceras de seguridad y métricas. El log va primero para registrar los pánicos recuperados.
func UseCommon(app *fiber.App, opts CommonOptions) {
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(RequestLogger(opts.Log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + HeaderRequestID,
		ExposeHeaders: HeaderRequestID + ", Content-Disposition",
	}))
	app.Use(helmet.New(helmet.Config{
		// las imágenes de /uploads y la UI de /docs se consumen desde otros orígenes
		CrossOriginResourcePolicy: "cross-origin",
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))
	if opts.Metrics != nil {
		app.Use(Metrics(opts.Metrics))
	}
}

// RequestLogger asigna un request id y registra método, ruta, status y duración.
// Los errores 5xx guardados por respondError se registran con nivel error.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(HeaderRequestID, reqID)

		chainErr := c.Next()
		if chainErr != nil {
			// el ErrorHandler de la app aún no escribió la respuesta
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
			if err, ok := c.Locals(LocalError).(error); ok {
				ev = ev.Err(err)
			}
		}
		ev.Str("request_id", reqID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("http request")
		return nil
	}
}

// Metrics registra cada petición en el observer usando la ruta registrada
// (p. ej. /api/orders/:id) para no crear una serie por ID.
func Metrics(obs httpObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		obs.ObserveHTTP(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
