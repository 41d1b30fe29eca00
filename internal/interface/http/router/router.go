package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/slopeselector/internal/identity"
	"github.com/wichananm65/slopeselector/internal/interface/http/handler"
)

type Options struct {
	Tokens       *identity.Tokens
	CookieSecure bool
	AllowOrigins string
	Log          logrus.FieldLogger
}

// New builds the fiber app serving the pages. Every route after /_healthz runs with a
// validated browser cookie.
func New(pages *handler.PageHandler, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(requestLogger(opts.Log))
	setupCORS(app, opts.AllowOrigins)

	app.Get("/_healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Use(ensureBrowser(opts.Tokens, opts.CookieSecure))
	app.Use(jwtware.New(jwtware.Config{
		SigningKey:    opts.Tokens.Secret(),
		SigningMethod: "HS256",
		ContextKey:    handler.LocalsToken,
		TokenLookup:   "cookie:" + identity.CookieName,
	}))

	pages.RegisterRoutes(app)
	return app
}

func setupCORS(app *fiber.App, origins string) {
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
}

// requestLogger puts a request-scoped entry into locals and logs the outcome.
func requestLogger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		entry := log.WithFields(logrus.Fields{
			"http.req.id":     c.Locals(requestid.ConfigDefault.ContextKey),
			"http.req.method": c.Method(),
			"http.req.path":   c.Path(),
		})
		c.Locals(handler.LocalsLogger, logrus.FieldLogger(entry))

		err := c.Next()
		entry.WithFields(logrus.Fields{
			"http.resp.status":  c.Response().StatusCode(),
			"http.resp.took_ms": time.Since(start).Milliseconds(),
		}).Debug("request complete")
		return err
	}
}

// ensureBrowser issues a browser cookie when the request has no valid one. The new
// token is also written into the request so the cookie check downstream accepts it.
func ensureBrowser(tokens *identity.Tokens, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := tokens.Parse(c.Cookies(identity.CookieName)); err == nil {
			return c.Next()
		}

		token, err := tokens.Issue(uuid.NewString())
		if err != nil {
			return err
		}
		c.Cookie(&fiber.Cookie{
			Name:     identity.CookieName,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().AddDate(1, 0, 0),
			HTTPOnly: true,
			Secure:   secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		c.Request().Header.SetCookie(identity.CookieName, token)
		return c.Next()
	}
}
