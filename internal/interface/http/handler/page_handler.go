package handler

import (
	"bytes"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/slopeselector/internal/identity"
	"github.com/wichananm65/slopeselector/internal/interface/presenter"
	"github.com/wichananm65/slopeselector/internal/usecase"
)

// LocalsLogger is the fiber locals key holding the request's logrus entry.
const LocalsLogger = "log"

// LocalsToken is where the cookie middleware leaves the parsed browser token.
const LocalsToken = "user"

var errNoBrowser = errors.New("request carries no browser id")

type submitPayload struct {
	Prompt string `form:"prompt" validate:"required"`
}

type selectPayload struct {
	ID string `validate:"required,max=128,printascii"`
}

// PageHandler serves the recommendation pages for the browser named by the cookie.
type PageHandler struct {
	sessions *usecase.Sessions
	renderer *presenter.Renderer
	validate *validator.Validate
}

func NewPageHandler(sessions *usecase.Sessions, renderer *presenter.Renderer) *PageHandler {
	return &PageHandler{sessions: sessions, renderer: renderer, validate: validator.New()}
}

func (h *PageHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/", h.index)
	app.Get("/api/state", h.state)
	app.Post("/submit", h.submit)
	app.Post("/navigate/home", h.navigateHome)
	app.Post("/navigate/history", h.navigateHistory)
	app.Post("/back", h.back)
	app.Post("/history/:id", h.selectItem)
}

func (h *PageHandler) index(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return h.renderError(c, err, fiber.StatusInternalServerError)
	}
	var buf bytes.Buffer
	if err := h.renderer.RenderHTML(&buf, ctrl.State()); err != nil {
		return h.renderError(c, err, fiber.StatusInternalServerError)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *PageHandler) state(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		logger(c).WithError(err).Error("resolve session")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "session unavailable"})
	}
	return c.JSON(ctrl.State())
}

func (h *PageHandler) submit(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return h.renderError(c, err, fiber.StatusInternalServerError)
	}
	payload := new(submitPayload)
	if err := c.BodyParser(payload); err != nil {
		logger(c).WithError(err).Warn("bad submit form")
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	if err := h.validate.Struct(payload); err != nil || strings.TrimSpace(payload.Prompt) == "" {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	ctrl.Submit(c.UserContext(), payload.Prompt)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *PageHandler) navigateHome(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return h.renderError(c, err, fiber.StatusInternalServerError)
	}
	ctrl.NavigateHome()
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *PageHandler) navigateHistory(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return h.renderError(c, err, fiber.StatusInternalServerError)
	}
	ctrl.NavigateHistory(c.UserContext())
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *PageHandler) back(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return h.renderError(c, err, fiber.StatusInternalServerError)
	}
	ctrl.Back()
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *PageHandler) selectItem(c *fiber.Ctx) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return h.renderError(c, err, fiber.StatusInternalServerError)
	}
	payload := selectPayload{ID: c.Params("id")}
	if err := h.validate.Struct(payload); err != nil {
		logger(c).WithField("id", payload.ID).Warn("rejected history id")
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	ctrl.SelectItem(c.UserContext(), payload.ID)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *PageHandler) controller(c *fiber.Ctx) (*usecase.Controller, error) {
	tok, _ := c.Locals(LocalsToken).(*jwt.Token)
	browserID, ok := identity.BrowserID(tok)
	if !ok {
		return nil, errNoBrowser
	}
	return h.sessions.Controller(c.UserContext(), browserID)
}

func (h *PageHandler) renderError(c *fiber.Ctx, err error, code int) error {
	logger(c).WithError(err).Error("request error")
	c.Type("html", "utf-8")
	return c.Status(code).SendString("<!DOCTYPE html><title>SlopeSelector AI</title><h1>" + fiber.NewError(code).Message +
		"</h1><p>Something went wrong. Please reload the page.</p>")
}

// logger returns the request-scoped entry, falling back to the standard logger.
func logger(c *fiber.Ctx) logrus.FieldLogger {
	if l, ok := c.Locals(LocalsLogger).(logrus.FieldLogger); ok {
		return l
	}
	return logrus.StandardLogger()
}
