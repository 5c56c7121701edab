package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/docgap"
	"github.com/fwojciec/docgap/audit"
	docgaphttp "github.com/fwojciec/docgap/http"
	docgapprom "github.com/fwojciec/docgap/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// shutdownTimeout bounds how long in-flight requests may finish after the
// server is asked to stop.
const shutdownTimeout = 30 * time.Second

// Run executes the serve command until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	addr := c.Addr
	if addr == "" {
		addr = deps.Config.Server.Addr
	}

	app := NewServer(deps)

	errc := make(chan error, 1)
	go func() {
		errc <- app.Listen(addr)
	}()
	deps.Logger.Info("server listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-deps.Ctx.Done():
	}

	deps.Logger.Info("server shutting down")
	return app.ShutdownWithTimeout(shutdownTimeout)
}

// NewServer returns the HTTP API:
//
//	POST /api/validate          run a validation request
//	GET  /api/health/:domain    sitemap health of a domain
//	GET  /api/results/:session  persisted output of a session
//	POST /jobs/discover         sitemap discovery job
//	POST /jobs/probe            link health probe job
//	GET  /metrics               Prometheus metrics
func NewServer(deps *Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "docgap",
		DisableStartupMessage: true,
		BodyLimit:             10 << 20,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())

	h := &handlers{deps: deps}
	api := app.Group("/api")
	api.Post("/validate", h.validate)
	api.Get("/health/:domain", h.health)
	api.Get("/results/:session", h.results)

	app.Post(docgaphttp.DiscoverPath, h.discover)
	app.Post(docgaphttp.ProbePath, h.probe)

	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(docgapprom.Handler(deps.Gatherer)))
	}
	return app
}

type handlers struct {
	deps *Dependencies
}

func (h *handlers) validate(c *fiber.Ctx) error {
	var req docgap.ValidationRequest
	if err := c.BodyParser(&req); err != nil {
		return docgap.Errorf(docgap.EINVALID, "invalid request body: %v", err)
	}
	if req.SessionID == "" {
		req.SessionID = h.deps.NewSessionID()
	}

	out, err := h.deps.Validator.Run(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *handlers) health(c *fiber.Ctx) error {
	domain := c.Params("domain")
	summary := h.deps.Health.Check(c.UserContext(), domain)
	if summary == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fmt.Sprintf("sitemap health for %s is unavailable", docgap.NormalizeDomain(domain)),
		})
	}
	return c.JSON(summary)
}

func (h *handlers) results(c *fiber.Ctx) error {
	out, err := audit.LoadResults(c.UserContext(), h.deps.Store, c.Params("session"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *handlers) discover(c *fiber.Ctx) error {
	var req docgaphttp.DiscoverRequest
	if err := c.BodyParser(&req); err != nil || req.SitemapURL == "" {
		return docgap.Errorf(docgap.EINVALID, "sitemapUrl required")
	}
	result, err := h.deps.Discoverer.Discover(c.UserContext(), req.SitemapURL)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *handlers) probe(c *fiber.Ctx) error {
	var req docgaphttp.ProbeRequest
	if err := c.BodyParser(&req); err != nil {
		return docgap.Errorf(docgap.EINVALID, "invalid request body: %v", err)
	}
	result, err := h.deps.Prober.Probe(c.UserContext(), req.URLs)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// errorHandler maps application error codes to HTTP statuses.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	status := fiber.StatusInternalServerError
	switch docgap.ErrorCode(err) {
	case docgap.EINVALID:
		status = fiber.StatusBadRequest
	case docgap.ENOTFOUND:
		status = fiber.StatusNotFound
	case docgap.ECONFLICT:
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"error": docgap.ErrorMessage(err)})
}
