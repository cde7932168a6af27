package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/toyz/infrabuilder/internal/models"
	"github.com/toyz/infrabuilder/internal/routetable"
)

// FiberServer serves routes with Fiber v2
type FiberServer struct {
	app *fiber.App
}

// NewFiberServer creates a Fiber app that reports errors as JSON
func NewFiberServer() *FiberServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(recover.New())

	return &FiberServer{app: app}
}

// Register binds route to the Fiber router
func (fs *FiberServer) Register(route models.Route) error {
	path, err := routetable.ParsePath(route.Path)
	if err != nil {
		return err
	}

	fiberPath := routerPath(path, colonParam, func(string) string { return "*" })
	fs.app.Add(route.Method.String(), fiberPath, func(c *fiber.Ctx) error {
		// Fiber reuses parameter buffers once the handler returns
		params := captureParams(path, func(name string, greedy bool) string {
			if greedy {
				return strings.Clone(c.Params("*"))
			}
			return strings.Clone(c.Params(name))
		})
		return c.Status(fiber.StatusOK).JSON(newRecord(route, params))
	})
	return nil
}

// Do dispatches req through the app without a timeout
func (fs *FiberServer) Do(req *http.Request) (*http.Response, error) {
	return fs.app.Test(req, -1)
}

// Start starts the server
func (fs *FiberServer) Start(addr string) error {
	return fs.app.Listen(addr)
}

// Stop stops the server
func (fs *FiberServer) Stop(ctx context.Context) error {
	return fs.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fs *FiberServer) Name() string {
	return "Fiber"
}

// App returns the underlying Fiber app
func (fs *FiberServer) App() *fiber.App {
	return fs.app
}
