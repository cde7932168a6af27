package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/toyz/infrabuilder/internal/models"
	"github.com/toyz/infrabuilder/internal/routetable"
)

// EchoServer serves routes with Echo v4
type EchoServer struct {
	engine *echo.Echo
}

// NewEchoServer creates an Echo server with banner output disabled
func NewEchoServer() *EchoServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return &EchoServer{engine: e}
}

// Register binds route to the Echo router
func (es *EchoServer) Register(route models.Route) error {
	path, err := routetable.ParsePath(route.Path)
	if err != nil {
		return err
	}

	echoPath := routerPath(path, colonParam, func(string) string { return "*" })
	es.engine.Add(route.Method.String(), echoPath, func(c echo.Context) error {
		params := captureParams(path, func(name string, greedy bool) string {
			if greedy {
				return c.Param("*")
			}
			return c.Param(name)
		})
		return c.JSON(http.StatusOK, newRecord(route, params))
	})
	return nil
}

// Do dispatches req through the router
func (es *EchoServer) Do(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	es.engine.ServeHTTP(rec, req)
	return rec.Result(), nil
}

// Start starts the server
func (es *EchoServer) Start(addr string) error {
	return es.engine.Start(addr)
}

// Stop stops the server
func (es *EchoServer) Stop(ctx context.Context) error {
	return es.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (es *EchoServer) Name() string {
	return "Echo"
}

// Engine returns the underlying Echo instance
func (es *EchoServer) Engine() *echo.Echo {
	return es.engine
}
