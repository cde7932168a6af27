package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/toyz/infrabuilder/internal/models"
	"github.com/toyz/infrabuilder/internal/routetable"
)

// GinServer serves routes with Gin
type GinServer struct {
	engine *gin.Engine

	mu     sync.Mutex
	server *http.Server
}

// NewGinServer creates a Gin engine with panic recovery and no request logging
func NewGinServer() *GinServer {
	engine := gin.New()
	engine.Use(gin.Recovery())
	return &GinServer{engine: engine}
}

// Register binds route to the Gin router. Gin panics on conflicting
// registrations; the panic is returned as an error.
func (gs *GinServer) Register(route models.Route) (err error) {
	path, err := routetable.ParsePath(route.Path)
	if err != nil {
		return err
	}

	ginPath := routerPath(path, colonParam, func(name string) string { return "*" + name })
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	gs.engine.Handle(route.Method.String(), ginPath, func(c *gin.Context) {
		params := captureParams(path, func(name string, greedy bool) string {
			if greedy {
				return strings.TrimPrefix(c.Param(name), "/")
			}
			return c.Param(name)
		})
		c.JSON(http.StatusOK, newRecord(route, params))
	})
	return nil
}

// Do dispatches req through the router
func (gs *GinServer) Do(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	gs.engine.ServeHTTP(rec, req)
	return rec.Result(), nil
}

// Start serves the engine on addr until Stop is called
func (gs *GinServer) Start(addr string) error {
	gs.mu.Lock()
	gs.server = &http.Server{Addr: addr, Handler: gs.engine}
	server := gs.server
	gs.mu.Unlock()

	return server.ListenAndServe()
}

// Stop shuts down the server started by Start
func (gs *GinServer) Stop(ctx context.Context) error {
	gs.mu.Lock()
	server := gs.server
	gs.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Name returns the adapter name
func (gs *GinServer) Name() string {
	return "Gin"
}

// Engine returns the underlying Gin engine
func (gs *GinServer) Engine() *gin.Engine {
	return gs.engine
}
