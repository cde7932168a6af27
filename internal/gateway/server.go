// Package gateway serves a route table behind one of several HTTP routers so
// that a deployment can be previewed locally. Routes answer with a record of
// the unit that would receive the request; programs are never executed.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/toyz/infrabuilder/internal/errors"
	"github.com/toyz/infrabuilder/internal/models"
	"github.com/toyz/infrabuilder/internal/routetable"
)

// Router names accepted by New
const (
	EchoRouter  = "echo"
	GinRouter   = "gin"
	FiberRouter = "fiber"
)

// DispatchRecord is the body every preview route responds with
type DispatchRecord struct {
	Unit    string            `json:"unit"`
	Handler string            `json:"handler"`
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Params  map[string]string `json:"params"`
}

// Server is implemented by each router adapter
type Server interface {
	// Register binds a route of the table to the router
	Register(route models.Route) error
	// Do dispatches a request in-process without a listener
	Do(req *http.Request) (*http.Response, error)
	Start(addr string) error
	Stop(ctx context.Context) error
	Name() string
}

// Routers returns the supported router names
func Routers() []string {
	return []string{EchoRouter, GinRouter, FiberRouter}
}

// New creates the adapter for the named router
func New(router string) (Server, error) {
	switch strings.ToLower(router) {
	case EchoRouter, "":
		return NewEchoServer(), nil
	case GinRouter:
		return NewGinServer(), nil
	case FiberRouter:
		return NewFiberServer(), nil
	default:
		return nil, errors.ConfigurationError("preview",
			fmt.Sprintf("unknown router %q, expected one of %s", router, strings.Join(Routers(), ", ")))
	}
}

// RegisterTable registers every route of table, collecting the failures
func RegisterTable(s Server, table *models.RouteTable) error {
	var errs *errors.MultipleErrors
	for _, route := range table.Routes {
		if err := s.Register(route); err != nil {
			errors.AddToMultiple(&errs, errors.Wrapf(errors.RoutePathErrorCode, err,
				"%s: cannot register %s %s", s.Name(), route.Method, route.Path))
		}
	}
	return errs.ErrOrNil()
}

// newRecord builds the response for route with the captured parameter values
func newRecord(route models.Route, params map[string]string) DispatchRecord {
	if params == nil {
		params = map[string]string{}
	}
	return DispatchRecord{
		Unit:    route.Unit,
		Handler: route.HandlerName,
		Method:  route.Method.String(),
		Path:    route.Path,
		Params:  params,
	}
}

// routerPath renders a route path in a router's syntax. param and greedy
// render a named parameter segment and a trailing greedy segment.
func routerPath(path routetable.RoutePath, param, greedy func(name string) string) string {
	var b strings.Builder
	for _, part := range path.Parts() {
		b.WriteByte('/')
		switch part.Type {
		case routetable.ParameterPart:
			b.WriteString(param(part.Value))
		case routetable.GreedyPart:
			b.WriteString(greedy(part.Value))
		default:
			b.WriteString(part.Value)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// captureParams collects the values of path's parameters. lookup receives the
// parameter name and whether it is the greedy remainder.
func captureParams(path routetable.RoutePath, lookup func(name string, greedy bool) string) map[string]string {
	params := make(map[string]string)
	for _, part := range path.Parts() {
		switch part.Type {
		case routetable.ParameterPart:
			params[part.Value] = lookup(part.Value, false)
		case routetable.GreedyPart:
			params[part.Value] = lookup(part.Value, true)
		}
	}
	return params
}

func colonParam(name string) string {
	return ":" + name
}
