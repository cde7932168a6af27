// Package routetable merges the routes extracted from deployable units into a
// single conflict-free table.
package routetable

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/toyz/infrabuilder/internal/annotations"
	"github.com/toyz/infrabuilder/internal/errors"
	"github.com/toyz/infrabuilder/internal/models"
)

// Options controls assembly
type Options struct {
	StrictPaths bool      // validate path syntax and compare paths by pattern
	RunID       uuid.UUID // identifies the run; a new one is generated when zero
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{StrictPaths: true}
}

// UnitFailure records a route that was left out of the table for a unit-local reason
type UnitFailure struct {
	Route models.Route
	Err   error
}

// Conflict is a (method, path) claimed by more than one unit
type Conflict struct {
	Method annotations.HTTPMethod
	Path   string
	Routes []models.Route // every claimant, in input order
}

// Units returns the names of the conflicting units
func (c Conflict) Units() []string {
	units := make([]string, len(c.Routes))
	for i, r := range c.Routes {
		units[i] = r.Unit
	}
	return units
}

// Error describes the conflict
func (c Conflict) Error() string {
	return fmt.Sprintf("route %s %s is declared by more than one unit: %s",
		c.Method, c.Path, strings.Join(c.Units(), ", "))
}

// Result is the outcome of assembling a route table
type Result struct {
	Table     *models.RouteTable
	Rejected  []UnitFailure
	Conflicts []Conflict
}

// Err returns a RouteConflictErrorCode error listing every conflict, or nil
func (r *Result) Err() error {
	var multi *errors.MultipleErrors
	for _, c := range r.Conflicts {
		err := errors.New(errors.RouteConflictErrorCode, c.Error()).
			WithContext("method", c.Method.String()).
			WithContext("path", c.Path).
			WithContext("units", c.Units()).
			WithSuggestion("give each unit a distinct method and path")
		errors.AddToMultiple(&multi, err)
	}
	if multi == nil {
		return nil
	}
	return multi.ErrOrNil()
}

// Assemble builds the route table from one route per deployable unit.
// Routes with invalid paths are rejected when StrictPaths is set; every route
// involved in a duplicate (method, path) is excluded and reported as a conflict.
func Assemble(entries []models.Route, opts Options) *Result {
	runID := opts.RunID
	if runID == uuid.Nil {
		runID = uuid.New()
	}

	result := &Result{Table: &models.RouteTable{RunID: runID, Routes: []models.Route{}}}

	type group struct {
		method annotations.HTTPMethod
		path   string
		routes []models.Route
	}
	var order []string
	groups := make(map[string]*group)

	for _, entry := range entries {
		key := entry.Path
		if opts.StrictPaths {
			parsed, err := ParsePath(entry.Path)
			if err != nil {
				result.Rejected = append(result.Rejected, UnitFailure{Route: entry, Err: err})
				continue
			}
			key = parsed.Pattern()
		}
		key = entry.Method.String() + " " + key

		g, ok := groups[key]
		if !ok {
			g = &group{method: entry.Method, path: entry.Path}
			groups[key] = g
			order = append(order, key)
		}
		g.routes = append(g.routes, entry)
	}

	for _, key := range order {
		g := groups[key]
		if len(g.routes) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{Method: g.method, Path: g.path, Routes: g.routes})
			continue
		}
		result.Table.Routes = append(result.Table.Routes, g.routes[0])
	}

	SortRoutes(result.Table.Routes)
	return result
}

// SortRoutes orders routes by path, then by method declaration order
func SortRoutes(routes []models.Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
}
