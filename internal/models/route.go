package models

import (
	"github.com/google/uuid"

	"github.com/toyz/infrabuilder/internal/annotations"
)

// Route is an entry of the route table: an annotation bound to the unit it came from
type Route struct {
	annotations.RouteDescriptor
	Unit         string `json:"unit"`
	ManifestPath string `json:"manifest"`
}

// RouteTable is the set of routes produced by one discovery run, ordered by
// (path, method) with no two entries sharing a (method, path) pair.
type RouteTable struct {
	RunID  uuid.UUID `json:"run_id"`
	Routes []Route   `json:"routes"`
}

// Lookup returns the route bound to method and path
func (t *RouteTable) Lookup(method annotations.HTTPMethod, path string) (Route, bool) {
	for _, r := range t.Routes {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Len returns the number of routes in the table
func (t *RouteTable) Len() int {
	return len(t.Routes)
}
