package routetable

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/infrabuilder/internal/annotations"
	"github.com/toyz/infrabuilder/internal/errors"
	"github.com/toyz/infrabuilder/internal/models"
)

func route(unit string, method annotations.HTTPMethod, path string) models.Route {
	return models.Route{
		RouteDescriptor: annotations.RouteDescriptor{Method: method, Path: path, HandlerName: "main"},
		Unit:            unit,
		ManifestPath:    unit + "/Cargo.toml",
	}
}

func TestAssembleOrdersRoutes(t *testing.T) {
	result := Assemble([]models.Route{
		route("delete-user", annotations.MethodDelete, "/users/{id}"),
		route("list-users", annotations.MethodGet, "/users"),
		route("get-user", annotations.MethodGet, "/users/{id}"),
		route("health", annotations.MethodHead, "/health"),
	}, DefaultOptions())

	require.NoError(t, result.Err())
	assert.Empty(t, result.Rejected)
	assert.Empty(t, result.Conflicts)
	assert.NotEqual(t, uuid.Nil, result.Table.RunID)

	var got []string
	for _, r := range result.Table.Routes {
		got = append(got, r.Method.String()+" "+r.Path+" "+r.Unit)
	}
	assert.Equal(t, []string{
		"HEAD /health health",
		"GET /users list-users",
		"GET /users/{id} get-user",
		"DELETE /users/{id} delete-user",
	}, got)
}

func TestAssembleDuplicateRoutesConflict(t *testing.T) {
	result := Assemble([]models.Route{
		route("a", annotations.MethodGet, "/x"),
		route("b", annotations.MethodGet, "/x"),
		route("c", annotations.MethodPost, "/x"),
	}, DefaultOptions())

	require.Len(t, result.Conflicts, 1)
	conflict := result.Conflicts[0]
	assert.Equal(t, annotations.MethodGet, conflict.Method)
	assert.Equal(t, "/x", conflict.Path)
	assert.Equal(t, []string{"a", "b"}, conflict.Units())

	require.Len(t, result.Table.Routes, 1, "every claimant of a conflict is excluded")
	assert.Equal(t, "c", result.Table.Routes[0].Unit)

	err := result.Err()
	require.Error(t, err)
	assert.Equal(t, errors.RouteConflictErrorCode, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "route GET /x is declared by more than one unit: a, b")
}

func TestAssembleConflictsOnEquivalentPatterns(t *testing.T) {
	result := Assemble([]models.Route{
		route("a", annotations.MethodGet, "/users/{id}"),
		route("b", annotations.MethodGet, "/users/{user_id}"),
	}, DefaultOptions())

	require.Len(t, result.Conflicts, 1)
	assert.Empty(t, result.Table.Routes)

	lenient := Assemble([]models.Route{
		route("a", annotations.MethodGet, "/users/{id}"),
		route("b", annotations.MethodGet, "/users/{user_id}"),
	}, Options{})
	assert.Empty(t, lenient.Conflicts)
	assert.Len(t, lenient.Table.Routes, 2)
}

func TestAssembleRejectsInvalidPaths(t *testing.T) {
	entries := []models.Route{
		route("ok", annotations.MethodGet, "/ok"),
		route("bad", annotations.MethodGet, "no-slash"),
	}

	result := Assemble(entries, DefaultOptions())
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "bad", result.Rejected[0].Route.Unit)
	assert.Equal(t, errors.RoutePathErrorCode, errors.CodeOf(result.Rejected[0].Err))
	assert.Len(t, result.Table.Routes, 1)
	assert.NoError(t, result.Err())

	lenient := Assemble(entries, Options{StrictPaths: false})
	assert.Empty(t, lenient.Rejected)
	assert.Len(t, lenient.Table.Routes, 2)
}

func TestAssembleEmpty(t *testing.T) {
	id := uuid.New()
	result := Assemble(nil, Options{RunID: id})
	assert.Equal(t, id, result.Table.RunID)
	assert.NotNil(t, result.Table.Routes)
	assert.Empty(t, result.Table.Routes)
	assert.NoError(t, result.Err())
}

func TestHandoffJSON(t *testing.T) {
	id := uuid.MustParse("6f1c2d3e-4a5b-4c6d-8e7f-9a0b1c2d3e4f")
	result := Assemble([]models.Route{route("users", annotations.MethodPost, "/users")}, Options{RunID: id, StrictPaths: true})

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, result.Table))

	assert.JSONEq(t, `{
		"run_id": "6f1c2d3e-4a5b-4c6d-8e7f-9a0b1c2d3e4f",
		"routes": [
			{"method": "POST", "path": "/users", "handler": "main", "unit": "users", "manifest": "users/Cargo.toml"}
		]
	}`, buf.String())

	decoded, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, id, decoded.RunID)
	require.Len(t, decoded.Routes, 1)
	assert.Equal(t, annotations.MethodPost, decoded.Routes[0].Method)
	assert.Equal(t, "users", decoded.Routes[0].Unit)
}
