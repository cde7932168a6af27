package routetable

import (
	"encoding/json"
	"io"

	"github.com/toyz/infrabuilder/internal/models"
)

// WriteJSON writes the handoff document consumed by the build and deploy stages:
//
//	{"run_id": "...", "routes": [{"method", "path", "handler", "unit", "manifest"}]}
func WriteJSON(w io.Writer, table *models.RouteTable) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(table)
}

// ReadJSON decodes a handoff document
func ReadJSON(r io.Reader) (*models.RouteTable, error) {
	var table models.RouteTable
	if err := json.NewDecoder(r).Decode(&table); err != nil {
		return nil, err
	}
	return &table, nil
}
