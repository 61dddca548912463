// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/OCAP2/hunter/internal/model"
	"github.com/OCAP2/hunter/pkg/core"
)

// detailsToJSON converts event details to datatypes.JSON for DB storage.
func detailsToJSON(details map[string]any) (datatypes.JSON, error) {
	if len(details) == 0 {
		return datatypes.JSON("{}"), nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// CoreToTrapEvent converts a core.TrapEvent to a GORM model.TrapEvent.
func CoreToTrapEvent(e core.TrapEvent) (model.TrapEvent, error) {
	details, err := detailsToJSON(e.Details)
	if err != nil {
		return model.TrapEvent{}, err
	}
	return model.TrapEvent{
		ID:       e.ID,
		Time:     e.Time,
		Task:     e.Task,
		TrapType: e.TrapType,
		Kind:     string(e.Kind),
		X:        e.Coordinate.X,
		Y:        e.Coordinate.Y,
		Plane:    e.Coordinate.Plane,
		Strategy: e.Strategy,
		Details:  details,
	}, nil
}

// TrapEventToCore converts a GORM model.TrapEvent back to a core.TrapEvent.
// Unreadable details are dropped.
func TrapEventToCore(m model.TrapEvent) core.TrapEvent {
	var details map[string]any
	if len(m.Details) > 0 {
		if err := json.Unmarshal(m.Details, &details); err != nil || len(details) == 0 {
			details = nil
		}
	}
	return core.TrapEvent{
		ID:         m.ID,
		Time:       m.Time,
		Task:       m.Task,
		TrapType:   m.TrapType,
		Kind:       core.EventKind(m.Kind),
		Coordinate: core.NewCoordinate(m.X, m.Y, m.Plane),
		Strategy:   m.Strategy,
		Details:    details,
	}
}
