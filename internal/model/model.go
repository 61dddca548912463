package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&TrapEvent{},
}

// TrapEvent is one row of the hunting journal
type TrapEvent struct {
	ID       uint           `json:"id" gorm:"primarykey;autoIncrement"`
	Time     time.Time      `json:"time" gorm:"index:idx_trap_events_time"`
	Task     string         `json:"task" gorm:"size:128;index:idx_trap_events_task"`
	TrapType string         `json:"trapType" gorm:"size:64"`
	Kind     string         `json:"kind" gorm:"size:16;index:idx_trap_events_kind"`
	X        int            `json:"x"`
	Y        int            `json:"y"`
	Plane    int            `json:"plane"`
	Strategy string         `json:"strategy" gorm:"size:64"`
	Details  datatypes.JSON `json:"details"`
}

func (*TrapEvent) TableName() string {
	return "trap_events"
}

// KindCount is one row of a per-kind count query
type KindCount struct {
	Kind  string
	Count int
}
