package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&ArchiveInfo{},
	&RideRecord{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// ArchiveInfo describes the archive instance
type ArchiveInfo struct {
	gorm.Model
	Name          string `json:"name" gorm:"size:127"`
	SchemaVersion int    `json:"schemaVersion"`
}

func (*ArchiveInfo) TableName() string {
	return "archive_infos"
}

////////////////////////
// RIDE MODELS
////////////////////////

// RideRecord is one archived ride
type RideRecord struct {
	ID         uint      `json:"id" gorm:"primarykey;autoIncrement"`
	ArchivedAt time.Time `json:"archivedAt" gorm:"index:idx_ride_archived_at"`
	Source     string    `json:"source" gorm:"size:512"`
	Level      string    `json:"level" gorm:"size:64;index:idx_ride_level"`
	Link       uint32    `json:"link"`
	Frames     int32     `json:"frames"`
	Events     int       `json:"events"`
	DurationMs float64   `json:"durationMs"`
	Apples     int       `json:"apples"`
	// AppleTimesMs is a JSON array of apple-take times in milliseconds
	AppleTimesMs datatypes.JSON `json:"appleTimesMs"`
	Finished     bool           `json:"finished"`
	FinishMs     float64        `json:"finishMs"`
}

func (*RideRecord) TableName() string {
	return "rides"
}
