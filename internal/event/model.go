package event

import (
	"time"

	"gorm.io/datatypes"
)

// Event is the sole persisted entity: one calendar entry with an ordered
// image gallery. Gallery entries are opaque references handed out by the
// media store; their order is display order.
type Event struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Title        string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description  string                      `gorm:"type:text;not null" json:"description"`
	Date         time.Time                   `gorm:"not null;index" json:"date"`
	Location     string                      `gorm:"type:text" json:"location"`
	Contacts     string                      `gorm:"type:text" json:"contacts"`
	ImageGallery datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"imageGallery"`
	CreatedAt    time.Time                   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Event) TableName() string {
	return "events"
}

// MaxImagesPerRequest caps image files accepted in one request, matching
// the client's gallery limit.
const MaxImagesPerRequest = 5
