package models

import "time"

// Document is one stored document. Data holds the JSON body; ETag changes on
// every write and is what listeners compare to detect a change.
type Document struct {
	Path       string    `gorm:"primaryKey;column:path"`
	Collection string    `gorm:"column:collection;index"`
	DocID      string    `gorm:"column:doc_id"`
	Data       string    `gorm:"column:data"`
	ETag       string    `gorm:"column:etag"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentChange is the notification published when a document is written or deleted.
type DocumentChange struct {
	Path          string `json:"path"`
	ETag          string `json:"etag"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
