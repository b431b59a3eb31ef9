package models

import (
	"time"
)

type NotificationType string

const (
	NotificationStreakMilestone NotificationType = "streak_milestone"
	NotificationStreakUpdate    NotificationType = "streak_update"
	NotificationStreakReminder  NotificationType = "streak_reminder"
)

type NotificationPriority string

const (
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

// Notification is an ephemeral record surfaced to the user. Created here,
// read and deleted by the client-facing collaborator. Delivery transport
// (push) is out of scope; rows only.
type Notification struct {
	ID       string               `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string               `gorm:"index;not null" json:"user_id"`
	Type     NotificationType     `gorm:"type:varchar(32);not null" json:"type"`
	Title    string               `gorm:"not null" json:"title"`
	Body     string               `gorm:"type:text" json:"body"`
	Data     map[string]any       `gorm:"serializer:json;type:jsonb" json:"data,omitempty"`
	Priority NotificationPriority `gorm:"type:varchar(16);default:'normal'" json:"priority"`
	Read     bool                 `gorm:"index;default:false" json:"read"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
