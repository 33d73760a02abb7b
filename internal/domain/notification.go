package domain

import "time"

// Notification is an inbox entry created when an alarm fires. AlarmID is a
// soft link; the alarm may since have been deleted.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	AlarmID        *string   `json:"alarm_id,omitempty" dynamodbav:"alarm_id,omitempty"`
	Message        string    `json:"message" dynamodbav:"message"`
	IsRead         bool      `json:"is_read" dynamodbav:"is_read"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
}
