package models

import "time"

// NotificationCategory classifies a notification
type NotificationCategory string

// Notification categories
const (
	NotifyCaseReceived      NotificationCategory = "CASE_RECEIVED"
	NotifyCaseVerified      NotificationCategory = "CASE_VERIFIED"
	NotifyCaseRejected      NotificationCategory = "CASE_REJECTED"
	NotifyScheduleCreated   NotificationCategory = "SCHEDULE_CREATED"
	NotifyScheduleUpdated   NotificationCategory = "SCHEDULE_UPDATED"
	NotifyScheduleCancelled NotificationCategory = "SCHEDULE_CANCELLED"
	NotifyStatusChanged     NotificationCategory = "STATUS_CHANGED"
	NotifyResultFinalized   NotificationCategory = "RESULT_FINALIZED"
)

// NotificationCategories lists every category
var NotificationCategories = []NotificationCategory{
	NotifyCaseReceived, NotifyCaseVerified, NotifyCaseRejected, NotifyScheduleCreated,
	NotifyScheduleUpdated, NotifyScheduleCancelled, NotifyStatusChanged, NotifyResultFinalized,
}

// Valid reports whether c is a known category
func (c NotificationCategory) Valid() bool { return oneOf(c, NotificationCategories) }

// RelatedEntity points a notification at the record it is about
type RelatedEntity struct {
	ID   string
	Type string
}

// Notification holds the structure for the notifications collection
type Notification struct {
	ID                string               `json:"id" bson:"_id"`
	RecipientID       string               `json:"recipientId" bson:"recipientId"`
	Category          NotificationCategory `json:"category" bson:"category"`
	Title             string               `json:"title" bson:"title"`
	Message           string               `json:"message" bson:"message"`
	RelatedEntityID   string               `json:"relatedEntityId,omitempty" bson:"relatedEntityId"`
	RelatedEntityType string               `json:"relatedEntityType,omitempty" bson:"relatedEntityType"`
	Read              bool                 `json:"read" bson:"read"`
	ReadAt            *time.Time           `json:"readAt,omitempty" bson:"readAt"`
	CreatedAt         time.Time            `json:"createdAt" bson:"createdAt"`
	DeliveredAt       *time.Time           `json:"deliveredAt,omitempty" bson:"deliveredAt"`
}
