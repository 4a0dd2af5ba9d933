package models

import "time"

// Notification types written by the booking triggers
const (
	NotificationTypeGarageBooking = "garage_booking"
	NotificationTypeRentalBooking = "rental_booking"
)

// NotificationDraft is a notification that has been decided on but not yet stored.
type NotificationDraft struct {
	UserID    string  `json:"userId"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	Type      string  `json:"type"`
	BookingID string  `json:"bookingId"`
	Status    string  `json:"status"`
	CarMake   *string `json:"carMake"`
	CarModel  *string `json:"carModel"`
}

// Notification model as stored in the notifications collection.
// Timestamp is left zero so the database assigns it on write.
type Notification struct {
	ID        string    `json:"id,omitempty" firestore:"-" bson:"_id,omitempty"`
	UserID    string    `json:"userId" firestore:"userId" bson:"userId"`
	Title     string    `json:"title" firestore:"title" bson:"title"`
	Body      string    `json:"body" firestore:"body" bson:"body"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp,serverTimestamp" bson:"timestamp"`
	Read      bool      `json:"read" firestore:"read" bson:"read"`
	Type      string    `json:"type" firestore:"type" bson:"type"`
	BookingID string    `json:"bookingId" firestore:"bookingId" bson:"bookingId"`
	Status    string    `json:"status" firestore:"status" bson:"status"`
	CarMake   *string   `json:"carMake" firestore:"carMake" bson:"carMake"`
	CarModel  *string   `json:"carModel" firestore:"carModel" bson:"carModel"`
}

// NewNotification builds an unread notification from a draft.
func NewNotification(draft NotificationDraft) Notification {
	return Notification{
		UserID:    draft.UserID,
		Title:     draft.Title,
		Body:      draft.Body,
		Read:      false,
		Type:      draft.Type,
		BookingID: draft.BookingID,
		Status:    draft.Status,
		CarMake:   draft.CarMake,
		CarModel:  draft.CarModel,
	}
}
