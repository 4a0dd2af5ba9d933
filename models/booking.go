package models

// Booking is the part of a garage or rental booking document the notifier reads.
// Bookings are owned by the booking-management side; this service only observes them.
type Booking struct {
	ID       string  `json:"id,omitempty" firestore:"-" bson:"_id,omitempty"`
	UserID   string  `json:"userId" firestore:"userId" bson:"userId"`
	Status   *string `json:"status,omitempty" firestore:"status" bson:"status,omitempty"` // nil when the field is missing
	CarMake  string  `json:"carMake,omitempty" firestore:"carMake" bson:"carMake,omitempty"`
	CarModel string  `json:"carModel,omitempty" firestore:"carModel" bson:"carModel,omitempty"`
}

// StatusValue returns the status or an empty string when the field is missing.
func (b Booking) StatusValue() string {
	if b.Status == nil {
		return ""
	}
	return *b.Status
}

// SameStatus reports whether two snapshots carry the same status, comparing exactly.
// Two snapshots that both lack the field are considered equal.
func SameStatus(before, after Booking) bool {
	if before.Status == nil || after.Status == nil {
		return before.Status == nil && after.Status == nil
	}
	return *before.Status == *after.Status
}
