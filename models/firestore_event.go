package models

import "cloud.google.com/go/firestore/apiv1/firestorepb"

// Firestore document event types delivered through Eventarc
const (
	FirestoreEventCreated = "google.cloud.firestore.document.v1.created"
	FirestoreEventUpdated = "google.cloud.firestore.document.v1.updated"
	FirestoreEventDeleted = "google.cloud.firestore.document.v1.deleted"
	FirestoreEventWritten = "google.cloud.firestore.document.v1.written"
)

// DocumentEventData is the payload of a Firestore document event
// (google.events.cloud.firestore.v1.DocumentEventData). OldValue is nil for
// creations, Value is nil for deletions.
type DocumentEventData struct {
	Value      *firestorepb.Document
	OldValue   *firestorepb.Document
	UpdateMask *firestorepb.DocumentMask
}
