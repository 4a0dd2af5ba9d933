package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/booking_notifier/models"
)

// FirestoreNotificationRepository inserts notifications into a Firestore collection.
type FirestoreNotificationRepository struct {
	collection *firestore.CollectionRef
}

func NewFirestoreNotificationRepository(client *firestore.Client, collection string) *FirestoreNotificationRepository {
	return &FirestoreNotificationRepository{
		collection: client.Collection(collection),
	}
}

// CreateNotification adds a new document with an auto-generated id. The
// timestamp field is filled in by Firestore.
func (r *FirestoreNotificationRepository) CreateNotification(ctx context.Context, draft models.NotificationDraft) (string, error) {
	ref, _, err := r.collection.Add(ctx, models.NewNotification(draft))
	if err != nil {
		return "", fmt.Errorf("failed to add notification: %w", err)
	}
	return ref.ID, nil
}

// MongoNotificationRepository inserts notifications into a MongoDB collection.
type MongoNotificationRepository struct {
	collection *mongo.Collection
	newID      func() string
}

func NewMongoNotificationRepository(db *mongo.Client, dbName, collection string) *MongoNotificationRepository {
	return &MongoNotificationRepository{
		collection: db.Database(dbName).Collection(collection),
		newID:      uuid.NewString,
	}
}

// CreateNotification upserts under a fresh id so the server can stamp the
// creation time with $currentDate. The id is never reused, so this is always an insert.
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, draft models.NotificationDraft) (string, error) {
	id := r.newID()
	filter := bson.M{"_id": id}
	update := bson.M{
		"$setOnInsert": notificationFields(models.NewNotification(draft)),
		"$currentDate": bson.M{"timestamp": bson.M{"$type": "date"}},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("failed to insert notification: %w", err)
	}
	return id, nil
}

func notificationFields(n models.Notification) bson.M {
	return bson.M{
		"userId":    n.UserID,
		"title":     n.Title,
		"body":      n.Body,
		"read":      n.Read,
		"type":      n.Type,
		"bookingId": n.BookingID,
		"status":    n.Status,
		"carMake":   n.CarMake,
		"carModel":  n.CarModel,
	}
}
