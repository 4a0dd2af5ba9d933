package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/HSouheill/booking_notifier/models"
)

var (
	// ErrMissingUserID means the updated booking has no user to notify.
	ErrMissingUserID = errors.New("booking has no userId")
	// ErrMissingStatus means the status field was removed from the booking.
	ErrMissingStatus = errors.New("booking has no status")
)

// Reasons reported when a change does not produce a notification
const (
	ReasonCreated       = "created"
	ReasonDeleted       = "deleted"
	ReasonUnchanged     = "unchanged"
	ReasonMissingUserID = "missing_user_id"
	ReasonMissingStatus = "missing_status"
)

// NotificationStore inserts notification documents. Every call creates a new record.
type NotificationStore interface {
	CreateNotification(ctx context.Context, draft models.NotificationDraft) (string, error)
}

// ChangeResult describes what a single booking change led to.
type ChangeResult struct {
	Created        bool
	NotificationID string
	Reason         string
}

// Decide turns a before/after pair into a notification draft. It returns a nil
// draft and nil error when the change is not worth a notification, and
// ErrMissingUserID or ErrMissingStatus when the booking cannot be notified on.
func (c *BookingCategory) Decide(bookingID string, before *models.Booking, after models.Booking) (*models.NotificationDraft, error) {
	if before == nil || models.SameStatus(*before, after) {
		return nil, nil
	}
	if after.UserID == "" {
		return nil, ErrMissingUserID
	}
	if after.Status == nil {
		return nil, ErrMissingStatus
	}

	status := *after.Status
	body := c.Message(status, MessageArgs{
		BookingID: bookingID,
		CarMake:   after.CarMake,
		CarModel:  after.CarModel,
	})

	return &models.NotificationDraft{
		UserID:    after.UserID,
		Title:     c.Title,
		Body:      body,
		Type:      c.NotificationType,
		BookingID: bookingID,
		Status:    status,
		CarMake:   nullableString(after.CarMake),
		CarModel:  nullableString(after.CarModel),
	}, nil
}

// nullableString stores empty values as null.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StatusNotifier writes a notification for each qualifying status change of one category.
type StatusNotifier struct {
	category     *BookingCategory
	store        NotificationStore
	logger       *log.Logger
	writeTimeout time.Duration
}

// NewStatusNotifier creates a notifier for a category backed by store.
func NewStatusNotifier(category *BookingCategory, store NotificationStore, writeTimeout time.Duration) *StatusNotifier {
	return &StatusNotifier{
		category:     category,
		store:        store,
		logger:       log.New(os.Stdout, "[NOTIFIER] ", log.LstdFlags),
		writeTimeout: writeTimeout,
	}
}

// SetLogger replaces the notifier's logger.
func (n *StatusNotifier) SetLogger(logger *log.Logger) {
	n.logger = logger
}

// Category returns the category this notifier serves.
func (n *StatusNotifier) Category() *BookingCategory {
	return n.category
}

// HandleChange processes one document change. A nil before means the booking
// was just created, a nil after that it was deleted; neither is notified.
// The only error returned is a failed write, which the caller should surface
// so the event gets redelivered.
func (n *StatusNotifier) HandleChange(ctx context.Context, bookingID string, before, after *models.Booking) (*ChangeResult, error) {
	if after == nil {
		n.logger.Printf("%s booking deleted, nothing to notify: %s", n.category.Name, bookingID)
		return &ChangeResult{Reason: ReasonDeleted}, nil
	}

	draft, err := n.category.Decide(bookingID, before, *after)
	switch {
	case errors.Is(err, ErrMissingUserID):
		n.logger.Printf("ERROR: No userId in %s booking %s", n.category.Name, bookingID)
		return &ChangeResult{Reason: ReasonMissingUserID}, nil
	case errors.Is(err, ErrMissingStatus):
		n.logger.Printf("ERROR: No status in %s booking %s", n.category.Name, bookingID)
		return &ChangeResult{Reason: ReasonMissingStatus}, nil
	case err != nil:
		return nil, err
	}
	if draft == nil {
		n.logger.Printf("%s status unchanged or new doc: %s", n.category.Name, bookingID)
		reason := ReasonUnchanged
		if before == nil {
			reason = ReasonCreated
		}
		return &ChangeResult{Reason: reason}, nil
	}

	if n.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.writeTimeout)
		defer cancel()
	}

	id, err := n.store.CreateNotification(ctx, *draft)
	if err != nil {
		return nil, fmt.Errorf("create %s notification for booking %s: %w", n.category.Name, bookingID, err)
	}

	n.logger.Printf("%s notification created for user %s", n.category.Name, draft.UserID)
	return &ChangeResult{Created: true, NotificationID: id}, nil
}
