package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/cloudevents/sdk-go/v2/event"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/booking_notifier/models"
	"github.com/HSouheill/booking_notifier/services"
	"github.com/HSouheill/booking_notifier/utils"
)

var (
	// ErrUnsupportedEvent is returned for CloudEvent types the trigger does not handle.
	ErrUnsupportedEvent = errors.New("unsupported event type")
	// ErrEventTooLarge is returned when the request body exceeds maxEventBytes.
	ErrEventTooLarge = errors.New("event exceeds size limit")
)

// Two full Firestore documents (1 MiB each) plus the envelope.
const maxEventBytes = 3 << 20

// TriggerController receives Firestore document events for one booking collection.
type TriggerController struct {
	notifier *services.StatusNotifier
	logger   *log.Logger
}

func NewTriggerController(notifier *services.StatusNotifier) *TriggerController {
	return &TriggerController{
		notifier: notifier,
		logger:   log.New(os.Stdout, "[TRIGGER] ", log.LstdFlags),
	}
}

// Collection returns the booking collection this controller listens on.
func (tc *TriggerController) Collection() string {
	return tc.notifier.Category().Collection
}

// HandleDocumentEvent processes one Firestore document event delivered as a CloudEvent.
func (tc *TriggerController) HandleDocumentEvent(c echo.Context) error {
	ev, err := tc.readEvent(c.Request())
	if errors.Is(err, ErrEventTooLarge) {
		tc.logger.Printf("Rejected event on %s: %v", tc.Collection(), err)
		return c.JSON(http.StatusRequestEntityTooLarge, models.Response{
			Status:  http.StatusRequestEntityTooLarge,
			Message: "Event too large",
		})
	}
	if err != nil {
		tc.logger.Printf("Invalid event on %s: %v", tc.Collection(), err)
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid event",
		})
	}

	if err := checkEventType(ev.Type()); err != nil {
		tc.logger.Printf("Rejected event %s: %v", ev.ID(), err)
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	data, err := utils.DecodeDocumentEventData(ev.Data(), ev.DataContentType())
	if err != nil {
		tc.logger.Printf("Invalid document data in event %s: %v", ev.ID(), err)
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid document data",
		})
	}

	bookingID, err := tc.bookingID(ev.Subject(), data)
	if err != nil {
		tc.logger.Printf("Event %s is not for %s: %v", ev.ID(), tc.Collection(), err)
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Document is not in the watched collection",
		})
	}

	before := utils.BookingFromDocument(data.OldValue)
	after := utils.BookingFromDocument(data.Value)

	result, err := tc.notifier.HandleChange(c.Request().Context(), bookingID, before, after)
	if err != nil {
		tc.logger.Printf("Event %s failed: %v", ev.ID(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create notification",
		})
	}

	payload := models.TriggerResult{
		BookingID:      bookingID,
		Created:        result.Created,
		NotificationID: result.NotificationID,
		Reason:         result.Reason,
	}
	if result.Created {
		return c.JSON(http.StatusCreated, models.Response{
			Status:  http.StatusCreated,
			Message: "Notification created",
			Data:    payload,
		})
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "No notification needed",
		Data:    payload,
	})
}

// readEvent decodes a binary or structured mode CloudEvent from the request.
// The body is buffered first so oversized requests are refused rather than cut short.
func (tc *TriggerController) readEvent(r *http.Request) (*event.Event, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxEventBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrEventTooLarge, maxEventBytes)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	ev, err := cehttp.NewEventFromHTTPRequest(r)
	if err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	if len(ev.Data()) == 0 {
		return nil, errors.New("event has no data")
	}
	return ev, nil
}

func checkEventType(eventType string) error {
	switch eventType {
	case models.FirestoreEventUpdated, models.FirestoreEventWritten,
		models.FirestoreEventCreated, models.FirestoreEventDeleted:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedEvent, eventType)
}

// bookingID resolves the {bookingId} wildcard from the changed document's name,
// falling back to the event subject.
func (tc *TriggerController) bookingID(subject string, data *models.DocumentEventData) (string, error) {
	name := subject
	switch {
	case data.Value.GetName() != "":
		name = data.Value.GetName()
	case data.OldValue.GetName() != "":
		name = data.OldValue.GetName()
	}
	if name == "" {
		return "", errors.New("event names no document")
	}

	params, err := utils.MatchDocumentPath(tc.notifier.Category().DocumentPattern, name)
	if err != nil {
		return "", err
	}
	return params["bookingId"], nil
}
