package services

import (
	"fmt"
	"strings"

	"github.com/HSouheill/booking_notifier/models"
)

// MessageArgs are the values a status message may interpolate.
// Car details are already rendered, so missing values are empty strings.
type MessageArgs struct {
	BookingID string
	CarMake   string
	CarModel  string
}

// BookingCategory describes one watched booking collection and its message catalog.
type BookingCategory struct {
	Name             string // used in log lines, e.g. "garage"
	Collection       string
	DocumentPattern  string
	NotificationType string
	Title            string
	Messages         map[string]func(MessageArgs) string // keyed by lower-cased status
	Fallback         func(status string) string          // receives the status upper-cased
}

// Message returns the body for a status. Matching is case-insensitive; unknown
// statuses use the fallback with the raw status upper-cased.
func (c *BookingCategory) Message(status string, args MessageArgs) string {
	if msg, ok := c.Messages[strings.ToLower(status)]; ok {
		return msg(args)
	}
	return c.Fallback(strings.ToUpper(status))
}

func staticMessage(body string) func(MessageArgs) string {
	return func(MessageArgs) string { return body }
}

// GarageBookings watches garage_bookings/{bookingId}.
var GarageBookings = &BookingCategory{
	Name:             "garage",
	Collection:       "garage_bookings",
	DocumentPattern:  "garage_bookings/{bookingId}",
	NotificationType: models.NotificationTypeGarageBooking,
	Title:            "Garage Booking Update",
	Messages: map[string]func(MessageArgs) string{
		"confirmed": func(a MessageArgs) string {
			return fmt.Sprintf("Your garage booking for %s %s has been CONFIRMED!", a.CarMake, a.CarModel)
		},
		"in-progress": staticMessage("Your garage service is now IN PROGRESS."),
		"completed":   staticMessage("Your garage service is COMPLETE! Thank you."),
		"cancelled":   staticMessage("Your garage booking has been CANCELLED."),
	},
	Fallback: func(status string) string {
		return "Garage booking status updated to: " + status
	},
}

// RentalBookings watches rental_bookings/{bookingId}.
var RentalBookings = &BookingCategory{
	Name:             "rental",
	Collection:       "rental_bookings",
	DocumentPattern:  "rental_bookings/{bookingId}",
	NotificationType: models.NotificationTypeRentalBooking,
	Title:            "Rental Booking Update",
	Messages: map[string]func(MessageArgs) string{
		"pending": func(a MessageArgs) string {
			return fmt.Sprintf("Your rental booking is now PENDING (ID: %s)", a.BookingID)
		},
		"confirmed": func(a MessageArgs) string {
			return fmt.Sprintf("Your rental for %s %s has been CONFIRMED!", a.CarMake, a.CarModel)
		},
		"ongoing":   staticMessage("Your rental is now ONGOING. Enjoy your trip!"),
		"completed": staticMessage("Your rental has been marked as COMPLETED. Thank you!"),
		"cancelled": staticMessage("Your rental booking has been CANCELLED."),
	},
	Fallback: func(status string) string {
		return "Rental booking status updated to: " + status
	},
}

// BookingCategories lists every watched collection.
func BookingCategories() []*BookingCategory {
	return []*BookingCategory{GarageBookings, RentalBookings}
}

// WithCollection returns a copy of the category watching a differently named collection.
func (c *BookingCategory) WithCollection(collection string) *BookingCategory {
	if collection == "" || collection == c.Collection {
		return c
	}
	copied := *c
	copied.Collection = collection
	copied.DocumentPattern = collection + "/{bookingId}"
	return &copied
}
