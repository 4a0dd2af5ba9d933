package models

// Response is the JSON body returned by every trigger endpoint
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// TriggerResult is the Data of a trigger response.
type TriggerResult struct {
	BookingID      string `json:"bookingId,omitempty"`
	Created        bool   `json:"created"`
	NotificationID string `json:"notificationId,omitempty"`
	Reason         string `json:"reason,omitempty"`
}
