package domain

import "time"

type NotificationType string

const (
	NotificationBookingRequest  NotificationType = "booking_request"
	NotificationBookingAccepted NotificationType = "booking_accepted"
	NotificationBookingRejected NotificationType = "booking_rejected"
	NotificationRideCompleted   NotificationType = "ride_completed"
)

type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
