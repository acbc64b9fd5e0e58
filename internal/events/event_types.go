package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOTPIssued              EventType = "otp_issued"
	EventRegistrationCompleted  EventType = "registration_completed"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventOrderPlaced            EventType = "order_placed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New builds an event with a fresh id.
func New(eventType EventType, userID string, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: at,
		Payload:   payload,
	}
}

// OTPIssuedPayload carries the code to deliver over SMS.
type OTPIssuedPayload struct {
	Phone     string    `json:"phone"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegistrationCompletedPayload payload.
type RegistrationCompletedPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PasswordResetRequestedPayload carries the raw token to deliver over email.
type PasswordResetRequestedPayload struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	OrderID    string `json:"order_id"`
	ItemCount  int    `json:"item_count"`
	TotalPrice int64  `json:"total_price"`
}
