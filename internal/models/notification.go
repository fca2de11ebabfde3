package models

// Notification is the durable record of a message sent to a user.
type Notification struct {
	ID             int64  `json:"notification_id"`
	RecipientEmail string `json:"recipient_email"`
	SenderID       int64  `json:"sender_id"`
	Message        string `json:"message"`
	IsRead         bool   `json:"is_read"`
	CreatedAt      int64  `json:"created_at"`
}
