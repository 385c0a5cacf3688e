package entity

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	Message   string    `db:"message" json:"message"`
	ImageURL  *string   `db:"image_url" json:"imageUrl,omitempty"`
	LinkURL   *string   `db:"link_url" json:"linkUrl,omitempty"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Notice - уведомление для доставки пользователю.
type Notice struct {
	RecipientUserID uuid.UUID
	Message         string
	ImageURL        *string
	LinkURL         *string
}

func NewNotice(recipient uuid.UUID, message string, imageURL *string, link string) Notice {
	n := Notice{RecipientUserID: recipient, Message: message, ImageURL: imageURL}
	if link != "" {
		n.LinkURL = &link
	}
	return n
}
