package entity

import "github.com/google/uuid"

// Space - помещение. Ядро бронирования только читает его.
type Space struct {
	ID       uuid.UUID `db:"id"`
	OwnerID  uuid.UUID `db:"owner_id"`
	Name     string    `db:"name"`
	ImageURL *string   `db:"image_url"`
}

type User struct {
	ID       uuid.UUID `db:"id"`
	Fullname string    `db:"fullname"`
	Role     string    `db:"role"`
	Balance  int64     `db:"balance"`
}

const RoleAdmin = "admin"
