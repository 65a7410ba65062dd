package models

import (
	"time"

	"github.com/google/uuid"
)

type List struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	Title     string
}
