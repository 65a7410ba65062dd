package models

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID        uuid.UUID
	ListID    uuid.UUID
	CreatedAt time.Time
	Title     string
	Completed bool
}
