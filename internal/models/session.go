package models

import (
	"time"

	"github.com/google/uuid"
)

// Session binds one refresh token to its owner and expiry.
// One user may have many sessions (one per device or client).
type Session struct {
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}
