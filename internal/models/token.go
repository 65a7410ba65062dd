package models

import (
	"time"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair that should be returned to the client on authentication
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
