package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	CNPJ         string
	PasswordHash string
	CreatedAt    time.Time
}

// Principal is the verified subject behind a bearer token.
type Principal struct {
	CNPJ string
}
