package model

import (
	"time"
)

type User struct {
	ID             string    `db:"id"`
	Username       string    `db:"username"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	Role           Role      `db:"role"`
	CreatedAt      time.Time `db:"created_at"`
}

// Identity is who the current request acts as. The zero value is anonymous.
type Identity struct {
	UserID   string
	Username string
	Role     Role
}

func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

func (i Identity) IsAuthenticated() bool {
	return !i.IsAnonymous()
}

// Can is false for anonymous identities.
func (i Identity) Can(c Capability) bool {
	return i.IsAuthenticated() && i.Role.Can(c)
}
