package models

import (
	"fmt"
	"time"
)

// Role tells who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleBot
}

// ParseRole converts the stored text form back into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown message role %q", s)
	}
	return r, nil
}

// Message is one side of an exchange. JSON names follow what the web
// front end already consumes.
type Message struct {
	ID        string    `json:"id"`
	Owner     OwnerRef  `json:"userId"`
	Content   string    `json:"content"`
	Role      Role      `json:"type"`
	CreatedAt time.Time `json:"timestamp"`
}

// Newer reports whether m sorts after other in conversation order:
// CreatedAt first, then ID. Message IDs are time-ordered, so the tie-break
// keeps insertion order for messages stored within the same clock tick.
func (m *Message) Newer(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.After(other.CreatedAt)
	}
	return m.ID > other.ID
}
