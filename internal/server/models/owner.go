// Package models holds the records shared by the relay's stores and
// transports.
package models

import (
	"fmt"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/google/uuid"
)

// OwnerRef identifies the user a message belongs to. It can only be built
// through ParseOwnerRef, so every value reaching a store has already been
// checked at the authentication boundary.
type OwnerRef struct {
	id string
}

// ParseOwnerRef validates a user id taken from token claims.
func ParseOwnerRef(id string) (OwnerRef, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return OwnerRef{}, fmt.Errorf("owner %q: %w", id, common.ErrorValidation)
	}
	return OwnerRef{id: u.String()}, nil
}

// MustOwnerRef is ParseOwnerRef for ids known to be valid, such as ones the
// server generated itself.
func MustOwnerRef(id string) OwnerRef {
	o, err := ParseOwnerRef(id)
	if err != nil {
		panic(err)
	}
	return o
}

func (o OwnerRef) String() string { return o.id }

func (o OwnerRef) IsZero() bool { return o.id == "" }

func (o OwnerRef) MarshalText() ([]byte, error) {
	return []byte(o.id), nil
}

func (o *OwnerRef) UnmarshalText(b []byte) error {
	parsed, err := ParseOwnerRef(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
