package auth

import (
	"github.com/google/uuid"
)

// Kind is the closed set of caller kinds. The zero value is not a valid kind.
type Kind uint8

const (
	KindDemoUser Kind = iota + 1
	KindEndUser
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDemoUser:
		return "demo_user"
	case KindEndUser:
		return "end_user"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindDemoUser, KindEndUser:
		return true
	default:
		return false
	}
}

// Subject is what the identity service knows about a verified token.
type Subject struct {
	ID    uuid.UUID
	Email string
}

// Member represents a row in the demo_users or end_users table.
type Member struct {
	ID       uuid.UUID
	Email    string
	Name     *string // nullable for end users
	IsActive bool
}

// Identity is stored in the request context after authentication.
type Identity struct {
	ID    uuid.UUID
	Email string
	Name  string
	Kind  Kind
}

// IsDemoUser reports whether the identity owns catalogs.
func (i *Identity) IsDemoUser() bool { return i.Kind == KindDemoUser }

// IsEndUser reports whether the identity is a catalog consumer.
func (i *Identity) IsEndUser() bool { return i.Kind == KindEndUser }
