package core

import (
	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SweepID     ID
	SelfCheckID ID
)

func (id SweepID) String() string     { return ID(id).String() }
func (id SelfCheckID) String() string { return ID(id).String() }

// NewSweepID creates a time-ordered sweep identifier
func NewSweepID() SweepID { return SweepID(NewID()) }

// NewSelfCheckID creates a time-ordered self-check identifier
func NewSelfCheckID() SelfCheckID { return SelfCheckID(NewID()) }
