package enums

import "fmt"

// DeletionState tags the retention status of an order record. Pending orders
// are purged outright on delete; anything further along is soft-deleted and
// kept for admin views.
type DeletionState string

const (
	DeletionStateActive      DeletionState = "active"
	DeletionStateSoftDeleted DeletionState = "soft_deleted"
)

var validDeletionStates = []DeletionState{
	DeletionStateActive,
	DeletionStateSoftDeleted,
}

func (d DeletionState) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeletionState.
func (d DeletionState) IsValid() bool {
	for _, candidate := range validDeletionStates {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeletionState converts raw input into a DeletionState.
func ParseDeletionState(value string) (DeletionState, error) {
	for _, candidate := range validDeletionStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deletion state %q", value)
}
