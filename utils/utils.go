package utils

import (
	"github.com/google/uuid"
)

// NewReference returns a random identifier used as a stable external reference for rows
func NewReference() string {
	return uuid.NewString()
}

func StringPtr(s string) *string {
	return &s
}

func IntPtr(i int) *int {
	return &i
}
