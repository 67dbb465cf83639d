package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

type (
	// EmailAddress is a normalized, syntactically valid address. Uniqueness
	// across users is enforced at the storage layer against this form.
	EmailAddress struct {
		value string
	}
)

func NewEmailAddress(raw string) (*EmailAddress, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {

		return nil, fmt.Errorf("email must not be empty")
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {

		return nil, fmt.Errorf("failed to parse email: %w", err)
	}

	return &EmailAddress{value: strings.ToLower(addr.Address)}, nil
}

func (e *EmailAddress) String() string {

	return e.value
}
