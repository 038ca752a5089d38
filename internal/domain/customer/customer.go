package customer

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"customers-service/internal/pkg/apperrors"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// Customer is a stored customer record. The PESEL number is the public
// identifier: unique across all customers and immutable once assigned.
type Customer struct {
	ID          int64           `json:"id"`
	PeselNumber string          `json:"peselNumber"`
	Name        string          `json:"name"`
	Surname     string          `json:"surname"`
	Contacts    *ContactMethods `json:"contacts,omitempty"`
}

// ContactMethods is the optional bundle of communication fields owned by
// exactly one customer. Replacing it removes the previous bundle.
type ContactMethods struct {
	ID                  int64   `json:"id,omitempty"`
	EmailAddress        *string `json:"emailAddress,omitempty"`
	ResidenceAddress    *string `json:"residenceAddress,omitempty"`
	RegisteredAddress   *string `json:"registeredAddress,omitempty"`
	PrivatePhoneNumber  *string `json:"privatePhoneNumber,omitempty"`
	BusinessPhoneNumber *string `json:"businessPhoneNumber,omitempty"`
}

type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors carries every field violation found in one pass so the
// transport boundary can report them together.
type ValidationErrors struct {
	Violations []FieldViolation
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationErrors) Unwrap() error {
	return apperrors.ErrValidation
}

func newValidationErrors(violations []FieldViolation) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationErrors{Violations: violations}
}

// Validate checks the field constraints on a customer candidate. Contacts
// are validated separately; they arrive through their own endpoint.
func (c *Customer) Validate() error {
	var violations []FieldViolation

	switch {
	case c.PeselNumber == "":
		violations = append(violations, FieldViolation{"peselNumber", "PESEL number cannot be empty"})
	case len(c.PeselNumber) != 11:
		violations = append(violations, FieldViolation{"peselNumber", "PESEL should be 11 digits"})
	case !digitsOnly.MatchString(c.PeselNumber):
		violations = append(violations, FieldViolation{"peselNumber", "PESEL should contain only digits"})
	}

	if l := len(c.Name); l < 3 || l > 30 {
		violations = append(violations, FieldViolation{"name", "name between 3 and 30 characters"})
	}
	if l := len(c.Surname); l < 3 || l > 40 {
		violations = append(violations, FieldViolation{"surname", "surname between 3 and 40 characters"})
	}

	return newValidationErrors(violations)
}

// Validate checks the optional contact fields: email syntax when an email
// is present, 9-11 digits for either phone number.
func (m *ContactMethods) Validate() error {
	var violations []FieldViolation

	if m.EmailAddress != nil {
		if _, err := mail.ParseAddress(*m.EmailAddress); err != nil {
			violations = append(violations, FieldViolation{"emailAddress", "invalid email address"})
		}
	}
	violations = appendPhoneViolation(violations, "privatePhoneNumber", m.PrivatePhoneNumber)
	violations = appendPhoneViolation(violations, "businessPhoneNumber", m.BusinessPhoneNumber)

	return newValidationErrors(violations)
}

func appendPhoneViolation(violations []FieldViolation, field string, number *string) []FieldViolation {
	if number == nil {
		return violations
	}
	if l := len(*number); l < 9 || l > 11 || !digitsOnly.MatchString(*number) {
		violations = append(violations, FieldViolation{field, "phone number should be 9 to 11 digits"})
	}
	return violations
}
