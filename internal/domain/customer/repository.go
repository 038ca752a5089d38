package customer

import (
	"context"
)

// PageSize is the fixed listing page size.
const PageSize = 5

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Page is one bounded slice of the customer listing plus its metadata.
type Page struct {
	Content       []*Customer `json:"content"`
	TotalElements int64       `json:"totalElements"`
	TotalPages    int         `json:"totalPages"`
	Page          int         `json:"page"`
}

// Repository is the persistence port. Implementations report missing rows
// as apperrors.ErrNotFound and unique-key collisions on the PESEL number
// as apperrors.ErrAlreadyExists.
type Repository interface {
	// Create inserts a customer and assigns its surrogate ID.
	Create(ctx context.Context, cust *Customer) error

	// FindByPesel returns the customer with its contacts attached.
	FindByPesel(ctx context.Context, peselNumber string) (*Customer, error)

	// FindPage returns one page ordered by surrogate ID.
	FindPage(ctx context.Context, offset, limit int, descending bool) ([]*Customer, error)

	CountAll(ctx context.Context) (int64, error)

	// FindAllWithContacts returns every customer, contacts attached,
	// ordered by surrogate ID ascending.
	FindAllWithContacts(ctx context.Context) ([]*Customer, error)

	// UpdateNames mutates name and surname only, inside a transaction,
	// and returns the updated customer.
	UpdateNames(ctx context.Context, peselNumber, name, surname string) (*Customer, error)

	// Delete removes the customer and its contact methods in one
	// transaction.
	Delete(ctx context.Context, peselNumber string) error

	// ReplaceContacts swaps the customer's contact bundle wholesale,
	// removing any prior bundle, inside a transaction. Returns the
	// updated customer.
	ReplaceContacts(ctx context.Context, peselNumber string, contacts *ContactMethods) (*Customer, error)
}
