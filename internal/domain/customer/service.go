package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"customers-service/internal/event"
	"customers-service/internal/pkg/apperrors"
)

const customerNotFound = "Customer not found by repository"

// Service owns the customer lifecycle rules: uniqueness of the PESEL
// number, immutability of the identifier, the fixed pagination contract
// and the cascading removal of contact methods.
type Service interface {
	AddCustomer(ctx context.Context, candidate *Customer) (*Customer, error)
	GetCustomerByPesel(ctx context.Context, peselNumber string) (*Customer, error)
	ListCustomers(ctx context.Context, page int, direction SortDirection) (*Page, error)
	ListCustomersForExport(ctx context.Context) ([]*Customer, error)
	EditCustomer(ctx context.Context, peselNumber string, request *Customer) (*Customer, error)
	DeleteCustomer(ctx context.Context, peselNumber string) error
	AddContact(ctx context.Context, peselNumber string, contacts *ContactMethods) (*Customer, error)
}

var _ Service = (*customerService)(nil)

type customerService struct {
	repo   Repository
	pub    event.Publisher
	logger *slog.Logger
}

func NewService(repo Repository, publisher event.Publisher, logger *slog.Logger) Service {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewService, using default stderr handler")
	}

	return &customerService{
		repo:   repo,
		pub:    publisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func newEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID:  cust.ID,
		PeselNumber: cust.PeselNumber,
		Name:        cust.Name,
		Surname:     cust.Surname,
		HasContacts: cust.Contacts != nil,
	}
}

// NormalizeSortDirection maps the query value onto a direction, treating
// anything unrecognized as ascending.
func NormalizeSortDirection(raw string) SortDirection {
	if strings.EqualFold(raw, string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

func (s *customerService) AddCustomer(ctx context.Context, candidate *Customer) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to add new customer")

	if candidate == nil {
		return nil, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	if err := candidate.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Validation failed for customer candidate", slog.Any("error", err))
		return nil, err
	}

	logCtx := s.logger.With(slog.String("peselNumber", candidate.PeselNumber))

	_, err := s.repo.FindByPesel(ctx, candidate.PeselNumber)
	switch {
	case err == nil:
		logCtx.WarnContext(ctx, "PESEL number already in use")
		return nil, fmt.Errorf("%w: customer with PESEL number %s already exists",
			apperrors.ErrAlreadyExists, candidate.PeselNumber)
	case !errors.Is(err, apperrors.ErrNotFound):
		logCtx.ErrorContext(ctx, "Repository error checking PESEL uniqueness", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check existing customer: %w", err)
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		// A concurrent writer may take the PESEL between the check and
		// the insert; the unique index reports it.
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			logCtx.WarnContext(ctx, "PESEL number taken concurrently during create")
			return nil, err
		}
		logCtx.ErrorContext(ctx, "Repository failed to create customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	logCtx.InfoContext(ctx, "Customer created", slog.Int64("customerID", candidate.ID))
	s.publishCreated(ctx, candidate)
	return candidate, nil
}

func (s *customerService) GetCustomerByPesel(ctx context.Context, peselNumber string) (*Customer, error) {
	logCtx := s.logger.With(slog.String("peselNumber", peselNumber))
	logCtx.DebugContext(ctx, "Attempting to get customer by PESEL number")

	cust, err := s.repo.FindByPesel(ctx, peselNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, err
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %s: %w", peselNumber, err)
	}

	return cust, nil
}

func (s *customerService) ListCustomers(ctx context.Context, page int, direction SortDirection) (*Page, error) {
	if page < 0 {
		page = 0
	}
	descending := direction == SortDesc
	logCtx := s.logger.With(slog.Int("page", page), slog.Bool("descending", descending))
	logCtx.DebugContext(ctx, "Attempting to list customers")

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		logCtx.ErrorContext(ctx, "Repository error counting customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	content, err := s.repo.FindPage(ctx, page*PageSize, PageSize, descending)
	if err != nil {
		logCtx.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	totalPages := int(total / PageSize)
	if total%PageSize > 0 {
		totalPages++
	}

	logCtx.InfoContext(ctx, "Customers listed", slog.Int("count", len(content)), slog.Int64("total", total))
	return &Page{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Page:          page,
	}, nil
}

func (s *customerService) ListCustomersForExport(ctx context.Context) ([]*Customer, error) {
	s.logger.DebugContext(ctx, "Attempting to list all customers for export")

	customers, err := s.repo.FindAllWithContacts(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers for export", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers for export: %w", err)
	}

	s.logger.InfoContext(ctx, "Customers listed for export", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) EditCustomer(ctx context.Context, peselNumber string, request *Customer) (*Customer, error) {
	logCtx := s.logger.With(slog.String("peselNumber", peselNumber))
	logCtx.InfoContext(ctx, "Attempting to edit customer")

	if request == nil {
		return nil, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	// The identifier is fixed once set: a body naming a different PESEL
	// is rejected before any lookup.
	if request.PeselNumber != peselNumber {
		logCtx.WarnContext(ctx, "PESEL number in body differs from path identifier",
			slog.String("bodyPeselNumber", request.PeselNumber))
		return nil, fmt.Errorf("%w: PESEL number cannot be changed", apperrors.ErrInvalidArgument)
	}
	if err := request.Validate(); err != nil {
		logCtx.WarnContext(ctx, "Validation failed for edit request", slog.Any("error", err))
		return nil, err
	}

	updated, err := s.repo.UpdateNames(ctx, peselNumber, request.Name, request.Surname)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, err
		}
		logCtx.ErrorContext(ctx, "Repository failed to update customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to edit customer %s: %w", peselNumber, err)
	}

	logCtx.InfoContext(ctx, "Customer edited")
	s.publishUpdated(ctx, updated)
	return updated, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, peselNumber string) error {
	logCtx := s.logger.With(slog.String("peselNumber", peselNumber))
	logCtx.InfoContext(ctx, "Attempting to delete customer")

	if err := s.repo.Delete(ctx, peselNumber); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return err
		}
		logCtx.ErrorContext(ctx, "Repository failed to delete customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %s: %w", peselNumber, err)
	}

	logCtx.InfoContext(ctx, "Customer deleted")
	s.publishDeleted(ctx, peselNumber)
	return nil
}

func (s *customerService) AddContact(ctx context.Context, peselNumber string, contacts *ContactMethods) (*Customer, error) {
	logCtx := s.logger.With(slog.String("peselNumber", peselNumber))
	logCtx.InfoContext(ctx, "Attempting to replace customer contact methods")

	if contacts == nil {
		return nil, fmt.Errorf("%w: contact methods cannot be nil", apperrors.ErrInvalidArgument)
	}

	updated, err := s.repo.ReplaceContacts(ctx, peselNumber, contacts)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, err
		}
		logCtx.ErrorContext(ctx, "Repository failed to replace contact methods", slog.Any("error", err))
		return nil, fmt.Errorf("failed to replace contacts for customer %s: %w", peselNumber, err)
	}

	logCtx.InfoContext(ctx, "Contact methods replaced")
	s.publishContactsReplaced(ctx, updated)
	return updated, nil
}

// Event publishing is best effort: a broker outage must never fail the
// CRUD request that triggered it.

func (s *customerService) publishCreated(ctx context.Context, cust *Customer) {
	evt := event.CustomerCreatedEvent{Timestamp: time.Now(), Payload: newEventPayload(cust)}
	if err := s.pub.PublishCustomerCreated(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish customer created event", slog.Any("error", err))
	}
}

func (s *customerService) publishUpdated(ctx context.Context, cust *Customer) {
	evt := event.CustomerUpdatedEvent{Timestamp: time.Now(), Payload: newEventPayload(cust)}
	if err := s.pub.PublishCustomerUpdated(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish customer updated event", slog.Any("error", err))
	}
}

func (s *customerService) publishDeleted(ctx context.Context, peselNumber string) {
	evt := event.CustomerDeletedEvent{Timestamp: time.Now(), PeselNumber: peselNumber}
	if err := s.pub.PublishCustomerDeleted(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish customer deleted event", slog.Any("error", err))
	}
}

func (s *customerService) publishContactsReplaced(ctx context.Context, cust *Customer) {
	evt := event.ContactsReplacedEvent{Timestamp: time.Now(), Payload: newEventPayload(cust)}
	if err := s.pub.PublishContactsReplaced(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish contacts replaced event", slog.Any("error", err))
	}
}
