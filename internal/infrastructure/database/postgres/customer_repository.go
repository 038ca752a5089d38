package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"customers-service/internal/domain/customer"
	"customers-service/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

const customerColumns = `c.id, c.pesel_number, c.name, c.surname,
       m.id, m.email_address, m.residence_address, m.registered_address,
       m.private_phone_number, m.business_phone_number`

const customerJoin = `
        FROM customers c
        LEFT JOIN contact_methods m ON m.customer_id = c.id`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

// withTx runs fn inside a transaction, rolling back unless fn and the
// commit both succeed.
func (r *CustomerRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%w: failed to begin transaction: %w", apperrors.ErrDatabase, err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.logger.ErrorContext(ctx, "Failed to rollback transaction", slog.Any("error", rbErr))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%w: failed to commit transaction: %w", apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *CustomerRepository) Create(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to insert new customer", slog.String("peselNumber", cust.PeselNumber))

	return r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
        INSERT INTO customers (pesel_number, name, surname)
        VALUES ($1, $2, $3)
        RETURNING id`

		err := tx.QueryRow(ctx, query, cust.PeselNumber, cust.Name, cust.Surname).Scan(&cust.ID)
		if err != nil {
			translatedErr := translateDBError(err, r.logger)
			if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
				r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation",
					slog.String("peselNumber", cust.PeselNumber))
				return translatedErr
			}
			r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
			return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
		}

		if cust.Contacts != nil {
			if err := insertContacts(ctx, tx, cust.ID, cust.Contacts); err != nil {
				r.logger.ErrorContext(ctx, "Failed to insert contact methods", slog.Any("error", err))
				return err
			}
		}
		return nil
	})
}

func insertContacts(ctx context.Context, tx pgx.Tx, customerID int64, m *customer.ContactMethods) error {
	query := `
        INSERT INTO contact_methods
            (customer_id, email_address, residence_address, registered_address,
             private_phone_number, business_phone_number)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`

	err := tx.QueryRow(ctx, query,
		customerID,
		m.EmailAddress,
		m.ResidenceAddress,
		m.RegisteredAddress,
		m.PrivatePhoneNumber,
		m.BusinessPhoneNumber,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("%w: failed to insert contact methods: %w", apperrors.ErrDatabase, err)
	}
	return nil
}

type customerRow interface {
	Scan(dest ...any) error
}

func scanCustomer(row customerRow) (*customer.Customer, error) {
	var cust customer.Customer
	var contactID *int64
	var email, residence, registered, private, business *string

	err := row.Scan(
		&cust.ID,
		&cust.PeselNumber,
		&cust.Name,
		&cust.Surname,
		&contactID,
		&email,
		&residence,
		&registered,
		&private,
		&business,
	)
	if err != nil {
		return nil, err
	}

	if contactID != nil {
		cust.Contacts = &customer.ContactMethods{
			ID:                  *contactID,
			EmailAddress:        email,
			ResidenceAddress:    residence,
			RegisteredAddress:   registered,
			PrivatePhoneNumber:  private,
			BusinessPhoneNumber: business,
		}
	}
	return &cust, nil
}

// rowQuerier lets the single-customer lookup run against the pool or an
// open transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *CustomerRepository) FindByPesel(ctx context.Context, peselNumber string) (*customer.Customer, error) {
	return r.findByPesel(ctx, r.db, peselNumber)
}

func (r *CustomerRepository) findByPesel(ctx context.Context, q rowQuerier, peselNumber string) (*customer.Customer, error) {
	r.logger.DebugContext(ctx, "Attempting to find customer by PESEL number")

	query := `SELECT ` + customerColumns + customerJoin + `
        WHERE c.pesel_number = $1`

	cust, err := scanCustomer(q.QueryRow(ctx, query, peselNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.String("peselNumber", peselNumber))
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan customer by PESEL number", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by PESEL number: %w", apperrors.ErrDatabase, err)
	}

	return cust, nil
}

func (r *CustomerRepository) FindPage(ctx context.Context, offset, limit int, descending bool) ([]*customer.Customer, error) {
	r.logger.DebugContext(ctx, "Attempting to find customer page",
		slog.Int("offset", offset), slog.Int("limit", limit), slog.Bool("descending", descending))

	order := "ASC"
	if descending {
		order = "DESC"
	}
	query := `SELECT ` + customerColumns + customerJoin + `
        ORDER BY c.id ` + order + `
        LIMIT $1 OFFSET $2`

	return r.queryCustomers(ctx, query, limit, offset)
}

func (r *CustomerRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&total)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count customers", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to count customers: %w", apperrors.ErrDatabase, err)
	}
	return total, nil
}

func (r *CustomerRepository) FindAllWithContacts(ctx context.Context) ([]*customer.Customer, error) {
	r.logger.DebugContext(ctx, "Attempting to find all customers with contacts")

	query := `SELECT ` + customerColumns + customerJoin + `
        ORDER BY c.id ASC`

	return r.queryCustomers(ctx, query)
}

func (r *CustomerRepository) queryCustomers(ctx context.Context, query string, args ...any) ([]*customer.Customer, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}

	return customers, nil
}

func (r *CustomerRepository) UpdateNames(ctx context.Context, peselNumber, name, surname string) (*customer.Customer, error) {
	r.logger.InfoContext(ctx, "Attempting to update customer names", slog.String("peselNumber", peselNumber))

	var updated *customer.Customer
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
        UPDATE customers
        SET name = $1, surname = $2
        WHERE pesel_number = $3`

		cmdTag, err := tx.Exec(ctx, query, name, surname, peselNumber)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
			return fmt.Errorf("%w: failed to update customer: %w", apperrors.ErrDatabase, err)
		}
		if cmdTag.RowsAffected() == 0 {
			r.logger.WarnContext(ctx, "Update affected zero rows, customer likely not found")
			return apperrors.ErrNotFound
		}

		// Read back inside the transaction so a concurrent delete cannot
		// turn a committed update into a not-found response.
		updated, err = r.findByPesel(ctx, tx, peselNumber)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, peselNumber string) error {
	r.logger.InfoContext(ctx, "Attempting to delete customer", slog.String("peselNumber", peselNumber))

	return r.withTx(ctx, func(tx pgx.Tx) error {
		// Contact methods go first: the cascade is application level,
		// nothing in the schema removes them implicitly.
		contactsQuery := `
        DELETE FROM contact_methods
        WHERE customer_id = (SELECT id FROM customers WHERE pesel_number = $1)`

		if _, err := tx.Exec(ctx, contactsQuery, peselNumber); err != nil {
			r.logger.ErrorContext(ctx, "Failed to delete contact methods", slog.Any("error", err))
			return fmt.Errorf("%w: failed to delete contact methods: %w", apperrors.ErrDatabase, err)
		}

		cmdTag, err := tx.Exec(ctx, `DELETE FROM customers WHERE pesel_number = $1`, peselNumber)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to delete customer", slog.Any("error", err))
			return fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
		}
		if cmdTag.RowsAffected() == 0 {
			r.logger.WarnContext(ctx, "Delete affected zero rows, customer likely not found")
			return apperrors.ErrNotFound
		}
		return nil
	})
}

func (r *CustomerRepository) ReplaceContacts(ctx context.Context, peselNumber string, contacts *customer.ContactMethods) (*customer.Customer, error) {
	if contacts == nil {
		return nil, fmt.Errorf("%w: contact methods cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to replace contact methods", slog.String("peselNumber", peselNumber))

	var updated *customer.Customer
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var customerID int64
		lockQuery := `SELECT id FROM customers WHERE pesel_number = $1 FOR UPDATE`
		if err := tx.QueryRow(ctx, lockQuery, peselNumber).Scan(&customerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				r.logger.WarnContext(ctx, "Customer not found for contact replacement")
				return apperrors.ErrNotFound
			}
			r.logger.ErrorContext(ctx, "Failed to lock customer row", slog.Any("error", err))
			return fmt.Errorf("%w: failed to lock customer row: %w", apperrors.ErrDatabase, err)
		}

		// Wholesale replacement: the previous bundle is orphaned and
		// removed before the new one is attached.
		if _, err := tx.Exec(ctx, `DELETE FROM contact_methods WHERE customer_id = $1`, customerID); err != nil {
			r.logger.ErrorContext(ctx, "Failed to remove previous contact methods", slog.Any("error", err))
			return fmt.Errorf("%w: failed to remove previous contact methods: %w", apperrors.ErrDatabase, err)
		}

		if err := insertContacts(ctx, tx, customerID, contacts); err != nil {
			return err
		}

		var err error
		updated, err = r.findByPesel(ctx, tx, peselNumber)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.ConstraintName)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf("%w: %w", apperrors.ErrDatabase, err)
}
