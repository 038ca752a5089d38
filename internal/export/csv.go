// Package export renders customer records into the fixed CSV layout used
// by the export endpoint and the scheduled snapshot job.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"customers-service/internal/domain/customer"
)

// Header is the fixed column contract, in order. Consumers depend on the
// exact spelling.
var Header = []string{
	"Name",
	"Surname",
	"PESEL number",
	"Email",
	"Residence Address",
	"Registered Address",
	"Private Phone Number",
	"Business Phone Number",
}

// fieldMappings pairs each column with its accessor, mirroring the
// header order. Contact columns render blank when no bundle is attached.
var fieldMappings = []func(*customer.Customer) string{
	func(c *customer.Customer) string { return c.Name },
	func(c *customer.Customer) string { return c.Surname },
	func(c *customer.Customer) string { return c.PeselNumber },
	contactField(func(m *customer.ContactMethods) *string { return m.EmailAddress }),
	contactField(func(m *customer.ContactMethods) *string { return m.ResidenceAddress }),
	contactField(func(m *customer.ContactMethods) *string { return m.RegisteredAddress }),
	contactField(func(m *customer.ContactMethods) *string { return m.PrivatePhoneNumber }),
	contactField(func(m *customer.ContactMethods) *string { return m.BusinessPhoneNumber }),
}

func contactField(get func(*customer.ContactMethods) *string) func(*customer.Customer) string {
	return func(c *customer.Customer) string {
		if c.Contacts == nil {
			return ""
		}
		if v := get(c.Contacts); v != nil {
			return *v
		}
		return ""
	}
}

// WriteCustomers writes the header row followed by one row per customer.
func WriteCustomers(w io.Writer, customers []*customer.Customer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(fieldMappings))
	for _, cust := range customers {
		for i, field := range fieldMappings {
			record[i] = field(cust)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename names an export file after the moment it was taken, matching
// the attachment name served by the export endpoint.
func Filename(now time.Time) string {
	return "customers_" + now.Format("2006-01-02_15-04-05") + ".csv"
}
