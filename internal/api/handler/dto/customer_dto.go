package dto

import (
	"strconv"

	"customers-service/internal/domain/customer"
)

type CustomerRequest struct {
	PeselNumber string `json:"peselNumber"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
}

func (r *CustomerRequest) ToDomain() *customer.Customer {
	return &customer.Customer{
		PeselNumber: r.PeselNumber,
		Name:        r.Name,
		Surname:     r.Surname,
	}
}

type ContactMethodsRequest struct {
	EmailAddress        *string `json:"emailAddress,omitempty"`
	ResidenceAddress    *string `json:"residenceAddress,omitempty"`
	RegisteredAddress   *string `json:"registeredAddress,omitempty"`
	PrivatePhoneNumber  *string `json:"privatePhoneNumber,omitempty"`
	BusinessPhoneNumber *string `json:"businessPhoneNumber,omitempty"`
}

func (r *ContactMethodsRequest) ToDomain() *customer.ContactMethods {
	return &customer.ContactMethods{
		EmailAddress:        r.EmailAddress,
		ResidenceAddress:    r.ResidenceAddress,
		RegisteredAddress:   r.RegisteredAddress,
		PrivatePhoneNumber:  r.PrivatePhoneNumber,
		BusinessPhoneNumber: r.BusinessPhoneNumber,
	}
}

type ContactMethodsResponse struct {
	EmailAddress        *string `json:"emailAddress,omitempty"`
	ResidenceAddress    *string `json:"residenceAddress,omitempty"`
	RegisteredAddress   *string `json:"registeredAddress,omitempty"`
	PrivatePhoneNumber  *string `json:"privatePhoneNumber,omitempty"`
	BusinessPhoneNumber *string `json:"businessPhoneNumber,omitempty"`
}

type CustomerResponse struct {
	ID          string                  `json:"id"`
	PeselNumber string                  `json:"peselNumber"`
	Name        string                  `json:"name"`
	Surname     string                  `json:"surname"`
	Contacts    *ContactMethodsResponse `json:"contacts,omitempty"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}

	resp := CustomerResponse{
		ID:          strconv.FormatInt(cust.ID, 10),
		PeselNumber: cust.PeselNumber,
		Name:        cust.Name,
		Surname:     cust.Surname,
	}
	if cust.Contacts != nil {
		resp.Contacts = &ContactMethodsResponse{
			EmailAddress:        cust.Contacts.EmailAddress,
			ResidenceAddress:    cust.Contacts.ResidenceAddress,
			RegisteredAddress:   cust.Contacts.RegisteredAddress,
			PrivatePhoneNumber:  cust.Contacts.PrivatePhoneNumber,
			BusinessPhoneNumber: cust.Contacts.BusinessPhoneNumber,
		}
	}
	return resp
}

type PageResponse struct {
	Content       []CustomerResponse `json:"content"`
	TotalElements int64              `json:"totalElements"`
	TotalPages    int                `json:"totalPages"`
	Page          int                `json:"page"`
}

func NewPageResponse(page *customer.Page) PageResponse {
	if page == nil {
		return PageResponse{Content: []CustomerResponse{}}
	}

	content := make([]CustomerResponse, len(page.Content))
	for i, cust := range page.Content {
		content[i] = NewCustomerResponse(cust)
	}
	return PageResponse{
		Content:       content,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Page:          page.Page,
	}
}

type ErrorDetail struct {
	Message    string                    `json:"message"`
	Field      string                    `json:"field,omitempty"`
	Violations []customer.FieldViolation `json:"violations,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
