package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"customers-service/internal/api/handler"
	"customers-service/internal/api/handler/dto"
	"customers-service/internal/domain/customer"
	"customers-service/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (_m *MockService) AddCustomer(ctx context.Context, candidate *customer.Customer) (*customer.Customer, error) {
	ret := _m.Called(ctx, candidate)

	var r0 *customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, *customer.Customer) *customer.Customer); ok {
		r0 = rf(ctx, candidate)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*customer.Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, *customer.Customer) error); ok {
		r1 = rf(ctx, candidate)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockService) GetCustomerByPesel(ctx context.Context, peselNumber string) (*customer.Customer, error) {
	ret := _m.Called(ctx, peselNumber)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockService) ListCustomers(ctx context.Context, page int, direction customer.SortDirection) (*customer.Page, error) {
	ret := _m.Called(ctx, page, direction)

	var r0 *customer.Page
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Page)
	}
	return r0, ret.Error(1)
}

func (_m *MockService) ListCustomersForExport(ctx context.Context) ([]*customer.Customer, error) {
	ret := _m.Called(ctx)

	var r0 []*customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockService) EditCustomer(ctx context.Context, peselNumber string, request *customer.Customer) (*customer.Customer, error) {
	ret := _m.Called(ctx, peselNumber, request)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockService) DeleteCustomer(ctx context.Context, peselNumber string) error {
	ret := _m.Called(ctx, peselNumber)
	return ret.Error(0)
}

func (_m *MockService) AddContact(ctx context.Context, peselNumber string, contacts *customer.ContactMethods) (*customer.Customer, error) {
	ret := _m.Called(ctx, peselNumber, contacts)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func setupHandler() (*MockService, *handler.CustomerHandler) {
	mockService := new(MockService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return mockService, handler.NewCustomerHandler(mockService, logger)
}

func withPeselParam(req *http.Request, pesel string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("peselNumber", pesel)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

const testPesel = "90010112345"

func storedCustomer() *customer.Customer {
	return &customer.Customer{ID: 1, PeselNumber: testPesel, Name: "Tola", Surname: "Kowalska"}
}

func TestCreateCustomer(t *testing.T) {
	t.Run("success returns 201 with Location header", func(t *testing.T) {
		mockService, h := setupHandler()
		reqBody := dto.CustomerRequest{PeselNumber: testPesel, Name: "Tola", Surname: "Kowalska"}
		reqBodyBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(reqBodyBytes))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		mockService.On("AddCustomer", mock.Anything, mock.MatchedBy(func(c *customer.Customer) bool {
			return c.PeselNumber == testPesel && c.Name == "Tola" && c.Surname == "Kowalska"
		})).Return(storedCustomer(), nil)

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/customers/"+testPesel, rec.Header().Get("Location"))
		var resp dto.CustomerResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "1", resp.ID)
		assert.Equal(t, testPesel, resp.PeselNumber)
		mockService.AssertExpectations(t)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		mockService, h := setupHandler()
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"peselNumber":`))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "AddCustomer")
	})

	t.Run("unknown field returns 400", func(t *testing.T) {
		mockService, h := setupHandler()
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"unexpected":"x"}`))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "AddCustomer")
	})

	t.Run("duplicate PESEL returns 409", func(t *testing.T) {
		mockService, h := setupHandler()
		reqBody := dto.CustomerRequest{PeselNumber: testPesel, Name: "Tola", Surname: "Kowalska"}
		reqBodyBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(reqBodyBytes))
		rec := httptest.NewRecorder()

		mockService.On("AddCustomer", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: customer with PESEL number %s already exists", apperrors.ErrAlreadyExists, testPesel))

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("validation failure returns 400 with violations", func(t *testing.T) {
		mockService, h := setupHandler()
		reqBody := dto.CustomerRequest{PeselNumber: "123", Name: "Tola", Surname: "Kowalska"}
		reqBodyBytes, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(reqBodyBytes))
		rec := httptest.NewRecorder()

		vErr := &customer.ValidationErrors{Violations: []customer.FieldViolation{
			{Field: "peselNumber", Message: "PESEL should be 11 digits"},
		}}
		mockService.On("AddCustomer", mock.Anything, mock.Anything).Return(nil, vErr)

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Error.Violations, 1)
		assert.Equal(t, "peselNumber", resp.Error.Violations[0].Field)
		mockService.AssertExpectations(t)
	})
}

func TestGetCustomer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("GetCustomerByPesel", mock.Anything, testPesel).Return(storedCustomer(), nil)

		req := withPeselParam(httptest.NewRequest(http.MethodGet, "/customers/"+testPesel, nil), testPesel)
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, testPesel, resp.PeselNumber)
		mockService.AssertExpectations(t)
	})

	t.Run("not found returns 404", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("GetCustomerByPesel", mock.Anything, "00000000000").Return(nil, apperrors.ErrNotFound)

		req := withPeselParam(httptest.NewRequest(http.MethodGet, "/customers/00000000000", nil), "00000000000")
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestListCustomers(t *testing.T) {
	t.Run("success returns page", func(t *testing.T) {
		mockService, h := setupHandler()
		page := &customer.Page{
			Content:       []*customer.Customer{storedCustomer()},
			TotalElements: 6,
			TotalPages:    2,
			Page:          1,
		}
		mockService.On("ListCustomers", mock.Anything, 1, customer.SortDesc).Return(page, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers?page=1&sort=desc", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.PageResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(6), resp.TotalElements)
		assert.Equal(t, 2, resp.TotalPages)
		assert.Equal(t, 1, resp.Page)
		assert.Len(t, resp.Content, 1)
		mockService.AssertExpectations(t)
	})

	t.Run("empty table returns 204", func(t *testing.T) {
		mockService, h := setupHandler()
		empty := &customer.Page{Content: []*customer.Customer{}, TotalElements: 0}
		mockService.On("ListCustomers", mock.Anything, 0, customer.SortAsc).Return(empty, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.Bytes())
		mockService.AssertExpectations(t)
	})

	t.Run("non-numeric page falls back to zero", func(t *testing.T) {
		mockService, h := setupHandler()
		page := &customer.Page{Content: []*customer.Customer{storedCustomer()}, TotalElements: 1, TotalPages: 1}
		mockService.On("ListCustomers", mock.Anything, 0, customer.SortAsc).Return(page, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers?page=abc", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestUpdateCustomer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, h := setupHandler()
		updated := storedCustomer()
		updated.Name = "Lola"
		mockService.On("EditCustomer", mock.Anything, testPesel, mock.Anything).Return(updated, nil)

		reqBody := dto.CustomerRequest{PeselNumber: testPesel, Name: "Lola", Surname: "Kowalska"}
		reqBodyBytes, _ := json.Marshal(reqBody)
		req := withPeselParam(httptest.NewRequest(http.MethodPut, "/customers/"+testPesel, bytes.NewReader(reqBodyBytes)), testPesel)
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Lola", resp.Name)
		mockService.AssertExpectations(t)
	})

	t.Run("PESEL mismatch returns 400", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("EditCustomer", mock.Anything, testPesel, mock.Anything).
			Return(nil, fmt.Errorf("%w: PESEL number cannot be changed", apperrors.ErrInvalidArgument))

		reqBody := dto.CustomerRequest{PeselNumber: "99999999999", Name: "Lola", Surname: "Kowalska"}
		reqBodyBytes, _ := json.Marshal(reqBody)
		req := withPeselParam(httptest.NewRequest(http.MethodPut, "/customers/"+testPesel, bytes.NewReader(reqBodyBytes)), testPesel)
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error.Message, "PESEL number cannot be changed")
		mockService.AssertExpectations(t)
	})

	t.Run("not found returns 404", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("EditCustomer", mock.Anything, testPesel, mock.Anything).Return(nil, apperrors.ErrNotFound)

		reqBody := dto.CustomerRequest{PeselNumber: testPesel, Name: "Lola", Surname: "Kowalska"}
		reqBodyBytes, _ := json.Marshal(reqBody)
		req := withPeselParam(httptest.NewRequest(http.MethodPut, "/customers/"+testPesel, bytes.NewReader(reqBodyBytes)), testPesel)
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestDeleteCustomer(t *testing.T) {
	t.Run("success returns 204", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("DeleteCustomer", mock.Anything, testPesel).Return(nil)

		req := withPeselParam(httptest.NewRequest(http.MethodDelete, "/customers/"+testPesel, nil), testPesel)
		rec := httptest.NewRecorder()

		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("missing customer returns 400 not 404", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("DeleteCustomer", mock.Anything, "00000000000").Return(apperrors.ErrNotFound)

		req := withPeselParam(httptest.NewRequest(http.MethodDelete, "/customers/00000000000", nil), "00000000000")
		rec := httptest.NewRecorder()

		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "no customer with PESEL number 00000000000", resp.Error.Message)
		mockService.AssertExpectations(t)
	})
}

func TestAddContactMethods(t *testing.T) {
	email := "tola@example.com"

	t.Run("success", func(t *testing.T) {
		mockService, h := setupHandler()
		updated := storedCustomer()
		updated.Contacts = &customer.ContactMethods{ID: 10, EmailAddress: &email}
		mockService.On("AddContact", mock.Anything, testPesel, mock.MatchedBy(func(m *customer.ContactMethods) bool {
			return m.EmailAddress != nil && *m.EmailAddress == email
		})).Return(updated, nil)

		reqBody := dto.ContactMethodsRequest{EmailAddress: &email}
		reqBodyBytes, _ := json.Marshal(reqBody)
		req := withPeselParam(httptest.NewRequest(http.MethodPost, "/customers/"+testPesel+"/methods", bytes.NewReader(reqBodyBytes)), testPesel)
		rec := httptest.NewRecorder()

		h.AddContactMethods(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotNil(t, resp.Contacts)
		assert.Equal(t, email, *resp.Contacts.EmailAddress)
		mockService.AssertExpectations(t)
	})

	t.Run("invalid email returns 400 without service call", func(t *testing.T) {
		mockService, h := setupHandler()
		bad := "not-an-email"
		reqBody := dto.ContactMethodsRequest{EmailAddress: &bad}
		reqBodyBytes, _ := json.Marshal(reqBody)
		req := withPeselParam(httptest.NewRequest(http.MethodPost, "/customers/"+testPesel+"/methods", bytes.NewReader(reqBodyBytes)), testPesel)
		rec := httptest.NewRecorder()

		h.AddContactMethods(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "AddContact")
	})

	t.Run("customer not found returns 404", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("AddContact", mock.Anything, "00000000000", mock.Anything).Return(nil, apperrors.ErrNotFound)

		reqBody := dto.ContactMethodsRequest{EmailAddress: &email}
		reqBodyBytes, _ := json.Marshal(reqBody)
		req := withPeselParam(httptest.NewRequest(http.MethodPost, "/customers/00000000000/methods", bytes.NewReader(reqBodyBytes)), "00000000000")
		rec := httptest.NewRecorder()

		h.AddContactMethods(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestExportCustomers(t *testing.T) {
	t.Run("success streams CSV attachment", func(t *testing.T) {
		mockService, h := setupHandler()
		email := "tola@example.com"
		customers := []*customer.Customer{
			{ID: 1, PeselNumber: testPesel, Name: "Tola", Surname: "Kowalska",
				Contacts: &customer.ContactMethods{EmailAddress: &email}},
			{ID: 2, PeselNumber: "85050554321", Name: "Mieszko", Surname: "Kowalski"},
		}
		mockService.On("ListCustomersForExport", mock.Anything).Return(customers, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers/export", nil)
		rec := httptest.NewRecorder()

		h.ExportCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		disposition := rec.Header().Get("Content-Disposition")
		assert.True(t, strings.HasPrefix(disposition, "attachment; filename=customers_"))
		assert.True(t, strings.HasSuffix(disposition, ".csv"))

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		assert.Len(t, lines, 3)
		assert.Equal(t, "Name,Surname,PESEL number,Email,Residence Address,Registered Address,Private Phone Number,Business Phone Number", lines[0])
		assert.Contains(t, lines[1], "tola@example.com")
		mockService.AssertExpectations(t)
	})

	t.Run("service failure returns 500", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("ListCustomersForExport", mock.Anything).Return(nil, apperrors.ErrDatabase)

		req := httptest.NewRequest(http.MethodGet, "/customers/export", nil)
		rec := httptest.NewRecorder()

		h.ExportCustomers(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		mockService.AssertExpectations(t)
	})
}
