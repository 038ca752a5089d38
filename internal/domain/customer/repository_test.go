package customer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) Create(ctx context.Context, cust *Customer) error {
	ret := _m.Called(ctx, cust)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *Customer) error); ok {
		r0 = rf(ctx, cust)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockRepository) FindByPesel(ctx context.Context, peselNumber string) (*Customer, error) {
	ret := _m.Called(ctx, peselNumber)

	var r0 *Customer
	if rf, ok := ret.Get(0).(func(context.Context, string) *Customer); ok {
		r0 = rf(ctx, peselNumber)
	} else {

		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, peselNumber)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) FindPage(ctx context.Context, offset, limit int, descending bool) ([]*Customer, error) {
	ret := _m.Called(ctx, offset, limit, descending)

	var r0 []*Customer
	if rf, ok := ret.Get(0).(func(context.Context, int, int, bool) []*Customer); ok {
		r0 = rf(ctx, offset, limit, descending)
	} else {

		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int, int, bool) error); ok {
		r1 = rf(ctx, offset, limit, descending)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) CountAll(ctx context.Context) (int64, error) {
	ret := _m.Called(ctx)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context) int64); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Get(0).(int64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) FindAllWithContacts(ctx context.Context) ([]*Customer, error) {
	ret := _m.Called(ctx)

	var r0 []*Customer
	if rf, ok := ret.Get(0).(func(context.Context) []*Customer); ok {
		r0 = rf(ctx)
	} else {

		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) UpdateNames(ctx context.Context, peselNumber, name, surname string) (*Customer, error) {
	ret := _m.Called(ctx, peselNumber, name, surname)

	var r0 *Customer
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string) *Customer); ok {
		r0 = rf(ctx, peselNumber, name, surname)
	} else {

		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, string) error); ok {
		r1 = rf(ctx, peselNumber, name, surname)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) Delete(ctx context.Context, peselNumber string) error {
	ret := _m.Called(ctx, peselNumber)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, peselNumber)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockRepository) ReplaceContacts(ctx context.Context, peselNumber string, contacts *ContactMethods) (*Customer, error) {
	ret := _m.Called(ctx, peselNumber, contacts)

	var r0 *Customer
	if rf, ok := ret.Get(0).(func(context.Context, string, *ContactMethods) *Customer); ok {
		r0 = rf(ctx, peselNumber, contacts)
	} else {

		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, *ContactMethods) error); ok {
		r1 = rf(ctx, peselNumber, contacts)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
