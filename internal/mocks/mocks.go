// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/matrixctl/internal/browser"
	"github.com/xkilldash9x/matrixctl/internal/patients"
)

// -- Page Mock --

// MockPage mocks browser.Page.
type MockPage struct {
	mock.Mock
}

var _ browser.Page = (*MockPage)(nil)

func (m *MockPage) Count(ctx context.Context, loc browser.Locator) (int, error) {
	args := m.Called(ctx, loc)
	return args.Int(0), args.Error(1)
}

func (m *MockPage) Click(ctx context.Context, loc browser.Locator, pick browser.Pick) error {
	args := m.Called(ctx, loc, pick)
	return args.Error(0)
}

func (m *MockPage) Fill(ctx context.Context, loc browser.Locator, value string) error {
	args := m.Called(ctx, loc, value)
	return args.Error(0)
}

func (m *MockPage) SelectOption(ctx context.Context, loc browser.Locator, value string) error {
	args := m.Called(ctx, loc, value)
	return args.Error(0)
}

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockPage) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPage) URL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPage) Screenshot(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	var buf []byte
	if b := args.Get(0); b != nil {
		buf = b.([]byte)
	}
	return buf, args.Error(1)
}

func (m *MockPage) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Launcher returns a browser.Launcher that hands out this mock.
func (m *MockPage) Launcher() browser.Launcher {
	return func(context.Context) (browser.Page, error) { return m, nil }
}

// -- Patient Directory Mock --

// MockPatientDirectory mocks the patient lookups workflows depend on.
type MockPatientDirectory struct {
	mock.Mock
}

func (m *MockPatientDirectory) Resolve(ctx context.Context, id patients.Identifier) (patients.Resolution, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(patients.Resolution), args.Error(1)
}

func (m *MockPatientDirectory) List(ctx context.Context) ([]patients.Patient, error) {
	args := m.Called(ctx)
	var list []patients.Patient
	if l := args.Get(0); l != nil {
		list = l.([]patients.Patient)
	}
	return list, args.Error(1)
}
