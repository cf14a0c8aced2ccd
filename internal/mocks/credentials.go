package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/ai-recipe-generator/backend/internal/service"
)

// MockCredentialManager is a mock implementation of the CredentialManager interface
type MockCredentialManager struct {
	mock.Mock
}

func (m *MockCredentialManager) Set(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCredentialManager) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCredentialManager) Source() service.CredentialSource {
	args := m.Called()
	return args.Get(0).(service.CredentialSource)
}

func (m *MockCredentialManager) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}
