package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockMediaManager struct {
	mock.Mock
}

func (m *MockMediaManager) Upload(ctx context.Context, localPath, key string) (string, error) {
	args := m.Called(ctx, localPath, key)
	return args.String(0), args.Error(1)
}
