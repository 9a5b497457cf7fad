package models

import (
	"context"

	"github.com/stretchr/testify/mock"
)

var _ Interface = &MockModel{}

type MockModel struct {
	mock.Mock
}

func (m *MockModel) Think(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	args := m.Called(ctx, messages, temperature, maxTokens)
	return args.String(0), args.Error(1)
}

func (m *MockModel) EmbedText(ctx context.Context, input string) ([]float32, error) {
	args := m.Called(ctx, input)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}
