package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"urban-pulse/internal/domain/model"
)

func TestGenerateDescription(t *testing.T) {
	generator := new(mockDescriptionGenerator)
	uc := NewDescriptionUseCase(new(mockImageStorage), generator)

	generator.On("GenerateDescription", mock.Anything,
		"https://urban-pulse-images.s3.ca-central-1.amazonaws.com/uploads/1-pothole.jpg").
		Return("There's a deep pothole right in the bike lane.", nil).Once()
	generator.On("GenerateDescription", mock.Anything, "https://cdn.example.com/x.jpg").
		Return("Graffiti on the wall.", nil).Once()

	content, err := uc.GenerateDescription(context.Background(), "uploads/1-pothole.jpg")
	require.NoError(t, err)
	assert.Equal(t, "There's a deep pothole right in the bike lane.", content)

	content, err = uc.GenerateDescription(context.Background(), "https://cdn.example.com/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Graffiti on the wall.", content)
	generator.AssertExpectations(t)
}

func TestGenerateDescription_Errors(t *testing.T) {
	_, err := NewDescriptionUseCase(new(mockImageStorage), nil).GenerateDescription(context.Background(), "uploads/a.jpg")
	assert.ErrorIs(t, err, model.ErrNotConfigured)

	generator := new(mockDescriptionGenerator)
	uc := NewDescriptionUseCase(new(mockImageStorage), generator)

	_, err = uc.GenerateDescription(context.Background(), "  ")
	var vErr *model.ValidationError
	assert.True(t, errors.As(err, &vErr))

	generator.On("GenerateDescription", mock.Anything, mock.Anything).Return("", errors.New("429 too many requests"))
	_, err = uc.GenerateDescription(context.Background(), "uploads/a.jpg")
	assert.Error(t, err)
}
