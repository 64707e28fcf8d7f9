package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	cause := errors.New("sqlite: unable to open database file")
	err := NewUserError("could not open the feedback database", cause)

	assert.Equal(t, "could not open the feedback database: sqlite: unable to open database file", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))

	var userErr *UserError
	require.True(t, errors.As(err, &userErr))
	assert.Equal(t, "could not open the feedback database", userErr.UserMessage)
}

func TestUserError_NoCause(t *testing.T) {
	err := &UserError{UserMessage: "something went wrong"}

	assert.Equal(t, "something went wrong", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "model not ready",
			err:  ErrModelNotReady,
			want: true,
		},
		{
			name: "wrapped model not ready",
			err:  fmt.Errorf("predict: %w", ErrModelNotReady),
			want: true,
		},
		{
			name: "other error",
			err:  ErrDatabaseCorrupted,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
