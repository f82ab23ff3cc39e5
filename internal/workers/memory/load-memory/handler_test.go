package loadmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "music-store-agent/internal/common/errors"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/memory"
)

func newTestHandler(t *testing.T) (*Handler, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = db.Close() })
	return NewHandler(&Config{Timeout: time.Second}, memory.NewStore(db), logger.NewTestLogger(t)), mock
}

func TestHandler_Execute_Found(t *testing.T) {
	handler, mock := newTestHandler(t)
	mock.ExpectGet("memory:profile:5").
		SetVal(`{"customer_id":5,"music_preferences":["rock","blues"],"preferred_location":"Austin","max_concert_budget":75}`)

	output, err := handler.Execute(context.Background(), &Input{CustomerID: 5})

	require.NoError(t, err)
	assert.True(t, output.Found)
	assert.Equal(t, "Music Preferences: rock, blues\nPreferred Location: Austin\nMax Concert Budget: $75", output.LoadedMemory)
	assert.Equal(t, int64(5), output.Profile.CustomerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoProfile(t *testing.T) {
	handler, mock := newTestHandler(t)
	mock.ExpectGet("memory:profile:5").RedisNil()

	output, err := handler.Execute(context.Background(), &Input{CustomerID: 5})

	require.NoError(t, err)
	assert.False(t, output.Found)
	assert.Empty(t, output.LoadedMemory)
	assert.Nil(t, output.Profile)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		setup    func(mock redismock.ClientMock)
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "missing session customer",
			input:    &Input{},
			wantCode: apperrors.ErrCodeMissingSession,
		},
		{
			name:  "store unavailable",
			input: &Input{CustomerID: 5},
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("memory:profile:5").SetErr(errors.New("dial tcp: connection refused"))
			},
			wantCode: apperrors.ErrCodeStoreFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mock := newTestHandler(t)
			if tt.setup != nil {
				tt.setup(mock)
			}

			_, err := handler.Execute(context.Background(), tt.input)

			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}
