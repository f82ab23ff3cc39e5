package getalbumsbyartist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"music-store-agent/internal/chinook"
	"music-store-agent/internal/common/database"
	apperrors "music-store-agent/internal/common/errors"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/models"
)

const albumsQuery = `SELECT "Album"."Title", "Artist"."Name" FROM "Album" JOIN "Artist" ON "Album"."ArtistId" = "Artist"."ArtistId" WHERE "Artist"."Name" LIKE \$1`

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := chinook.NewStore(database.NewSQLFromDB(db, "postgres"), nil)
	return NewHandler(&Config{Timeout: 5 * time.Second}, store, logger.NewTestLogger(t)), mock
}

func TestHandler_Execute_Success(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(albumsQuery).
		WithArgs("%AC/DC%").
		WillReturnRows(sqlmock.NewRows([]string{"Title", "Name"}).
			AddRow("For Those About To Rock We Salute You", "AC/DC").
			AddRow("Let There Be Rock", "AC/DC"))

	output, err := handler.Execute(context.Background(), &Input{Artist: "AC/DC"})

	require.NoError(t, err)
	assert.Equal(t, 2, output.RowCount)
	assert.Equal(t, []models.Album{
		{Title: "For Those About To Rock We Salute You", Name: "AC/DC"},
		{Title: "Let There Be Rock", Name: "AC/DC"},
	}, output.Albums)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoMatches(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(albumsQuery).
		WithArgs("%Nobody%").
		WillReturnRows(sqlmock.NewRows([]string{"Title", "Name"}))

	output, err := handler.Execute(context.Background(), &Input{Artist: "Nobody"})

	require.NoError(t, err)
	assert.Zero(t, output.RowCount)
	assert.NotNil(t, output.Albums)
	assert.Empty(t, output.Albums)
}

func TestHandler_Execute_QuoteIsBound(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(albumsQuery).
		WithArgs("%Guns N' Roses%").
		WillReturnRows(sqlmock.NewRows([]string{"Title", "Name"}))

	_, err := handler.Execute(context.Background(), &Input{Artist: "Guns N' Roses"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		mockQuery func(mock sqlmock.Sqlmock)
		wantCode  apperrors.ErrorCode
	}{
		{
			name:  "query timeout",
			input: &Input{Artist: "AC/DC"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(albumsQuery).WillReturnError(context.DeadlineExceeded)
			},
			wantCode: apperrors.ErrCodeQueryTimeout,
		},
		{
			name:  "query failure",
			input: &Input{Artist: "AC/DC"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(albumsQuery).WillReturnError(errors.New("relation does not exist"))
			},
			wantCode: apperrors.ErrCodeQueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mock := newTestHandler(t)
			if tt.mockQuery != nil {
				tt.mockQuery(mock)
			}

			_, err := handler.Execute(context.Background(), tt.input)

			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}
