package getemployeebyinvoice

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"music-store-agent/internal/chinook"
	"music-store-agent/internal/common/config"
	"music-store-agent/internal/common/database"
	apperrors "music-store-agent/internal/common/errors"
	"music-store-agent/internal/common/logger"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	client, err := database.NewSQL(config.SQLConfig{Driver: config.DriverSQLite})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	script, err := os.ReadFile("../../../chinook/testdata/chinook_min.sql")
	require.NoError(t, err)
	require.NoError(t, client.LoadScript(context.Background(), script))

	return NewHandler(&Config{Timeout: 5 * time.Second}, chinook.NewStore(client, nil), logger.NewTestLogger(t))
}

func TestHandler_Execute_Found(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{InvoiceID: 98, CustomerID: 1})

	require.NoError(t, err)
	assert.Empty(t, output.Message)
	require.NotNil(t, output.Employee)
	assert.Equal(t, "Jane", output.Employee.FirstName)
	assert.Equal(t, "Sales Support Agent", *output.Employee.Title)
	assert.Equal(t, "jane@chinookcorp.com", *output.Employee.Email)
}

func TestHandler_Execute_InvoiceOfAnotherCustomer(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{InvoiceID: 1, CustomerID: 1})

	require.NoError(t, err)
	assert.Nil(t, output.Employee)
	assert.Equal(t, "No employee found for invoice ID 1 and customer identifier 1.", output.Message)
}

func TestHandler_Execute_MissingSessionCustomer(t *testing.T) {
	handler := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{InvoiceID: 98})

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeMissingSession, stdErr.Code)
}
