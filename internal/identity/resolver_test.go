package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"music-store-agent/internal/common/logger"
)

type fakeLookup struct {
	phones     map[string][]int64
	emails     map[string][]int64
	phoneCalls []string
	emailCalls []string
	err        error
}

func (f *fakeLookup) CustomerIDsByPhone(_ context.Context, phone string) ([]int64, error) {
	f.phoneCalls = append(f.phoneCalls, phone)
	return f.phones[phone], f.err
}

func (f *fakeLookup) CustomerIDsByEmail(_ context.Context, email string) ([]int64, error) {
	f.emailCalls = append(f.emailCalls, email)
	return f.emails[email], f.err
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		phones: map[string][]int64{
			"+55 (12) 3923-5555": {1},
			"+1 555 0100":        {3, 4},
		},
		emails: map[string][]int64{
			"luisg@embraer.com.br": {1},
			"shared@example.com":   {3, 4},
		},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		identifier string
		want       Kind
	}{
		{"1", KindCustomerID},
		{"0042", KindCustomerID},
		{"+55 (12) 3923-5555", KindPhone},
		{"+a@b.com", KindPhone},
		{"luisg@embraer.com.br", KindEmail},
		{"Luis Goncalves", KindUnknown},
		{"", KindUnknown},
		{"-5", KindUnknown},
		{"12a", KindUnknown},
		{"٣", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.identifier))
		})
	}
}

func TestResolver_DigitsNeverTouchStore(t *testing.T) {
	lookup := newFakeLookup()
	r := NewResolver(lookup, logger.NewTestLogger(t))

	for _, id := range []string{"1", "58", "0007", "9223372036854775807"} {
		result, err := r.Resolve(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, result.Found, id)
		assert.Equal(t, KindCustomerID, result.Kind)
	}

	result, err := r.Resolve(context.Background(), "0007")
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.CustomerID)

	assert.Empty(t, lookup.phoneCalls)
	assert.Empty(t, lookup.emailCalls)
}

func TestResolver_OverflowingDigitsNotFound(t *testing.T) {
	lookup := newFakeLookup()
	r := NewResolver(lookup, logger.NewTestLogger(t))

	result, err := r.Resolve(context.Background(), "99999999999999999999999")
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Empty(t, lookup.phoneCalls)
	assert.Empty(t, lookup.emailCalls)
}

func TestResolver_Phone(t *testing.T) {
	tests := []struct {
		name      string
		phone     string
		found     bool
		want      int64
		ambiguous bool
	}{
		{name: "match", phone: "+55 (12) 3923-5555", found: true, want: 1},
		{name: "shared picks lowest", phone: "+1 555 0100", found: true, want: 3, ambiguous: true},
		{name: "no match", phone: "+00 000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := newFakeLookup()
			r := NewResolver(lookup, logger.NewTestLogger(t))

			result, err := r.Resolve(context.Background(), tt.phone)
			require.NoError(t, err)
			assert.Equal(t, tt.found, result.Found)
			assert.Equal(t, tt.want, result.CustomerID)
			assert.Equal(t, tt.ambiguous, result.Ambiguous)
			assert.Equal(t, []string{tt.phone}, lookup.phoneCalls)
			assert.Empty(t, lookup.emailCalls)
		})
	}
}

func TestResolver_Email(t *testing.T) {
	tests := []struct {
		name  string
		email string
		found bool
		want  int64
	}{
		{name: "match", email: "luisg@embraer.com.br", found: true, want: 1},
		{name: "shared picks lowest", email: "shared@example.com", found: true, want: 3},
		{name: "no match", email: "nobody@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := newFakeLookup()
			r := NewResolver(lookup, logger.NewTestLogger(t))

			result, err := r.Resolve(context.Background(), tt.email)
			require.NoError(t, err)
			assert.Equal(t, tt.found, result.Found)
			assert.Equal(t, tt.want, result.CustomerID)
			assert.Equal(t, []string{tt.email}, lookup.emailCalls)
			assert.Empty(t, lookup.phoneCalls)
		})
	}
}

func TestResolver_UnknownShapeNotFound(t *testing.T) {
	lookup := newFakeLookup()
	r := NewResolver(lookup, logger.NewTestLogger(t))

	for _, id := range []string{"", "Luis", "customer one"} {
		result, err := r.Resolve(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, result.Found)
	}
	assert.Empty(t, lookup.phoneCalls)
	assert.Empty(t, lookup.emailCalls)
}

func TestResolver_StoreErrorPropagates(t *testing.T) {
	lookup := newFakeLookup()
	lookup.err = errors.New("database is locked")
	r := NewResolver(lookup, logger.NewTestLogger(t))

	_, err := r.Resolve(context.Background(), "+1 555 0100")
	assert.Error(t, err)
}
