package membership

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/models"
)

type metaStub struct {
	users map[int64]map[string]string
	err   error
}

func (m *metaStub) UserExists(_ context.Context, userID int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.users[userID]
	return ok, nil
}

func (m *metaStub) GetMeta(_ context.Context, userID int64, key string) (string, error) {
	return m.users[userID][key], nil
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
}

func TestResolve_Presets(t *testing.T) {
	r := NewResolver(nil, time.UTC, fixedNow)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "thirty days", value: "THIRTY_DAYS", want: "20240131"},
		{name: "ninety days", value: "NINETY_DAYS", want: "20240331"},
		{name: "half year", value: "HALF_YEAR", want: "20240629"},
		{name: "one year in leap year", value: "ONE_YEAR", want: "20241231"},
		{name: "lower case name", value: "thirty_days", want: "20240131"},
		{name: "legacy form value", value: "90 days", want: "20240331"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(base, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_ExplicitDateComparedWithNow(t *testing.T) {
	r := NewResolver(nil, time.UTC, fixedNow)
	// база далеко в будущем не должна влиять на проверку явной даты
	farBase := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "future iso date", value: "2030-01-01", want: "20300101"},
		{name: "future rfc3339", value: "2024-02-15T08:00:00Z", want: "20240215"},
		{name: "compact format", value: "20240301", want: "20240301"},
		{name: "past date", value: "2023-01-01", wantErr: true},
		{name: "start of today", value: "2024-01-01", wantErr: true},
		{name: "garbage", value: "next tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(farBase, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errcode.List{errcode.DateFormatInvalid}, errcode.FromError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBase(t *testing.T) {
	meta := &metaStub{users: map[int64]map[string]string{
		1: {models.MetaMembershipDuration: "20240301"},
		2: {},
		3: {models.MetaMembershipDuration: "not-a-date"},
	}}
	r := NewResolver(meta, time.UTC, fixedNow)

	tests := []struct {
		name   string
		userID int64
		want   time.Time
	}{
		{name: "new user", userID: 0, want: fixedNow()},
		{name: "stored date", userID: 1, want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "no stored date", userID: 2, want: fixedNow()},
		{name: "broken stored date", userID: 3, want: fixedNow()},
		{name: "missing user falls back to now", userID: 42, want: fixedNow()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Base(context.Background(), tt.userID)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestResolveFor_ExtendsStoredExpiry(t *testing.T) {
	meta := &metaStub{users: map[int64]map[string]string{
		7: {models.MetaMembershipDuration: "20240301"},
	}}
	r := NewResolver(meta, time.UTC, fixedNow)

	got, err := r.ResolveFor(context.Background(), 7, "THIRTY_DAYS")
	require.NoError(t, err)
	assert.Equal(t, "20240331", got)
}

func TestBase_StoreError(t *testing.T) {
	r := NewResolver(&metaStub{err: errors.New("connection refused")}, time.UTC, fixedNow)

	_, err := r.Base(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "membership.Base")
}

func TestValidDuration(t *testing.T) {
	now := fixedNow()

	assert.Nil(t, ValidDuration("HALF_YEAR", now))
	assert.Nil(t, ValidDuration("2025-05-05", now))
	assert.Equal(t, errcode.List{errcode.DateFormatInvalid}, ValidDuration("05/05/2025", now))
	assert.Equal(t, errcode.List{errcode.DateFormatInvalid}, ValidDuration("2023-12-31", now))
	assert.Equal(t, errcode.List{errcode.DateFormatInvalid}, ValidDuration("2024-01-01", now))
}

func TestValidDuration_AgreesWithResolve(t *testing.T) {
	r := NewResolver(nil, time.UTC, fixedNow)
	for _, value := range []string{"2023-06-01", "2024-01-01", "not-a-date", "2030-01-01", "ONE_YEAR"} {
		_, err := r.Resolve(fixedNow(), value)
		assert.Equal(t, errcode.FromError(err), ValidDuration(value, fixedNow()), value)
	}
}

func TestParsePreset(t *testing.T) {
	p, ok := ParsePreset(" one_year ")
	assert.True(t, ok)
	assert.Equal(t, models.PresetOneYear, p)

	_, ok = ParsePreset("TWO_YEARS")
	assert.False(t, ok)
}
