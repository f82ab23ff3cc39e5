// Package memory keeps long-term customer preferences.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	apperrors "music-store-agent/internal/common/errors"
	"music-store-agent/internal/models"
)

const keyPrefix = "memory:profile:"

var ErrProfileNotFound = errors.New("profile not found")

func Key(customerID int64) string {
	return keyPrefix + strconv.FormatInt(customerID, 10)
}

type Store struct {
	client redis.Cmdable
}

func NewStore(client redis.Cmdable) *Store {
	return &Store{client: client}
}

// Get returns the saved profile, or ErrProfileNotFound.
func (s *Store) Get(ctx context.Context, customerID int64) (*models.UserProfile, error) {
	raw, err := s.client.Get(ctx, Key(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get profile", err)
	}

	var profile models.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, apperrors.NewStoreFailedError("decode profile", err)
	}
	profile.CustomerID = customerID
	return &profile, nil
}

func (s *Store) Save(ctx context.Context, profile models.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return apperrors.NewStoreFailedError("encode profile", err)
	}
	if err := s.client.Set(ctx, Key(profile.CustomerID), string(raw), 0).Err(); err != nil {
		return apperrors.NewStoreError("save profile", err)
	}
	return nil
}

// Update holds the fields a save call may change. Nil fields keep the
// stored value.
type Update struct {
	MusicPreferences  []string
	PreferredLocation *string
	MaxConcertBudget  *float64
}

// Merge applies update on top of base, which may be nil.
func Merge(customerID int64, base *models.UserProfile, update Update) models.UserProfile {
	profile := models.UserProfile{CustomerID: customerID}
	if base != nil {
		profile = *base
		profile.CustomerID = customerID
	}
	if update.MusicPreferences != nil {
		profile.MusicPreferences = update.MusicPreferences
	}
	if update.PreferredLocation != nil {
		profile.PreferredLocation = *update.PreferredLocation
	}
	if update.MaxConcertBudget != nil {
		v := *update.MaxConcertBudget
		profile.MaxConcertBudget = &v
	}
	return profile
}

// Format renders a profile for inclusion in a prompt, one line per
// non-empty preference. A nil profile renders as "".
func Format(profile *models.UserProfile) string {
	if profile == nil {
		return ""
	}

	var parts []string
	if len(profile.MusicPreferences) > 0 {
		parts = append(parts, "Music Preferences: "+strings.Join(profile.MusicPreferences, ", "))
	}
	if profile.PreferredLocation != "" {
		parts = append(parts, "Preferred Location: "+profile.PreferredLocation)
	}
	if profile.MaxConcertBudget != nil && *profile.MaxConcertBudget != 0 {
		parts = append(parts, fmt.Sprintf("Max Concert Budget: $%s", strconv.FormatFloat(*profile.MaxConcertBudget, 'f', -1, 64)))
	}
	return strings.Join(parts, "\n")
}
