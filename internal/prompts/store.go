// Package prompts keeps the agent's prompt texts in Redis.
package prompts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	apperrors "music-store-agent/internal/common/errors"
	"music-store-agent/internal/common/logger"
)

const keyPrefix = "prompts:"

var ErrPromptNotFound = errors.New("prompt not found")

// Names lists every prompt the agents load at startup.
var Names = []string{
	"supervisor_system_prompt",
	"invoice_subagent_prompt",
	"music_subagent_prompt",
	"concert_subagent_prompt",
	"extract_customer_info_prompt",
	"verify_customer_info_prompt",
	"create_memory_prompt",
}

// Key returns the store key of a prompt.
func Key(name string) string {
	return keyPrefix + name
}

// ParseDefaults decodes a name -> text JSON object.
func ParseDefaults(data []byte) (map[string]string, error) {
	var defaults map[string]string
	if err := json.Unmarshal(data, &defaults); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	return defaults, nil
}

// ReadDefaults loads defaults from path, or from fallback when path is empty.
func ReadDefaults(path string, fallback []byte) (map[string]string, error) {
	data := fallback
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read prompts %s: %w", path, err)
		}
	}
	return ParseDefaults(data)
}

type Store struct {
	client redis.Cmdable
	logger logger.Logger

	mu     sync.RWMutex
	loaded map[string]string
}

func NewStore(client redis.Cmdable, log logger.Logger) *Store {
	return &Store{client: client, logger: log}
}

// Seed writes the defaults. Without force only absent keys are written, so
// prompts edited in the store survive a restart. It returns the number of
// keys written.
func (s *Store) Seed(ctx context.Context, defaults map[string]string, force bool) (int, error) {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)

	written := 0
	for _, name := range names {
		if force {
			if err := s.client.Set(ctx, Key(name), defaults[name], 0).Err(); err != nil {
				return written, apperrors.NewStoreError("seed prompt "+name, err)
			}
			written++
			continue
		}

		ok, err := s.client.SetNX(ctx, Key(name), defaults[name], 0).Result()
		if err != nil {
			return written, apperrors.NewStoreError("seed prompt "+name, err)
		}
		if ok {
			written++
		}
	}

	s.logger.Info("seeded prompts", map[string]interface{}{
		"written": written,
		"total":   len(names),
		"force":   force,
	})
	return written, nil
}

// Get reads a prompt from the store.
func (s *Store) Get(ctx context.Context, name string) (string, error) {
	text, err := s.client.Get(ctx, Key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperrors.NewPromptNotFoundError(name, ErrPromptNotFound)
	}
	if err != nil {
		return "", apperrors.NewStoreError("get prompt "+name, err)
	}
	return text, nil
}

// LoadAll seeds missing defaults and then reads every known prompt. The
// loaded texts are served by Loaded for the life of the process.
func (s *Store) LoadAll(ctx context.Context, defaults map[string]string) error {
	if _, err := s.Seed(ctx, defaults, false); err != nil {
		return err
	}

	loaded := make(map[string]string, len(Names))
	for _, name := range Names {
		text, err := s.Get(ctx, name)
		if err != nil {
			return err
		}
		loaded[name] = text
	}

	s.mu.Lock()
	s.loaded = loaded
	s.mu.Unlock()

	s.logger.Info("loaded prompts", map[string]interface{}{"count": len(loaded)})
	return nil
}

// Loaded returns a prompt captured by LoadAll.
func (s *Store) Loaded(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text, ok := s.loaded[name]
	if !ok {
		return "", apperrors.NewPromptNotFoundError(name, ErrPromptNotFound)
	}
	return text, nil
}
