package camunda

import (
	"errors"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "music-store-agent/internal/common/errors"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/common/validation"
)

func newJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                42,
		Type:               "check_for_songs",
		ProcessInstanceKey: 7,
		Variables:          variables,
	}}
}

func songSchema(t *testing.T) *validation.Schema {
	schema, err := validation.Compile("check_for_songs", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"song_title": map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"song_title"},
	})
	require.NoError(t, err)
	return schema
}

type songInput struct {
	SongTitle string `json:"song_title"`
}

func TestJobs_Decode(t *testing.T) {
	jobs := NewJobs("check_for_songs", logger.NewTestLogger(t))
	schema := songSchema(t)

	tests := []struct {
		name      string
		variables string
		schema    *validation.Schema
		want      string
		wantErr   bool
	}{
		{name: "valid", variables: `{"song_title":"Balls","customer_id":3}`, schema: schema, want: "Balls"},
		{name: "no schema", variables: `{"song_title":"Jump"}`, want: "Jump"},
		{name: "schema violation", variables: `{"song_title":12}`, schema: schema, wantErr: true},
		{name: "missing required", variables: `{}`, schema: schema, wantErr: true},
		{name: "empty variables without schema", variables: ""},
		{name: "malformed", variables: `{"song_title":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input songInput
			err := jobs.Decode(newJob(tt.variables), tt.schema, &input)
			if tt.wantErr {
				require.Error(t, err)
				var stdErr *apperrors.StandardError
				require.True(t, errors.As(err, &stdErr))
				assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, input.SongTitle)
		})
	}
}

func TestJobs_BeginReturnsDone(t *testing.T) {
	jobs := NewJobs("check_for_songs", logger.NewTestLogger(t))
	done := jobs.Begin(newJob(`{}`))
	require.NotNil(t, done)
	done()
	jobs.NotFound()
}
