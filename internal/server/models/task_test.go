package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestTaskPatch_Apply(t *testing.T) {
	base := Task{ID: "t1", Title: "Buy milk", Description: ptr("2 litres"), Completed: false}

	tests := []struct {
		name  string
		patch TaskPatch
		want  Task
	}{
		{
			name:  "empty patch changes nothing",
			patch: TaskPatch{},
			want:  base,
		},
		{
			name:  "completed only",
			patch: TaskPatch{Completed: ptr(true)},
			want:  Task{ID: "t1", Title: "Buy milk", Description: ptr("2 litres"), Completed: true},
		},
		{
			name:  "explicit null clears description",
			patch: TaskPatch{DescriptionSet: true},
			want:  Task{ID: "t1", Title: "Buy milk", Completed: false},
		},
		{
			name:  "title and description",
			patch: TaskPatch{Title: ptr("Buy bread"), Description: ptr("rye"), DescriptionSet: true},
			want:  Task{ID: "t1", Title: "Buy bread", Description: ptr("rye")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base
			tt.patch.Apply(&got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	b, err := json.Marshal(User{ID: "u1", Name: "Ana", Email: "ana@x.com", PasswordHash: []byte("hash")})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hash")
	assert.NotContains(t, string(b), "password")
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&Session{}).Expired(now))
	assert.False(t, (&Session{ExpiresAt: ptr(now.Add(time.Minute))}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: ptr(now)}).Expired(now))
}
