package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVideoDTO_FormatsCreatedAt(t *testing.T) {
	created := time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local)
	dto := NewVideoDTO(Video{ID: 3, Name: "a.mp4", ObjectKey: "k.mp4", Size: 10, CreatedAt: created})

	b, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"createdAt":"2024-03-09 14:05:00"`)

	var back VideoDTO
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, created.Equal(time.Time(back.CreatedAt)))
}

func TestUserPasswordIsNotSerialised(t *testing.T) {
	b, err := json.Marshal(User{ID: 1, Username: "u", Password: "hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hash")
}
