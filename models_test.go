package postboard_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/goliatone/go-postboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostDecodesOwnership(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		owner   int64
		hasUser bool
	}{
		{
			name:    "embedded user",
			payload: `{"id":1,"title":"t","content":"c","user":{"id":7,"userName":"ada","email":"ada@example.com"}}`,
			owner:   7,
			hasUser: true,
		},
		{
			name:    "flat userId",
			payload: `{"id":1,"title":"t","content":"c","userId":8}`,
			owner:   8,
		},
		{
			name:    "ownerId",
			payload: `{"id":1,"title":"t","content":"c","ownerId":9}`,
			owner:   9,
		},
		{
			name:    "embedded user wins",
			payload: `{"id":1,"title":"t","content":"c","ownerId":9,"userId":8,"user":{"id":7}}`,
			owner:   7,
			hasUser: true,
		},
		{
			name:    "no owner",
			payload: `{"id":1,"title":"t","content":"c"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var post postboard.Post
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &post))
			assert.Equal(t, int64(1), post.ID)
			assert.Equal(t, tt.owner, post.OwnerID)
			assert.Equal(t, tt.hasUser, post.Owner != nil)
		})
	}
}

func TestPostDecodesTimestamps(t *testing.T) {
	payload := `[
		{"id":1,"createdAt":"2024-03-01T09:30:00","updatedAt":"2024-03-02T10:00:00.123456"},
		{"id":2,"createdAt":"2024-03-01T09:30:00Z","deletedAt":"2024-04-01T00:00:00+02:00"},
		{"id":3,"createdAt":null}
	]`

	var posts []postboard.Post
	require.NoError(t, json.Unmarshal([]byte(payload), &posts))
	require.Len(t, posts, 3)

	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), posts[0].CreatedAt)
	require.NotNil(t, posts[0].UpdatedAt)
	assert.Equal(t, 123456000, posts[0].UpdatedAt.Nanosecond())
	assert.False(t, posts[0].Deleted())

	assert.True(t, posts[1].CreatedAt.Equal(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))
	require.NotNil(t, posts[1].DeletedAt)
	assert.True(t, posts[1].Deleted())

	assert.True(t, posts[2].CreatedAt.IsZero())
}

func TestPostRejectsUnknownTimestamp(t *testing.T) {
	var post postboard.Post
	err := json.Unmarshal([]byte(`{"id":4,"createdAt":"yesterday"}`), &post)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "createdAt")
}

func TestSessionInvariant(t *testing.T) {
	anon := postboard.AnonymousSession()
	assert.False(t, anon.Authenticated())
	_, ok := anon.User()
	assert.False(t, ok)
	assert.Zero(t, anon.UserID())
	assert.Equal(t, "anonymous", anon.String())

	assert.False(t, postboard.NewSession(nil).Authenticated())
	assert.False(t, postboard.NewSession(&postboard.User{Email: "no-id@example.com"}).Authenticated())

	u := &postboard.User{ID: 3, UserName: "ada", Email: "ada@example.com"}
	session := postboard.NewSession(u)
	assert.True(t, session.Authenticated())
	assert.Equal(t, int64(3), session.UserID())

	u.ID = 99
	got, ok := session.User()
	require.True(t, ok)
	assert.Equal(t, int64(3), got.ID, "session keeps its own copy")
}
