package postboard

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// User is the identity returned by the API. Password material never
// reaches the client.
type User struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// Session is the client's view of who is logged in. A Session is either
// anonymous or authenticated with a user that has a non zero id; there is no
// other state. Build values with NewSession or AnonymousSession.
type Session struct {
	user *User
}

// NewSession returns an authenticated session for u. A nil user or a user
// without an id yields the anonymous session.
func NewSession(u *User) Session {
	if u == nil || u.ID == 0 {
		return AnonymousSession()
	}
	cp := *u
	return Session{user: &cp}
}

// AnonymousSession returns the logged out session.
func AnonymousSession() Session {
	return Session{}
}

// Authenticated reports whether a user is logged in.
func (s Session) Authenticated() bool {
	return s.user != nil
}

// User returns a copy of the logged in user.
func (s Session) User() (User, bool) {
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// UserID returns the logged in user's id, or zero.
func (s Session) UserID() int64 {
	if s.user == nil {
		return 0
	}
	return s.user.ID
}

func (s Session) String() string {
	if s.user == nil {
		return "anonymous"
	}
	return fmt.Sprintf("user:%d(%s)", s.user.ID, s.user.Email)
}

// Post is a single post as returned by the API. OwnerID is fixed at
// creation and identifies the author.
type Post struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	OwnerID   int64      `json:"ownerId"`
	Owner     *User      `json:"user,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Deleted reports whether the server soft deleted the post.
func (p Post) Deleted() bool {
	return p.DeletedAt != nil
}

type postPayload struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	User      *User           `json:"user"`
	UserID    *int64          `json:"userId"`
	OwnerID   *int64          `json:"ownerId"`
	CreatedAt json.RawMessage `json:"createdAt"`
	UpdatedAt json.RawMessage `json:"updatedAt"`
	DeletedAt json.RawMessage `json:"deletedAt"`
}

// UnmarshalJSON accepts the shapes the API uses for ownership: an embedded
// user object, a flat userId, or ownerId, in that order of precedence.
func (p *Post) UnmarshalJSON(data []byte) error {
	var payload postPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	post := Post{
		ID:      payload.ID,
		Title:   payload.Title,
		Content: payload.Content,
	}

	switch {
	case payload.User != nil && payload.User.ID != 0:
		owner := *payload.User
		post.Owner = &owner
		post.OwnerID = owner.ID
	case payload.UserID != nil:
		post.OwnerID = *payload.UserID
	case payload.OwnerID != nil:
		post.OwnerID = *payload.OwnerID
	}

	created, err := decodeTimestamp(payload.CreatedAt)
	if err != nil {
		return fmt.Errorf("post %d createdAt: %w", payload.ID, err)
	}
	if created != nil {
		post.CreatedAt = *created
	}

	if post.UpdatedAt, err = decodeTimestamp(payload.UpdatedAt); err != nil {
		return fmt.Errorf("post %d updatedAt: %w", payload.ID, err)
	}
	if post.DeletedAt, err = decodeTimestamp(payload.DeletedAt); err != nil {
		return fmt.Errorf("post %d deletedAt: %w", payload.ID, err)
	}

	*p = post
	return nil
}

// timestampLayouts covers RFC3339 and the zone-less local date time the
// server emits. Zone-less values are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func decodeTimestamp(raw json.RawMessage) (*time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return parseTimestamp(value)
}

func parseTimestamp(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unsupported timestamp %q", value)
}

// PostView decorates a post with what the current session may do with it.
type PostView struct {
	Post
	Editable bool `json:"editable"`
}

// PostInput is the editable part of a post.
type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  int64  `json:"userId"`
}

// Credentials are submitted to the form login endpoint. Username is the
// account e-mail address.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the sign up payload.
type Registration struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
