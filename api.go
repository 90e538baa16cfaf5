package postboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goliatone/go-postboard/client"
)

// Doer sends a single request. *client.Client implements it.
type Doer interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
}

// SessionAPI is the part of the API the SessionStore talks to.
type SessionAPI interface {
	CurrentUser(ctx context.Context) (*User, error)
	Login(ctx context.Context, creds Credentials) error
	Logout(ctx context.Context) error
}

// PostAPI is the part of the API the Orchestrator talks to.
type PostAPI interface {
	ListPosts(ctx context.Context) ([]Post, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	CreatePost(ctx context.Context, ownerID int64, input PostInput) (*Post, error)
	UpdatePost(ctx context.Context, id, ownerID int64, input PostInput) (*Post, error)
	DeletePost(ctx context.Context, id int64) error
	Register(ctx context.Context, reg Registration) (*User, error)
}

const (
	pathCurrentUser = "/api/users/me"
	pathRegister    = "/api/users/register"
	pathLogin       = "/login"
	pathLogout      = "/logout"
	pathPosts       = "/api/posts"
	pathPostsAll    = "/api/posts/all"
)

func postPath(id int64) string {
	return pathPosts + "/" + strconv.FormatInt(id, 10)
}

// StatusError carries a non 2xx response for classification.
type StatusError struct {
	Response *client.Response
}

func (e *StatusError) Error() string {
	if e == nil || e.Response == nil {
		return "unexpected status"
	}
	return fmt.Sprintf("%s %s: status %d", e.Response.Method, e.Response.URL, e.Response.StatusCode)
}

// DecodeError carries a 2xx response whose body did not match.
type DecodeError struct {
	Response *client.Response
	Err      error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "decode error"
	}
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var errUserWithoutID = errors.New("current user payload has no id")

// API maps the post board endpoints onto a Doer. Errors are raw:
// *client.TransportError, *StatusError or *DecodeError, ready for the
// Classifier.
type API struct {
	doer Doer
}

// NewAPI creates an API over doer.
func NewAPI(doer Doer) *API {
	return &API{doer: doer}
}

func (a *API) send(ctx context.Context, req client.Request, out any, optional bool) error {
	resp, err := a.doer.Do(ctx, req)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &StatusError{Response: resp}
	}
	if out == nil {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		if optional && errors.Is(err, client.ErrEmptyBody) {
			return nil
		}
		return &DecodeError{Response: resp, Err: err}
	}
	return nil
}

// CurrentUser fetches the user bound to the session cookie.
func (a *API) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	resp, err := a.doer.Do(ctx, client.Request{Method: http.MethodGet, Path: pathCurrentUser})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &StatusError{Response: resp}
	}
	if err := resp.Decode(&user); err != nil {
		return nil, &DecodeError{Response: resp, Err: err}
	}
	if user.ID == 0 {
		return nil, &DecodeError{Response: resp, Err: errUserWithoutID}
	}
	return &user, nil
}

// Login posts the form credentials. The server answers with a session
// cookie kept by the transport.
func (a *API) Login(ctx context.Context, creds Credentials) error {
	return a.send(ctx, client.Request{
		Method: http.MethodPost,
		Path:   pathLogin,
		Form: url.Values{
			"username": {creds.Username},
			"password": {creds.Password},
		},
	}, nil, false)
}

// Logout ends the server session.
func (a *API) Logout(ctx context.Context) error {
	return a.send(ctx, client.Request{Method: http.MethodPost, Path: pathLogout}, nil, false)
}

// Register creates an account. The created user is returned when the
// server echoes it.
func (a *API) Register(ctx context.Context, reg Registration) (*User, error) {
	var user User
	if err := a.send(ctx, client.Request{Method: http.MethodPost, Path: pathRegister, JSON: reg}, &user, true); err != nil {
		return nil, err
	}
	if user.ID == 0 && user.Email == "" {
		return nil, nil
	}
	return &user, nil
}

// ListPosts returns every post.
func (a *API) ListPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := a.send(ctx, client.Request{Method: http.MethodGet, Path: pathPostsAll}, &posts, true); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []Post{}
	}
	return posts, nil
}

// GetPost returns a single post.
func (a *API) GetPost(ctx context.Context, id int64) (*Post, error) {
	var post Post
	if err := a.send(ctx, client.Request{Method: http.MethodGet, Path: postPath(id)}, &post, false); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost creates a post owned by ownerID. The result is nil when the
// server does not echo the created post.
func (a *API) CreatePost(ctx context.Context, ownerID int64, input PostInput) (*Post, error) {
	var post Post
	body := postRequest{Title: input.Title, Content: input.Content, UserID: ownerID}
	if err := a.send(ctx, client.Request{Method: http.MethodPost, Path: pathPosts, JSON: body}, &post, true); err != nil {
		return nil, err
	}
	if post.ID == 0 {
		return nil, nil
	}
	return &post, nil
}

// UpdatePost replaces the title and content of post id.
func (a *API) UpdatePost(ctx context.Context, id, ownerID int64, input PostInput) (*Post, error) {
	var post Post
	body := postRequest{Title: input.Title, Content: input.Content, UserID: ownerID}
	if err := a.send(ctx, client.Request{Method: http.MethodPut, Path: postPath(id), JSON: body}, &post, true); err != nil {
		return nil, err
	}
	if post.ID == 0 {
		return nil, nil
	}
	return &post, nil
}

// DeletePost removes post id. Both 200 and 204 count as success.
func (a *API) DeletePost(ctx context.Context, id int64) error {
	return a.send(ctx, client.Request{Method: http.MethodDelete, Path: postPath(id)}, nil, false)
}
