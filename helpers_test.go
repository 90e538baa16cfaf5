package postboard_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-postboard"
	"github.com/goliatone/go-postboard/client"
	"github.com/stretchr/testify/require"
)

const sessionCookie = "JSESSIONID"

type fakeUser struct {
	ID       int64
	UserName string
	Email    string
	Password string
}

type fakePost struct {
	ID        int64
	Title     string
	Content   string
	OwnerID   int64
	CreatedAt time.Time
}

// fakeBoard is an in-memory stand in for the post board server.
type fakeBoard struct {
	*httptest.Server

	mu         sync.Mutex
	users      map[string]*fakeUser
	posts      map[int64]*fakePost
	sessions   map[string]int64
	overrides  map[string]http.HandlerFunc
	calls      []string
	nextUserID int64
	nextPostID int64
	nextToken  int
}

func newFakeBoard(t *testing.T) *fakeBoard {
	t.Helper()

	b := &fakeBoard{
		users:     map[string]*fakeUser{},
		posts:     map[int64]*fakePost{},
		sessions:  map[string]int64{},
		overrides: map[string]http.HandlerFunc{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/me", b.handleMe)
	mux.HandleFunc("POST /api/users/register", b.handleRegister)
	mux.HandleFunc("POST /login", b.handleLogin)
	mux.HandleFunc("POST /logout", b.handleLogout)
	mux.HandleFunc("GET /api/posts/all", b.handleList)
	mux.HandleFunc("GET /api/posts/{id}", b.handleGet)
	mux.HandleFunc("POST /api/posts", b.handleCreate)
	mux.HandleFunc("PUT /api/posts/{id}", b.handleUpdate)
	mux.HandleFunc("DELETE /api/posts/{id}", b.handleDelete)

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.calls = append(b.calls, key)
		override := b.overrides[key]
		b.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)

	return b
}

func (b *fakeBoard) addUser(userName, email, password string) *fakeUser {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextUserID++
	u := &fakeUser{ID: b.nextUserID, UserName: userName, Email: email, Password: password}
	b.users[email] = u
	return u
}

func (b *fakeBoard) addPost(owner *fakeUser, title, content string) *fakePost {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextPostID++
	p := &fakePost{
		ID:        b.nextPostID,
		Title:     title,
		Content:   content,
		OwnerID:   owner.ID,
		CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	b.posts[p.ID] = p
	return p
}

func (b *fakeBoard) post(id int64) (*fakePost, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.posts[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (b *fakeBoard) removePost(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.posts, id)
}

// expireSessions drops every server side session.
func (b *fakeBoard) expireSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = map[string]int64{}
}

func (b *fakeBoard) override(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[method+" "+path] = h
}

func (b *fakeBoard) requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBoard) countRequests(method, path string) int {
	n := 0
	for _, call := range b.requests() {
		if call == method+" "+path {
			n++
		}
	}
	return n
}

func (b *fakeBoard) resetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

func (b *fakeBoard) currentUser(r *http.Request) (*fakeUser, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.sessions[cookie.Value]
	if !ok {
		return nil, false
	}
	for _, u := range b.users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

func (b *fakeBoard) userByID(id int64) *fakeUser {
	for _, u := range b.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func decodeBody(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBoard) postJSON(p *fakePost) map[string]any {
	out := map[string]any{
		"id":        p.ID,
		"title":     p.Title,
		"content":   p.Content,
		"createdAt": p.CreatedAt.Format("2006-01-02T15:04:05"),
	}
	if u := b.userByID(p.OwnerID); u != nil {
		out["user"] = map[string]any{"id": u.ID, "userName": u.UserName, "email": u.Email}
	}
	return out
}

func (b *fakeBoard) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := b.currentUser(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "userName": u.UserName, "email": u.Email})
}

func (b *fakeBoard) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg postboard.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil || reg.Email == "" || reg.UserName == "" || reg.Password == "" {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("userName, email and password are required"))
		return
	}

	b.mu.Lock()
	_, exists := b.users[reg.Email]
	b.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"field": "server", "message": "email already registered"})
		return
	}

	u := b.addUser(reg.UserName, reg.Email, reg.Password)
	writeJSON(w, http.StatusCreated, map[string]any{"id": u.ID, "userName": u.UserName, "email": u.Email})
}

func (b *fakeBoard) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	u, ok := b.users[r.PostForm.Get("username")]
	if !ok || u.Password != r.PostForm.Get("password") {
		b.mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	b.nextToken++
	token := "token-" + strconv.Itoa(b.nextToken)
	b.sessions[token] = u.ID
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/", HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

func (b *fakeBoard) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		b.mu.Lock()
		delete(b.sessions, cookie.Value)
		b.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusOK)
}

func (b *fakeBoard) handleList(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	ids := make([]int64, 0, len(b.posts))
	for id := range b.posts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.postJSON(b.posts[id]))
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (b *fakeBoard) lookup(w http.ResponseWriter, r *http.Request) (*fakePost, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}
	b.mu.Lock()
	p, ok := b.posts[id]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": fmt.Sprintf("post %d not found", id)})
		return nil, false
	}
	return p, true
}

func (b *fakeBoard) handleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := b.lookup(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	out := b.postJSON(p)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

type fakePostBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  int64  `json:"userId"`
}

func validatePostBody(w http.ResponseWriter, body fakePostBody) bool {
	var messages []string
	if body.Title == "" {
		messages = append(messages, "title required")
	}
	if body.Content == "" {
		messages = append(messages, "content required")
	}
	if len(messages) > 0 {
		writeJSON(w, http.StatusBadRequest, messages)
		return false
	}
	return true
}

func (b *fakeBoard) handleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := b.currentUser(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var body fakePostBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if !validatePostBody(w, body) {
		return
	}

	p := b.addPost(u, body.Title, body.Content)
	b.mu.Lock()
	out := b.postJSON(p)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, out)
}

func (b *fakeBoard) handleUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := b.currentUser(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	p, ok := b.lookup(w, r)
	if !ok {
		return
	}
	if p.OwnerID != u.ID {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	var body fakePostBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if !validatePostBody(w, body) {
		return
	}

	b.mu.Lock()
	p.Title = body.Title
	p.Content = body.Content
	out := b.postJSON(p)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *fakeBoard) handleDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := b.currentUser(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	p, ok := b.lookup(w, r)
	if !ok {
		return
	}
	if p.OwnerID != u.ID {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	b.removePost(p.ID)
	w.WriteHeader(http.StatusNoContent)
}

// recordingPresenter captures everything the orchestrator shows.
type recordingPresenter struct {
	mu       sync.Mutex
	notices  []postboard.Notice
	routes   []postboard.Route
	sessions []postboard.Session
}

func (p *recordingPresenter) Notify(ctx context.Context, notice postboard.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, notice)
	if session, ok := postboard.SessionFromContext(ctx); ok {
		p.sessions = append(p.sessions, session)
	}
}

func (p *recordingPresenter) Redirect(_ context.Context, route postboard.Route) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes = append(p.routes, route)
}

func (p *recordingPresenter) Notices() []postboard.Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]postboard.Notice(nil), p.notices...)
}

func (p *recordingPresenter) Routes() []postboard.Route {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]postboard.Route(nil), p.routes...)
}

func (p *recordingPresenter) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = nil
	p.routes = nil
	p.sessions = nil
}

type harness struct {
	board        *fakeBoard
	client       *client.Client
	api          *postboard.API
	sessions     *postboard.SessionStore
	presenter    *recordingPresenter
	orchestrator *postboard.Orchestrator
	events       *eventLog
}

type eventLog struct {
	mu     sync.Mutex
	events []postboard.ActivityEvent
}

func (l *eventLog) Record(_ context.Context, event postboard.ActivityEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

func (l *eventLog) Types() []postboard.ActivityEventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]postboard.ActivityEventType, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.EventType)
	}
	return out
}

func newHarness(t *testing.T, opts ...postboard.OrchestratorOption) *harness {
	t.Helper()

	board := newFakeBoard(t)
	c, err := client.New(client.Config{BaseURL: board.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	api := postboard.NewAPI(c)
	events := &eventLog{}
	sessions := postboard.NewSessionStore(api, postboard.WithSessionActivitySink(events))
	presenter := &recordingPresenter{}

	base := []postboard.OrchestratorOption{
		postboard.WithPresenter(presenter),
		postboard.WithActivitySink(events),
	}

	return &harness{
		board:        board,
		client:       c,
		api:          api,
		sessions:     sessions,
		presenter:    presenter,
		orchestrator: postboard.NewOrchestrator(api, sessions, append(base, opts...)...),
		events:       events,
	}
}

// loginAs logs in through the store and clears recorded traffic.
func (h *harness) loginAs(t *testing.T, u *fakeUser) {
	t.Helper()
	session, err := h.sessions.Login(context.Background(), postboard.Credentials{Username: u.Email, Password: u.Password})
	require.NoError(t, err)
	require.True(t, session.Authenticated())
	h.board.resetRequests()
	h.presenter.Reset()
}

func confirmWith(answer bool, prompts *[]string) postboard.Confirmer {
	return postboard.ConfirmerFunc(func(_ context.Context, prompt string) bool {
		if prompts != nil {
			*prompts = append(*prompts, prompt)
		}
		return answer
	})
}
