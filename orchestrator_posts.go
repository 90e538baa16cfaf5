package postboard

import (
	"context"
)

// ListPosts returns every visible post decorated with the owner affordance.
// On success with no posts the slice is empty, never nil. On failure the
// result is nil.
func (o *Orchestrator) ListPosts(ctx context.Context) ([]PostView, error) {
	posts, err := o.api.ListPosts(ctx)
	if err != nil {
		return nil, o.fail(ctx, failure{op: OpListPosts, message: MsgPostListFailed}, err)
	}

	session := o.sessions.Current()
	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		if post.Deleted() {
			continue
		}
		views = append(views, PostView{Post: post, Editable: RequireOwner(session, post)})
	}
	return views, nil
}

// ShowPost returns a single post. A missing post produces a notice and a
// redirect to the index.
func (o *Orchestrator) ShowPost(ctx context.Context, id int64) (*PostView, error) {
	if id <= 0 {
		return nil, o.missing(ctx, OpShowPost, id)
	}

	post, err := o.api.GetPost(ctx, id)
	if err != nil {
		return nil, o.fail(ctx, failure{
			op:       OpShowPost,
			message:  MsgPostGetFailed,
			postID:   id,
			targeted: true,
		}, err)
	}

	return &PostView{Post: *post, Editable: RequireOwner(o.sessions.Current(), *post)}, nil
}

// CreatePost creates a post owned by the logged in user.
func (o *Orchestrator) CreatePost(ctx context.Context, input PostInput) (*Post, error) {
	session := o.sessions.Current()
	if err := CheckLoggedIn(session); err != nil {
		return nil, o.block(ctx, OpCreatePost, 0, err)
	}

	if o.localValidation {
		if err := input.Validate(); err != nil {
			return nil, o.invalid(ctx, OpCreatePost, MsgPostCreateFailed, err)
		}
	}

	post, err := o.api.CreatePost(ctx, session.UserID(), input)
	if err != nil {
		return nil, o.fail(ctx, failure{op: OpCreatePost, message: MsgPostCreateFailed}, err)
	}

	event := ActivityEvent{EventType: ActivityEventPostCreated, UserID: session.UserID()}
	if post != nil {
		event.PostID = post.ID
	}
	o.succeed(ctx, OpCreatePost, MsgPostCreated, event)
	o.redirect(ctx, RoutePostIndex)
	return post, nil
}

// UpdatePost replaces the title and content of a post the logged in user
// authored. Ownership is checked against a fresh copy of the post before
// the update is sent.
func (o *Orchestrator) UpdatePost(ctx context.Context, id int64, input PostInput) (*Post, error) {
	session := o.sessions.Current()
	if err := CheckLoggedIn(session); err != nil {
		return nil, o.block(ctx, OpUpdatePost, id, err)
	}
	if id <= 0 {
		return nil, o.missing(ctx, OpUpdatePost, id)
	}

	current, err := o.api.GetPost(ctx, id)
	if err != nil {
		return nil, o.fail(ctx, failure{
			op:       OpUpdatePost,
			message:  MsgPostGetFailed,
			postID:   id,
			targeted: true,
			fallback: RoutePostIndex,
		}, err)
	}

	if err := CheckOwner(session, *current); err != nil {
		return nil, o.block(ctx, OpUpdatePost, id, err)
	}

	if o.localValidation {
		if err := input.Validate(); err != nil {
			return nil, o.invalid(ctx, OpUpdatePost, MsgPostUpdateFailed, err)
		}
	}

	updated, err := o.api.UpdatePost(ctx, id, current.OwnerID, input)
	if err != nil {
		return nil, o.fail(ctx, failure{
			op:       OpUpdatePost,
			message:  MsgPostUpdateFailed,
			postID:   id,
			targeted: true,
			fallback: RoutePostIndex,
		}, err)
	}

	if updated == nil {
		cp := *current
		cp.Title = input.Title
		cp.Content = input.Content
		updated = &cp
	}

	o.succeed(ctx, OpUpdatePost, MsgPostUpdated, ActivityEvent{
		EventType: ActivityEventPostUpdated,
		PostID:    id,
		UserID:    session.UserID(),
	})
	o.redirect(ctx, RoutePostShow(id))
	return updated, nil
}

// DeletePost deletes a post the logged in user authored after asking the
// Confirmer. A declined confirmation sends nothing and returns
// ErrDeleteDeclined. onDeleted runs after a successful delete.
func (o *Orchestrator) DeletePost(ctx context.Context, id int64, onDeleted func(id int64)) error {
	session := o.sessions.Current()
	if err := CheckLoggedIn(session); err != nil {
		return o.block(ctx, OpDeletePost, id, err)
	}
	if id <= 0 {
		return o.missing(ctx, OpDeletePost, id)
	}

	post, err := o.api.GetPost(ctx, id)
	if err != nil {
		return o.fail(ctx, failure{
			op:       OpDeletePost,
			message:  MsgPostGetFailed,
			postID:   id,
			targeted: true,
			fallback: RoutePostIndex,
		}, err)
	}

	if err := CheckOwner(session, *post); err != nil {
		return o.block(ctx, OpDeletePost, id, err)
	}

	if !o.confirmer.Confirm(ctx, deleteConfirmPrompt(*post)) {
		o.notify(ctx, Notice{Level: NoticeInfo, Operation: OpDeletePost, Message: MsgDeleteCancelled})
		o.activity.record(ctx, ActivityEvent{
			EventType: ActivityEventOperationDeclined,
			Operation: OpDeletePost,
			PostID:    id,
			UserID:    session.UserID(),
		})
		return ErrDeleteDeclined
	}

	if err := o.api.DeletePost(ctx, id); err != nil {
		return o.fail(ctx, failure{
			op:       OpDeletePost,
			message:  MsgPostDeleteFailed,
			postID:   id,
			targeted: true,
			fallback: RoutePostIndex,
		}, err)
	}

	o.succeed(ctx, OpDeletePost, MsgPostDeleted, ActivityEvent{
		EventType: ActivityEventPostDeleted,
		PostID:    id,
		UserID:    session.UserID(),
	})
	if onDeleted != nil {
		onDeleted(id)
	}
	return nil
}

func (o *Orchestrator) missing(ctx context.Context, op string, id int64) error {
	o.notify(ctx, Notice{Level: NoticeError, Operation: op, Message: MsgPostNotFound, Err: ErrInvalidPostID})
	o.redirect(ctx, RoutePostIndex)
	return ErrInvalidPostID
}
