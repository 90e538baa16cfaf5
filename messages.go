package postboard

import (
	"fmt"
	"strconv"
)

// Route is a navigation target handed to the Presenter.
type Route string

const (
	RoutePostIndex Route = "/posts/index"
	RoutePostNew   Route = "/posts/new"
	RouteLogin     Route = "/users/login"
	RouteRegister  Route = "/users/register"
)

// RoutePostShow is the detail view for a post.
func RoutePostShow(id int64) Route {
	return Route("/posts/show/" + strconv.FormatInt(id, 10))
}

// RoutePostEdit is the edit view for a post.
func RoutePostEdit(id int64) Route {
	return Route("/posts/edit/" + strconv.FormatInt(id, 10))
}

// User facing messages.
const (
	MsgNotLoggedIn       = "You must be logged in to use this feature."
	MsgNotOwner          = "You do not have permission to perform this action."
	MsgSessionExpired    = "Your session has expired. Please log in again."
	MsgNotFound          = "The requested resource could not be found."
	MsgPostNotFound      = "The post could not be found."
	MsgPostGetFailed     = "Failed to load the post."
	MsgPostListFailed    = "Failed to load posts."
	MsgPostCreated       = "Post created."
	MsgPostCreateFailed  = "Failed to create the post."
	MsgPostUpdated       = "Post updated."
	MsgPostUpdateFailed  = "Failed to update the post."
	MsgPostDeleted       = "Post deleted."
	MsgPostDeleteFailed  = "Failed to delete the post."
	MsgDeleteConfirm     = "Are you sure you want to delete this post?"
	MsgDeleteCancelled   = "Delete cancelled."
	MsgValidationFailed  = "The submitted data is invalid."
	MsgUnexpectedError   = "An unexpected error occurred. Please try again later."
	MsgNetworkError      = "Could not reach the server. Check your connection and try again."
	MsgUserInfoFailed    = "Failed to load user information."
	MsgLoginSucceeded    = "Logged in."
	MsgLoginFailed       = "Log in failed. Check your e-mail and password."
	MsgLogoutSucceeded   = "Logged out."
	MsgLogoutFailed      = "Log out failed."
	MsgRegisterSucceeded = "Registration complete. You can now log in."
	MsgRegisterFailed    = "Registration failed."
	MsgSubmissionPending = "A submission is already in progress."
)

func deleteConfirmPrompt(post Post) string {
	if post.Title == "" {
		return MsgDeleteConfirm
	}
	return fmt.Sprintf("%s (%q)", MsgDeleteConfirm, post.Title)
}
