package postboard

// RequireLoggedIn reports whether the session has a logged in user.
func RequireLoggedIn(s Session) bool {
	return s.Authenticated()
}

// RequireOwner reports whether the logged in user authored post. Ownership
// is identity equality on user ids; an anonymous session never owns a post.
func RequireOwner(s Session, post Post) bool {
	if !s.Authenticated() {
		return false
	}
	return post.OwnerID != 0 && s.UserID() == post.OwnerID
}

// CheckLoggedIn returns ErrNotLoggedIn when RequireLoggedIn fails.
func CheckLoggedIn(s Session) error {
	if !RequireLoggedIn(s) {
		return ErrNotLoggedIn
	}
	return nil
}

// CheckOwner returns ErrNotLoggedIn or ErrNotOwner when the session may not
// mutate post.
func CheckOwner(s Session, post Post) error {
	if err := CheckLoggedIn(s); err != nil {
		return err
	}
	if !RequireOwner(s, post) {
		return ErrNotOwner
	}
	return nil
}
