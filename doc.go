// Package postboard is the client core of a small post board: users read
// posts, and only the author of a post may change or delete it.
//
// Session:
//   - SessionStore owns the Session. It changes only through Initialize,
//     Login and Logout, and every reader gets a snapshot. A Session is either
//     anonymous or carries a user with a non zero id.
//   - The session is passed explicitly: to the Orchestrator through its
//     constructor and to presenters through the context (WithSession).
//
// Guards:
//   - RequireLoggedIn and RequireOwner are pure checks run before any
//     mutating call. They are advisory; the server stays authoritative and
//     its rejections are classified like any other failure.
//
// Errors:
//   - Classifier maps transport failures and non 2xx responses onto five
//     kinds (validation, unauthorized, not found, network, unexpected) as
//     *OperationError values, each convertible to a go-errors rich error.
//
// Orchestration:
//   - Orchestrator runs guard, call and classification for each operation
//     and drives the Presenter: exactly one notice per outcome and a
//     redirect when the post in context is gone or the action was blocked.
//   - ActivitySink receives best effort audit events for logins, logouts and
//     post mutations.
package postboard
