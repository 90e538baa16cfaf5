// Package commands implements the postboard terminal client.
//
// Every invocation builds the client core from flags and POSTBOARD_*
// environment variables, restores the server session and, when a user and
// password are configured, signs in before running the command. The cookie
// jar lives in memory, so the interactive shell is the way to keep one
// session across several commands.
package commands
