// Package permission maps blog roles to client-side capabilities using a
// 64-bit mask.
//
// Capabilities are a convenience for hiding actions a user cannot perform
// (editing a post, deleting a tag). The server remains the authority: a
// capability reported here never replaces the API's own 403.
//
// A [Registry] assigns bit positions to capability names; a [RoleManager]
// composes those bits into one [Mask64] per role. Both are frozen after setup
// and safe for concurrent reads. [Blog] returns the manager preloaded with the
// platform's visitor, author and admin roles.
package permission
