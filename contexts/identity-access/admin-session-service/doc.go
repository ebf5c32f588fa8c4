// Package adminsession implements the admin password gate inside the
// identity-access context.
//
// Sessions are signed tokens recorded in a keyed store with explicit expiry,
// so admin access survives process restarts and logout actually revokes.
package adminsession
