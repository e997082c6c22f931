// Package keycache persists decrypted key tables in SQLite so pages from an
// already-seen content can be unscrambled without the content-info response
// or the request token it was issued for.
package keycache
