// Package keytable implements the stream cipher protecting per-content key
// tables.
//
// The seed is a position-weighted shift sum over "contentID:initialKey"; the
// keystream is a one-bit right shift with a fixed feedback constant. Every
// accumulator is a fixed-width 32-bit value. Decrypted output is a JSON
// document, normally an array of at least eight key strings.
package keytable
