// Package textutil normalizes content titles into names that are safe to use
// for archives and directories.
package textutil
