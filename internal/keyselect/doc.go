// Package keyselect derives the per-image key pair from decrypted ptbl and
// ctbl key tables and classifies which tiling scheme the pair selects.
package keyselect
