// Package tile composites tile directives from source images onto a fresh
// canvas. It is shared by the explicit-map and key-derived reconstruction
// paths.
//
// Directives apply in list order with last-write-wins overlap. A missing
// source, an out-of-bounds source rectangle or a malformed directive is
// recorded on the Result and skipped; the remaining directives still run.
// Destination rectangles are clipped to the canvas.
package tile
