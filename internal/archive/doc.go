// Package archive packs reconstructed pages into a zip named after the
// content title. Entries live under "<title>/" as zero-padded "NNN.jpg" in
// page order. A lock file beside the archive keeps concurrent runs for the
// same title from interleaving.
package archive
