// Package imageio loads scrambled source images and writes reconstructed
// pages. Formats are identified by content sniffing rather than file
// extension since image endpoints rarely name their files accurately.
package imageio
