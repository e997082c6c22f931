// Package unscramble runs the page reconstruction pipeline.
//
// A Pipeline owns the decrypted key tables of one content. For each page it
// selects the key pair from the image reference, classifies the scheme,
// derives tile directives and composes the original page. Pages run on a
// bounded worker pool and a failing page never aborts the batch. Publish
// writes the results as a zip archive or loose JPEG files.
package unscramble
