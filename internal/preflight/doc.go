// Package preflight verifies filesystem paths before pagewright writes to
// them, so a batch fails up front instead of after decoding every page.
//
// The CLI runs RunAll before unscrambling and the pipeline calls
// CheckDirectory on the archive destination.
package preflight
