package preflight

import (
	"errors"

	"pagewright/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll checks every directory pagewright writes to. The cache directory is
// only checked when the key-table cache is enabled.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Keys.CacheEnabled {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	}
	return results
}

// Err joins the errors of every failed result.
func Err(results []Result) error {
	var errs []error
	for _, r := range results {
		if err := AsError(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
