package ui

import (
	"time"

	"github.com/briandowns/spinner"
)

// WithSpinner frames a blocking call with a terminal spinner. Purely
// cosmetic: the call's result is returned unchanged. When quiet is set the
// call runs without any framing.
func WithSpinner(quiet bool, message string, fn func() error) error {
	if quiet {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Start()
	err := fn()
	s.Stop()
	return err
}
