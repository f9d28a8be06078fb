package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess         = 0 // Run completed and any threshold was met
	ExitThresholdFailed = 1 // Run completed but no model reached --fail-under
	ExitError           = 2 // Configuration or runtime error
)

// ThresholdError indicates that the run itself succeeded, but no model
// reached the tier requested with --fail-under.
type ThresholdError struct {
	Message string
}

func (e *ThresholdError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var thresholdErr *ThresholdError
		if errors.As(err, &thresholdErr) {
			os.Exit(ExitThresholdFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
