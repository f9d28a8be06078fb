package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdError(t *testing.T) {
	err := &ThresholdError{
		Message: "no model reached the recommended tier",
	}

	assert.Equal(t, "no model reached the recommended tier", err.Error())
}

func TestErrorTypeDetection(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType string
	}{
		{
			name:     "ThresholdError",
			err:      &ThresholdError{Message: "threshold not met"},
			wantType: "ThresholdError",
		},
		{
			name:     "regular error",
			err:      errors.New("config error"),
			wantType: "other",
		},
		{
			name:     "wrapped ThresholdError",
			err:      errors.Join(&ThresholdError{Message: "threshold not met"}, errors.New("additional context")),
			wantType: "ThresholdError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var thresholdErr *ThresholdError
			isThreshold := errors.As(tt.err, &thresholdErr)

			if tt.wantType == "ThresholdError" {
				assert.True(t, isThreshold, "expected error to be detected as ThresholdError")
			} else {
				assert.False(t, isThreshold, "expected error NOT to be detected as ThresholdError")
			}
		})
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"run", "models", "report", "plan", "sessions", "serve", "init"} {
		assert.Contains(t, names, want)
	}
}
