package harness

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/toolgauge/toolgauge/internal/models"
)

// FilterModels returns the candidate models to test, in their listing order.
// Models whose id contains "gpt" (case-insensitive) are always dropped: they
// sit behind a separate quota on the gateways this tool targets. When pattern
// is non-empty it is compiled as a regular expression and only matching ids
// are kept.
func FilterModels(infos []models.ModelInfo, pattern string) ([]models.ModelInfo, error) {
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid model filter pattern %q: %w", pattern, err)
		}
	}

	var kept []models.ModelInfo
	for _, info := range infos {
		if strings.Contains(strings.ToLower(info.ID), "gpt") {
			continue
		}
		if re != nil && !re.MatchString(info.ID) {
			continue
		}
		kept = append(kept, info)
	}
	return kept, nil
}
