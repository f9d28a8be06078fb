package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/toolgauge/toolgauge/internal/catalog"
	"github.com/toolgauge/toolgauge/internal/models"
	"github.com/toolgauge/toolgauge/internal/transport"
	"github.com/toolgauge/toolgauge/internal/utils"
)

// Run executes one scenario against one model. Transport failures map onto
// statuses by kind: rate limiting fails the scenario, an unsupported model
// skips it, anything else is an error. A panic inside a step is contained to
// this scenario's result so one misbehaving check never takes down the run.
func Run(ctx context.Context, client ChatClient, cat *catalog.Set, model string, sc Scenario) (result models.ScenarioResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = models.ScenarioResult{
				Scenario:     sc.Name,
				Status:       models.StatusError,
				LatencyMs:    time.Since(start).Milliseconds(),
				ErrorMessage: fmt.Sprintf("scenario panic: %v", r),
			}
		}
		utils.ResultToSlog(model, result)
	}()

	var prior *transport.ChatResponse
	for i, step := range sc.Steps {
		req := step.Build(cat, model, prior)

		resp, err := client.ChatCompletion(ctx, req)
		if err != nil {
			return errorResult(sc.Name, err, start)
		}

		verdict := step.Evaluate(cat, resp)
		if !verdict.OK {
			return models.ScenarioResult{
				Scenario:     sc.Name,
				Status:       models.StatusFailed,
				LatencyMs:    time.Since(start).Milliseconds(),
				ErrorMessage: verdict.Reason,
			}
		}

		if i == len(sc.Steps)-1 {
			return models.ScenarioResult{
				Scenario:  sc.Name,
				Status:    models.StatusPassed,
				LatencyMs: time.Since(start).Milliseconds(),
				Details:   verdict.Details,
			}
		}
		prior = resp
	}

	return models.ScenarioResult{
		Scenario:     sc.Name,
		Status:       models.StatusError,
		LatencyMs:    time.Since(start).Milliseconds(),
		ErrorMessage: "scenario has no steps",
	}
}

func errorResult(name string, err error, start time.Time) models.ScenarioResult {
	latency := time.Since(start).Milliseconds()

	switch transport.ErrorKindOf(err) {
	case transport.KindRateLimited:
		return models.ScenarioResult{
			Scenario:     name,
			Status:       models.StatusFailed,
			LatencyMs:    latency,
			ErrorMessage: "Rate limited by API",
		}
	case transport.KindModelUnsupported:
		return models.ScenarioResult{
			Scenario:     name,
			Status:       models.StatusSkipped,
			LatencyMs:    latency,
			ErrorMessage: "Model not available: " + err.Error(),
		}
	default:
		return models.ScenarioResult{
			Scenario:     name,
			Status:       models.StatusError,
			LatencyMs:    latency,
			ErrorMessage: err.Error(),
		}
	}
}
