package models

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: Close never produces an end before the start.
func TestCloseIsNeverNegative(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	properties.Property("EndAt >= StartAt and Duration >= 0", prop.ForAll(
		func(offset int64) bool {
			tr := TimeTracker{StartAt: start}
			tr.Close(start.Add(time.Duration(offset) * time.Second))
			d, ok := tr.Duration()
			return ok && d >= 0 && !tr.EndAt.Before(tr.StartAt)
		},
		gen.Int64Range(-86400*30, 86400*30),
	))

	properties.TestingRun(t)
}
