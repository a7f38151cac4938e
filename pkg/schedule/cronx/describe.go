package cronx

import (
	"fmt"
	"sync"

	crondesc "github.com/lnquy/cron"
)

var (
	descriptorOnce sync.Once
	descriptor     *crondesc.ExpressionDescriptor
	descriptorErr  error
)

// Describe renders expr as English text, such as "Every minute, between
// 10:00 PM and 10:59 PM, on day 4 of the month". It is for diagnostics only:
// errors and panics in the descriptor are returned as errors, and callers
// must not let them influence matching.
func Describe(expr string) (desc string, err error) {
	defer func() {
		if r := recover(); r != nil {
			desc, err = "", fmt.Errorf("describe %q: %v", expr, r)
		}
	}()

	descriptorOnce.Do(func() {
		descriptor, descriptorErr = crondesc.NewDescriptor(
			crondesc.Use24HourTimeFormat(false),
			crondesc.DayOfWeekStartsAtOne(false),
		)
	})
	if descriptorErr != nil {
		return "", descriptorErr
	}
	return descriptor.ToDescription(expr, crondesc.Locale_en)
}
