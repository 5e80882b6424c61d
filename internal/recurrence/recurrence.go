// Package recurrence computes the next occurrence date for recurring
// transactions. It is pure: output depends only on the inputs.
package recurrence

import (
	"time"

	"github.com/spendwise-platform/internal/domain/shared"
	"github.com/spendwise-platform/internal/domain/transaction"
)

// Next returns the occurrence following start for the given interval.
// MONTHLY and YEARLY use time.AddDate, which normalizes day overflow
// (Jan 31 + 1 month lands in early March rather than clamping to Feb's
// last day). Returns transaction.ErrInvalidInterval for unknown intervals.
func Next(start time.Time, interval shared.RecurringInterval) (time.Time, error) {
	switch interval {
	case shared.RecurringIntervalDaily:
		return start.AddDate(0, 0, 1), nil
	case shared.RecurringIntervalWeekly:
		return start.AddDate(0, 0, 7), nil
	case shared.RecurringIntervalMonthly:
		return start.AddDate(0, 1, 0), nil
	case shared.RecurringIntervalYearly:
		return start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, transaction.ErrInvalidInterval
	}
}
