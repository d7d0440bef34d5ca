package regime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInitialize(t *testing.T) {
	personID := domain.NewPersonID()

	t.Run("sets first due date to the initial check-in date", func(t *testing.T) {
		r, err := Initialize(personID, 30, date(2024, time.January, 10))
		require.NoError(t, err)
		require.NotNil(t, r.NextDueDate)
		assert.Equal(t, date(2024, time.January, 10), *r.NextDueDate)
		assert.Equal(t, 30, r.PeriodicityDays)
	})

	t.Run("normalizes a timestamped initial date to its civil date", func(t *testing.T) {
		r, err := Initialize(personID, 7, time.Date(2024, time.March, 5, 23, 45, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.March, 5), r.InitialCheckIn)
	})

	t.Run("rejects periodicity below one day", func(t *testing.T) {
		_, err := Initialize(personID, 0, date(2024, time.January, 1))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects periodicity above one year", func(t *testing.T) {
		_, err := Initialize(personID, 366, date(2024, time.January, 1))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("accepts boundary periodicities", func(t *testing.T) {
		for _, days := range []int{1, 365} {
			_, err := Initialize(personID, days, date(2024, time.January, 1))
			assert.NoError(t, err)
		}
	})

	t.Run("rejects a zero initial date", func(t *testing.T) {
		_, err := Initialize(personID, 30, time.Time{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestAdvance(t *testing.T) {
	r, err := Initialize(domain.NewPersonID(), 30, date(2024, time.January, 1))
	require.NoError(t, err)

	next := r.Advance(date(2024, time.January, 10))

	assert.Equal(t, date(2024, time.February, 9), next)
	require.NotNil(t, r.NextDueDate)
	assert.Equal(t, date(2024, time.February, 9), *r.NextDueDate)
}

func TestAdvanceAcrossMonthAndYearBoundaries(t *testing.T) {
	r, err := Initialize(domain.NewPersonID(), 45, date(2024, time.January, 1))
	require.NoError(t, err)

	assert.Equal(t, date(2025, time.January, 29), r.Advance(date(2024, time.December, 15)))
}

func TestOverride(t *testing.T) {
	r, err := Initialize(domain.NewPersonID(), 30, date(2024, time.January, 1))
	require.NoError(t, err)

	r.Override(date(2024, time.June, 1))

	require.NotNil(t, r.NextDueDate)
	assert.Equal(t, date(2024, time.June, 1), *r.NextDueDate)
	// The recurrence rule is untouched: the next qualifying event advances
	// from its own date, not from the overridden one.
	assert.Equal(t, date(2024, time.July, 1), r.Advance(date(2024, time.June, 1)))
}

func TestDaysOverdue(t *testing.T) {
	r, err := Initialize(domain.NewPersonID(), 7, date(2024, time.January, 1))
	require.NoError(t, err)
	r.Advance(date(2024, time.January, 1)) // due 2024-01-08

	assert.Equal(t, 0, r.DaysOverdue(date(2024, time.January, 7)))
	assert.Equal(t, 0, r.DaysOverdue(date(2024, time.January, 8)))
	assert.Equal(t, 2, r.DaysOverdue(date(2024, time.January, 10)))
}

func TestDaysOverdueUnscheduled(t *testing.T) {
	r := &Regime{PersonID: domain.NewPersonID(), PeriodicityDays: 7}
	assert.Equal(t, 0, r.DaysOverdue(date(2024, time.January, 10)))
}
