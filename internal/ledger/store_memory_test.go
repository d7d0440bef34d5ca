package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/pkg/domain"
	"custodia/pkg/platform/sentinel"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newEvent(personID domain.PersonID, day time.Time, kind domain.AttendanceKind) *Event {
	return &Event{
		ID:         domain.NewEventID(),
		PersonID:   personID,
		EventDate:  day,
		EventTime:  day.Add(10 * time.Hour),
		Kind:       kind,
		RecordedBy: "officerA",
	}
}

func TestAppendRejectsSameDayDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	personID := domain.NewPersonID()
	day := date(2024, time.January, 10)

	require.NoError(t, store.Append(ctx, newEvent(personID, day, domain.KindPresential)))

	err := store.Append(ctx, newEvent(personID, day, domain.KindRemote))
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	// A different person on the same date is unaffected.
	assert.NoError(t, store.Append(ctx, newEvent(domain.NewPersonID(), day, domain.KindPresential)))
}

func TestAppendAllowsAdministrativeOnOccupiedDay(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	personID := domain.NewPersonID()
	day := date(2024, time.January, 10)

	require.NoError(t, store.Append(ctx, newEvent(personID, day, domain.KindPresential)))

	note := newEvent(personID, day, domain.KindJustifiedAbsence)
	note.Administrative = true
	assert.NoError(t, store.Append(ctx, note))

	// The administrative note does not occupy the day either.
	exists, err := store.Exists(ctx, personID, day)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestConcurrentAppendsSameDay(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	personID := domain.NewPersonID()
	day := date(2024, time.January, 10)
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Append(ctx, newEvent(personID, day, domain.KindPresential))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load(), "exactly one append wins the day")
	assert.Equal(t, int32(goroutines-1), conflictCount.Load())

	history, err := store.History(ctx, personID, Page{})
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHistoryOrderingAndPaging(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	personID := domain.NewPersonID()

	for day := 1; day <= 5; day++ {
		require.NoError(t, store.Append(ctx, newEvent(personID, date(2024, time.March, day), domain.KindPresential)))
	}

	t.Run("newest first by default", func(t *testing.T) {
		history, err := store.History(ctx, personID, Page{})
		require.NoError(t, err)
		require.Len(t, history, 5)
		assert.Equal(t, date(2024, time.March, 5), history[0].EventDate)
		assert.Equal(t, date(2024, time.March, 1), history[4].EventDate)
	})

	t.Run("ascending when requested", func(t *testing.T) {
		history, err := store.History(ctx, personID, Page{SortDir: SortAsc})
		require.NoError(t, err)
		require.Len(t, history, 5)
		assert.Equal(t, date(2024, time.March, 1), history[0].EventDate)
	})

	t.Run("pages are restartable and finite", func(t *testing.T) {
		first, err := store.History(ctx, personID, Page{Number: 1, Size: 2})
		require.NoError(t, err)
		second, err := store.History(ctx, personID, Page{Number: 2, Size: 2})
		require.NoError(t, err)
		third, err := store.History(ctx, personID, Page{Number: 3, Size: 2})
		require.NoError(t, err)
		beyond, err := store.History(ctx, personID, Page{Number: 4, Size: 2})
		require.NoError(t, err)

		assert.Len(t, first, 2)
		assert.Len(t, second, 2)
		assert.Len(t, third, 1)
		assert.Empty(t, beyond)
		assert.Equal(t, date(2024, time.March, 5), first[0].EventDate)
		assert.Equal(t, date(2024, time.March, 3), second[0].EventDate)
	})
}

func TestMostRecentAndEarliest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	personID := domain.NewPersonID()

	_, err := store.MostRecent(ctx, personID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	for _, day := range []int{12, 3, 27} {
		require.NoError(t, store.Append(ctx, newEvent(personID, date(2024, time.May, day), domain.KindPresential)))
	}

	mostRecent, err := store.MostRecent(ctx, personID)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.May, 27), mostRecent.EventDate)

	earliest, err := store.Earliest(ctx, personID)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.May, 3), earliest.EventDate)
}

func TestCountInPeriod(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	personA := domain.NewPersonID()
	personB := domain.NewPersonID()

	require.NoError(t, store.Append(ctx, newEvent(personA, date(2024, time.June, 1), domain.KindPresential)))
	require.NoError(t, store.Append(ctx, newEvent(personA, date(2024, time.June, 2), domain.KindRemote)))
	require.NoError(t, store.Append(ctx, newEvent(personB, date(2024, time.June, 2), domain.KindPresential)))
	require.NoError(t, store.Append(ctx, newEvent(personA, date(2024, time.July, 1), domain.KindPresential)))

	note := newEvent(personA, date(2024, time.June, 3), domain.KindJustifiedAbsence)
	note.Administrative = true
	require.NoError(t, store.Append(ctx, note))

	counts := store.CountInPeriod(date(2024, time.June, 1), date(2024, time.June, 30), nil)
	assert.Equal(t, 2, counts[domain.KindPresential])
	assert.Equal(t, 1, counts[domain.KindRemote])
	assert.Zero(t, counts[domain.KindJustifiedAbsence], "administrative notes are not attendance")

	onlyA := store.CountInPeriod(date(2024, time.June, 1), date(2024, time.June, 30), func(id domain.PersonID) bool {
		return id == personA
	})
	assert.Equal(t, 1, onlyA[domain.KindPresential])
}
