package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagecrew/internal/domain"
)

// waitlistFixture wires a waitlist service over one event with one slot,
// starting 24h before the shift.
type waitlistFixture struct {
	svc          domain.WaitlistService
	clock        *fakeClock
	notifier     *fakeNotifier
	waitlistRepo *fakeWaitlistRepo
	scheduleRepo *fakeScheduleRepo
	slot         *domain.ShiftSlot
	shiftStart   time.Time
}

func newWaitlistFixture(t *testing.T, responseWindow time.Duration) *waitlistFixture {
	t.Helper()
	eventRepo := newFakeEventRepo()
	scheduleRepo := newFakeScheduleRepo()
	waitlistRepo := newFakeWaitlistRepo()
	notifier := &fakeNotifier{}
	clock := &fakeClock{now: testAnchor.Add(-24 * time.Hour)}

	event := &domain.EventInstance{
		Name:        "Friday show",
		AnchorStart: testAnchor,
		NominalEnd:  testAnchor.Add(5 * time.Hour),
		HasSchedule: true,
	}
	require.NoError(t, eventRepo.Create(context.Background(), event))

	block := &domain.TimeBlock{
		ID:              "blk-1",
		EventInstanceID: event.ID,
		Label:           "Show",
		Kind:            domain.BlockKindPerformance,
		StartTime:       testAnchor,
		EndTime:         testAnchor.Add(4 * time.Hour),
	}
	scheduleRepo.blocks[block.ID] = block

	blockID := block.ID
	slot := &domain.ShiftSlot{
		ID:              "slot-1",
		EventInstanceID: event.ID,
		TimeBlockID:     &blockID,
		Role:            "stagehand",
		RequiredCount:   1,
		FilledCount:     1,
	}
	scheduleRepo.slots[slot.ID] = slot

	return &waitlistFixture{
		svc:          NewWaitlistService(scheduleRepo, eventRepo, waitlistRepo, notifier, clock, responseWindow, discardLogger()),
		clock:        clock,
		notifier:     notifier,
		waitlistRepo: waitlistRepo,
		scheduleRepo: scheduleRepo,
		slot:         slot,
		shiftStart:   testAnchor,
	}
}

func TestWaitlistEnqueue(t *testing.T) {
	t.Run("full slot accepts entry", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		entry, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-1"))
		require.NoError(t, err)
		assert.Equal(t, domain.WaitlistQueued, entry.Status)
		assert.Equal(t, f.clock.now, entry.EnqueuedAt)
	})

	t.Run("open slot refuses entry", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		f.slot.FilledCount = 0
		_, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-1"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("outstanding offer holds a seat", func(t *testing.T) {
		// The committed holder cancels after an offer went out: nobody is
		// committed, but the seat is promised. The slot still counts as full.
		f := newWaitlistFixture(t, 4*time.Hour)
		seedOfferedEntry(t, f, "p-0")
		f.slot.FilledCount = 0
		_, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-1"))
		require.NoError(t, err)
	})

	t.Run("duplicate candidate rejected", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		_, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-1"))
		require.NoError(t, err)
		_, err = f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-1"))
		assert.ErrorIs(t, err, domain.ErrDuplicateWaitlist)
	})

	t.Run("malformed candidate rejected", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		_, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.Candidate{Kind: domain.CandidateInternal})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

// seedOfferedEntry enqueues the candidate and promotes them to offered.
func seedOfferedEntry(t *testing.T, f *waitlistFixture, personID string) *domain.WaitlistEntry {
	t.Helper()
	_, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate(personID))
	require.NoError(t, err)
	entry, err := f.svc.PromoteFreedSeat(context.Background(), f.slot.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	return entry
}

func TestPromoteFreedSeat(t *testing.T) {
	t.Run("offers the FIFO head", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		first, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-1"))
		require.NoError(t, err)
		_, err = f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-2"))
		require.NoError(t, err)

		promoted, err := f.svc.PromoteFreedSeat(context.Background(), f.slot.ID)
		require.NoError(t, err)
		require.NotNil(t, promoted)
		assert.Equal(t, first.ID, promoted.ID)
		assert.Equal(t, domain.WaitlistOffered, promoted.Status)
		require.NotNil(t, promoted.OfferDeadline)
		assert.Equal(t, f.clock.now.Add(4*time.Hour), *promoted.OfferDeadline)
		assert.NotEmpty(t, promoted.ConfirmToken)

		require.Len(t, f.notifier.offers, 1)
		assert.Equal(t, promoted.ConfirmToken, f.notifier.offers[0].ConfirmToken)
		assert.Equal(t, f.shiftStart, f.notifier.offers[0].ShiftStart)
	})

	t.Run("deadline never outlives the shift start", func(t *testing.T) {
		f := newWaitlistFixture(t, 48*time.Hour)
		promoted := seedOfferedEntry(t, f, "p-1")
		assert.Equal(t, f.shiftStart, *promoted.OfferDeadline)
	})

	t.Run("empty queue is a no-op", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		promoted, err := f.svc.PromoteFreedSeat(context.Background(), f.slot.ID)
		require.NoError(t, err)
		assert.Nil(t, promoted)
		assert.Empty(t, f.notifier.offers)
	})

	t.Run("single outstanding offer", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		seedOfferedEntry(t, f, "p-1")
		_, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-2"))
		require.NoError(t, err)

		promoted, err := f.svc.PromoteFreedSeat(context.Background(), f.slot.ID)
		require.NoError(t, err)
		assert.Nil(t, promoted, "no second offer while one is outstanding")
		assert.Len(t, f.notifier.offers, 1)
	})

	t.Run("seat retaken before promotion", func(t *testing.T) {
		// A direct registration can grab the freed seat between the freeing
		// transition and this call. The head must not receive an offer it
		// cannot fulfil; it stays queued for the next freed seat.
		f := newWaitlistFixture(t, 4*time.Hour)
		entry, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-1"))
		require.NoError(t, err)
		f.waitlistRepo.freeSeat = func(string) bool { return false }

		promoted, err := f.svc.PromoteFreedSeat(context.Background(), f.slot.ID)
		require.NoError(t, err)
		assert.Nil(t, promoted)
		assert.Equal(t, domain.WaitlistQueued, entry.Status)
		assert.Empty(t, f.notifier.offers)
	})

	t.Run("no promotion once the shift has started", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		_, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-1"))
		require.NoError(t, err)
		f.clock.now = f.shiftStart

		promoted, err := f.svc.PromoteFreedSeat(context.Background(), f.slot.ID)
		require.NoError(t, err)
		assert.Nil(t, promoted)
		assert.Empty(t, f.notifier.offers)
	})
}

func TestRespondToOffer(t *testing.T) {
	t.Run("accept confirms and creates the assignment", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		entry := seedOfferedEntry(t, f, "p-1")

		outcome, err := f.svc.RespondToOffer(context.Background(), entry.ID, true)
		require.NoError(t, err)
		assert.Equal(t, domain.WaitlistConfirmed, outcome.Entry.Status)
		require.NotNil(t, outcome.Assignment)
		assert.Equal(t, f.slot.ID, outcome.Assignment.SlotID)
		assert.Equal(t, domain.NewInternalCandidate("p-1"), outcome.Assignment.Candidate)
		assert.NotEmpty(t, outcome.Assignment.CancelToken)
	})

	t.Run("accept after deadline refused", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		entry := seedOfferedEntry(t, f, "p-1")
		f.clock.Advance(5 * time.Hour)

		_, err := f.svc.RespondToOffer(context.Background(), entry.ID, true)
		assert.ErrorIs(t, err, domain.ErrPolicyWindowViolation)
	})

	t.Run("accept at the deadline instant refused", func(t *testing.T) {
		// Deadlines clamped to the shift start mean the deadline instant is
		// already too late, never a last allowed moment.
		f := newWaitlistFixture(t, 4*time.Hour)
		entry := seedOfferedEntry(t, f, "p-1")
		f.clock.now = *entry.OfferDeadline

		_, err := f.svc.RespondToOffer(context.Background(), entry.ID, true)
		assert.ErrorIs(t, err, domain.ErrPolicyWindowViolation)
	})

	t.Run("decline cascades to the next entry", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		entry := seedOfferedEntry(t, f, "p-1")
		second, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-2"))
		require.NoError(t, err)

		outcome, err := f.svc.RespondToOffer(context.Background(), entry.ID, false)
		require.NoError(t, err)
		assert.Equal(t, domain.WaitlistDeclined, outcome.Entry.Status)
		assert.Nil(t, outcome.Assignment)

		assert.Equal(t, domain.WaitlistOffered, second.Status)
		require.Len(t, f.notifier.offers, 2)
		assert.Equal(t, domain.NewInternalCandidate("p-2"), f.notifier.offers[1].Candidate)
	})

	t.Run("terminal entry replay is a no-op", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		entry := seedOfferedEntry(t, f, "p-1")
		_, err := f.svc.RespondToOffer(context.Background(), entry.ID, false)
		require.NoError(t, err)

		outcome, err := f.svc.RespondToOffer(context.Background(), entry.ID, true)
		require.NoError(t, err)
		assert.Equal(t, domain.WaitlistDeclined, outcome.Entry.Status)
		assert.Nil(t, outcome.Assignment)
	})

	t.Run("queued entry has no offer to answer", func(t *testing.T) {
		f := newWaitlistFixture(t, 4*time.Hour)
		entry, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-1"))
		require.NoError(t, err)
		_, err = f.svc.RespondToOffer(context.Background(), entry.ID, true)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestWaitlistCascade(t *testing.T) {
	// Three queued candidates. The first declines, the second lets the offer
	// lapse, the third accepts: strictly FIFO, and the queue ends drained.
	f := newWaitlistFixture(t, 4*time.Hour)
	for _, p := range []string{"p-1", "p-2", "p-3"} {
		_, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate(p))
		require.NoError(t, err)
	}

	first, err := f.svc.PromoteFreedSeat(context.Background(), f.slot.ID)
	require.NoError(t, err)
	require.Equal(t, domain.NewInternalCandidate("p-1"), first.Candidate)

	_, err = f.svc.RespondToOffer(context.Background(), first.ID, false)
	require.NoError(t, err)

	require.Len(t, f.notifier.offers, 2)
	second := f.waitlistRepo.entries[1]
	require.Equal(t, domain.NewInternalCandidate("p-2"), second.Candidate)
	require.Equal(t, domain.WaitlistOffered, second.Status)

	f.clock.Advance(5 * time.Hour)
	n, err := f.svc.SweepExpiredOffers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.WaitlistExpired, second.Status)

	require.Len(t, f.notifier.offers, 3)
	third := f.waitlistRepo.entries[2]
	require.Equal(t, domain.NewInternalCandidate("p-3"), third.Candidate)
	require.Equal(t, domain.WaitlistOffered, third.Status)

	outcome, err := f.svc.RespondToOffer(context.Background(), third.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.WaitlistConfirmed, outcome.Entry.Status)
	require.NotNil(t, outcome.Assignment)

	// Nobody is left queued.
	promoted, err := f.svc.PromoteFreedSeat(context.Background(), f.slot.ID)
	require.NoError(t, err)
	assert.Nil(t, promoted)
}

func TestSweepExpiredOffers(t *testing.T) {
	f := newWaitlistFixture(t, 4*time.Hour)
	expiredEntry := seedOfferedEntry(t, f, "p-1")
	second, err := f.svc.Enqueue(context.Background(), f.slot.ID, domain.NewInternalCandidate("p-2"))
	require.NoError(t, err)

	f.clock.Advance(5 * time.Hour)

	n, err := f.svc.SweepExpiredOffers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.WaitlistExpired, expiredEntry.Status)

	// The lapsed candidate is told, and the seat cascades to the next in line.
	require.Len(t, f.notifier.expired, 1)
	assert.Equal(t, domain.NewInternalCandidate("p-1"), f.notifier.expired[0].Candidate)
	assert.Equal(t, domain.WaitlistOffered, second.Status)

	// Re-running the sweep finds nothing new.
	n, err = f.svc.SweepExpiredOffers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
