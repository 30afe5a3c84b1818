package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"stagecrew/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a settable Clock for deterministic deadline tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeEventRepo is an in-memory EventInstanceRepository.
type fakeEventRepo struct {
	byID   map[string]*domain.EventInstance
	nextID int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.EventInstance), nextID: 1}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.EventInstance) error {
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.EventInstance, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.EventInstance, error) {
	var out []*domain.EventInstance
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, nil
}

// fakeTemplateRepo is an in-memory TemplateRepository.
type fakeTemplateRepo struct {
	byID   map[string]*domain.Template
	nextID int
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{byID: make(map[string]*domain.Template), nextID: 1}
}

func (f *fakeTemplateRepo) Create(ctx context.Context, tmpl *domain.Template) error {
	tmpl.ID = fmt.Sprintf("tpl-%d", f.nextID)
	f.nextID++
	for i := range tmpl.Blocks {
		tmpl.Blocks[i].ID = fmt.Sprintf("%s-blk-%d", tmpl.ID, i)
		tmpl.Blocks[i].TemplateID = tmpl.ID
	}
	for i := range tmpl.Shifts {
		tmpl.Shifts[i].ID = fmt.Sprintf("%s-shift-%d", tmpl.ID, i)
		tmpl.Shifts[i].TemplateID = tmpl.ID
	}
	f.byID[tmpl.ID] = tmpl
	return nil
}

func (f *fakeTemplateRepo) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTemplateRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Template, error) {
	var out []*domain.Template
	for _, t := range f.byID {
		if t.Archived && !includeArchived {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTemplateRepo) Archive(ctx context.Context, id string) error {
	t, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Archived = true
	return nil
}

// fakeScheduleRepo is an in-memory ScheduleRepository. CreateSchedule keeps
// the guarded-once semantics of the real repository: a second expansion for
// the same instance fails with ErrInvariantViolation.
type fakeScheduleRepo struct {
	slots  map[string]*domain.ShiftSlot
	blocks map[string]*domain.TimeBlock
	plans  map[string]*domain.ExpansionPlan
	resets []string
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		slots:  make(map[string]*domain.ShiftSlot),
		blocks: make(map[string]*domain.TimeBlock),
		plans:  make(map[string]*domain.ExpansionPlan),
	}
}

func (f *fakeScheduleRepo) CreateSchedule(ctx context.Context, instanceID string, plan *domain.ExpansionPlan) error {
	if _, ok := f.plans[instanceID]; ok {
		return domain.ErrInvariantViolation
	}
	f.plans[instanceID] = plan
	return nil
}

func (f *fakeScheduleRepo) ResetSchedule(ctx context.Context, instanceID string) error {
	delete(f.plans, instanceID)
	f.resets = append(f.resets, instanceID)
	return nil
}

func (f *fakeScheduleRepo) GetSlotByID(ctx context.Context, id string) (*domain.ShiftSlot, error) {
	if s, ok := f.slots[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeScheduleRepo) GetBlockByID(ctx context.Context, id string) (*domain.TimeBlock, error) {
	if b, ok := f.blocks[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeScheduleRepo) ListBlocksByInstance(ctx context.Context, instanceID string) ([]*domain.TimeBlock, error) {
	var out []*domain.TimeBlock
	for _, b := range f.blocks {
		if b.EventInstanceID == instanceID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) ListSlotsByInstance(ctx context.Context, instanceID string) ([]*domain.ShiftSlot, error) {
	var out []*domain.ShiftSlot
	for _, s := range f.slots {
		if s.EventInstanceID == instanceID {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakeAssignmentRepo is an in-memory AssignmentRepository. CreateInSlot
// enforces the same effective-capacity rule as the real transaction:
// non-cancelled assignments plus outstanding offers must stay below the
// slot's required count.
type fakeAssignmentRepo struct {
	byID         map[string]*domain.Assignment
	slotCapacity map[string]int
	offeredSeats map[string]int
	commitments  map[string][]*domain.PersonCommitment
	nextID       int
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		byID:         make(map[string]*domain.Assignment),
		slotCapacity: make(map[string]int),
		offeredSeats: make(map[string]int),
		commitments:  make(map[string][]*domain.PersonCommitment),
		nextID:       1,
	}
}

func (f *fakeAssignmentRepo) CreateInSlot(ctx context.Context, a *domain.Assignment) error {
	capacity, ok := f.slotCapacity[a.SlotID]
	if !ok {
		return domain.ErrNotFound
	}
	taken := f.offeredSeats[a.SlotID]
	for _, existing := range f.byID {
		if existing.SlotID != a.SlotID || existing.Status == domain.AssignmentCancelled {
			continue
		}
		if existing.Candidate == a.Candidate {
			return domain.ErrDuplicateAssignment
		}
		taken++
	}
	if taken >= capacity {
		return domain.ErrCapacityExceeded
	}
	a.ID = fmt.Sprintf("as-%d", f.nextID)
	f.nextID++
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAssignmentRepo) GetByCancelToken(ctx context.Context, token string) (*domain.Assignment, error) {
	for _, a := range f.byID {
		if a.CancelToken == token {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAssignmentRepo) GetByFeedbackToken(ctx context.Context, token string) (*domain.Assignment, error) {
	for _, a := range f.byID {
		if a.FeedbackToken == token {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAssignmentRepo) UpdateStatus(ctx context.Context, id string, from, to domain.AssignmentStatus) error {
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if a.Status != from {
		return domain.ErrInvariantViolation
	}
	a.Status = to
	return nil
}

func (f *fakeAssignmentRepo) SaveFeedback(ctx context.Context, id string, rating int, comment string) error {
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if a.FeedbackRating != nil {
		return domain.ErrNotFound
	}
	a.FeedbackRating = &rating
	a.FeedbackComment = comment
	return nil
}

func (f *fakeAssignmentRepo) ListCommittedIntervalsByPerson(ctx context.Context, personID string) ([]*domain.PersonCommitment, error) {
	return f.commitments[personID], nil
}

// fakeWaitlistRepo is an in-memory WaitlistRepository with FIFO order by
// insertion. ConfirmOffer records the created assignment on the repo. The
// optional freeSeat hook stands in for the real repo's committed-seat
// recheck; when nil a seat is always considered free.
type fakeWaitlistRepo struct {
	entries    []*domain.WaitlistEntry
	confirmed  []*domain.Assignment
	nextID     int
	confirmErr error
	offerErr   error
	freeSeat   func(slotID string) bool
}

func newFakeWaitlistRepo() *fakeWaitlistRepo {
	return &fakeWaitlistRepo{nextID: 1}
}

func (f *fakeWaitlistRepo) Enqueue(ctx context.Context, e *domain.WaitlistEntry) error {
	for _, existing := range f.entries {
		if existing.SlotID == e.SlotID && existing.Candidate == e.Candidate &&
			(existing.Status == domain.WaitlistQueued || existing.Status == domain.WaitlistOffered) {
			return domain.ErrDuplicateWaitlist
		}
	}
	e.ID = fmt.Sprintf("wl-%d", f.nextID)
	e.Sequence = int64(f.nextID)
	f.nextID++
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeWaitlistRepo) GetByID(ctx context.Context, id string) (*domain.WaitlistEntry, error) {
	for _, e := range f.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeWaitlistRepo) GetByConfirmToken(ctx context.Context, token string) (*domain.WaitlistEntry, error) {
	for _, e := range f.entries {
		if e.ConfirmToken == token {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeWaitlistRepo) OfferNext(ctx context.Context, slotID string, deadline time.Time, token string) (*domain.WaitlistEntry, error) {
	if f.offerErr != nil {
		return nil, f.offerErr
	}
	for _, e := range f.entries {
		if e.SlotID == slotID && e.Status == domain.WaitlistOffered {
			return nil, nil
		}
	}
	if f.freeSeat != nil && !f.freeSeat(slotID) {
		return nil, nil
	}
	for _, e := range f.entries {
		if e.SlotID == slotID && e.Status == domain.WaitlistQueued {
			e.Status = domain.WaitlistOffered
			d := deadline
			e.OfferDeadline = &d
			e.ConfirmToken = token
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeWaitlistRepo) ConfirmOffer(ctx context.Context, entryID string, a *domain.Assignment) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	e, err := f.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if e.Status != domain.WaitlistOffered {
		return domain.ErrInvariantViolation
	}
	e.Status = domain.WaitlistConfirmed
	e.OfferDeadline = nil
	a.ID = fmt.Sprintf("wl-as-%d", len(f.confirmed)+1)
	f.confirmed = append(f.confirmed, a)
	return nil
}

func (f *fakeWaitlistRepo) MarkTerminal(ctx context.Context, id string, from, to domain.WaitlistStatus) error {
	e, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.Status != from {
		return domain.ErrInvariantViolation
	}
	e.Status = to
	return nil
}

func (f *fakeWaitlistRepo) ListExpiredOffers(ctx context.Context, now time.Time) ([]*domain.WaitlistEntry, error) {
	var out []*domain.WaitlistEntry
	for _, e := range f.entries {
		if e.Status == domain.WaitlistOffered && e.OfferDeadline != nil && e.OfferDeadline.Before(now) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeWaitlistRepo) ListStalledSlots(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, e := range f.entries {
		if e.Status != domain.WaitlistQueued || seen[e.SlotID] {
			continue
		}
		seen[e.SlotID] = true
		outstanding := false
		for _, o := range f.entries {
			if o.SlotID == e.SlotID && o.Status == domain.WaitlistOffered {
				outstanding = true
				break
			}
		}
		if outstanding {
			continue
		}
		if f.freeSeat != nil && !f.freeSeat(e.SlotID) {
			continue
		}
		out = append(out, e.SlotID)
	}
	return out, nil
}

func (f *fakeWaitlistRepo) CountOutstandingOffers(ctx context.Context, slotID string) (int, error) {
	n := 0
	for _, e := range f.entries {
		if e.SlotID == slotID && e.Status == domain.WaitlistOffered {
			n++
		}
	}
	return n, nil
}

// fakeReservationRepo is an in-memory ReservationRepository enforcing the
// same day-exclusivity and quantity rules as the real transactions.
type fakeReservationRepo struct {
	rooms       map[string]*domain.Room
	resources   map[string]*domain.Resource
	roomRes     []*domain.RoomReservation
	resourceRes []*domain.ResourceReservation
	nextID      int
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{
		rooms:     make(map[string]*domain.Room),
		resources: make(map[string]*domain.Resource),
		nextID:    1,
	}
}

func (f *fakeReservationRepo) id(prefix string) string {
	id := fmt.Sprintf("%s-%d", prefix, f.nextID)
	f.nextID++
	return id
}

func (f *fakeReservationRepo) CreateRoom(ctx context.Context, room *domain.Room) error {
	room.ID = f.id("room")
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeReservationRepo) GetRoomByID(ctx context.Context, id string) (*domain.Room, error) {
	if r, ok := f.rooms[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReservationRepo) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	var out []*domain.Room
	for _, r := range f.rooms {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReservationRepo) CreateResource(ctx context.Context, res *domain.Resource) error {
	res.ID = f.id("res")
	f.resources[res.ID] = res
	return nil
}

func (f *fakeReservationRepo) GetResourceByID(ctx context.Context, id string) (*domain.Resource, error) {
	if r, ok := f.resources[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeReservationRepo) ListResources(ctx context.Context) ([]*domain.Resource, error) {
	var out []*domain.Resource
	for _, r := range f.resources {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReservationRepo) CreateRoomReservation(ctx context.Context, r *domain.RoomReservation) error {
	if _, ok := f.rooms[r.RoomID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range f.roomRes {
		if existing.RoomID == r.RoomID && existing.Day.Equal(r.Day) && existing.CancelledAt == nil {
			return domain.ErrRoomUnavailable
		}
	}
	r.ID = f.id("rr")
	f.roomRes = append(f.roomRes, r)
	return nil
}

func (f *fakeReservationRepo) CreateResourceReservation(ctx context.Context, r *domain.ResourceReservation) error {
	res, ok := f.resources[r.ResourceID]
	if !ok {
		return domain.ErrNotFound
	}
	sum, _ := f.SumActiveResourceReservations(ctx, r.ResourceID, r.Day)
	if sum+r.Quantity > res.TotalQuantity {
		return domain.ErrResourceOversubscribed
	}
	r.ID = f.id("rq")
	f.resourceRes = append(f.resourceRes, r)
	return nil
}

func (f *fakeReservationRepo) ListActiveRoomReservations(ctx context.Context, roomID string, day time.Time, excludeInstanceID string) ([]*domain.RoomReservation, error) {
	var out []*domain.RoomReservation
	for _, r := range f.roomRes {
		if r.RoomID != roomID || !r.Day.Equal(day) || r.CancelledAt != nil {
			continue
		}
		if excludeInstanceID != "" && r.EventInstanceID == excludeInstanceID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReservationRepo) SumActiveResourceReservations(ctx context.Context, resourceID string, day time.Time) (int, error) {
	sum := 0
	for _, r := range f.resourceRes {
		if r.ResourceID == resourceID && r.Day.Equal(day) && r.CancelledAt == nil {
			sum += r.Quantity
		}
	}
	return sum, nil
}

// fakeNotifier records every notification it is asked to deliver.
type fakeNotifier struct {
	offers        []*domain.OfferNotification
	expired       []*domain.OfferExpiredNotification
	cancellations []*domain.CancellationNotification
	err           error
}

func (f *fakeNotifier) SendOffer(ctx context.Context, n *domain.OfferNotification) error {
	if f.err != nil {
		return f.err
	}
	f.offers = append(f.offers, n)
	return nil
}

func (f *fakeNotifier) SendOfferExpired(ctx context.Context, n *domain.OfferExpiredNotification) error {
	if f.err != nil {
		return f.err
	}
	f.expired = append(f.expired, n)
	return nil
}

func (f *fakeNotifier) SendCancellationConfirmed(ctx context.Context, n *domain.CancellationNotification) error {
	if f.err != nil {
		return f.err
	}
	f.cancellations = append(f.cancellations, n)
	return nil
}

// fakeConflictChecker returns preset warnings for person checks.
type fakeConflictChecker struct {
	warnings []*domain.PersonConflict
	err      error
}

func (f *fakeConflictChecker) CheckPersonConflicts(ctx context.Context, personID string, interval domain.Interval) ([]*domain.PersonConflict, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.warnings, nil
}

func (f *fakeConflictChecker) CheckRoomConflict(ctx context.Context, roomID string, day time.Time, excludeInstanceID string) ([]*domain.RoomReservation, error) {
	return nil, nil
}

func (f *fakeConflictChecker) CheckResourceAvailability(ctx context.Context, resourceID string, day time.Time, requested int) (*domain.ResourceAvailability, error) {
	return nil, nil
}
