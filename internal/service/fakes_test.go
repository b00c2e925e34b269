package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/stagebook/internal/mail"
	"github.com/iliyamo/stagebook/internal/model"
	"github.com/iliyamo/stagebook/internal/notify"
	"github.com/iliyamo/stagebook/internal/repository"
)

// store is an in-memory record store shared by the fake repositories.
type store struct {
	mu            sync.Mutex
	seq           uint64
	users         map[uint64]model.User
	venues        map[uint64]model.Venue
	artists       map[uint64]model.Artist
	events        map[uint64]model.Event
	lineup        map[[2]uint64]model.EventArtist
	performances  map[uint64]model.Performance
	bookings      map[uint64]model.Booking
	windows       map[uint64]model.ArtistUnavailability
	notifications map[uint64]model.Notification
}

func newStore() *store {
	return &store{
		users:         map[uint64]model.User{},
		venues:        map[uint64]model.Venue{},
		artists:       map[uint64]model.Artist{},
		events:        map[uint64]model.Event{},
		lineup:        map[[2]uint64]model.EventArtist{},
		performances:  map[uint64]model.Performance{},
		bookings:      map[uint64]model.Booking{},
		windows:       map[uint64]model.ArtistUnavailability{},
		notifications: map[uint64]model.Notification{},
	}
}

func (s *store) next() uint64 { s.seq++; return s.seq }

type (
	fakeVenues        struct{ *store }
	fakeArtists       struct{ *store }
	fakeEvents        struct{ *store }
	fakeEventArtists  struct{ *store }
	fakePerformances  struct{ *store }
	fakeBookings      struct{ *store }
	fakeUnavailable   struct{ *store }
	fakeNotifications struct{ *store }
)

func (f fakeVenues) GetByID(_ context.Context, id uint64) (model.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.venues[id]
	if !ok {
		return model.Venue{}, repository.ErrNotFound
	}
	return v, nil
}

func (f fakeVenues) ListByOwner(_ context.Context, owner uint64) ([]model.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Venue
	for _, v := range f.venues {
		if v.OwnerUserID == owner {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f fakeVenues) Create(_ context.Context, v *model.Venue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = f.next()
	f.venues[v.ID] = *v
	return nil
}

func (f fakeArtists) GetByID(_ context.Context, id uint64) (model.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.artists[id]
	if !ok {
		return model.Artist{}, repository.ErrNotFound
	}
	return a, nil
}

func (f fakeEvents) Create(_ context.Context, e *model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.events {
		if x.Slug == e.Slug {
			return repository.ErrDuplicate
		}
	}
	e.ID = f.next()
	f.events[e.ID] = *e
	return nil
}

func (f fakeEvents) GetByID(_ context.Context, id uint64) (model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return model.Event{}, repository.ErrNotFound
	}
	return e, nil
}

func (f fakeEvents) SlugExists(_ context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeEvents) Update(_ context.Context, id uint64, p repository.EventPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.EventDate != nil {
		e.EventDate = p.EventDate
	}
	if p.EndDate != nil {
		e.EndDate = p.EndDate
	}
	if p.TotalHours != nil {
		e.TotalHours = p.TotalHours
	}
	if p.TotalBudgetCents != nil {
		e.TotalBudgetCents = p.TotalBudgetCents
	}
	if p.IsPublic != nil {
		e.IsPublic = *p.IsPublic
	}
	f.events[id] = e
	return nil
}

func (f fakeEvents) UpdateStatus(_ context.Context, id uint64, from, to model.EventStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok || e.Status != from {
		return false, nil
	}
	e.Status = to
	f.events[id] = e
	return true, nil
}

func (f fakeEvents) AssignVenue(_ context.Context, id, venueID uint64, from, to model.EventStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok || e.Status != from {
		return false, nil
	}
	e.VenueID = &venueID
	e.ExternalVenue, e.ExternalAddress, e.ExternalCity, e.ExternalContact = nil, nil, nil, nil
	e.Status = to
	f.events[id] = e
	return true, nil
}

func (f fakeEvents) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return repository.ErrNotFound
	}
	for _, b := range f.bookings {
		if b.EventID != nil && *b.EventID == id {
			return repository.ErrConflict
		}
	}
	for _, p := range f.performances {
		if p.EventID == id {
			return repository.ErrConflict
		}
	}
	delete(f.events, id)
	return nil
}

func (f fakeEvents) ListPendingForVenues(_ context.Context, venueIDs []uint64) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Event
	for _, e := range f.events {
		if e.Status != model.EventPendingVenueApproval || e.VenueID == nil {
			continue
		}
		for _, v := range venueIDs {
			if *e.VenueID == v {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f fakeEvents) GetBySlug(_ context.Context, slug string) (model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.Slug == slug {
			return e, nil
		}
	}
	return model.Event{}, repository.ErrNotFound
}

func (f fakeEvents) ListPublic(_ context.Context, from time.Time, limit, offset int) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Event
	for _, e := range f.events {
		if e.IsPublic && (e.Status == model.EventPublished || e.Status == model.EventConfirmed) &&
			e.EventDate != nil && !e.EventDate.Before(from) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(*out[j].EventDate) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeEventArtists) sorted(eventID uint64, keep func(model.EventArtist) bool) []model.EventArtist {
	var out []model.EventArtist
	for k, ea := range f.lineup {
		if k[0] == eventID && keep(ea) {
			out = append(out, ea)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArtistID < out[j].ArtistID })
	return out
}

func (f fakeEventArtists) ListByEvent(_ context.Context, eventID uint64) ([]model.EventArtist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(eventID, func(model.EventArtist) bool { return true }), nil
}

func (f fakeEventArtists) ListUnconfirmed(_ context.Context, eventID uint64) ([]model.EventArtist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(eventID, func(ea model.EventArtist) bool { return !ea.Confirmed }), nil
}

func (f fakeEventArtists) Get(_ context.Context, eventID, artistID uint64) (model.EventArtist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ea, ok := f.lineup[[2]uint64{eventID, artistID}]
	if !ok {
		return model.EventArtist{}, repository.ErrNotFound
	}
	return ea, nil
}

func (f fakeEventArtists) Add(_ context.Context, ea model.EventArtist) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]uint64{ea.EventID, ea.ArtistID}
	if _, ok := f.lineup[k]; ok {
		return repository.ErrDuplicate
	}
	f.lineup[k] = ea
	return nil
}

func (f fakeEventArtists) SetConfirmed(_ context.Context, eventID, artistID uint64, confirmed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]uint64{eventID, artistID}
	ea, ok := f.lineup[k]
	if !ok {
		ea = model.EventArtist{EventID: eventID, ArtistID: artistID}
	}
	ea.Confirmed = confirmed
	f.lineup[k] = ea
	return nil
}

func (f fakeEventArtists) ResetConfirmed(_ context.Context, eventID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, ea := range f.lineup {
		if k[0] == eventID {
			ea.Confirmed = false
			f.lineup[k] = ea
		}
	}
	return nil
}

func (f fakePerformances) Create(_ context.Context, p *model.Performance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.performances {
		if x.EventID == p.EventID && x.ArtistID == p.ArtistID {
			return repository.ErrDuplicate
		}
	}
	p.ID = f.next()
	f.performances[p.ID] = *p
	return nil
}

func (f fakePerformances) GetByID(_ context.Context, id uint64) (model.Performance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.performances[id]
	if !ok {
		return model.Performance{}, repository.ErrNotFound
	}
	return p, nil
}

func (f fakePerformances) GetByEventAndArtist(_ context.Context, eventID, artistID uint64) (model.Performance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.performances {
		if p.EventID == eventID && p.ArtistID == artistID {
			return p, nil
		}
	}
	return model.Performance{}, repository.ErrNotFound
}

func (f fakePerformances) Transition(_ context.Context, id uint64, from, to model.PerformanceStatus, patch repository.PerformancePatch) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.performances[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	if patch.AgreedFeeCents != nil {
		p.AgreedFeeCents = patch.AgreedFeeCents
	}
	if patch.VenueNotes != nil {
		p.VenueNotes = patch.VenueNotes
	}
	if patch.ArtistNotes != nil {
		p.ArtistNotes = patch.ArtistNotes
	}
	f.performances[id] = p
	return true, nil
}

func (f fakePerformances) ListPendingForHost(_ context.Context, userID uint64, venueIDs []uint64) ([]model.Performance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Performance
	for _, p := range f.performances {
		if p.Status != model.PerformancePending {
			continue
		}
		e := f.events[p.EventID]
		hosted := e.CreatorUserID == userID
		for _, v := range venueIDs {
			if e.VenueID != nil && *e.VenueID == v {
				hosted = true
			}
		}
		if hosted {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeBookings) Create(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = f.next()
	f.bookings[b.ID] = *b
	return nil
}

func (f fakeBookings) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	return b, nil
}

func (f fakeBookings) ExistsForArtistAndEvent(_ context.Context, artistID, eventID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ArtistID == artistID && b.EventID != nil && *b.EventID == eventID && b.Status != model.BookingCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeBookings) ListAcceptedForArtistBetween(_ context.Context, artistID uint64, from, to time.Time, excludeID uint64) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.bookings {
		if b.ArtistID == artistID && b.Status == model.BookingAccepted && b.ID != excludeID &&
			!b.EventDate.Before(from) && b.EventDate.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f fakeBookings) ListByEvent(_ context.Context, eventID uint64, statuses ...model.BookingStatus) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.bookings {
		if b.EventID == nil || *b.EventID != eventID {
			continue
		}
		if len(statuses) > 0 && !contains(statuses, b.Status) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeBookings) CancelActive(_ context.Context, ids []uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		b, ok := f.bookings[id]
		if ok && (b.Status == model.BookingPending || b.Status == model.BookingAccepted) {
			b.Status = model.BookingCancelled
			f.bookings[id] = b
			n++
		}
	}
	return n, nil
}

func (f fakeBookings) UpdateStatus(_ context.Context, id uint64, from, to model.BookingStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	f.bookings[id] = b
	return true, nil
}

func (f fakeBookings) CountByEvent(_ context.Context, eventID uint64) (int64, error) {
	out, _ := f.ListByEvent(context.Background(), eventID)
	return int64(len(out)), nil
}

func (f fakeBookings) ListForArtist(_ context.Context, artistID uint64) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.bookings {
		if b.ArtistID == artistID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f fakeBookings) ListForHost(_ context.Context, userID uint64, venueIDs []uint64) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.bookings {
		match := b.VenueID != nil && contains(venueIDs, *b.VenueID)
		if b.EventID != nil && f.events[*b.EventID].CreatorUserID == userID {
			match = true
		}
		if match {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f fakeUnavailable) ListByArtist(_ context.Context, artistID uint64) ([]model.ArtistUnavailability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ArtistUnavailability
	for _, w := range f.windows {
		if w.ArtistID == artistID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f fakeUnavailable) Create(_ context.Context, u *model.ArtistUnavailability) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = f.next()
	f.windows[u.ID] = *u
	return nil
}

func (f fakeUnavailable) GetByID(_ context.Context, id uint64) (model.ArtistUnavailability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[id]
	if !ok {
		return model.ArtistUnavailability{}, repository.ErrNotFound
	}
	return w, nil
}

func (f fakeUnavailable) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.windows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.windows, id)
	return nil
}

func (f fakeNotifications) Create(_ context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = f.next()
	f.notifications[n.ID] = *n
	return nil
}

func (f fakeNotifications) ListUnread(_ context.Context, userID uint64) ([]model.NotificationView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.NotificationView
	for _, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			out = append(out, model.NotificationView{Notification: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f fakeNotifications) MarkRead(_ context.Context, id, userID uint64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok || n.UserID != userID || n.IsRead {
		return false, nil
	}
	n.IsRead, n.ReadAt = true, &at
	f.notifications[id] = n
	return true, nil
}

func (f fakeNotifications) MarkAllRead(_ context.Context, userID uint64, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var c int64
	for id, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead, n.ReadAt = true, &at
			f.notifications[id] = n
			c++
		}
	}
	return c, nil
}

func contains[T comparable](set []T, v T) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}

// outbox records every mail handed to the sender.
type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) (mail.Receipt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return mail.Receipt{OK: true, ID: "test"}, nil
}

func (o *outbox) kinds() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []string
	for _, m := range o.sent {
		out = append(out, m.Kind)
	}
	return out
}

// paths records revalidated paths.
type paths struct {
	mu   sync.Mutex
	seen []string
}

func (p *paths) Revalidate(_ context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, path)
	return nil
}

var testNow = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

// fixture wires every service over one in-memory store with side
// effects running inline.
type fixture struct {
	store     *store
	mail      *outbox
	paths     *paths
	deps      *Deps
	notes     *NotificationService
	conflict  *ConflictChecker
	workflow  *Workflow
	publisher *Publisher
	bookings  *BookingService
	events    *EventService

	venueOwner model.Principal
	venue      model.Venue
	creator    model.Principal
	artistA    model.Artist
	artistB    model.Artist
	principalA model.Principal
	principalB model.Principal
	stranger   model.Principal
}

func newFixture() *fixture {
	s := newStore()
	f := &fixture{store: s, mail: &outbox{}, paths: &paths{}}
	f.deps = &Deps{
		Venues:         fakeVenues{s},
		Artists:        fakeArtists{s},
		Events:         fakeEvents{s},
		EventArtists:   fakeEventArtists{s},
		Performances:   fakePerformances{s},
		Bookings:       fakeBookings{s},
		Unavailability: fakeUnavailable{s},
		Notifications:  fakeNotifications{s},
		Dispatcher:     notify.Inline{Policy: notify.NoRetry},
		Mailer:         f.mail,
		Revalidator:    f.paths,
		BaseURL:        "https://stagebook.test",
		Now:            func() time.Time { return testNow },
	}
	f.notes = NewNotificationService(f.deps)
	f.conflict = NewConflictChecker(f.deps.Bookings, f.deps.Unavailability)
	f.workflow = NewWorkflow(f.deps, f.notes)
	f.publisher = NewPublisher(f.deps, f.notes)
	f.bookings = NewBookingService(f.deps, f.notes, f.conflict)
	f.events = NewEventService(f.deps, f.workflow, f.publisher)

	ownerID := s.next()
	f.venue = model.Venue{ID: s.next(), OwnerUserID: ownerID, Name: "The Cellar", City: "Leeds"}
	s.venues[f.venue.ID] = f.venue
	f.venueOwner = model.Principal{UserID: ownerID, Role: model.RoleVenue, VenueIDs: []uint64{f.venue.ID}}

	f.creator = model.Principal{UserID: s.next(), Role: model.RoleVenue}

	f.artistA, f.principalA = f.addArtist("Ada Loops", "ada@example.com")
	f.artistB, f.principalB = f.addArtist("Bex Tone", "bex@example.com")
	f.stranger = model.Principal{UserID: s.next(), Role: model.RoleVenue}
	return f
}

func (f *fixture) addArtist(name, email string) (model.Artist, model.Principal) {
	uid := f.store.next()
	a := model.Artist{ID: f.store.next(), UserID: uid, Name: name, Email: email}
	f.store.artists[a.ID] = a
	id := a.ID
	return a, model.Principal{UserID: uid, Email: email, Role: model.RoleArtist, ArtistID: &id}
}

// seedEvent stores an event directly in the given status.
func (f *fixture) seedEvent(status model.EventStatus, creator uint64, venueID *uint64) model.Event {
	date := time.Date(2025, 9, 12, 18, 0, 0, 0, time.UTC)
	e := model.Event{
		ID:            f.store.next(),
		Title:         "Friday Session",
		Slug:          "friday-session",
		CreatorUserID: creator,
		VenueID:       venueID,
		EventDate:     &date,
		IsPublic:      true,
		Status:        status,
	}
	if venueID == nil {
		ext := "Warehouse 9"
		e.ExternalVenue = &ext
	}
	f.store.events[e.ID] = e
	return e
}

func (f *fixture) event(id uint64) model.Event { return f.store.events[id] }

func (f *fixture) notificationsFor(userID uint64) []model.Notification {
	var out []model.Notification
	for _, n := range f.store.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func ptr[T any](v T) *T { return &v }
