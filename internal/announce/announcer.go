package announce

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/padely/padely/internal/padel"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	queueSize     = 64
	historySize   = 50
	defaultSetGap = 3 * time.Second
)

// PermissionDeniedMessage is shown once when notifications are refused.
const PermissionDeniedMessage = "Notifications are blocked. Please enable them in your browser settings."

// ErrPermissionDenied is returned when notifications are enabled while
// every client refused notification permission.
var ErrPermissionDenied = errors.New("notification permission denied")

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Channel is an output channel a match can be subscribed to.
type Channel string

const (
	Voice        Channel = "voice"
	Notification Channel = "notification"
)

// ParseChannel accepts "voice" or "notification" (or "notifications").
func ParseChannel(s string) (Channel, bool) {
	switch strings.ToLower(s) {
	case "voice":
		return Voice, true
	case "notification", "notifications":
		return Notification, true
	}
	return "", false
}

// Permission is the aggregated notification permission of the clients.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// Announcement is a composed sentence ready for delivery.
type Announcement struct {
	ID       string    `json:"id"`
	MatchID  string    `json:"matchId"`
	Kind     Kind      `json:"kind"`
	Set      int       `json:"set,omitempty"`
	Title    string    `json:"title"`
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Channels []Channel `json:"channels"`
	At       time.Time `json:"at"`
}

// Speaker plays announcements aloud. A new call preempts the previous one.
type Speaker interface {
	Speak(ctx context.Context, a Announcement) error
}

// Notifier shows announcements as OS notifications or in-app toasts.
type Notifier interface {
	Notify(ctx context.Context, a Announcement) error
	Permission() Permission
}

// Subscription is the per-match channel state. It lives in memory only.
type Subscription struct {
	MatchID      string      `json:"matchId"`
	Voice        bool        `json:"voiceEnabled"`
	Notification bool        `json:"notificationEnabled"`
	Phase        padel.Phase `json:"phase"`
	LastState    padel.Match `json:"lastState"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	seq uint64
}

func (s *Subscription) enabled(ch Channel) bool {
	if ch == Voice {
		return s.Voice
	}
	return s.Notification
}

func (s *Subscription) set(ch Channel, on bool) {
	if ch == Voice {
		s.Voice = on
	} else {
		s.Notification = on
	}
}

func (s *Subscription) empty() bool { return !s.Voice && !s.Notification }

type job struct {
	match        padel.Match
	prev         *padel.Match
	event        Event
	voice        bool
	notification bool
}

// --------------------------------------------------------------------------
// Announcer
// --------------------------------------------------------------------------

// Announcer owns the subscription map and the delivery worker. Toggle and
// Observe decide under one lock; text generation and delivery run on the
// worker goroutine outside it.
type Announcer struct {
	mu       sync.Mutex
	subs     map[string]*Subscription
	pending  map[string]map[*time.Timer]job
	history  []Announcement
	composer *Composer
	speaker  Speaker
	notifier Notifier
	setGap   time.Duration
	logger   *slog.Logger

	queue  chan job
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// New creates an announcer and starts its delivery worker. speaker and
// notifier may be nil, which silently disables that channel's output.
func New(composer *Composer, speaker Speaker, notifier Notifier, setWonDelay time.Duration, logger *slog.Logger) *Announcer {
	if logger == nil {
		logger = slog.Default()
	}
	if composer == nil {
		composer = NewComposer(nil, nil, logger)
	}
	if setWonDelay <= 0 {
		setWonDelay = defaultSetGap
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &Announcer{
		subs:     make(map[string]*Subscription),
		pending:  make(map[string]map[*time.Timer]job),
		composer: composer,
		speaker:  speaker,
		notifier: notifier,
		setGap:   setWonDelay,
		logger:   logger,
		queue:    make(chan job, queueSize),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go a.run()
	return a
}

// Toggle flips channel ch for match m. seq is the poll sequence m came from.
func (a *Announcer) Toggle(ctx context.Context, ch Channel, m padel.Match, seq uint64) (Subscription, error) {
	return a.update(ch, m, seq, func(cur bool) bool { return !cur })
}

// SetChannel turns channel ch on or off for match m.
func (a *Announcer) SetChannel(ctx context.Context, ch Channel, m padel.Match, seq uint64, on bool) (Subscription, error) {
	return a.update(ch, m, seq, func(bool) bool { return on })
}

func (a *Announcer) update(ch Channel, m padel.Match, seq uint64, next func(bool) bool) (Subscription, error) {
	id := m.ID()

	a.mu.Lock()
	sub := a.subs[id]
	cur := sub != nil && sub.enabled(ch)
	on := next(cur)

	if on == cur {
		out := a.viewLocked(id)
		a.mu.Unlock()
		return out, nil
	}

	if !on {
		sub.set(ch, false)
		if sub.empty() {
			delete(a.subs, id)
			a.cancelLocked(id)
		}
		out := a.viewLocked(id)
		a.mu.Unlock()
		a.logger.Info("Announcements disabled", "match_id", id, "channel", ch)
		return out, nil
	}

	if ch == Notification && a.notifier != nil && a.notifier.Permission() == PermissionDenied {
		out := a.viewLocked(id)
		a.mu.Unlock()
		return out, ErrPermissionDenied
	}

	var ev *Event
	subscribe := true
	switch {
	case m.Phase() == padel.Ended:
		// Final result once, never subscribed.
		subscribe = false
		if m.Winner() != 0 {
			ev = &Event{Kind: MatchEnd}
		}
	case !m.HasStarted():
		ev = &Event{Kind: Waiting}
	case ch == Notification:
		ev = &Event{Kind: GameWon, Set: m.ActiveSet()}
	}

	if subscribe {
		if sub == nil {
			sub = &Subscription{MatchID: id, LastState: m, Phase: m.Phase(), seq: seq}
			a.subs[id] = sub
		}
		sub.set(ch, true)
		sub.UpdatedAt = time.Now()
	}
	out := a.viewLocked(id)
	a.mu.Unlock()

	a.logger.Info("Announcements enabled",
		"match_id", id, "channel", ch, "phase", m.Phase(), "subscribed", subscribe)
	if ev != nil {
		a.enqueue(job{match: m, event: *ev, voice: ch == Voice, notification: ch == Notification})
	}
	return out, nil
}

// Observe feeds a fresh snapshot of a match. Snapshots with a sequence not
// newer than the last applied one are dropped. Unsubscribed matches are
// ignored.
func (a *Announcer) Observe(ctx context.Context, seq uint64, m padel.Match) {
	id := m.ID()

	a.mu.Lock()
	sub := a.subs[id]
	if sub == nil || a.closed || seq <= sub.seq {
		a.mu.Unlock()
		return
	}
	prev := sub.LastState
	sub.LastState = m
	sub.Phase = m.Phase()
	sub.seq = seq
	sub.UpdatedAt = time.Now()

	events := detect(prev.Phase(), sub.Phase, prev, m)
	voice, notification := sub.Voice, sub.Notification

	var now []job
	for _, ev := range events {
		j := job{match: m, prev: &prev, event: ev, voice: voice, notification: notification}
		if ev.Kind == SetWon {
			a.scheduleLocked(id, j)
			continue
		}
		now = append(now, j)
		if ev.Kind == MatchEnd {
			sub.Voice = false
		}
	}
	if sub.empty() {
		delete(a.subs, id)
	}
	a.mu.Unlock()

	for _, j := range now {
		a.logger.Info("Match event detected", "match_id", id, "kind", j.event.Kind, "set", j.event.Set)
		a.enqueue(j)
	}
}

// scheduleLocked defers a SET_WON so it does not talk over the GAME_WON
// line of the same change. Channels are read again when the timer fires; a
// channel turned off in the meantime stays quiet.
func (a *Announcer) scheduleLocked(id string, j job) {
	if a.pending[id] == nil {
		a.pending[id] = make(map[*time.Timer]job)
	}
	var t *time.Timer
	t = time.AfterFunc(a.setGap, func() {
		a.mu.Lock()
		set := a.pending[id]
		_, live := set[t]
		delete(set, t)
		if len(set) == 0 {
			delete(a.pending, id)
		}
		if sub := a.subs[id]; sub != nil {
			j.voice = j.voice && sub.Voice
			j.notification = j.notification && sub.Notification
		} else {
			live = false
		}
		a.mu.Unlock()
		if live && (j.voice || j.notification) {
			a.enqueue(j)
		}
	})
	a.pending[id][t] = j
}

// CancelAllPending drops every deferred emission. Called when the live view
// is torn down.
func (a *Announcer) CancelAllPending() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id := range a.pending {
		a.cancelLocked(id)
	}
}

func (a *Announcer) cancelLocked(id string) {
	for t := range a.pending[id] {
		t.Stop()
	}
	delete(a.pending, id)
}

// PendingCount returns the number of deferred emissions.
func (a *Announcer) PendingCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, set := range a.pending {
		n += len(set)
	}
	return n
}

// Subscriptions returns a snapshot of every subscription, sorted by match.
func (a *Announcer) Subscriptions() []Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Subscription, 0, len(a.subs))
	for _, s := range a.subs {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(x, y Subscription) int { return strings.Compare(x.MatchID, y.MatchID) })
	return out
}

// Subscription returns the state of one match.
func (a *Announcer) Subscription(matchID string) (Subscription, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.subs[matchID]
	if !ok {
		return Subscription{MatchID: matchID}, false
	}
	return *s, true
}

// Prune drops subscriptions of ended matches idle for longer than idle.
func (a *Announcer) Prune(idle time.Duration) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	cutoff := time.Now().Add(-idle)
	n := 0
	for id, s := range a.subs {
		if s.Phase == padel.Ended && s.UpdatedAt.Before(cutoff) {
			delete(a.subs, id)
			a.cancelLocked(id)
			n++
		}
	}
	return n
}

// Recent returns the latest delivered announcements, newest first.
func (a *Announcer) Recent() []Announcement {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Announcement, len(a.history))
	for i, ann := range a.history {
		out[len(a.history)-1-i] = ann
	}
	return out
}

// Close cancels pending emissions and stops the worker. In-flight delivery
// is cancelled.
func (a *Announcer) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	for id := range a.pending {
		a.cancelLocked(id)
	}
	a.mu.Unlock()

	a.cancel()
	<-a.done
}

func (a *Announcer) viewLocked(id string) Subscription {
	if s, ok := a.subs[id]; ok {
		return *s
	}
	return Subscription{MatchID: id}
}

// --------------------------------------------------------------------------
// Delivery worker
// --------------------------------------------------------------------------

func (a *Announcer) enqueue(j job) {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return
	}
	select {
	case a.queue <- j:
	default:
		a.logger.Warn("Announcement queue full, dropping", "match_id", j.match.ID(), "kind", j.event.Kind)
	}
}

func (a *Announcer) run() {
	defer close(a.done)
	for {
		select {
		case j := <-a.queue:
			a.deliver(j)
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *Announcer) deliver(j job) {
	ctx := a.ctx
	ann := Announcement{
		ID:       uuid.NewString(),
		MatchID:  j.match.ID(),
		Kind:     j.event.Kind,
		Set:      j.event.Set,
		Title:    a.composer.Title(j.match, j.event),
		Text:     a.composer.Compose(ctx, j.match, j.event, j.prev),
		Language: j.match.Language(),
		At:       time.Now(),
	}
	if ann.Text == "" {
		return
	}

	if j.voice && a.speaker != nil {
		ann.Channels = append(ann.Channels, Voice)
	}
	if j.notification && a.notifier != nil {
		ann.Channels = append(ann.Channels, Notification)
	}

	if j.voice && a.speaker != nil {
		if err := a.speaker.Speak(ctx, ann); err != nil && ctx.Err() == nil {
			a.logger.Warn("Voice announcement failed", "match_id", ann.MatchID, "kind", ann.Kind, "error", err)
		}
	}
	if j.notification && a.notifier != nil {
		if err := a.notifier.Notify(ctx, ann); err != nil && ctx.Err() == nil {
			a.logger.Warn("Notification failed", "match_id", ann.MatchID, "kind", ann.Kind, "error", err)
		}
	}

	a.mu.Lock()
	a.history = append(a.history, ann)
	if len(a.history) > historySize {
		a.history = a.history[len(a.history)-historySize:]
	}
	a.mu.Unlock()

	a.logger.Info("Announcement delivered",
		"match_id", ann.MatchID, "kind", ann.Kind, "text", ann.Text, "channels", ann.Channels)
}
