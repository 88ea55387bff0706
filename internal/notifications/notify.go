// Package notifications delivers announcements outside the voice channel.
//
// Browsers connect to the websocket hub and report whether their tab is
// visible and whether they granted notification permission. A visible tab
// gets an in-app toast; a hidden tab with permission gets an OS
// notification; otherwise the browser is skipped. Configured out-of-band
// sinks (email, Telegram) receive announcements no browser is watching.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/padely/padely/internal/announce"
)

// Message types pushed to browsers.
const (
	TypeToast          = "toast"
	TypeOSNotification = "os_notification"
	TypeSubscription   = "subscription"
	TypeBoard          = "board"
)

// Toast is an in-app notification that dismisses itself after TTL.
type Toast struct {
	ID      string `json:"id"`
	MatchID string `json:"matchId"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	TTLMs   int64  `json:"ttlMs"`
}

// OSNotification asks the browser to raise a system notification. Tag
// collapses repeated notifications of one match.
type OSNotification struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Tag     string `json:"tag"`
	TTLMs   int64  `json:"ttlMs"`
	FocusOn bool   `json:"focusOnClick"`
}

// Sink is an out-of-band destination such as email or chat.
type Sink interface {
	Name() string
	Send(ctx context.Context, a announce.Announcement) error
}

// Dispatcher routes announcements to browsers and sinks. It implements
// announce.Notifier.
type Dispatcher struct {
	hub      *Hub
	sinks    []Sink
	toastTTL time.Duration
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. hub may be nil for a terminal-only
// process.
func NewDispatcher(hub *Hub, toastTTL time.Duration, logger *slog.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{hub: hub, sinks: sinks, toastTTL: toastTTL, logger: logger}
}

// Permission reports granted whenever a sink is configured; otherwise it is
// the browsers' aggregated permission.
func (d *Dispatcher) Permission() announce.Permission {
	if len(d.sinks) > 0 {
		return announce.PermissionGranted
	}
	if d.hub == nil {
		return announce.PermissionDenied
	}
	return d.hub.Permission()
}

// Notify delivers a. Nothing available is not an error.
func (d *Dispatcher) Notify(ctx context.Context, a announce.Announcement) error {
	ttl := d.toastTTL.Milliseconds()

	toast := &Message{Type: TypeToast, Payload: Toast{
		ID: a.ID, MatchID: a.MatchID, Title: a.Title, Text: a.Text, TTLMs: ttl,
	}}
	osNote := &Message{Type: TypeOSNotification, Payload: OSNotification{
		ID: a.ID, Title: a.Title, Body: a.Text, Tag: "match-" + a.MatchID, TTLMs: ttl, FocusOn: true,
	}}

	watched := false
	if d.hub != nil {
		watched = d.hub.Each(func(visible bool, perm announce.Permission) *Message {
			switch {
			case visible:
				return toast
			case perm == announce.PermissionGranted:
				return osNote
			}
			return nil
		}) > 0
	}
	if watched || len(d.sinks) == 0 {
		if !watched {
			d.logger.Debug("Notification skipped, no channel available", "match_id", a.MatchID, "kind", a.Kind)
		}
		return nil
	}

	var errs []error
	for _, s := range d.sinks {
		if err := s.Send(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Publish pushes a state message (board or subscription change) to every
// browser.
func (d *Dispatcher) Publish(msgType string, payload any) {
	if d.hub == nil {
		return
	}
	d.hub.Broadcast(Message{Type: msgType, Payload: payload})
}
