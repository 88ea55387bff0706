package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/padely/padely/internal/announce"
)

type fakeSink struct {
	sent []announce.Announcement
	err  error
}

func (s *fakeSink) Name() string { return "fake" }

func (s *fakeSink) Send(ctx context.Context, a announce.Announcement) error {
	s.sent = append(s.sent, a)
	return s.err
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func report(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// countClients reports how many clients are in a state accepted by match.
func countClients(h *Hub, match func(visible bool, perm announce.Permission) bool) int {
	n := 0
	h.Each(func(visible bool, perm announce.Permission) *Message {
		if match(visible, perm) {
			n++
		}
		return nil
	})
	return n
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return env.Type, env.Payload
}

var sample = announce.Announcement{
	ID: "a1", MatchID: "m1", Kind: announce.GameWon, Title: "Game", Text: "Galan / Chingotto lead 3-2, set 1",
}

func TestNotifyVisibleTabGetsToast(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	report(t, conn, `{"type":"visibility","visible":true}`)
	eventually(t, func() bool {
		return countClients(hub, func(v bool, _ announce.Permission) bool { return v }) == 1
	})

	d := NewDispatcher(hub, 5*time.Second, nil)
	if err := d.Notify(context.Background(), sample); err != nil {
		t.Fatal(err)
	}
	typ, payload := readMessage(t, conn)
	if typ != TypeToast {
		t.Fatalf("type = %q, want toast", typ)
	}
	var toast Toast
	json.Unmarshal(payload, &toast)
	if toast.Text != sample.Text || toast.TTLMs != 5000 {
		t.Errorf("toast = %+v", toast)
	}
}

func TestNotifyHiddenTabWithPermission(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	report(t, conn, `{"type":"permission","permission":"granted"}`)
	eventually(t, func() bool { return hub.Permission() == announce.PermissionGranted })

	sink := &fakeSink{}
	d := NewDispatcher(hub, 5*time.Second, nil, sink)
	d.Notify(context.Background(), sample)

	typ, payload := readMessage(t, conn)
	if typ != TypeOSNotification {
		t.Fatalf("type = %q, want os_notification", typ)
	}
	var n OSNotification
	json.Unmarshal(payload, &n)
	if n.Tag != "match-m1" || n.Body != sample.Text {
		t.Errorf("notification = %+v", n)
	}
	if len(sink.sent) != 0 {
		t.Error("sink used while a browser received the notification")
	}
}

func TestNotifyRoutesEachTab(t *testing.T) {
	hub, srv := startHub(t)
	visible := dial(t, srv)
	granted := dial(t, srv)
	silent := dial(t, srv)
	report(t, visible, `{"type":"visibility","visible":true}`)
	report(t, granted, `{"type":"permission","permission":"granted"}`)
	report(t, silent, `{"type":"permission","permission":"denied"}`)
	eventually(t, func() bool {
		return countClients(hub, func(v bool, p announce.Permission) bool {
			return v || p != announce.PermissionDefault
		}) == 3
	})

	sink := &fakeSink{}
	d := NewDispatcher(hub, 5*time.Second, nil, sink)
	if err := d.Notify(context.Background(), sample); err != nil {
		t.Fatal(err)
	}

	if typ, _ := readMessage(t, visible); typ != TypeToast {
		t.Errorf("visible tab got %q, want %q", typ, TypeToast)
	}
	if typ, _ := readMessage(t, granted); typ != TypeOSNotification {
		t.Errorf("hidden tab with permission got %q, want %q", typ, TypeOSNotification)
	}
	silent.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, data, err := silent.ReadMessage(); err == nil {
		t.Errorf("hidden tab without permission got %s", data)
	}
	if len(sink.sent) != 0 {
		t.Errorf("sink sends = %d, want 0 while tabs were notified", len(sink.sent))
	}
}

func TestNotifyFallsBackToSinks(t *testing.T) {
	hub, srv := startHub(t)
	dial(t, srv)
	eventually(t, func() bool { return hub.Len() == 1 })

	sink := &fakeSink{err: errors.New("smtp down")}
	d := NewDispatcher(hub, time.Second, nil, sink)
	err := d.Notify(context.Background(), sample)
	if len(sink.sent) != 1 {
		t.Fatalf("sink sends = %d, want 1", len(sink.sent))
	}
	if err == nil || !strings.Contains(err.Error(), "fake: smtp down") {
		t.Errorf("err = %v", err)
	}
}

func TestNotifySkipsSilently(t *testing.T) {
	hub, _ := startHub(t)
	d := NewDispatcher(hub, time.Second, nil)
	if err := d.Notify(context.Background(), sample); err != nil {
		t.Errorf("Notify() with no channel = %v, want nil", err)
	}
}

func TestPermissionAggregation(t *testing.T) {
	hub, srv := startHub(t)
	d := NewDispatcher(hub, time.Second, nil)
	if p := d.Permission(); p != announce.PermissionDefault {
		t.Errorf("no clients: %q", p)
	}

	a := dial(t, srv)
	b := dial(t, srv)
	report(t, a, `{"type":"permission","permission":"denied"}`)
	report(t, b, `{"type":"permission","permission":"denied"}`)
	eventually(t, func() bool { return d.Permission() == announce.PermissionDenied })

	report(t, b, `{"type":"permission","permission":"granted"}`)
	eventually(t, func() bool { return d.Permission() == announce.PermissionGranted })

	withSink := NewDispatcher(nil, time.Second, nil, &fakeSink{})
	if p := withSink.Permission(); p != announce.PermissionGranted {
		t.Errorf("with sink: %q", p)
	}
	if p := NewDispatcher(nil, time.Second, nil).Permission(); p != announce.PermissionDenied {
		t.Errorf("nothing configured: %q", p)
	}
}

func TestNilSendersAreNoops(t *testing.T) {
	var e *EmailSender
	var tg *TelegramSender
	if err := e.Send(context.Background(), sample); err != nil {
		t.Error(err)
	}
	if err := tg.Send(context.Background(), sample); err != nil {
		t.Error(err)
	}
	if NewEmailSender(EmailConfig{SMTPServer: "smtp.example.com"}, nil) != nil {
		t.Error("sender without recipient created")
	}
	if s := Sinks(nil, nil); len(s) != 0 {
		t.Errorf("Sinks(nil, nil) = %v", s)
	}
}

func TestTelegramText(t *testing.T) {
	if got := telegramText(sample); got != "Game\n"+sample.Text {
		t.Errorf("telegramText() = %q", got)
	}
}
