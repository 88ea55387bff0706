package voice

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/padely/padely/internal/announce"
)

type published struct {
	msgType string
	payload any
}

type recorder struct {
	mu  sync.Mutex
	got []published
}

func (r *recorder) Publish(msgType string, payload any) {
	r.mu.Lock()
	r.got = append(r.got, published{msgType, payload})
	r.mu.Unlock()
}

func (r *recorder) all() []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]published(nil), r.got...)
}

// blockingSynth blocks on texts listed in hold until the context ends.
type blockingSynth struct {
	hold    map[string]bool
	started chan string
	err     error
}

func (s *blockingSynth) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if s.started != nil {
		s.started <- text
	}
	if s.hold[text] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return EncodeWAV([]byte{1, 0, 2, 0}, SampleRate, Channels, BitsPerSample), nil
}

func TestEncodeWAVHeader(t *testing.T) {
	pcm := make([]byte, 480)
	wav := EncodeWAV(pcm, SampleRate, Channels, BitsPerSample)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("len = %d", len(wav))
	}
	if !bytes.Equal(wav[0:4], []byte("RIFF")) || !bytes.Equal(wav[8:12], []byte("WAVE")) || !bytes.Equal(wav[36:40], []byte("data")) {
		t.Error("missing chunk ids")
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+len(pcm)) {
		t.Errorf("riff size = %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != SampleRate {
		t.Errorf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != SampleRate*2 {
		t.Errorf("byte rate = %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d", got)
	}
}

func TestSpeakStoresClip(t *testing.T) {
	store := NewMemoryStore("/api/v1/audio")
	out := &recorder{}
	s := NewSpeaker(&blockingSynth{}, store, out, nil)

	s.Speak(context.Background(), announce.Announcement{ID: "c1", MatchID: "m1", Text: "Galan lead 3-2", Language: "es-ES"})
	s.Wait()

	got := out.all()
	if len(got) != 1 || got[0].msgType != TypeVoice {
		t.Fatalf("published = %+v", got)
	}
	c := got[0].payload.(Clip)
	if c.URL != "/api/v1/audio/c1" || c.Language != "es-ES" {
		t.Errorf("clip = %+v", c)
	}
	if data, err := store.Get("c1"); err != nil || len(data) != 48 {
		t.Errorf("stored clip: %d bytes, %v", len(data), err)
	}
}

func TestSpeakPreemptsPrevious(t *testing.T) {
	store := NewMemoryStore("/audio")
	out := &recorder{}
	synth := &blockingSynth{hold: map[string]bool{"first": true}, started: make(chan string, 2)}
	s := NewSpeaker(synth, store, out, nil)

	s.Speak(context.Background(), announce.Announcement{ID: "1", Text: "first"})
	<-synth.started
	s.Speak(context.Background(), announce.Announcement{ID: "2", Text: "second"})
	s.Wait()

	got := out.all()
	if len(got) != 1 {
		t.Fatalf("published %d messages, want 1", len(got))
	}
	if c := got[0].payload.(Clip); c.ID != "2" {
		t.Errorf("played %q, want the latest", c.ID)
	}
	if store.Len() != 1 {
		t.Errorf("stored clips = %d, want 1", store.Len())
	}
}

func TestSpeakFallsBackToBrowserSpeech(t *testing.T) {
	out := &recorder{}
	s := NewSpeaker(&blockingSynth{err: errors.New("quota")}, NewMemoryStore("/a"), out, nil)
	s.Speak(context.Background(), announce.Announcement{ID: "x", Text: "Tiebreak", Language: "en-US"})
	s.Wait()

	got := out.all()
	if len(got) != 1 || got[0].msgType != TypeSpeech {
		t.Fatalf("published = %+v", got)
	}
	if sp := got[0].payload.(Speech); sp.Text != "Tiebreak" || sp.Rate != 1.0 {
		t.Errorf("speech = %+v", sp)
	}

	out2 := &recorder{}
	plain := NewSpeaker(nil, nil, out2, nil)
	plain.Speak(context.Background(), announce.Announcement{Text: "hello"})
	plain.Wait()
	if got := out2.all(); len(got) != 1 || got[0].msgType != TypeSpeech {
		t.Errorf("no synthesizer: %+v", got)
	}
}

func TestCancelDropsPendingClip(t *testing.T) {
	out := &recorder{}
	synth := &blockingSynth{hold: map[string]bool{"slow": true}, started: make(chan string, 1)}
	s := NewSpeaker(synth, NewMemoryStore("/a"), out, nil)

	s.Speak(context.Background(), announce.Announcement{Text: "slow"})
	<-synth.started
	s.Cancel()
	s.Wait()
	if got := out.all(); len(got) != 0 {
		t.Errorf("published after cancel: %+v", got)
	}
}

func TestMemoryStorePrune(t *testing.T) {
	s := NewMemoryStore("/a")
	ctx := context.Background()
	s.Put(ctx, "old", []byte{1})
	s.mu.Lock()
	c := s.clips["old"]
	c.created = time.Now().Add(-time.Hour)
	s.clips["old"] = c
	s.mu.Unlock()
	s.Put(ctx, "new", []byte{2})

	if n := s.Prune(10 * time.Minute); n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
	if _, err := s.Get("old"); !errors.Is(err, ErrClipNotFound) {
		t.Errorf("old clip: %v", err)
	}
	if _, err := s.Get("new"); err != nil {
		t.Errorf("new clip: %v", err)
	}
}
