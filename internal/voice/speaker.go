// Package voice reads announcements aloud. Speech is synthesized on the
// server, stored as a WAV clip and pushed to browsers; when synthesis is not
// available the text itself is pushed for the browser's own speech engine.
// Only the latest announcement is ever played: a new one cancels any clip
// still being prepared.
package voice

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/padely/padely/internal/announce"
)

// Message types pushed to browsers.
const (
	TypeVoice  = "voice"
	TypeSpeech = "speech"
)

// Clip tells browsers to play a stored clip, replacing anything playing.
type Clip struct {
	ID       string `json:"id"`
	MatchID  string `json:"matchId"`
	URL      string `json:"url"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Speech asks browsers to read Text with their own speech engine.
type Speech struct {
	ID       string  `json:"id"`
	MatchID  string  `json:"matchId"`
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Rate     float64 `json:"rate"`
}

// Publisher pushes a typed message to connected browsers.
type Publisher interface {
	Publish(msgType string, payload any)
}

// Speaker implements announce.Speaker.
type Speaker struct {
	synth  Synthesizer
	store  ClipStore
	out    Publisher
	logger *slog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSpeaker creates a speaker. With a nil synth or store every
// announcement goes out as a Speech message.
func NewSpeaker(synth Synthesizer, store ClipStore, out Publisher, logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Speaker{synth: synth, store: store, out: out, logger: logger}
}

// Speak starts preparing a and returns at once. A clip still in preparation
// for an earlier call is abandoned.
func (s *Speaker) Speak(ctx context.Context, a announce.Announcement) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	speakCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.speak(speakCtx, gen, a)
	}()
	return nil
}

func (s *Speaker) speak(ctx context.Context, gen uint64, a announce.Announcement) {
	id := a.ID
	if id == "" {
		id = uuid.NewString()
	}

	if s.synth == nil || s.store == nil {
		s.publish(gen, TypeSpeech, Speech{ID: id, MatchID: a.MatchID, Text: a.Text, Language: a.Language, Rate: 1.0})
		return
	}

	wav, err := s.synth.Synthesize(ctx, a.Text, a.Language)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("Speech synthesis failed, using browser speech", "match_id", a.MatchID, "error", err)
		s.publish(gen, TypeSpeech, Speech{ID: id, MatchID: a.MatchID, Text: a.Text, Language: a.Language, Rate: 1.0})
		return
	}

	url, err := s.store.Put(ctx, id, wav)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("Storing audio clip failed, using browser speech", "match_id", a.MatchID, "error", err)
		s.publish(gen, TypeSpeech, Speech{ID: id, MatchID: a.MatchID, Text: a.Text, Language: a.Language, Rate: 1.0})
		return
	}
	if !s.publish(gen, TypeVoice, Clip{ID: id, MatchID: a.MatchID, URL: url, Text: a.Text, Language: a.Language}) {
		// Superseded while uploading.
		s.store.Delete(context.WithoutCancel(ctx), id)
	}
}

// publish sends the message only if gen is still the latest announcement.
func (s *Speaker) publish(gen uint64, msgType string, payload any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	if s.out != nil {
		s.out.Publish(msgType, payload)
	}
	return true
}

// Cancel abandons the clip in preparation, if any.
func (s *Speaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Wait blocks until every started announcement finished or was abandoned.
func (s *Speaker) Wait() {
	s.wg.Wait()
}
