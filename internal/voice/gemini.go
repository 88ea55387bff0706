package voice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const synthTimeout = 20 * time.Second

// Synthesizer turns text into a playable WAV clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// GeminiSynthesizer uses a Gemini text-to-speech model with a prebuilt
// voice.
type GeminiSynthesizer struct {
	client *genai.Client
	model  string
	voice  string
}

func NewGeminiSynthesizer(client *genai.Client, model, voiceName string) *GeminiSynthesizer {
	return &GeminiSynthesizer{client: client, model: model, voice: voiceName}
}

// Synthesize reads text aloud in the given BCP-47 language.
func (g *GeminiSynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, synthTimeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			LanguageCode: language,
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini speech call failed: %w", err)
	}
	pcm, err := audioData(resp)
	if err != nil {
		return nil, err
	}
	return EncodeWAV(pcm, SampleRate, Channels, BitsPerSample), nil
}

func audioData(resp *genai.GenerateContentResponse) ([]byte, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini speech response has no candidates")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, errors.New("gemini speech response has no audio")
}
