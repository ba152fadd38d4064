// Package transcribe turns recorded audio into text for voice search.
package transcribe

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("OPENAI_API_KEY not configured")

// Transcriber converts audio read from r into text.  filename carries the
// original extension, which the provider uses to detect the format.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Whisper transcribes English speech with OpenAI's whisper-1 model.
type Whisper struct {
	client *openai.Client
}

// NewWhisper returns a Whisper client.  An empty apiKey yields a client
// whose every call fails with ErrNotConfigured.
func NewWhisper(apiKey string) *Whisper {
	if apiKey == "" {
		return &Whisper{}
	}
	return &Whisper{client: openai.NewClient(apiKey)}
}

// Configured reports whether an API key was supplied.
func (w *Whisper) Configured() bool { return w.client != nil }

func (w *Whisper) Transcribe(ctx context.Context, filename string, r io.Reader) (string, error) {
	if w.client == nil {
		return "", ErrNotConfigured
	}
	if filename == "" {
		filename = "audio.m4a"
	}
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   r,
		FilePath: filename,
		Language: "en",
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
