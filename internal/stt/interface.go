package stt

import "context"

// Provider defines the interface for speech-to-text providers
type Provider interface {
	// Transcribe transcribes an audio file and returns the result
	Transcribe(ctx context.Context, audioPath string) (*Result, error)

	// Name returns the name of the provider (e.g., "fpt", "google")
	Name() string
}

// Handlers receive stream events. Any of them may be nil.
type Handlers struct {
	OnFinal   func(Result)
	OnInterim func(text string)
	OnError   func(err error)
	OnEnd     func()
}

// Stream is a live speech-to-text source. Start begins delivering events to
// the handlers; OnEnd fires once each time the stream stops, whether because
// Stop was called or because the source ended on its own.
type Stream interface {
	Start(ctx context.Context, h Handlers) error
	Stop() error
}
