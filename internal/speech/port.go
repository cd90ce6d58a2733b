package speech

import "context"

// Engine turns text into an audio file at outPath.
type Engine interface {
	Name() string
	Synthesize(ctx context.Context, text, outPath string) error
}

// Prober checks that the network the engine needs is reachable.
type Prober interface {
	Check(ctx context.Context) error
}
