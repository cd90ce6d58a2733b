package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/ai_doctor/internal/ports"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var ErrOutputMissing = errors.New("synthesized audio file is missing or empty")

// Synthesizer wraps an Engine with a fail-fast reachability check and a
// post-write existence check.
type Synthesizer struct {
	engine Engine
	prober Prober
	log    *zap.Logger
}

func NewSynthesizer(engine Engine, prober Prober, log *zap.Logger) *Synthesizer {
	return &Synthesizer{
		engine: engine,
		prober: prober,
		log:    log.Named("tts").With(zap.String("engine", engine.Name())),
	}
}

func (s *Synthesizer) Synthesize(ctx context.Context, text, outputPath string) ports.Result[string] {
	start := time.Now()

	if err := s.prober.Check(ctx); err != nil {
		s.log.Warn("no connectivity, skipping synthesis", zap.Error(err))
		return ports.Failure[string](ports.KindUnreachable, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		s.log.Error("prepare output dir", zap.Error(err))
		return ports.Failure[string](ports.KindRemote, err)
	}

	if err := s.engine.Synthesize(ctx, text, outputPath); err != nil {
		kind := ports.KindRemote
		switch {
		case errors.Is(err, ErrEmptyText):
			kind = ports.KindEmpty
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			kind = ports.KindCanceled
		}
		s.log.Error("synthesis failed", zap.String("path", outputPath), zap.Error(err))
		return ports.Failure[string](kind, err)
	}

	info, err := os.Stat(outputPath)
	switch {
	case err != nil:
		err = fmt.Errorf("%w: %w", ErrOutputMissing, err)
	case info.Size() == 0:
		err = ErrOutputMissing
	}
	if err != nil {
		s.log.Error("synthesized file check failed", zap.String("path", outputPath), zap.Error(err))
		return ports.Failure[string](ports.KindEmpty, err)
	}

	s.log.Info("saved audio",
		zap.String("path", outputPath),
		zap.String("size", humanize.Bytes(uint64(info.Size()))),
		zap.Duration("took", time.Since(start)))

	return ports.Success(outputPath)
}
