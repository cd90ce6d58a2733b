package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const canonicalExt = ".wav"

var ErrUnsupportedAudio = errors.New("audio could not be decoded")

// Normalizer converts incoming recordings to 16-bit PCM WAV with ffmpeg.
type Normalizer struct {
	ffmpeg  string
	ffprobe string
	workDir string
	run     Runner
	log     *zap.Logger
}

func NewNormalizer(ffmpeg, ffprobe, workDir string, run Runner, log *zap.Logger) *Normalizer {
	if run == nil {
		run = ExecRunner
	}
	return &Normalizer{
		ffmpeg:  ffmpeg,
		ffprobe: ffprobe,
		workDir: workDir,
		run:     run,
		log:     log.Named("audio"),
	}
}

// Normalize returns path untouched when it is already WAV, otherwise the path
// of a freshly converted copy in the work dir.
func (n *Normalizer) Normalize(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedAudio, err)
	}

	out := path
	if !strings.EqualFold(filepath.Ext(path), canonicalExt) {
		out = filepath.Join(n.workDir, "converted_"+uuid.NewString()+canonicalExt)

		_, err := n.run(ctx, n.ffmpeg,
			"-y", "-hide_banner", "-loglevel", "error",
			"-i", path,
			"-acodec", "pcm_s16le",
			out,
		)
		if err != nil {
			_ = os.Remove(out)
			return "", fmt.Errorf("%w: %s: %w", ErrUnsupportedAudio, filepath.Base(path), err)
		}
		n.log.Debug("converted audio", zap.String("from", path), zap.String("to", out))
	}

	if d, err := n.Duration(ctx, out); err == nil {
		n.log.Info("audio duration", zap.Duration("duration", d), zap.String("file", filepath.Base(out)))
	} else {
		n.log.Debug("ffprobe failed", zap.Error(err))
	}

	return out, nil
}

// Duration asks ffprobe for the container duration.
func (n *Normalizer) Duration(ctx context.Context, path string) (time.Duration, error) {
	out, err := n.run(ctx, n.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}

	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
