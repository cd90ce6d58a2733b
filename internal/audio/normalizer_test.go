package audio_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Vovarama1992/ai_doctor/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	mu        sync.Mutex
	calls     []call
	ffmpegErr error
	duration  string
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{name: name, args: args})
	f.mu.Unlock()

	switch name {
	case "ffmpeg":
		if f.ffmpegErr != nil {
			return nil, f.ffmpegErr
		}
		out := args[len(args)-1]
		return nil, os.WriteFile(out, []byte("RIFF"), 0o600)
	case "ffprobe":
		return []byte(f.duration), nil
	}
	return nil, errors.New("unexpected command " + name)
}

func (f *fakeRunner) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, c := range f.calls {
		out = append(out, c.name)
	}
	return out
}

func touch(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
	return path
}

func TestNormalizeKeepsWav(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"question.wav", "QUESTION.WAV"} {
		runner := &fakeRunner{duration: "3.5\n"}
		n := audio.NewNormalizer("ffmpeg", "ffprobe", t.TempDir(), runner.run, zap.NewNop())

		in := touch(t, name)
		out, err := n.Normalize(context.Background(), in)

		require.NoError(t, err)
		assert.Equal(t, in, out)
		assert.Equal(t, []string{"ffprobe"}, runner.names())
	}
}

func TestNormalizeConvertsOtherContainers(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{duration: "1.25"}
	workDir := t.TempDir()
	n := audio.NewNormalizer("ffmpeg", "ffprobe", workDir, runner.run, zap.NewNop())

	in := touch(t, "question.webm")
	out, err := n.Normalize(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, workDir, filepath.Dir(out))
	assert.True(t, strings.HasPrefix(filepath.Base(out), "converted_"))
	assert.Equal(t, ".wav", filepath.Ext(out))
	assert.FileExists(t, out)

	require.Equal(t, []string{"ffmpeg", "ffprobe"}, runner.names())
	args := runner.calls[0].args
	assert.Contains(t, strings.Join(args, " "), "-i "+in)
	assert.Contains(t, strings.Join(args, " "), "-acodec pcm_s16le")

	again, err := n.Normalize(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, out, again)
}

func TestNormalizeDecodeFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{ffmpegErr: errors.New("Invalid data found when processing input")}
	workDir := t.TempDir()
	n := audio.NewNormalizer("ffmpeg", "ffprobe", workDir, runner.run, zap.NewNop())

	_, err := n.Normalize(context.Background(), touch(t, "broken.mp3"))
	require.Error(t, err)
	assert.ErrorIs(t, err, audio.ErrUnsupportedAudio)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNormalizeMissingFile(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	n := audio.NewNormalizer("ffmpeg", "ffprobe", t.TempDir(), runner.run, zap.NewNop())

	_, err := n.Normalize(context.Background(), filepath.Join(t.TempDir(), "nope.ogg"))
	assert.ErrorIs(t, err, audio.ErrUnsupportedAudio)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, runner.names())
}

func TestDuration(t *testing.T) {
	t.Parallel()

	n := audio.NewNormalizer("ffmpeg", "ffprobe", "", (&fakeRunner{duration: "2.5\n"}).run, zap.NewNop())
	d, err := n.Duration(context.Background(), "x.wav")
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, d)

	n = audio.NewNormalizer("ffmpeg", "ffprobe", "", (&fakeRunner{duration: "N/A"}).run, zap.NewNop())
	_, err = n.Duration(context.Background(), "x.wav")
	assert.Error(t, err)
}
