package speech_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Vovarama1992/ai_doctor/internal/ports"
	"github.com/Vovarama1992/ai_doctor/internal/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProber struct{ err error }

func (p stubProber) Check(context.Context) error { return p.err }

type stubEngine struct {
	mu      sync.Mutex
	calls   int
	content []byte
	err     error
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) Synthesize(_ context.Context, _ string, outPath string) error {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.err != nil {
		return e.err
	}
	if e.content == nil {
		return nil
	}
	return os.WriteFile(outPath, e.content, 0o600)
}

func TestSynthesizeSuccess(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{content: []byte("ID3 audio")}
	s := speech.NewSynthesizer(engine, stubProber{}, zap.NewNop())

	out := filepath.Join(t.TempDir(), "nested", "reply.mp3")
	res := s.Synthesize(context.Background(), "hello", out)

	require.True(t, res.OK(), "unexpected failure: %v", res.Err)
	assert.Equal(t, out, res.Value)
	assert.FileExists(t, out)
}

func TestSynthesizeUnreachableWritesNothing(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{content: []byte("audio")}
	s := speech.NewSynthesizer(engine, stubProber{err: speech.ErrUnreachable}, zap.NewNop())

	dir := t.TempDir()
	out := filepath.Join(dir, "reply.mp3")
	res := s.Synthesize(context.Background(), "hello", out)

	assert.False(t, res.OK())
	assert.Equal(t, ports.KindUnreachable, res.Kind)
	assert.ErrorIs(t, res.Err, speech.ErrUnreachable)
	assert.Zero(t, engine.calls)
	assert.NoFileExists(t, out)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSynthesizeWithRealProberOffline(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	engine := &stubEngine{content: []byte("audio")}
	s := speech.NewSynthesizer(engine, speech.NewHTTPProber(url, time.Second), zap.NewNop())

	out := filepath.Join(t.TempDir(), "reply.mp3")
	res := s.Synthesize(context.Background(), "hello", out)

	assert.Equal(t, ports.KindUnreachable, res.Kind)
	assert.NoFileExists(t, out)
}

func TestSynthesizeMissingOutput(t *testing.T) {
	t.Parallel()

	s := speech.NewSynthesizer(&stubEngine{}, stubProber{}, zap.NewNop())
	res := s.Synthesize(context.Background(), "hello", filepath.Join(t.TempDir(), "reply.mp3"))

	assert.Equal(t, ports.KindEmpty, res.Kind)
	assert.ErrorIs(t, res.Err, speech.ErrOutputMissing)
}

func TestSynthesizeEmptyOutput(t *testing.T) {
	t.Parallel()

	s := speech.NewSynthesizer(&stubEngine{content: []byte{}}, stubProber{}, zap.NewNop())
	res := s.Synthesize(context.Background(), "hello", filepath.Join(t.TempDir(), "reply.mp3"))

	assert.Equal(t, ports.KindEmpty, res.Kind)
	assert.ErrorIs(t, res.Err, speech.ErrOutputMissing)
}

func TestSynthesizeEngineError(t *testing.T) {
	t.Parallel()

	s := speech.NewSynthesizer(&stubEngine{err: errors.New("quota")}, stubProber{}, zap.NewNop())
	res := s.Synthesize(context.Background(), "hello", filepath.Join(t.TempDir(), "reply.mp3"))

	assert.Equal(t, ports.KindRemote, res.Kind)
	assert.EqualError(t, res.Err, "quota")
}

func TestHTTPProber(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	assert.NoError(t, speech.NewHTTPProber(server.URL, time.Second).Check(context.Background()))
	assert.ErrorIs(t, speech.NewHTTPProber("http://127.0.0.1:1", time.Second).Check(context.Background()), speech.ErrUnreachable)
}
