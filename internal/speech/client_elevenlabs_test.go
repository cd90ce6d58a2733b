package speech_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Vovarama1992/ai_doctor/internal/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevenLabsEngine(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "xi-key", r.Header.Get("xi-api-key"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, `Take "care", rest`, body["text"])

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	engine := speech.NewElevenLabsEngine("xi-key", "voice-1", server.URL, server.Client())
	out := filepath.Join(t.TempDir(), "reply.mp3")

	require.NoError(t, engine.Synthesize(context.Background(), `Take "care", rest`, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(data))
}

func TestElevenLabsEngineError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"quota_exceeded"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	out := filepath.Join(t.TempDir(), "reply.mp3")
	err := speech.NewElevenLabsEngine("k", "v", server.URL, nil).Synthesize(context.Background(), "hi", out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota_exceeded")
	assert.NoFileExists(t, out)
}
