package audio_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Vovarama1992/ai_doctor/internal/audio"
	"github.com/Vovarama1992/ai_doctor/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"darwin", "afplay", []string{"reply.mp3"}},
		{"linux", "aplay", []string{"reply.mp3"}},
		{"windows", "powershell", []string{"-c", `(New-Object Media.SoundPlayer "reply.mp3").PlaySync();`}},
	}

	for _, tc := range tests {
		t.Run(tc.goos, func(t *testing.T) {
			t.Parallel()

			p, err := audio.PlayerFor(tc.goos, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.name, p.Name)
			assert.Equal(t, tc.args, p.Args("reply.mp3"))
		})
	}
}

func TestPlayerForUnsupported(t *testing.T) {
	t.Parallel()

	_, err := audio.PlayerFor("plan9", nil)
	assert.ErrorIs(t, err, audio.ErrUnsupportedPlatform)
}

func TestPlayRunsCommand(t *testing.T) {
	t.Parallel()

	var gotName string
	var gotArgs []string
	run := func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return nil, nil
	}

	p, err := audio.PlayerFor("linux", run)
	require.NoError(t, err)
	require.NoError(t, p.Play(context.Background(), "/tmp/reply.mp3"))
	assert.Equal(t, "aplay", gotName)
	assert.Equal(t, []string{"/tmp/reply.mp3"}, gotArgs)

	failing, err := audio.PlayerFor("darwin", func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("afplay: not found")
	})
	require.NoError(t, err)
	assert.Error(t, failing.Play(context.Background(), "x.mp3"))
}

func TestPlayOn(t *testing.T) {
	t.Parallel()

	ok := func(context.Context, string, ...string) ([]byte, error) { return nil, nil }

	res := audio.PlayOn(context.Background(), "darwin", ok, "reply.mp3")
	assert.True(t, res.OK())
	assert.Equal(t, "reply.mp3", res.Value)

	res = audio.PlayOn(context.Background(), "freebsd", ok, "reply.mp3")
	assert.Equal(t, ports.KindUnsupportedPlatform, res.Kind)
	assert.ErrorIs(t, res.Err, audio.ErrUnsupportedPlatform)
}
