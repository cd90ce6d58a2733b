package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vovarama1992/ai_doctor/internal/ports"
)

var ErrUnsupportedPlatform = errors.New("no audio player for this platform")

// Player plays an audio file through the host's speakers.
type Player interface {
	Play(ctx context.Context, path string) error
}

// CommandPlayer shells out to a platform tool.
type CommandPlayer struct {
	Name string
	args func(path string) []string
	run  Runner
}

func (p *CommandPlayer) Args(path string) []string {
	return p.args(path)
}

func (p *CommandPlayer) Play(ctx context.Context, path string) error {
	if _, err := p.run(ctx, p.Name, p.args(path)...); err != nil {
		return fmt.Errorf("play %s: %w", path, err)
	}
	return nil
}

// PlayerFor picks the player for goos ("darwin", "windows", "linux").
func PlayerFor(goos string, run Runner) (*CommandPlayer, error) {
	if run == nil {
		run = ExecRunner
	}

	switch goos {
	case "darwin":
		return &CommandPlayer{Name: "afplay", run: run, args: func(p string) []string {
			return []string{p}
		}}, nil
	case "windows":
		return &CommandPlayer{Name: "powershell", run: run, args: func(p string) []string {
			quoted := strings.ReplaceAll(p, `"`, "`\"")
			return []string{"-c", fmt.Sprintf(`(New-Object Media.SoundPlayer "%s").PlaySync();`, quoted)}
		}}, nil
	case "linux":
		return &CommandPlayer{Name: "aplay", run: run, args: func(p string) []string {
			return []string{p}
		}}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
}

// PlayOn plays path with the goos player and reports the outcome as a Result.
func PlayOn(ctx context.Context, goos string, run Runner, path string) ports.Result[string] {
	p, err := PlayerFor(goos, run)
	if err != nil {
		return ports.Failure[string](ports.KindUnsupportedPlatform, err)
	}
	if err := p.Play(ctx, path); err != nil {
		return ports.Failure[string](ports.KindRemote, err)
	}
	return ports.Success(path)
}
