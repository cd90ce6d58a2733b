// Command speak synthesizes text with the configured speech engine and can
// play the result on the local machine.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Vovarama1992/ai_doctor/internal/audio"
	"github.com/Vovarama1992/ai_doctor/internal/config"
	"github.com/Vovarama1992/ai_doctor/internal/speech"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

func main() {
	text := flag.String("text", "Hello, this is your AI doctor speaking.", "text to speak")
	out := flag.String("out", "", "output mp3 path (default: <output_dir>/speak.mp3)")
	play := flag.Bool("play", false, "play the file after writing it")
	flag.Parse()

	log, _ := zap.NewDevelopment()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", zap.Error(err))
	}

	path := *out
	if path == "" {
		path = filepath.Join(cfg.Paths.OutputDir, "speak.mp3")
	}

	engine, err := speech.NewEngine(cfg, &http.Client{Timeout: cfg.SpeechTimeout()})
	if err != nil {
		log.Fatal("speech engine", zap.Error(err))
	}
	synth := speech.NewSynthesizer(engine, speech.NewHTTPProber(cfg.Speech.ReachabilityURL, 5*time.Second), log)

	ctx := context.Background()
	res := synth.Synthesize(ctx, *text, path)
	if !res.OK() {
		log.Error("synthesis failed", zap.Stringer("kind", res.Kind), zap.Error(res.Err))
		os.Exit(1)
	}

	if info, err := os.Stat(res.Value); err == nil {
		log.Info("wrote audio", zap.String("path", res.Value), zap.String("size", humanize.Bytes(uint64(info.Size()))))
	}

	if !*play {
		return
	}

	if played := audio.PlayOn(ctx, runtime.GOOS, nil, res.Value); !played.OK() {
		log.Error("playback failed", zap.Stringer("kind", played.Kind), zap.Error(played.Err))
		os.Exit(1)
	}
}
