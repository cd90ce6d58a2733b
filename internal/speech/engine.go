package speech

import (
	"fmt"
	"net/http"

	"github.com/Vovarama1992/ai_doctor/internal/config"
)

// NewEngine builds the engine named by speech.engine.
func NewEngine(cfg *config.Config, httpCli *http.Client) (Engine, error) {
	switch cfg.Speech.Engine {
	case config.EngineGTTS:
		return NewGTTSEngine(cfg.Speech.GTTSBaseURL, cfg.Speech.Language, cfg.Speech.Slow, httpCli), nil
	case config.EngineElevenLabs:
		return NewElevenLabsEngine(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.VoiceID, cfg.ElevenLabs.BaseURL, httpCli), nil
	}
	return nil, fmt.Errorf("unknown speech engine %q", cfg.Speech.Engine)
}
