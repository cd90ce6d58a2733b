// Package config loads the service configuration: .env, an optional TOML file
// and environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
	"golang.org/x/text/language"
)

const (
	envConfigPath      = "CONFIG_PATH"
	envPort            = "PORT"
	envGroqAPIKey      = "GROQ_API_KEY"
	envElevenLabsKey   = "ELEVENLABS_API_KEY"
	envTelegramToken   = "TELEGRAM_BOT_TOKEN"
	envOutputDir       = "OUTPUT_DIR"
	defaultConfigPath  = "config.toml"
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
)

const (
	EngineGTTS       = "gtts"
	EngineElevenLabs = "elevenlabs"
)

var (
	// ErrMissingAPIKey is fatal at startup.
	ErrMissingAPIKey = errors.New("GROQ_API_KEY is not set")
	ErrInvalidConfig = errors.New("invalid config")
)

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	RateLimit      int      `toml:"rate_limit_per_minute"`
	MaxUploadMB    int64    `toml:"max_upload_mb"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type GroqConfig struct {
	APIKey             string `toml:"-"`
	BaseURL            string `toml:"base_url"`
	TranscriptionModel string `toml:"transcription_model"`
	VisionModel        string `toml:"vision_model"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
}

type SpeechConfig struct {
	Engine          string `toml:"engine"`
	Language        string `toml:"language"`
	Slow            bool   `toml:"slow"`
	ReachabilityURL string `toml:"reachability_url"`
	GTTSBaseURL     string `toml:"gtts_base_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

type ElevenLabsConfig struct {
	APIKey  string `toml:"-"`
	BaseURL string `toml:"base_url"`
	VoiceID string `toml:"voice_id"`
}

type AudioConfig struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
}

type PathsConfig struct {
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
}

type PersonaConfig struct {
	Prompt              string `toml:"prompt"`
	NoImageReply        string `toml:"no_image_reply"`
	NoAnalysisReply     string `toml:"no_analysis_reply"`
	TranscriptionFailed string `toml:"transcription_failed"`
}

type TelegramConfig struct {
	Token string `toml:"-"`
}

type WorkersConfig struct {
	Size int `toml:"size"`
}

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Groq       GroqConfig       `toml:"groq"`
	Speech     SpeechConfig     `toml:"speech"`
	ElevenLabs ElevenLabsConfig `toml:"elevenlabs"`
	Audio      AudioConfig      `toml:"audio"`
	Paths      PathsConfig      `toml:"paths"`
	Persona    PersonaConfig    `toml:"persona"`
	Telegram   TelegramConfig   `toml:"telegram"`
	Workers    WorkersConfig    `toml:"workers"`
}

// Default returns a config with every non-secret value filled in.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":7860",
			RateLimit:      30,
			MaxUploadMB:    25,
			AllowedOrigins: []string{"*"},
		},
		Groq: GroqConfig{
			BaseURL:            defaultGroqBaseURL,
			TranscriptionModel: "whisper-large-v3",
			VisionModel:        "llama-3.2-11b-vision-preview",
			TimeoutSeconds:     120,
		},
		Speech: SpeechConfig{
			Engine:          EngineGTTS,
			Language:        "en",
			ReachabilityURL: "https://www.google.com",
			GTTSBaseURL:     "https://translate.google.com",
			TimeoutSeconds:  60,
		},
		ElevenLabs: ElevenLabsConfig{
			BaseURL: "https://api.elevenlabs.io",
			VoiceID: "EXAVITQu4vr4xnSDxMaL",
		},
		Audio: AudioConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		Paths: PathsConfig{
			OutputDir: "generated",
			WorkDir:   os.TempDir(),
		},
		Persona: PersonaConfig{
			Prompt:              DefaultPersonaPrompt,
			NoImageReply:        "No image provided for me to analyze",
			NoAnalysisReply:     "I could not look at your image right now, please try again in a moment.",
			TranscriptionFailed: "Error in Speech to Text",
		},
		Workers: WorkersConfig{Size: 8},
	}
}

// DefaultPersonaPrompt is prepended to the patient's transcript.
const DefaultPersonaPrompt = `You have to act as a professional doctor, i know you are not but this is for learning purpose. 
What's in this image?. Do you find anything wrong with it medically? 
If you make a differential, suggest some remedies for them. Donot add any numbers or special characters in 
your response. Your response should be in one long paragraph. Also always answer as if you are answering to a real person.
Donot say 'In the image I see' but say 'With what I see, I think you have ....'
Dont respond as an AI model in markdown, your answer should mimic that of an actual doctor not an AI bot, 
Keep your answer concise (max 2 sentences). No preamble, start your answer right away please.`

// Load reads .env (if present), the TOML file named by CONFIG_PATH (or
// config.toml, optional) and environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv(envConfigPath)
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	cfg := Default()
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Parse(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Parse decodes TOML on top of the values already in cfg.
func Parse(data []byte, cfg *Config) error {
	return toml.Unmarshal(data, cfg)
}

func (c *Config) applyEnv() {
	if port := os.Getenv(envPort); port != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if dir := os.Getenv(envOutputDir); dir != "" {
		c.Paths.OutputDir = dir
	}
	c.Groq.APIKey = strings.TrimSpace(os.Getenv(envGroqAPIKey))
	c.ElevenLabs.APIKey = strings.TrimSpace(os.Getenv(envElevenLabsKey))
	c.Telegram.Token = strings.TrimSpace(os.Getenv(envTelegramToken))
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs error

	if _, err := language.Parse(c.Speech.Language); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("speech.language %q: %w", c.Speech.Language, err))
	}

	switch c.Speech.Engine {
	case EngineGTTS:
	case EngineElevenLabs:
		if c.ElevenLabs.VoiceID == "" {
			errs = multierr.Append(errs, errors.New("elevenlabs.voice_id is empty"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("speech.engine %q is not supported", c.Speech.Engine))
	}

	if c.Groq.TranscriptionModel == "" {
		errs = multierr.Append(errs, errors.New("groq.transcription_model is empty"))
	}
	if c.Groq.VisionModel == "" {
		errs = multierr.Append(errs, errors.New("groq.vision_model is empty"))
	}
	if c.Workers.Size <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("workers.size must be positive, got %d", c.Workers.Size))
	}
	if c.Paths.OutputDir == "" {
		errs = multierr.Append(errs, errors.New("paths.output_dir is empty"))
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
	}
	return nil
}

// RequireAPIKey fails when the Groq key is missing.
func (c *Config) RequireAPIKey() error {
	if c.Groq.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Speech.Engine == EngineElevenLabs && c.ElevenLabs.APIKey == "" {
		return fmt.Errorf("%s is required for the elevenlabs engine", envElevenLabsKey)
	}
	return nil
}

// EnsureDirectories creates the output and work directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.WorkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) GroqTimeout() time.Duration {
	return time.Duration(c.Groq.TimeoutSeconds) * time.Second
}

func (c *Config) SpeechTimeout() time.Duration {
	return time.Duration(c.Speech.TimeoutSeconds) * time.Second
}
