package speech

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// Google Translate speech RPC, the same one gTTS speaks.
const (
	gttsRPCID        = "jQ1olc"
	gttsPath         = "/_/TranslateWebserverUi/data/batchexecute"
	gttsMaxChunkLen  = 100
	gttsUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/47.0.2526.106 Safari/537.36"
	gttsReferer      = "http://translate.google.com/"
	gttsFormEncoding = "application/x-www-form-urlencoded;charset=utf-8"
)

var (
	ErrEmptyText     = errors.New("no text to speak")
	ErrNoAudioStream = errors.New("no audio stream in response")
)

type GTTSEngine struct {
	baseURL  string
	language string
	slow     bool
	httpCli  *http.Client
}

func NewGTTSEngine(baseURL, language string, slow bool, httpCli *http.Client) *GTTSEngine {
	if httpCli == nil {
		httpCli = http.DefaultClient
	}
	return &GTTSEngine{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		slow:     slow,
		httpCli:  httpCli,
	}
}

func (e *GTTSEngine) Name() string { return "gtts" }

// Synthesize speaks text chunk by chunk and appends the MP3 frames to outPath.
// A partially written file is removed on failure.
func (e *GTTSEngine) Synthesize(ctx context.Context, text, outPath string) (err error) {
	chunks := SplitText(text, gttsMaxChunkLen)
	if len(chunks) == 0 {
		return ErrEmptyText
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer func() {
		closeErr := out.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close %s: %w", outPath, closeErr)
		}
		if err != nil {
			_ = os.Remove(outPath)
		}
	}()

	for i, chunk := range chunks {
		audio, err := e.fetchChunk(ctx, chunk)
		if err != nil {
			return fmt.Errorf("gtts chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if _, err := out.Write(audio); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
	}
	return nil
}

func (e *GTTSEngine) fetchChunk(ctx context.Context, text string) ([]byte, error) {
	body, err := e.rpcBody(text)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+gttsPath, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", gttsReferer)
	req.Header.Set("User-Agent", gttsUserAgent)
	req.Header.Set("Content-Type", gttsFormEncoding)

	resp, err := e.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gtts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gtts status %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	return parseGTTSResponse(resp.Body)
}

// rpcBody builds f.req=[[["jQ1olc","[text,lang,speed,\"null\"]",null,"generic"]]].
func (e *GTTSEngine) rpcBody(text string) (string, error) {
	var speed any
	if e.slow {
		speed = true
	}

	param, err := json.Marshal([]any{text, e.language, speed, "null"})
	if err != nil {
		return "", err
	}
	rpc, err := json.Marshal([][][]any{{{gttsRPCID, string(param), nil, "generic"}}})
	if err != nil {
		return "", err
	}
	return "f.req=" + url.QueryEscape(string(rpc)) + "&", nil
}

// parseGTTSResponse finds the jQ1olc envelope among the batchexecute lines
// and decodes its base64 audio.
func parseGTTSResponse(r io.Reader) ([]byte, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for sc.Scan() {
		line := sc.Bytes()
		if !strings.Contains(string(line), gttsRPCID) {
			continue
		}

		var envelopes [][]any
		if err := json.Unmarshal(line, &envelopes); err != nil {
			continue
		}
		for _, env := range envelopes {
			if len(env) < 3 || env[1] != gttsRPCID {
				continue
			}
			payload, ok := env[2].(string)
			if !ok {
				continue
			}
			var parts []string
			if err := json.Unmarshal([]byte(payload), &parts); err != nil || len(parts) == 0 {
				continue
			}
			audio, err := base64.StdEncoding.DecodeString(parts[0])
			if err != nil {
				return nil, fmt.Errorf("decode audio: %w", err)
			}
			return audio, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read gtts response: %w", err)
	}
	return nil, ErrNoAudioStream
}

// SplitText cuts text into chunks of at most limit runes, preferring sentence
// punctuation, then spaces, then a hard cut.
func SplitText(text string, limit int) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	var chunks []string
	for _, sentence := range splitSentences(text) {
		chunks = packWords(chunks, sentence, limit)
	}
	return chunks
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if strings.ContainsRune(".!?;:,", r) {
			end := i + utf8.RuneLen(r)
			if s := strings.TrimSpace(text[start:end]); s != "" {
				out = append(out, s)
			}
			start = end
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// packWords appends sentence to chunks, merging into the last chunk when it
// fits and splitting on spaces when the sentence is too long.
func packWords(chunks []string, sentence string, limit int) []string {
	if n := len(chunks); n > 0 && utf8.RuneCountInString(chunks[n-1])+1+utf8.RuneCountInString(sentence) <= limit {
		chunks[n-1] += " " + sentence
		return chunks
	}
	if utf8.RuneCountInString(sentence) <= limit {
		return append(chunks, sentence)
	}

	current := ""
	for _, word := range strings.FieldsFunc(sentence, unicode.IsSpace) {
		for utf8.RuneCountInString(word) > limit {
			if current != "" {
				chunks = append(chunks, current)
				current = ""
			}
			runes := []rune(word)
			chunks = append(chunks, string(runes[:limit]))
			word = string(runes[limit:])
		}
		switch {
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= limit:
			current += " " + word
		default:
			chunks = append(chunks, current)
			current = word
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
