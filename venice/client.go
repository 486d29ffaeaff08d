// Package venice is the concrete Venice AI client backing the text, speech
// and image capabilities. The pipeline stages only see the capability
// interfaces they declare; nothing outside this package knows the vendor's
// API shapes.
package venice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"brainrotify/config"
	"brainrotify/media"
	"brainrotify/types"
)

const defaultBaseURL = "https://api.venice.ai/api/v1"

const scriptSystemPrompt = "You are an expert in creating viral social media scripts in text directly. " +
	"There is only one character and that is the narrator, so the script is exactly what the narrator will narrate. " +
	"Return the script directly WITHOUT any sound effects or pauses in parentheses."

// Client talks to the Venice AI API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger

	scriptModel  string
	maxTokens    int
	ttsModel     string
	ttsVoice     string
	imageModel   string
	imageWidth   int
	imageHeight  int
	imageSteps   int
}

// New builds a client from config; the API key comes from the VENICE_KEY
// environment variable.
func New(cfg *config.Config, log *zap.Logger) (*Client, error) {
	apiKey := os.Getenv("VENICE_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("VENICE_KEY not set")
	}
	return &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		log:         log,
		scriptModel: cfg.Script.Model,
		maxTokens:   cfg.Script.MaxTokens,
		ttsModel:    cfg.TTS.Model,
		ttsVoice:    cfg.TTS.Voice,
		imageModel:  cfg.Visuals.Model,
		imageWidth:  cfg.Visuals.Width,
		imageHeight: cfg.Visuals.Height,
		imageSteps:  cfg.Visuals.Steps,
	}, nil
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateScript asks the chat model for a narrator-only script about the
// given topic in the given style, sized for the target duration.
func (c *Client) GenerateScript(ctx context.Context, content, style string, durationSeconds int) (string, error) {
	userPrompt := fmt.Sprintf(
		"Create a viral social media script about %s in the style of %s brainrot videos. The script should be about %d seconds when read aloud.",
		content, style, durationSeconds,
	)

	body, err := json.Marshal(chatRequest{
		Model: c.scriptModel,
		Messages: []chatMessage{
			{Role: "system", Content: scriptSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	respBytes, err := c.post(ctx, "/chat/completions", "application/json", body)
	if err != nil {
		return "", err
	}

	var chat chatResponse
	if err := json.Unmarshal(respBytes, &chat); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if chat.Error != nil {
		return "", fmt.Errorf("venice error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("venice returned no choices")
	}
	script := cleanFences(chat.Choices[0].Message.Content)
	c.log.Debug("script generated",
		zap.String("model", c.scriptModel),
		zap.Int("chars", len(script)))
	return script, nil
}

type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// SynthesizeSpeech converts text to mp3 audio and measures its duration.
func (c *Client) SynthesizeSpeech(ctx context.Context, text string) ([]byte, float64, error) {
	body, err := json.Marshal(speechRequest{Model: c.ttsModel, Input: text, Voice: c.ttsVoice})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal speech request: %w", err)
	}

	audio, err := c.post(ctx, "/audio/speech", "application/json", body)
	if err != nil {
		return nil, 0, err
	}
	if len(audio) == 0 {
		return nil, 0, fmt.Errorf("venice returned empty audio")
	}

	dur, err := measureAudio(ctx, audio)
	if err != nil {
		return nil, 0, fmt.Errorf("measure speech duration: %w", err)
	}
	c.log.Debug("speech synthesized",
		zap.Int("bytes", len(audio)),
		zap.Float64("duration_seconds", dur))
	return audio, dur, nil
}

type imageRequest struct {
	Model         string `json:"model"`
	Prompt        string `json:"prompt"`
	Height        int    `json:"height"`
	Width         int    `json:"width"`
	Steps         int    `json:"steps"`
	ReturnBinary  bool   `json:"return_binary"`
	HideWatermark bool   `json:"hide_watermark"`
	Format        string `json:"format"`
}

type imageResponse struct {
	Images []string `json:"images"`
}

// GenerateImage produces one png for the prompt, styled for vertical video.
func (c *Client) GenerateImage(ctx context.Context, prompt, style string) ([]byte, error) {
	body, err := json.Marshal(imageRequest{
		Model:         c.imageModel,
		Prompt:        fmt.Sprintf("%s, in the style of %s, vertical short-form video frame", prompt, style),
		Height:        c.imageHeight,
		Width:         c.imageWidth,
		Steps:         c.imageSteps,
		ReturnBinary:  false,
		HideWatermark: true,
		Format:        "png",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal image request: %w", err)
	}

	respBytes, err := c.post(ctx, "/image/generate", "application/json", body)
	if err != nil {
		return nil, err
	}

	var img imageResponse
	if err := json.Unmarshal(respBytes, &img); err != nil {
		return nil, fmt.Errorf("parse image response: %w", err)
	}
	if len(img.Images) == 0 {
		return nil, fmt.Errorf("no image data in response")
	}
	data, err := base64.StdEncoding.DecodeString(img.Images[0])
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	c.log.Debug("image generated", zap.Int("bytes", len(data)))
	return data, nil
}

// post sends a request and classifies failures: network errors, rate limits
// and 5xx responses are transient; other HTTP errors are permanent.
func (c *Client) post(ctx context.Context, path, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.Transient(fmt.Errorf("venice %s: %w", path, err))
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.Transient(fmt.Errorf("venice %s read body: %w", path, err))
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, types.Transient(fmt.Errorf("venice %s: HTTP %d", path, resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("venice %s: HTTP %d: %s", path, resp.StatusCode, truncate(string(respBytes), 200))
	}
	return respBytes, nil
}

// measureAudio writes the audio to a scratch file and ffprobes it.
func measureAudio(ctx context.Context, audio []byte) (float64, error) {
	f, err := os.CreateTemp("", "venice-speech-*.mp3")
	if err != nil {
		return 0, err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(audio); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return media.Duration(ctx, f.Name())
}

// cleanFences strips markdown fences if the model wraps its reply.
func cleanFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
