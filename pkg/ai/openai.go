package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// openAI generates through a go-agents chat and transcribes through the
// Whisper audio endpoint, which the agent library does not cover.
type openAI struct {
	chat               ChatFunc
	client             *http.Client
	baseURL            string
	apiKey             string
	model              string
	transcriptionModel string
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type transcriptionResponse struct {
	Text  string    `json:"text"`
	Error *apiError `json:"error,omitempty"`
}

// NewOpenAI creates a Provider for OpenAI-compatible services. A nil chat
// uses AgentChat over cfg.AgentConfig(); a nil client uses http.DefaultClient
// for transcription.
func NewOpenAI(cfg *Config, client *http.Client, chat ChatFunc) Provider {
	if client == nil {
		client = http.DefaultClient
	}
	if chat == nil {
		chat = AgentChat(cfg.AgentConfig())
	}
	return &openAI{
		chat:               chat,
		client:             client,
		baseURL:            strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:             cfg.APIKey,
		model:              cfg.Model,
		transcriptionModel: cfg.TranscriptionModel,
	}
}

func (o *openAI) Name() string { return "openai:" + o.model }

func (o *openAI) Transcribe(ctx context.Context, audio Audio) (string, error) {
	filename := audio.Filename
	if filename == "" {
		filename = "recording.webm"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", o.transcriptionModel); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(audio.Data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out transcriptionResponse
	if err := o.do(req, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("api error: %s", out.Error.Message)
	}
	return out.Text, nil
}

func (o *openAI) Generate(ctx context.Context, r Request) (string, error) {
	prompt, err := ChatPrompt(r)
	if err != nil {
		return "", err
	}
	return o.chat(ctx, prompt)
}

func (o *openAI) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
