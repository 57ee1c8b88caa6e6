package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/candor/pkg/ai"
)

func newOpenAIServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("model") != "whisper-1" {
			http.Error(w, "wrong model", http.StatusBadRequest)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		json.NewEncoder(w).Encode(map[string]any{"text": "heard " + string(data)})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func openAIConfig(baseURL, key string) *ai.Config {
	return &ai.Config{
		Provider:           ai.ProviderOpenAI,
		APIKey:             key,
		BaseURL:            baseURL,
		Model:              "gpt-4o-mini",
		TranscriptionModel: "whisper-1",
	}
}

// scriptedChat stands in for the agent chat and records the prompt it received.
type scriptedChat struct {
	prompt string
	reply  string
	err    error
}

func (c *scriptedChat) chat(ctx context.Context, prompt string) (string, error) {
	c.prompt = prompt
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func TestOpenAITranscribe(t *testing.T) {
	srv := newOpenAIServer(t)
	chat := &scriptedChat{}
	p := ai.NewOpenAI(openAIConfig(srv.URL, "test-key"), srv.Client(), chat.chat)

	got, err := p.Transcribe(context.Background(), ai.Audio{Data: []byte("audio"), Filename: "take.wav"})
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if got != "heard audio" {
		t.Errorf("got %q, want %q", got, "heard audio")
	}
	if chat.prompt != "" {
		t.Error("transcription went through the chat agent")
	}
}

func TestOpenAIGenerate(t *testing.T) {
	cfg := openAIConfig("http://unused", "test-key")

	t.Run("plain", func(t *testing.T) {
		chat := &scriptedChat{reply: "plain reply"}
		p := ai.NewOpenAI(cfg, nil, chat.chat)

		got, err := p.Generate(context.Background(), ai.Request{System: "sys", Prompt: "hi"})
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}
		if got != "plain reply" {
			t.Errorf("got %q", got)
		}
		if chat.prompt != "sys\n\nhi" {
			t.Errorf("prompt = %q", chat.prompt)
		}
	})

	t.Run("structured through gateway", func(t *testing.T) {
		chat := &scriptedChat{reply: "```json\n{\"overall_summary\":\"structured reply\"}\n```"}
		gw := ai.NewGateway(ai.NewOpenAI(cfg, nil, chat.chat), time.Second, discard())

		resp, err := gw.Complete(context.Background(), ai.Request{
			Name:   "holistic_summary",
			Prompt: "summarize",
			Schema: ai.Object(map[string]*ai.Schema{"overall_summary": ai.String("")}),
		})
		if err != nil {
			t.Fatalf("Complete error: %v", err)
		}
		if !strings.Contains(chat.prompt, `"overall_summary"`) {
			t.Errorf("schema missing from prompt: %q", chat.prompt)
		}

		var out struct {
			OverallSummary string `json:"overall_summary"`
		}
		if err := json.Unmarshal(resp.Structured, &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if out.OverallSummary != "structured reply" {
			t.Errorf("OverallSummary = %q", out.OverallSummary)
		}
	})

	t.Run("chat error normalized", func(t *testing.T) {
		chat := &scriptedChat{err: errors.New("http 401: bad key")}
		gw := ai.NewGateway(ai.NewOpenAI(cfg, nil, chat.chat), time.Second, discard())

		_, err := gw.Complete(context.Background(), ai.Request{Name: "generate_question", Prompt: "q"})
		if !errors.Is(err, ai.ErrRequestFailed) {
			t.Errorf("err = %v, want ErrRequestFailed", err)
		}
	})
}

func TestChatPrompt(t *testing.T) {
	tests := []struct {
		name string
		req  ai.Request
		want func(string) bool
	}{
		{"prompt only", ai.Request{Prompt: "hi"}, func(s string) bool { return s == "hi" }},
		{"system first", ai.Request{System: "sys", Prompt: "hi"}, func(s string) bool { return s == "sys\n\nhi" }},
		{
			"schema last",
			ai.Request{Prompt: "hi", Schema: ai.Object(map[string]*ai.Schema{"score": ai.IntegerRange(1, 10, "")})},
			func(s string) bool {
				return strings.HasPrefix(s, "hi\n\n") && strings.Contains(s, `"minimum": 1`) && strings.HasSuffix(s, "}")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ai.ChatPrompt(tt.req)
			if err != nil {
				t.Fatalf("ChatPrompt error: %v", err)
			}
			if !tt.want(got) {
				t.Errorf("ChatPrompt = %q", got)
			}
		})
	}
}

func TestAgentConfig(t *testing.T) {
	cfg := &ai.Config{
		APIKey:        "secret",
		BaseURL:       "https://example.openai.azure.com/openai",
		Model:         "gpt-4o-mini",
		AgentProvider: "azure",
		Deployment:    "interviews",
		APIVersion:    "2024-10-21",
	}

	ac := cfg.AgentConfig()
	if ac.Name != "candor" {
		t.Errorf("Name = %q", ac.Name)
	}
	if ac.Provider == nil || ac.Provider.Name != "azure" || ac.Provider.BaseURL != cfg.BaseURL {
		t.Fatalf("Provider = %+v", ac.Provider)
	}
	if ac.Provider.Options["token"] != "secret" || ac.Provider.Options["deployment"] != "interviews" {
		t.Errorf("Options = %v", ac.Provider.Options)
	}
	if _, ok := ac.Provider.Options["auth_type"]; ok {
		t.Error("empty auth_type should not be set")
	}
	if ac.Model == nil || ac.Model.Name != "gpt-4o-mini" {
		t.Errorf("Model = %+v", ac.Model)
	}

	defaults := (&ai.Config{Model: "llama3.1:8b"}).AgentConfig()
	if defaults.Provider == nil || defaults.Provider.Name != "ollama" {
		t.Errorf("default provider = %+v, want ollama", defaults.Provider)
	}
}
