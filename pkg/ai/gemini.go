package ai

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

const transcribeInstruction = `Transcribe the spoken content of this audio recording verbatim.
Return only the transcript text with no commentary, headings, or speaker labels.`

type gemini struct {
	client             *genai.Client
	model              string
	transcriptionModel string
	temperature        float64
}

// NewGemini creates a Provider backed by the Gemini API.
// Audio is sent inline with the transcription instruction.
func NewGemini(ctx context.Context, cfg *Config) (Provider, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	return &gemini{
		client:             client,
		model:              cfg.Model,
		transcriptionModel: cfg.TranscriptionModel,
		temperature:        cfg.Temperature,
	}, nil
}

func (g *gemini) Name() string { return "gemini:" + g.model }

func (g *gemini) Transcribe(ctx context.Context, audio Audio) (string, error) {
	mime := audio.ContentType
	if mime == "" {
		mime = "audio/webm"
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: transcribeInstruction},
			{InlineData: &genai.Blob{Data: audio.Data, MIMEType: mime}},
		},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.transcriptionModel, contents, g.config(nil))
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func (g *gemini) Generate(ctx context.Context, req Request) (string, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}

	cfg := g.config(req.Schema)
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func (g *gemini) config(schema *Schema) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if g.temperature > 0 {
		t := float32(g.temperature)
		cfg.Temperature = &t
	}
	if schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenaiSchema(schema)
	}
	return cfg
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("empty response: no candidates")
	}

	c := resp.Candidates[0]
	if c.Content == nil || len(c.Content.Parts) == 0 {
		return "", errors.New("empty response: no content parts")
	}

	var sb strings.Builder
	for _, p := range c.Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		Items:       toGenaiSchema(s.Items),
	}

	switch s.Type {
	case TypeObject:
		out.Type = genai.TypeObject
	case TypeString:
		out.Type = genai.TypeString
	case TypeInteger:
		out.Type = genai.TypeInteger
	case TypeNumber:
		out.Type = genai.TypeNumber
	case TypeBoolean:
		out.Type = genai.TypeBoolean
	case TypeArray:
		out.Type = genai.TypeArray
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = toGenaiSchema(v)
		}
	}

	return out
}
