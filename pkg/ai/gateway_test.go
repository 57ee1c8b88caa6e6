package ai_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/JaimeStill/candor/pkg/ai"
)

type stubProvider struct {
	text  string
	err   error
	delay time.Duration
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Transcribe(ctx context.Context, audio ai.Audio) (string, error) {
	return p.Generate(ctx, ai.Request{})
}

func (p *stubProvider) Generate(ctx context.Context, req ai.Request) (string, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return p.text, p.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rubricSchema() *ai.Schema {
	criterion := ai.Object(map[string]*ai.Schema{
		"score":         ai.IntegerRange(1, 10, ""),
		"justification": ai.String(""),
	})
	return ai.Object(map[string]*ai.Schema{
		"evaluation": ai.Object(map[string]*ai.Schema{
			"clarity":     criterion,
			"correctness": criterion,
			"depth":       criterion,
		}),
		"overall_summary": ai.String(""),
	})
}

const fullRubric = `{
  "evaluation": {
    "clarity": {"score": 8, "justification": "Clear."},
    "correctness": {"score": 9, "justification": "Accurate."},
    "depth": {"score": 6, "justification": "Shallow on trade-offs."}
  },
  "overall_summary": "Solid."
}`

func TestCompleteStructured(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantErr   bool
		malformed bool
	}{
		{name: "valid json", text: fullRubric},
		{name: "fenced json", text: "```json\n" + fullRubric + "\n```"},
		{
			name:      "missing depth",
			text:      `{"evaluation":{"clarity":{"score":8,"justification":"a"},"correctness":{"score":9,"justification":"b"}},"overall_summary":"c"}`,
			wantErr:   true,
			malformed: true,
		},
		{
			name:      "score out of range",
			text:      `{"evaluation":{"clarity":{"score":11,"justification":"a"},"correctness":{"score":9,"justification":"b"},"depth":{"score":5,"justification":"c"}},"overall_summary":"d"}`,
			wantErr:   true,
			malformed: true,
		},
		{
			name:      "fractional score",
			text:      `{"evaluation":{"clarity":{"score":7.5,"justification":"a"},"correctness":{"score":9,"justification":"b"},"depth":{"score":5,"justification":"c"}},"overall_summary":"d"}`,
			wantErr:   true,
			malformed: true,
		},
		{name: "not json", text: "I think the candidate did well.", wantErr: true, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := ai.NewGateway(&stubProvider{text: tt.text}, time.Second, discard())

			resp, err := gw.Complete(context.Background(), ai.Request{
				Name:   "score_answer",
				Prompt: "score",
				Schema: rubricSchema(),
			})

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ai.ErrRequestFailed) {
					t.Errorf("err = %v, want ErrRequestFailed", err)
				}
				if tt.malformed && !errors.Is(err, ai.ErrMalformedResponse) {
					t.Errorf("err = %v, want ErrMalformedResponse", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Complete error: %v", err)
			}
			if len(resp.Structured) == 0 {
				t.Fatal("expected structured payload")
			}
		})
	}
}

func TestCompleteNormalizesProviderErrors(t *testing.T) {
	gw := ai.NewGateway(&stubProvider{err: errors.New("connection reset")}, time.Second, discard())

	_, err := gw.Complete(context.Background(), ai.Request{Name: "generate_question"})
	if !errors.Is(err, ai.ErrRequestFailed) {
		t.Fatalf("err = %v, want ErrRequestFailed", err)
	}
	if errors.Is(err, ai.ErrMalformedResponse) {
		t.Error("transport failure should not be reported as malformed")
	}
}

func TestCompleteTimeout(t *testing.T) {
	gw := ai.NewGateway(&stubProvider{text: "late", delay: time.Second}, 20*time.Millisecond, discard())

	_, err := gw.Complete(context.Background(), ai.Request{Name: "slow"})
	if !errors.Is(err, ai.ErrRequestFailed) {
		t.Fatalf("err = %v, want ErrRequestFailed", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want wrapped DeadlineExceeded", err)
	}
}

func TestTranscribe(t *testing.T) {
	t.Run("trims text", func(t *testing.T) {
		gw := ai.NewGateway(&stubProvider{text: "  hello there \n"}, time.Second, discard())
		got, err := gw.Transcribe(context.Background(), ai.Audio{Data: []byte{1, 2, 3}})
		if err != nil {
			t.Fatalf("Transcribe error: %v", err)
		}
		if got != "hello there" {
			t.Errorf("got %q, want %q", got, "hello there")
		}
	})

	t.Run("empty audio", func(t *testing.T) {
		gw := ai.NewGateway(&stubProvider{text: "x"}, time.Second, discard())
		if _, err := gw.Transcribe(context.Background(), ai.Audio{}); !errors.Is(err, ai.ErrRequestFailed) {
			t.Errorf("err = %v, want ErrRequestFailed", err)
		}
	})
}

func TestDecode(t *testing.T) {
	type summary struct {
		OverallSummary string `json:"overall_summary"`
	}

	got, err := ai.Decode[summary](&ai.Response{Structured: []byte(`{"overall_summary":"ok"}`)})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got.OverallSummary != "ok" {
		t.Errorf("OverallSummary = %q, want ok", got.OverallSummary)
	}

	if _, err := ai.Decode[summary](&ai.Response{Text: "plain"}); !errors.Is(err, ai.ErrMalformedResponse) {
		t.Errorf("err = %v, want ErrMalformedResponse", err)
	}
}
