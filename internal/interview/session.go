package interview

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Origin records how a slot's question text was produced.
type Origin string

const (
	OriginGenerated Origin = "generated"
	OriginRephrased Origin = "rephrased"
)

// Slot is a prepared question at a fixed 1-based position.
type Slot struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Origin    Origin `json:"origin"`
	Archetype string `json:"archetype"`
}

// TakeMode controls whether capture replaces or appends recordings.
type TakeMode string

const (
	TakeSingle    TakeMode = "single"
	TakeSegmented TakeMode = "segmented"
)

// Recording references captured audio held in blob storage.
type Recording struct {
	Key         string    `json:"key"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CapturedAt  time.Time `json:"captured_at"`
}

// Transcript is the speaker-labeled transcript. Frozen is set on confirmation.
type Transcript struct {
	Text   string `json:"text"`
	Edited bool   `json:"edited"`
	Frozen bool   `json:"frozen"`
}

// Answer is the extracted and scored response for one slot.
// Degraded marks answers where extraction or scoring failed and a
// placeholder was substituted.
type Answer struct {
	SlotIndex  int        `json:"slot_index"`
	Question   string     `json:"question"`
	Text       string     `json:"answer"`
	Evaluation Evaluation `json:"evaluation"`
	Degraded   bool       `json:"degraded"`
	Diagnostic string     `json:"diagnostic,omitempty"`
}

// Session is the interview aggregate and the unit of persistence.
type Session struct {
	ID            uuid.UUID   `json:"id"`
	State         State       `json:"state"`
	Candidate     *Candidate  `json:"candidate,omitempty"`
	SlotLimit     int         `json:"slot_limit"`
	TakeMode      TakeMode    `json:"take_mode"`
	Slots         []Slot      `json:"slots"`
	Notes         string      `json:"notes"`
	Recordings    []Recording `json:"recordings"`
	RawTranscript string      `json:"raw_transcript,omitempty"`
	Transcript    *Transcript `json:"transcript,omitempty"`
	Answers       []Answer    `json:"answers"`
	Summary       string      `json:"holistic_summary,omitempty"`
	Diagnostic    string      `json:"diagnostic,omitempty"`
	Version       int         `json:"version"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// NewSession creates an empty session in the setup state.
func NewSession(slotLimit int, mode TakeMode) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         uuid.New(),
		State:      StateSetup,
		SlotLimit:  slotLimit,
		TakeMode:   mode,
		Slots:      []Slot{},
		Recordings: []Recording{},
		Answers:    []Answer{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Questions returns the slot texts in interview order.
func (s *Session) Questions() []string {
	out := make([]string, len(s.Slots))
	for i, slot := range s.Slots {
		out[i] = slot.Text
	}
	return out
}

// PendingSlots returns the slots that have no answer yet, in slot order.
func (s *Session) PendingSlots() []Slot {
	var pending []Slot
	for _, slot := range s.Slots {
		if !s.answered(slot.Index) {
			pending = append(pending, slot)
		}
	}
	return pending
}

func (s *Session) answered(index int) bool {
	return slices.ContainsFunc(s.Answers, func(a Answer) bool {
		return a.SlotIndex == index
	})
}

// RecordAnswers adds answers for unanswered slots and keeps the list in slot order.
// Answers for slots that already have one are ignored.
func (s *Session) RecordAnswers(answers ...Answer) {
	for _, a := range answers {
		if s.answered(a.SlotIndex) {
			continue
		}
		s.Answers = append(s.Answers, a)
	}
	slices.SortFunc(s.Answers, func(a, b Answer) int {
		return a.SlotIndex - b.SlotIndex
	})
}

// Validate checks the aggregate invariants.
func (s *Session) Validate() error {
	if s.SlotLimit < 1 {
		return fmt.Errorf("%w: slot limit %d", ErrInvalidSession, s.SlotLimit)
	}
	if len(s.Slots) > s.SlotLimit {
		return fmt.Errorf("%w: %d slots exceed limit %d", ErrInvalidSession, len(s.Slots), s.SlotLimit)
	}
	for i, slot := range s.Slots {
		if slot.Index != i+1 {
			return fmt.Errorf("%w: slot %d has index %d", ErrInvalidSession, i+1, slot.Index)
		}
	}

	if s.State != StateSetup && s.Candidate == nil {
		return fmt.Errorf("%w: %s without candidate", ErrInvalidSession, s.State)
	}

	if s.Transcript != nil && len(s.Recordings) == 0 {
		return fmt.Errorf("%w: transcript without recording", ErrInvalidSession)
	}
	switch s.State {
	case StateTranscriptConfirmation, StateEvaluating, StateReport:
		if s.Transcript == nil {
			return fmt.Errorf("%w: %s without transcript", ErrInvalidSession, s.State)
		}
	}

	if len(s.Answers) > len(s.Slots) {
		return fmt.Errorf("%w: %d answers for %d slots", ErrInvalidSession, len(s.Answers), len(s.Slots))
	}
	seen := make(map[int]bool, len(s.Answers))
	for _, a := range s.Answers {
		if a.SlotIndex < 1 || a.SlotIndex > len(s.Slots) {
			return fmt.Errorf("%w: answer references slot %d", ErrInvalidSession, a.SlotIndex)
		}
		if seen[a.SlotIndex] {
			return fmt.Errorf("%w: duplicate answer for slot %d", ErrInvalidSession, a.SlotIndex)
		}
		seen[a.SlotIndex] = true
	}

	if s.Summary != "" && len(s.Answers) != len(s.Slots) {
		return fmt.Errorf("%w: summary before all answers", ErrInvalidSession)
	}
	if s.State == StateReport && len(s.Answers) != len(s.Slots) {
		return fmt.Errorf("%w: report with %d of %d answers", ErrInvalidSession, len(s.Answers), len(s.Slots))
	}

	return nil
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	if s.Candidate != nil {
		cand := *s.Candidate
		c.Candidate = &cand
	}
	if s.Transcript != nil {
		t := *s.Transcript
		c.Transcript = &t
	}
	c.Slots = slices.Clone(s.Slots)
	c.Recordings = slices.Clone(s.Recordings)
	c.Answers = slices.Clone(s.Answers)
	return &c
}
