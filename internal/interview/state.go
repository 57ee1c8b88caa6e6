package interview

import (
	"fmt"
	"slices"
)

// State is the workflow position of a session.
type State string

// Workflow states, in interview order.
const (
	StateSetup                  State = "setup"
	StateQuestionPrep           State = "question_prep"
	StateRecording              State = "recording"
	StateProcessing             State = "processing"
	StateTranscriptConfirmation State = "transcript_confirmation"
	StateEvaluating             State = "evaluating"
	StateReport                 State = "report"
)

var states = []State{
	StateSetup,
	StateQuestionPrep,
	StateRecording,
	StateProcessing,
	StateTranscriptConfirmation,
	StateEvaluating,
	StateReport,
}

// Busy reports whether the state runs an automatic block that rejects user actions.
func (s State) Busy() bool {
	return s == StateProcessing || s == StateEvaluating
}

// ParseState validates a state name.
func ParseState(v string) (State, error) {
	s := State(v)
	if !slices.Contains(states, s) {
		return "", fmt.Errorf("%w: unknown state %q", ErrValidation, v)
	}
	return s, nil
}

// Action is an event applied to a session.
type Action string

// User actions.
const (
	ActionStart             Action = "start"
	ActionRequestQuestion   Action = "request_question"
	ActionRephraseQuestion  Action = "rephrase_question"
	ActionProceed           Action = "proceed"
	ActionCapture           Action = "capture"
	ActionConfirmRecording  Action = "confirm_recording"
	ActionEditTranscript    Action = "edit_transcript"
	ActionConfirmTranscript Action = "confirm_transcript"
	ActionUpdateNotes       Action = "update_notes"
	ActionDiscard           Action = "discard"
)

// Automatic actions, issued only by the machine while advancing.
const (
	ActionTranscribed      Action = "transcribed"
	ActionProcessingFailed Action = "processing_failed"
	ActionAnswered         Action = "answered"
	ActionEvaluated        Action = "evaluated"
	ActionAbort            Action = "abort"
)

type edge struct {
	from State
	to   State
}

var edges = map[Action]edge{
	ActionStart:             {StateSetup, StateQuestionPrep},
	ActionRequestQuestion:   {StateQuestionPrep, StateQuestionPrep},
	ActionRephraseQuestion:  {StateQuestionPrep, StateQuestionPrep},
	ActionProceed:           {StateQuestionPrep, StateRecording},
	ActionCapture:           {StateRecording, StateRecording},
	ActionConfirmRecording:  {StateRecording, StateProcessing},
	ActionTranscribed:       {StateProcessing, StateTranscriptConfirmation},
	ActionProcessingFailed:  {StateProcessing, StateRecording},
	ActionEditTranscript:    {StateTranscriptConfirmation, StateTranscriptConfirmation},
	ActionConfirmTranscript: {StateTranscriptConfirmation, StateEvaluating},
	ActionAnswered:          {StateEvaluating, StateEvaluating},
	ActionEvaluated:         {StateEvaluating, StateReport},
}

func (a Action) automatic() bool {
	switch a {
	case ActionTranscribed, ActionProcessingFailed, ActionAnswered, ActionEvaluated, ActionAbort:
		return true
	}
	return false
}

// Transition returns the state reached by applying action in state from.
// User actions in a busy state fail with ErrBusy; any other illegal
// combination fails with ErrInvalidTransition.
func Transition(from State, action Action) (State, error) {
	if from.Busy() && !action.automatic() {
		return from, fmt.Errorf("%w: %s rejected while %s", ErrBusy, action, from)
	}

	switch action {
	case ActionAbort:
		return StateSetup, nil
	case ActionUpdateNotes:
		return from, nil
	case ActionDiscard:
		return StateSetup, nil
	}

	e, ok := edges[action]
	if !ok || e.from != from {
		return from, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, from)
	}
	return e.to, nil
}
