package interview

import (
	"fmt"
	"math"
	"strings"
)

// RoleLevel is the coarse seniority band derived from compensation.
type RoleLevel string

const (
	RoleMid    RoleLevel = "Mid"
	RoleSenior RoleLevel = "Senior"
)

// Candidate is the interviewee profile. It is fixed once the interview starts.
type Candidate struct {
	Name         string    `json:"name"`
	Compensation float64   `json:"compensation"`
	Role         RoleLevel `json:"role_level"`
}

// StartCommand carries the setup form values.
type StartCommand struct {
	Name         string  `json:"name"`
	Compensation float64 `json:"compensation"`
}

// ClassifyRole returns RoleSenior only when compensation strictly exceeds threshold.
func ClassifyRole(compensation, threshold float64) RoleLevel {
	if compensation > threshold {
		return RoleSenior
	}
	return RoleMid
}

// NewCandidate validates the setup values and derives the role level.
func NewCandidate(cmd StartCommand, cfg *Config) (*Candidate, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: candidate name required", ErrValidation)
	}
	if math.IsNaN(cmd.Compensation) || math.IsInf(cmd.Compensation, 0) {
		return nil, fmt.Errorf("%w: compensation must be a finite number", ErrValidation)
	}
	if cmd.Compensation < cfg.MinCompensation {
		return nil, fmt.Errorf(
			"%w: compensation %v below minimum %v",
			ErrValidation, cmd.Compensation, cfg.MinCompensation,
		)
	}

	return &Candidate{
		Name:         name,
		Compensation: cmd.Compensation,
		Role:         ClassifyRole(cmd.Compensation, cfg.SeniorThreshold),
	}, nil
}
