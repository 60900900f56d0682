// Package onboarding holds the multi-turn conversations that collect a new group's
// settings and a new member's profile. Each conversation is a fixed sequence of
// steps; an answer is validated before the conversation moves to the next step.
package onboarding

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/padel-roster/internal/period"
	"github.com/mauv0809/padel-roster/internal/roster"
)

// Conversation is a multi-turn dialogue with one user.
type Conversation interface {
	// Prompt is the question for the current step.
	Prompt() string
	// Receive validates the answer to the current step and advances on success.
	Receive(answer string) error
	Done() bool
}

// GroupStep is a step of the group setup conversation.
type GroupStep int

const (
	GroupStepID GroupStep = iota
	GroupStepName
	GroupStepWeekday
	GroupStepWeekRange
	GroupStepSpreadsheet
	GroupStepCourtLimit
	GroupStepDone
)

// GroupSetup collects the settings of a new group.
type GroupSetup struct {
	step     GroupStep
	draft    period.GroupDraft
	validate *validator.Validate
}

// JoinStep is a step of the join conversation.
type JoinStep int

const (
	JoinStepFirstName JoinStep = iota
	JoinStepLastName
	JoinStepPhone
	JoinStepEmail
	JoinStepDone
)

// Join collects the profile of a member joining their first group.
type Join struct {
	step     JoinStep
	groupID  string
	profile  roster.Profile
	validate *validator.Validate
}

// Sessions tracks open conversations by key, one per key.
// It is safe for concurrent use.
type Sessions struct {
	mu    sync.Mutex
	byKey map[string]Conversation
}
