package onboarding

import (
	"strings"

	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/roster"
)

// SkipEmail is the answer that leaves the optional email empty.
const SkipEmail = "skip"

var joinPrompts = map[JoinStep]string{
	JoinStepFirstName: "What is your first name?",
	JoinStepLastName:  "What is your last name?",
	JoinStepPhone:     "What is your phone number? Use the international format, e.g. +4520123456.",
	JoinStepEmail:     "What is your email address? Answer `skip` to leave it out.",
	JoinStepDone:      "Thanks, you are all set.",
}

func (s JoinStep) String() string {
	switch s {
	case JoinStepFirstName:
		return "first-name"
	case JoinStepLastName:
		return "last-name"
	case JoinStepPhone:
		return "phone"
	case JoinStepEmail:
		return "email"
	case JoinStepDone:
		return "done"
	}
	return "unknown"
}

// NewJoin starts the join conversation of memberID for groupID.
func NewJoin(groupID, memberID, username string) *Join {
	return &Join{
		step:     JoinStepFirstName,
		groupID:  groupID,
		profile:  roster.Profile{MemberID: memberID, Username: username},
		validate: roster.NewValidator(),
	}
}

func (j *Join) Step() JoinStep { return j.step }

func (j *Join) Prompt() string { return joinPrompts[j.step] }

func (j *Join) Done() bool { return j.step == JoinStepDone }

// GroupID is the group being joined.
func (j *Join) GroupID() string { return j.groupID }

// Profile returns the profile collected so far.
func (j *Join) Profile() roster.Profile { return j.profile }

func (j *Join) Receive(answer string) error {
	answer = strings.TrimSpace(answer)
	switch j.step {
	case JoinStepFirstName:
		if err := j.validate.Var(answer, "required,alpha,min=3"); err != nil {
			return apperrors.Validation("the first name must have at least 3 letters and nothing else")
		}
		j.profile.FirstName = answer
	case JoinStepLastName:
		if err := j.validate.Var(answer, "required,alpha,min=3"); err != nil {
			return apperrors.Validation("the last name must have at least 3 letters and nothing else")
		}
		j.profile.LastName = answer
	case JoinStepPhone:
		phone := strings.ReplaceAll(answer, " ", "")
		if err := j.validate.Var(phone, "required,e164,"+roster.PhoneTag); err != nil {
			return apperrors.Validation("that is not a valid phone number, use the international format like +4520123456")
		}
		j.profile.Phone = phone
	case JoinStepEmail:
		if strings.EqualFold(answer, SkipEmail) {
			j.profile.Email = nil
			break
		}
		if err := j.validate.Var(answer, "required,email"); err != nil {
			return apperrors.Validation("that is not a valid email address, answer `skip` to leave it out")
		}
		j.profile.Email = &answer
	case JoinStepDone:
		return apperrors.Validation("you already answered all questions")
	}
	j.step++
	return nil
}
