package onboarding

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/calendar"
	"github.com/mauv0809/padel-roster/internal/period"
	"github.com/mauv0809/padel-roster/internal/sheets"
)

var groupPrompts = map[GroupStep]string{
	GroupStepID:          "What is the id of the group chat the matches are organised in?",
	GroupStepName:        "What should the group be called?",
	GroupStepWeekday:     "On which day of the week are the matches played? (e.g. Thursday)",
	GroupStepWeekRange:   "How many weeks ahead may members register? (1-12)",
	GroupStepSpreadsheet: "Paste the link of the Google spreadsheet the rosters should be written to. The bot needs edit access.",
	GroupStepCourtLimit:  "How many courts are booked per match day?",
	GroupStepDone:        "The group is set up.",
}

func (s GroupStep) String() string {
	switch s {
	case GroupStepID:
		return "group-id"
	case GroupStepName:
		return "name"
	case GroupStepWeekday:
		return "weekday"
	case GroupStepWeekRange:
		return "week-range"
	case GroupStepSpreadsheet:
		return "spreadsheet"
	case GroupStepCourtLimit:
		return "court-limit"
	case GroupStepDone:
		return "done"
	}
	return "unknown"
}

// NewGroupSetup starts the group setup conversation for adminID.
func NewGroupSetup(adminID string) *GroupSetup {
	return &GroupSetup{
		step:     GroupStepID,
		draft:    period.GroupDraft{AdminID: adminID},
		validate: validator.New(),
	}
}

func (g *GroupSetup) Step() GroupStep { return g.step }

func (g *GroupSetup) Prompt() string { return groupPrompts[g.step] }

func (g *GroupSetup) Done() bool { return g.step == GroupStepDone }

// Draft returns the settings collected so far.
func (g *GroupSetup) Draft() period.GroupDraft { return g.draft }

func (g *GroupSetup) Receive(answer string) error {
	answer = strings.TrimSpace(answer)
	switch g.step {
	case GroupStepID:
		if err := g.validate.Var(answer, "required,max=64,excludesall= "); err != nil {
			return apperrors.Validation("the group id must be a single word")
		}
		g.draft.ID = answer
	case GroupStepName:
		if err := g.validate.Var(answer, "required,max=100"); err != nil {
			return apperrors.Validation("the name must be between 1 and 100 characters")
		}
		g.draft.Name = answer
	case GroupStepWeekday:
		weekday, err := calendar.ParseWeekday(answer)
		if err != nil {
			return err
		}
		g.draft.GameWeekday = weekday
	case GroupStepWeekRange:
		weeks, err := g.number(answer, "min=1,max=12")
		if err != nil {
			return apperrors.Validation("the week range must be a number from 1 to 12")
		}
		g.draft.WeekRange = weeks
	case GroupStepSpreadsheet:
		if _, err := sheets.SpreadsheetID(answer); err != nil {
			return err
		}
		g.draft.Spreadsheet = answer
	case GroupStepCourtLimit:
		courts, err := g.number(answer, "min=1,max=50")
		if err != nil {
			return apperrors.Validation("the number of courts must be a number from 1 to 50")
		}
		g.draft.CourtLimit = courts
	case GroupStepDone:
		return apperrors.Validation("the group setup is already complete")
	}
	g.step++
	return nil
}

func (g *GroupSetup) number(answer, tag string) (int, error) {
	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, err
	}
	if err := g.validate.Var(n, tag); err != nil {
		return 0, err
	}
	return n, nil
}
