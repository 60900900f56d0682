package period

import "github.com/mauv0809/padel-roster/internal/apperrors"

var (
	ErrAdminNotRegistered = apperrors.Policy("you need to sign up as an admin first, use /signup")
	ErrAdminExists        = apperrors.Policy("you are already signed up as an admin")
	ErrGroupLimit         = apperrors.Policy("you already manage the maximum number of groups")
	ErrGroupExists        = apperrors.Policy("a group with this id already exists")
	ErrNotGroupAdmin      = apperrors.Policy("only the admin of this group can do that")
	ErrWorksheetExists    = apperrors.Policy("a worksheet for this period already exists in the spreadsheet")
)
