package roster

import "github.com/mauv0809/padel-roster/internal/apperrors"

var (
	ErrGroupNotFound       = apperrors.Policy("this group does not exist or has been deleted")
	ErrNotAMember          = apperrors.Policy("you are not an active member of this group")
	ErrPastDate            = apperrors.Policy("this date is in the past")
	ErrWindowClosed        = apperrors.Policy("registration for this date is not open yet")
	ErrWrongWeekday        = apperrors.Policy("there is no match on this day of the week")
	ErrAlreadyRegistered   = apperrors.Policy("already registered for this date")
	ErrNotRegistered       = apperrors.Policy("not registered for this date")
	ErrReplacementRequired = apperrors.Policy("it is too late to cancel, please find a replacement")
	ErrMemberNotFound      = apperrors.Policy("this member is not known yet, they have to join a group first")
	ErrAlreadyMember       = apperrors.Policy("already a member of this group")
)
