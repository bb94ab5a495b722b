package services

import (
	"errors"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/repositories"
)

var (
	// Not found
	ErrNotFound             = errors.New("requested resource not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRoundNotFound        = errors.New("round not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrRoundNotInTournament = errors.New("round does not belong to this tournament")

	// Invalid state
	ErrAlreadyStarted      = errors.New("tournament has already started")
	ErrAlreadyEnded        = errors.New("tournament has already ended")
	ErrNotStarted          = errors.New("tournament did not start yet")
	ErrRoundOngoing        = errors.New("round is still ongoing")
	ErrAlreadyCurrentRound = errors.New("given round is already set as the current round")
	ErrMatchAlreadyEnded   = errors.New("this match ended, cannot report a new result")
	ErrRegistrationClosed  = errors.New("tournament registration is not open")
	ErrInvitationExpired   = errors.New("invitation has expired")

	// Unauthorized
	ErrUnauthorizedReporter = errors.New("this player is not allowed to add the result for this match")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Conflict
	ErrDuplicateReport          = errors.New("this player has already submitted a result")
	ErrAlreadyRegistered        = errors.New("player is already registered for this tournament")
	ErrRefereeAlreadyAssigned   = errors.New("referee is already assigned")
	ErrParticipantEmailConflict = errors.New("email address is already in use")

	// Validation
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidResult    = errors.New("invalid result")
	ErrNoParticipants   = errors.New("this tournament currently has no participants")
	ErrInvalidCapacity  = errors.New("max participants must be positive and not below the registered count")

	// Integrity
	ErrIntegrity       = errors.New("score ledger integrity failure")
	ErrMissingStore    = errors.New("services: Collaborators.Store is required")
	ErrNotInTournament = errors.New("participant is not part of the tournament")
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindInvalidState
	KindUnauthorized
	KindConflict
	KindValidation
	KindIntegrity
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindIntegrity:
		return "integrity"
	default:
		return "internal"
	}
}

// KindOf classifies err. Integrity is checked first because integrity errors
// also wrap the not-found cause.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrIntegrity):
		return KindIntegrity
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrTournamentNotFound),
		errors.Is(err, ErrRoundNotFound),
		errors.Is(err, ErrMatchNotFound),
		errors.Is(err, ErrParticipantNotFound),
		errors.Is(err, ErrInvitationNotFound),
		errors.Is(err, ErrRoundNotInTournament):
		return KindNotFound
	case errors.Is(err, ErrAlreadyStarted),
		errors.Is(err, ErrAlreadyEnded),
		errors.Is(err, ErrNotStarted),
		errors.Is(err, ErrRoundOngoing),
		errors.Is(err, ErrAlreadyCurrentRound),
		errors.Is(err, ErrMatchAlreadyEnded),
		errors.Is(err, ErrRegistrationClosed),
		errors.Is(err, ErrInvitationExpired),
		errors.Is(err, models.ErrIllegalTransition):
		return KindInvalidState
	case errors.Is(err, ErrUnauthorizedReporter),
		errors.Is(err, ErrForbiddenOperation):
		return KindUnauthorized
	case errors.Is(err, ErrDuplicateReport),
		errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrRefereeAlreadyAssigned),
		errors.Is(err, ErrParticipantEmailConflict):
		return KindConflict
	case errors.Is(err, ErrValidationFailed),
		errors.Is(err, ErrInvalidResult),
		errors.Is(err, ErrNoParticipants),
		errors.Is(err, ErrInvalidCapacity):
		return KindValidation
	default:
		return KindInternal
	}
}

// translateStoreError maps arena sentinels onto service errors.
func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrRoundNotFound):
		return ErrRoundNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return ErrParticipantNotFound
	case errors.Is(err, repositories.ErrStandingNotFound):
		return ErrNotInTournament
	case errors.Is(err, repositories.ErrInvitationNotFound):
		return ErrInvitationNotFound
	case errors.Is(err, repositories.ErrEmailConflict):
		return ErrParticipantEmailConflict
	default:
		return err
	}
}
