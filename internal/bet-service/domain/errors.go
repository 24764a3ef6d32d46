package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifica um erro de domínio para o mapeamento em status HTTP
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error é o erro tipado devolvido pelas regras de negócio e pelo repositório.
// Msg é segura para expor ao cliente.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is compara por Kind e Msg, permitindo errors.Is contra os sentinelas abaixo
// mesmo quando o erro foi recriado com Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == e.Msg
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// KindOf devolve o Kind do primeiro *Error da cadeia; erros sem tipo são internos.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var (
	ErrBetNotFound         = NotFound("bet not found")
	ErrUserNotFound        = NotFound("user not found")
	ErrParticipantNotFound = NotFound("user has not participated in this bet")

	ErrBetNotActive         = Conflict("bet is no longer active")
	ErrBetExpired           = Conflict("bet has expired")
	ErrBetNotExpired        = Conflict("bet is not yet expired")
	ErrBetAlreadyResolved   = Conflict("bet already resolved")
	ErrInvalidBetState      = Conflict("invalid bet state")
	ErrAlreadyParticipating = Conflict("you have already placed a bet on this event")
	ErrHasParticipants      = Conflict("bet already has participants")
	ErrAlreadyClaimed       = Conflict("winnings already claimed")
	ErrBetNotResolved       = Conflict("bet is not resolved")

	ErrNotWinner    = Forbidden("position did not win this bet")
	ErrNotCreator   = Forbidden("only the creator of the bet can do this")
	ErrNotResolver  = Forbidden("wallet is not allowed to resolve this bet")
	ErrNotInvolved  = Forbidden("wallet is not involved in this bet")
	ErrMissingActor = Unauthorized("wallet address is required")
)
