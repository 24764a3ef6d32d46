package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
)

const participantSelect = `
	SELECT ub.id, ub.user_id, ub.bet_id, u.wallet_address, ub.position, ub.amount,
	       ub.claimed, ub.on_chain_tx_id, ub.created_at
	FROM user_bets ub
	JOIN users u ON u.id = ub.user_id`

func scanParticipant(row rowScanner, extra ...any) (*domain.Participant, error) {
	var (
		p        domain.Participant
		position string
		txID     sql.NullString
	)
	dest := append([]any{&p.ID, &p.UserID, &p.BetID, &p.WalletAddress, &position, &p.Amount,
		&p.Claimed, &txID, &p.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.Position = domain.Position(position)
	p.OnChainTxID = nullString(txID)
	return &p, nil
}

func (q *queries) queryParticipants(ctx context.Context, query string, args ...any) ([]domain.Participant, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list participants")
	}
	defer rows.Close()

	out := []domain.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan participant")
		}
		out = append(out, *p)
	}
	return out, errors.Wrap(rows.Err(), "list participants")
}

// InsertParticipant registra a participação. Uma segunda participação do mesmo
// usuário na mesma aposta vira domain.ErrAlreadyParticipating.
func (q *queries) InsertParticipant(ctx context.Context, p *domain.Participant) error {
	p.ID = uuid.NewString()
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO user_bets (id, user_id, bet_id, position, amount, on_chain_tx_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		p.ID, p.UserID, p.BetID, string(p.Position), p.Amount, p.OnChainTxID,
	).Scan(&p.CreatedAt)
	if isUniqueViolation(err, "user_bets_user_bet_key") {
		return domain.ErrAlreadyParticipating
	}
	return errors.Wrap(err, "insert participant")
}

// GetParticipant busca a participação com lock na linha
func (q *queries) GetParticipant(ctx context.Context, betID, userID string) (*domain.Participant, error) {
	if !validID(betID) {
		return nil, domain.ErrBetNotFound
	}
	p, err := scanParticipant(q.db.QueryRowContext(ctx,
		participantSelect+` WHERE ub.bet_id=$1 AND ub.user_id=$2 FOR UPDATE OF ub`, betID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrParticipantNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get participant")
	}
	return p, nil
}

func (q *queries) ListParticipants(ctx context.Context, betID string) ([]domain.Participant, error) {
	return q.queryParticipants(ctx, participantSelect+` WHERE ub.bet_id=$1 ORDER BY ub.created_at`, betID)
}

func (q *queries) ListParticipantUserIDs(ctx context.Context, betID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT user_id FROM user_bets WHERE bet_id=$1`, betID)
	if err != nil {
		return nil, errors.Wrap(err, "list participant ids")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan participant id")
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rows.Err(), "list participant ids")
}

// ListParticipations devolve as participações do usuário desde since (zero = todas),
// mais recentes primeiro, junto com o estado da aposta. limit <= 0 não limita.
func (q *queries) ListParticipations(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Participation, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := q.db.QueryContext(ctx, `
		SELECT ub.id, ub.user_id, ub.bet_id, u.wallet_address, ub.position, ub.amount,
		       ub.claimed, ub.on_chain_tx_id, ub.created_at,
		       b.title, b.description, b.category, b.status, b.outcome, b.yes_pool, b.no_pool,
		       b.end_time, b.resolved_at, b.updated_at
		FROM user_bets ub
		JOIN users u ON u.id = ub.user_id
		JOIN bets b ON b.id = ub.bet_id
		WHERE ub.user_id=$1 AND ub.created_at >= $2
		ORDER BY ub.created_at DESC
		LIMIT $3`, userID, since, lim)
	if err != nil {
		return nil, errors.Wrap(err, "list participations")
	}
	defer rows.Close()

	var out []domain.Participation
	for rows.Next() {
		var (
			pp               domain.Participation
			category, status string
			outcome          sql.NullString
			resolvedAt       sql.NullTime
		)
		p, err := scanParticipant(rows, &pp.BetTitle, &pp.BetDescription, &category, &status, &outcome,
			&pp.YesPool, &pp.NoPool, &pp.BetEndTime, &resolvedAt, &pp.BetUpdated)
		if err != nil {
			return nil, errors.Wrap(err, "scan participation")
		}
		pp.Participant = *p
		pp.BetCategory = domain.Category(category)
		pp.BetStatus = domain.BetStatus(status)
		if outcome.Valid {
			o := domain.Position(outcome.String)
			pp.Outcome = &o
		}
		pp.ResolvedAt = nullTime(resolvedAt)
		out = append(out, pp)
	}
	return out, errors.Wrap(rows.Err(), "list participations")
}

// MarkClaimed marca a participação como sacada uma única vez
func (q *queries) MarkClaimed(ctx context.Context, participantID string, onChainTxID *string) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE user_bets SET claimed=true, on_chain_tx_id=COALESCE($2, on_chain_tx_id), updated_at=now()
		WHERE id=$1 AND claimed=false`, participantID, onChainTxID)
	if err != nil {
		return errors.Wrap(err, "mark claimed")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlreadyClaimed
	}
	return nil
}
