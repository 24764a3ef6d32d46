package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
)

// BetFilter: campos vazios não filtram. Page começa em 1.
type BetFilter struct {
	Category string
	Status   string
	Page     int
	Limit    int
}

const betSelect = `
	SELECT b.id, b.title, b.description, b.category, b.status, b.outcome,
	       b.yes_pool, b.no_pool, b.minimum_bet, b.maximum_bet,
	       b.start_time, b.end_time, b.creator_id, u.wallet_address, u.display_name,
	       (SELECT COUNT(*) FROM user_bets ub WHERE ub.bet_id = b.id),
	       b.created_at, b.updated_at, b.resolved_at,
	       b.resolution_tx_id, b.onchain_bet_address, b.onchain_escrow_address
	FROM bets b
	JOIN users u ON u.id = b.creator_id`

func scanBet(row rowScanner) (*domain.Bet, error) {
	var (
		b                         domain.Bet
		outcome, crName           sql.NullString
		resTx, betAddr, escrowAdr sql.NullString
		resolvedAt                sql.NullTime
		category, status          string
	)
	err := row.Scan(&b.ID, &b.Title, &b.Description, &category, &status, &outcome,
		&b.YesPool, &b.NoPool, &b.MinimumBet, &b.MaximumBet,
		&b.StartTime, &b.EndTime, &b.CreatorID, &b.CreatorAddress, &crName,
		&b.ParticipantCount, &b.CreatedAt, &b.UpdatedAt, &resolvedAt,
		&resTx, &betAddr, &escrowAdr)
	if err != nil {
		return nil, err
	}
	b.Category = domain.Category(category)
	b.Status = domain.BetStatus(status)
	if outcome.Valid {
		o := domain.Position(outcome.String)
		b.Outcome = &o
	}
	b.CreatorName = nullString(crName)
	b.ResolvedAt = nullTime(resolvedAt)
	b.ResolutionTxID = nullString(resTx)
	b.OnChainBetAddress = nullString(betAddr)
	b.OnChainEscrowAddress = nullString(escrowAdr)
	return &b, nil
}

// CreateBet insere a aposta como active, preenchendo ID e timestamps
func (q *queries) CreateBet(ctx context.Context, b *domain.Bet) error {
	b.ID = uuid.NewString()
	b.Status = domain.StatusActive
	b.YesPool, b.NoPool = decimal.Zero, decimal.Zero
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO bets (id, title, description, category, status, minimum_bet, maximum_bet, start_time, end_time, creator_id)
		VALUES ($1,$2,$3,$4,'active',$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		b.ID, b.Title, b.Description, string(b.Category), b.MinimumBet, b.MaximumBet, b.StartTime, b.EndTime, b.CreatorID,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	return errors.Wrap(err, "insert bet")
}

func (q *queries) getBet(ctx context.Context, id string, lock bool) (*domain.Bet, error) {
	if !validID(id) {
		return nil, domain.ErrBetNotFound
	}
	query := betSelect + ` WHERE b.id=$1`
	if lock {
		query += ` FOR UPDATE OF b`
	}
	b, err := scanBet(q.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBetNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get bet")
	}
	return b, nil
}

// GetBet devolve a aposta com a lista de participantes
func (q *queries) GetBet(ctx context.Context, id string) (*domain.Bet, error) {
	b, err := q.getBet(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if b.Participants, err = q.ListParticipants(ctx, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

// LockBet lê a aposta com lock pessimista na linha (SELECT ... FOR UPDATE).
// Só faz sentido dentro de InTx.
func (q *queries) LockBet(ctx context.Context, id string) (*domain.Bet, error) {
	return q.getBet(ctx, id, true)
}

// ListBets pagina as apostas mais recentes primeiro e devolve o total filtrado
func (q *queries) ListBets(ctx context.Context, f BetFilter) ([]domain.Bet, int, error) {
	where := ` WHERE ($1 = '' OR b.category = $1) AND ($2 = '' OR b.status = $2)`

	var total int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bets b`+where, f.Category, f.Status).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count bets")
	}

	rows, err := q.db.QueryContext(ctx, betSelect+where+` ORDER BY b.created_at DESC, b.id LIMIT $3 OFFSET $4`,
		f.Category, f.Status, f.Limit, (f.Page-1)*f.Limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list bets")
	}
	defer rows.Close()

	var (
		bets []domain.Bet
		ids  []string
	)
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "scan bet")
		}
		b.Participants = []domain.Participant{}
		bets = append(bets, *b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "list bets")
	}
	if len(ids) == 0 {
		return []domain.Bet{}, total, nil
	}

	// participantes de todas as apostas da página numa só ida ao banco
	parts, err := q.queryParticipants(ctx, participantSelect+` WHERE ub.bet_id = ANY($1) ORDER BY ub.created_at`, pq.Array(ids))
	if err != nil {
		return nil, 0, err
	}
	idx := make(map[string]int, len(bets))
	for i := range bets {
		idx[bets[i].ID] = i
	}
	for _, p := range parts {
		i := idx[p.BetID]
		bets[i].Participants = append(bets[i].Participants, p)
	}
	return bets, total, nil
}

func (q *queries) ListBetsCreatedBy(ctx context.Context, userID string, limit int) ([]domain.Bet, error) {
	rows, err := q.db.QueryContext(ctx, betSelect+` WHERE b.creator_id=$1 ORDER BY b.created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list created bets")
	}
	defer rows.Close()

	var out []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan bet")
		}
		out = append(out, *b)
	}
	return out, errors.Wrap(rows.Err(), "list created bets")
}

func (q *queries) CountBetsCreated(ctx context.Context, userID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bets WHERE creator_id=$1`, userID).Scan(&n)
	return n, errors.Wrap(err, "count created bets")
}

// UpdateBetStatus persiste status, outcome e resolved_at já validados pelo
// domínio. resolution_tx_id só é sobrescrito quando b traz um.
func (q *queries) UpdateBetStatus(ctx context.Context, b *domain.Bet) error {
	var outcome any
	if b.Outcome != nil {
		outcome = string(*b.Outcome)
	}
	res, err := q.db.ExecContext(ctx, `
		UPDATE bets SET status=$2, outcome=$3, resolved_at=$4,
		       resolution_tx_id=COALESCE($5, resolution_tx_id), updated_at=now()
		WHERE id=$1`,
		b.ID, string(b.Status), outcome, b.ResolvedAt, b.ResolutionTxID)
	if err != nil {
		return errors.Wrap(err, "update bet status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrBetNotFound
	}
	return nil
}

// AddToPool incrementa o pool no próprio SQL, sem read-modify-write na aplicação
func (q *queries) AddToPool(ctx context.Context, betID string, position domain.Position, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	query := `UPDATE bets SET no_pool = no_pool + $2, updated_at = now() WHERE id=$1 RETURNING yes_pool, no_pool`
	if position == domain.PositionYes {
		query = `UPDATE bets SET yes_pool = yes_pool + $2, updated_at = now() WHERE id=$1 RETURNING yes_pool, no_pool`
	}
	var yes, no decimal.Decimal
	err := q.db.QueryRowContext(ctx, query, betID, amount).Scan(&yes, &no)
	if errors.Is(err, sql.ErrNoRows) {
		return yes, no, domain.ErrBetNotFound
	}
	return yes, no, errors.Wrap(err, "add to pool")
}

// CloseExpired fecha as apostas ativas cujo endTime já passou e devolve os ids
func (q *queries) CloseExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		UPDATE bets SET status='closed', updated_at=now()
		WHERE status='active' AND end_time <= $1
		RETURNING id`, now)
	if err != nil {
		return nil, errors.Wrap(err, "close expired")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan closed id")
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rows.Err(), "close expired")
}

// SetChainAddresses grava os endereços on-chain se ainda não existirem e
// devolve os que ficaram persistidos, que podem ser de uma chamada concorrente.
func (q *queries) SetChainAddresses(ctx context.Context, betID, betAddr, escrowAddr string) (string, string, error) {
	if !validID(betID) {
		return "", "", domain.ErrBetNotFound
	}
	var gotBet, gotEscrow string
	err := q.db.QueryRowContext(ctx, `
		UPDATE bets SET onchain_bet_address=COALESCE(onchain_bet_address, $2),
		                onchain_escrow_address=COALESCE(onchain_escrow_address, $3)
		WHERE id=$1
		RETURNING onchain_bet_address, onchain_escrow_address`,
		betID, betAddr, escrowAddr).Scan(&gotBet, &gotEscrow)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", domain.ErrBetNotFound
	}
	return gotBet, gotEscrow, errors.Wrap(err, "set chain addresses")
}
