package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
)

// InsertTransaction acrescenta uma entrada no ledger. Status vazio é derivado do
// tx hash (pendente se houver assinatura on-chain).
func (q *queries) InsertTransaction(ctx context.Context, t *domain.Transaction) error {
	t.ID = uuid.NewString()
	if t.Status == "" {
		t.Status = domain.InitialStatus(t.TxHash)
	}
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO transactions (id, user_id, type, amount, status, bet_id, tx_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING timestamp`,
		t.ID, t.UserID, string(t.Type), t.Amount, string(t.Status), t.BetID, t.TxHash,
	).Scan(&t.Timestamp)
	return errors.Wrap(err, "insert transaction")
}

// ListTransactions devolve as últimas limit transações com o título da aposta
func (q *queries) ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.type, t.amount, t.status, t.bet_id, b.title, t.tx_hash, t.timestamp
		FROM transactions t
		LEFT JOIN bets b ON b.id = t.bet_id
		WHERE t.user_id=$1
		ORDER BY t.timestamp DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	defer rows.Close()

	out := []domain.Transaction{}
	for rows.Next() {
		var (
			t                  domain.Transaction
			typ, status        string
			betID, title, hash sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.UserID, &typ, &t.Amount, &status, &betID, &title, &hash, &t.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		t.Type = domain.TransactionType(typ)
		t.Status = domain.TransactionStatus(status)
		t.BetID, t.BetTitle, t.TxHash = nullString(betID), nullString(title), nullString(hash)
		out = append(out, t)
	}
	return out, errors.Wrap(rows.Err(), "list transactions")
}

// UpdateTransactionStatus só sai de pending; devolve false se a transação não
// estava mais pendente.
func (q *queries) UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus) (bool, error) {
	if !domain.TxPending.CanTransition(status) {
		return false, domain.Validation("invalid transaction status %q", status)
	}
	if !validID(id) {
		return false, nil
	}
	res, err := q.db.ExecContext(ctx, `UPDATE transactions SET status=$2 WHERE id=$1 AND status='pending'`, id, string(status))
	if err != nil {
		return false, errors.Wrap(err, "update transaction status")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CommunityActivity lista as últimas transações confirmadas de aposta, saque e ganhos
func (q *queries) CommunityActivity(ctx context.Context, limit int) ([]domain.ActivityItem, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT t.id, t.type, t.amount, t.bet_id, t.timestamp, u.wallet_address, u.display_name, u.avatar
		FROM transactions t
		JOIN users u ON u.id = t.user_id
		WHERE t.status='confirmed' AND t.type IN ('bet','withdrawal','winnings')
		ORDER BY t.timestamp DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "community activity")
	}
	defer rows.Close()

	out := []domain.ActivityItem{}
	for rows.Next() {
		var (
			t           domain.Transaction
			typ         string
			betID       sql.NullString
			user        domain.ActivityUser
			name, avatr sql.NullString
		)
		if err := rows.Scan(&t.ID, &typ, &t.Amount, &betID, &t.Timestamp, &user.Address, &name, &avatr); err != nil {
			return nil, errors.Wrap(err, "scan activity")
		}
		t.Type = domain.TransactionType(typ)
		t.BetID = nullString(betID)
		user.DisplayName, user.Avatar = nullString(name), nullString(avatr)
		out = append(out, domain.CommunityItem(t, user))
	}
	return out, errors.Wrap(rows.Err(), "community activity")
}
