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

// Queries reúne as operações de persistência. A mesma implementação roda sobre
// *sql.DB (leituras avulsas) ou *sql.Tx (dentro de InTx).
type Queries interface {
	// usuários
	GetUserByAddress(ctx context.Context, address string) (*domain.User, error)
	GetOrCreateUser(ctx context.Context, address string) (*domain.User, bool, error)

	// apostas
	CreateBet(ctx context.Context, b *domain.Bet) error
	GetBet(ctx context.Context, id string) (*domain.Bet, error)
	LockBet(ctx context.Context, id string) (*domain.Bet, error)
	ListBets(ctx context.Context, f BetFilter) ([]domain.Bet, int, error)
	ListBetsCreatedBy(ctx context.Context, userID string, limit int) ([]domain.Bet, error)
	CountBetsCreated(ctx context.Context, userID string) (int, error)
	UpdateBetStatus(ctx context.Context, b *domain.Bet) error
	AddToPool(ctx context.Context, betID string, position domain.Position, amount decimal.Decimal) (yes, no decimal.Decimal, err error)
	CloseExpired(ctx context.Context, now time.Time) ([]string, error)
	SetChainAddresses(ctx context.Context, betID, betAddr, escrowAddr string) (string, string, error)

	// participações
	InsertParticipant(ctx context.Context, p *domain.Participant) error
	GetParticipant(ctx context.Context, betID, userID string) (*domain.Participant, error)
	ListParticipants(ctx context.Context, betID string) ([]domain.Participant, error)
	ListParticipantUserIDs(ctx context.Context, betID string) ([]string, error)
	ListParticipations(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Participation, error)
	MarkClaimed(ctx context.Context, participantID string, onChainTxID *string) error

	// ledger
	InsertTransaction(ctx context.Context, t *domain.Transaction) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus) (bool, error)
	CommunityActivity(ctx context.Context, limit int) ([]domain.ActivityItem, error)

	// estatísticas materializadas
	UpsertUserStats(ctx context.Context, userID string, st domain.UserStats) error
	LeaderboardRows(ctx context.Context, since time.Time, limit int) ([]domain.LeaderboardRow, error)
}

// dbtx é o subconjunto comum de *sql.DB e *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct{ db dbtx }

// Postgres implementa a persistência de apostas, participações e ledger em Postgres
type Postgres struct {
	Queries
	db *sql.DB
}

// NewPostgres retorna uma instância do repositório
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{Queries: &queries{db: db}, db: db}
}

// InTx executa fn numa transação. Commit se fn devolver nil, rollback caso contrário.
func (p *Postgres) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// isUniqueViolation detecta o código 23505 do Postgres
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// validID evita ida ao banco com ids que a coluna UUID rejeitaria
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

type rowScanner interface {
	Scan(dest ...any) error
}
