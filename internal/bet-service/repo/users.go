package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
)

const userColumns = `id, wallet_address, display_name, avatar, theme, notifications, created_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u          domain.User
		name, avat sql.NullString
	)
	if err := row.Scan(&u.ID, &u.WalletAddress, &name, &avat, &u.Theme, &u.Notifications, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.DisplayName = nullString(name)
	u.Avatar = nullString(avat)
	return &u, nil
}

// GetUserByAddress devolve domain.ErrUserNotFound quando a carteira não existe
func (q *queries) GetUserByAddress(ctx context.Context, address string) (*domain.User, error) {
	u, err := scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE wallet_address=$1`, address))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, errors.Wrap(err, "get user by address")
}

// GetOrCreateUser cria o usuário na primeira aparição da carteira.
// O bool indica se o registro foi criado agora.
func (q *queries) GetOrCreateUser(ctx context.Context, address string) (*domain.User, bool, error) {
	u, err := scanUser(q.db.QueryRowContext(ctx, `
		INSERT INTO users (id, wallet_address) VALUES ($1, $2)
		ON CONFLICT (wallet_address) DO NOTHING
		RETURNING `+userColumns, uuid.NewString(), address))
	if err == nil {
		return u, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, errors.Wrap(err, "insert user")
	}
	// já existia
	u, err = q.GetUserByAddress(ctx, address)
	return u, false, err
}
