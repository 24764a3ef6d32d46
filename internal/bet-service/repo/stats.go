package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
)

// UpsertUserStats grava a visão materializada das estatísticas do usuário
func (q *queries) UpsertUserStats(ctx context.Context, userID string, st domain.UserStats) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO user_stats (user_id, bets_created, bets_joined, win_rate, total_winnings, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
		ON CONFLICT (user_id) DO UPDATE SET
			bets_created=EXCLUDED.bets_created,
			bets_joined=EXCLUDED.bets_joined,
			win_rate=EXCLUDED.win_rate,
			total_winnings=EXCLUDED.total_winnings,
			updated_at=now()`,
		userID, st.BetsCreated, st.BetsJoined, st.WinRate, st.TotalWinnings)
	return errors.Wrap(err, "upsert user stats")
}

// LeaderboardRows traz candidatos ao ranking com ganhos totais e ganhos desde since.
// A ordenação final fica com domain.RankLeaderboard.
func (q *queries) LeaderboardRows(ctx context.Context, since time.Time, limit int) ([]domain.LeaderboardRow, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT u.wallet_address, u.display_name, u.avatar,
		       COALESCE(s.win_rate, 0), COALESCE(s.total_winnings, 0),
		       COALESCE(SUM(t.amount) FILTER (WHERE t.timestamp >= $1), 0) AS period_winnings
		FROM users u
		LEFT JOIN user_stats s ON s.user_id = u.id
		LEFT JOIN transactions t ON t.user_id = u.id AND t.type='winnings' AND t.status='confirmed'
		GROUP BY u.id, s.win_rate, s.total_winnings
		HAVING COALESCE(s.total_winnings, 0) > 0 OR COALESCE(SUM(t.amount), 0) > 0
		ORDER BY period_winnings DESC, COALESCE(s.total_winnings, 0) DESC
		LIMIT $2`, since, limit)
	if err != nil {
		return nil, errors.Wrap(err, "leaderboard")
	}
	defer rows.Close()

	var out []domain.LeaderboardRow
	for rows.Next() {
		var (
			r            domain.LeaderboardRow
			name, avatar sql.NullString
		)
		if err := rows.Scan(&r.Address, &name, &avatar, &r.WinRate, &r.TotalWinnings, &r.PeriodWinnings); err != nil {
			return nil, errors.Wrap(err, "scan leaderboard")
		}
		r.DisplayName, r.Avatar = nullString(name), nullString(avatar)
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "leaderboard")
}
