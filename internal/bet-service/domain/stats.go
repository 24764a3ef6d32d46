package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ComputeUserStats deriva as estatísticas agregadas do histórico de participações.
// winRate = floor(vitórias / participações * 100).
func ComputeUserStats(betsCreated int, parts []Participation) UserStats {
	st := UserStats{BetsCreated: betsCreated, BetsJoined: len(parts), TotalWinnings: decimal.Zero}
	wins := 0
	for _, p := range parts {
		if p.Won() {
			wins++
			st.TotalWinnings = st.TotalWinnings.Add(p.Payout())
		}
	}
	if st.BetsJoined > 0 {
		st.WinRate = wins * 100 / st.BetsJoined
	}
	return st
}

type TimeFrame string

const (
	TimeFrameDay   TimeFrame = "1d"
	TimeFrameWeek  TimeFrame = "7d"
	TimeFrameMonth TimeFrame = "30d"
	TimeFrameAll   TimeFrame = "all"
)

// ParseTimeFrame aceita 1d/7d/30d/all; vazio vira 7d
func ParseTimeFrame(s string) (TimeFrame, error) {
	switch tf := TimeFrame(s); tf {
	case "":
		return TimeFrameWeek, nil
	case TimeFrameDay, TimeFrameWeek, TimeFrameMonth, TimeFrameAll:
		return tf, nil
	}
	return "", Validation("timeFrame must be one of 1d, 7d, 30d, all")
}

// Since devolve o início da janela; zero para "all"
func (tf TimeFrame) Since(now time.Time) time.Time {
	switch tf {
	case TimeFrameDay:
		return now.AddDate(0, 0, -1)
	case TimeFrameMonth:
		return now.AddDate(0, 0, -30)
	case TimeFrameAll:
		return time.Time{}
	default:
		return now.AddDate(0, 0, -7)
	}
}

type StatsSummary struct {
	Winnings   decimal.Decimal `json:"winnings"`
	Losses     decimal.Decimal `json:"losses"`
	NetProfit  decimal.Decimal `json:"netProfit"`
	WinRate    int             `json:"winRate"`
	BetsPlaced int             `json:"betsPlaced"`
	AvgBetSize decimal.Decimal `json:"avgBetSize"`
	BetsWon    int             `json:"betsWon"`
	BetsLost   int             `json:"betsLost"`
	ActiveBets int             `json:"activeBets"`
}

type HistoryEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Title     string          `json:"title"`
	Status    string          `json:"status"`
	BetID     string          `json:"betId"`
}

type TimeFrameStats struct {
	Stats      StatsSummary   `json:"stats"`
	BetHistory []HistoryEntry `json:"betHistory"`
}

// EmptyTimeFrameStats é a resposta para usuário desconhecido
func EmptyTimeFrameStats() TimeFrameStats {
	return TimeFrameStats{
		Stats: StatsSummary{
			Winnings:   decimal.Zero,
			Losses:     decimal.Zero,
			NetProfit:  decimal.Zero,
			AvgBetSize: decimal.Zero,
		},
		BetHistory: []HistoryEntry{},
	}
}

// ComputeTimeFrameStats resume as participações já filtradas pela janela,
// mais recentes primeiro.
func ComputeTimeFrameStats(parts []Participation) TimeFrameStats {
	out := EmptyTimeFrameStats()
	st := &out.Stats
	total := decimal.Zero

	for _, p := range parts {
		total = total.Add(p.Amount)
		if p.BetStatus == StatusActive {
			st.ActiveBets++
		}
		entry := HistoryEntry{
			Timestamp: p.CreatedAt,
			Type:      "PENDING",
			Amount:    p.Amount,
			Title:     "Bet Pending",
			Status:    "pending",
			BetID:     p.BetID,
		}
		switch {
		case p.Won():
			st.BetsWon++
			payout := p.Payout()
			st.Winnings = st.Winnings.Add(payout)
			entry = HistoryEntry{Timestamp: resolvedAt(p), Type: "WIN", Amount: payout, Title: "Bet Won", Status: "success", BetID: p.BetID}
		case p.Lost():
			st.BetsLost++
			st.Losses = st.Losses.Add(p.Amount)
			entry.Type, entry.Title, entry.Status = "LOSS", "Bet Lost", "success"
		case p.BetStatus == StatusResolved:
			entry.Status = "success"
		}
		out.BetHistory = append(out.BetHistory, entry)
	}

	st.BetsPlaced = len(parts)
	st.NetProfit = st.Winnings.Sub(st.Losses)
	if st.BetsPlaced > 0 {
		st.AvgBetSize = total.Div(decimal.NewFromInt(int64(st.BetsPlaced))).Round(9)
		st.WinRate = int(decimal.NewFromInt(int64(st.BetsWon * 100)).Div(decimal.NewFromInt(int64(st.BetsPlaced))).Round(0).IntPart())
	}
	return out
}

func resolvedAt(p Participation) time.Time {
	if p.ResolvedAt != nil {
		return *p.ResolvedAt
	}
	return p.BetUpdated
}

// PositionBreakdown conta participações por lado e a taxa de acerto sobre as resolvidas
type PositionBreakdown struct {
	TotalBets int `json:"totalBets"`
	YesBets   int `json:"yesBets"`
	NoBets    int `json:"noBets"`
	WinRate   int `json:"winRate"`
}

func ComputePositionBreakdown(parts []Participation) PositionBreakdown {
	var out PositionBreakdown
	resolved, won := 0, 0
	for _, p := range parts {
		out.TotalBets++
		if p.Position == PositionYes {
			out.YesBets++
		} else {
			out.NoBets++
		}
		if p.Won() || p.Lost() {
			resolved++
			if p.Won() {
				won++
			}
		}
	}
	if resolved > 0 {
		out.WinRate = int(decimal.NewFromInt(int64(won * 100)).Div(decimal.NewFromInt(int64(resolved))).Round(0).IntPart())
	}
	return out
}

type ActivityType string

const (
	ActivityBetPlaced  ActivityType = "bet_placed"
	ActivityBetCreated ActivityType = "bet_created"
	ActivityBetWon     ActivityType = "bet_won"
	ActivityBetLost    ActivityType = "bet_lost"
	ActivityWithdrawal ActivityType = "withdrawal"
)

type ActivityUser struct {
	Address     string  `json:"address"`
	DisplayName *string `json:"displayName"`
	Avatar      *string `json:"avatar"`
}

type ActivityItem struct {
	ID        string           `json:"id"`
	Type      ActivityType     `json:"type"`
	Title     string           `json:"title"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	BetID     *string          `json:"betId,omitempty"`
	User      *ActivityUser    `json:"user,omitempty"`
}

// BuildActivity junta participações e apostas criadas num feed único,
// mais recentes primeiro, cortado em limit.
func BuildActivity(parts []Participation, created []Bet, limit int) []ActivityItem {
	items := make([]ActivityItem, 0, len(parts)*2+len(created))
	for _, p := range parts {
		betID := p.BetID
		amount := p.Amount
		items = append(items, ActivityItem{
			ID: "bet_placed_" + p.ID, Type: ActivityBetPlaced, Title: "Placed a bet",
			Amount: &amount, Timestamp: p.CreatedAt, BetID: &betID,
		})
		switch {
		case p.Won():
			payout := p.Payout()
			items = append(items, ActivityItem{
				ID: "bet_won_" + p.ID, Type: ActivityBetWon, Title: "Won a bet",
				Amount: &payout, Timestamp: resolvedAt(p), BetID: &betID,
			})
		case p.Lost():
			items = append(items, ActivityItem{
				ID: "bet_lost_" + p.ID, Type: ActivityBetLost, Title: "Lost a bet",
				Amount: &amount, Timestamp: resolvedAt(p), BetID: &betID,
			})
		}
	}
	for _, b := range created {
		betID := b.ID
		items = append(items, ActivityItem{
			ID: "bet_created_" + b.ID, Type: ActivityBetCreated, Title: "Created a bet",
			Timestamp: b.CreatedAt, BetID: &betID,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// CommunityItem converte uma transação confirmada em item do feed da comunidade
func CommunityItem(tx Transaction, user ActivityUser) ActivityItem {
	item := ActivityItem{
		ID:        tx.ID,
		Type:      ActivityType(tx.Type),
		Title:     string(tx.Type),
		Timestamp: tx.Timestamp,
		BetID:     tx.BetID,
		User:      &user,
	}
	switch tx.Type {
	case TxBet:
		item.Type, item.Title = ActivityBetPlaced, "placed a bet"
	case TxWinnings:
		item.Type, item.Title = ActivityBetWon, "won a bet"
	case TxWithdrawal:
		item.Type, item.Title = ActivityWithdrawal, "withdrew funds"
	}
	amount := tx.Amount
	item.Amount = &amount
	return item
}

type LeaderboardPeriod string

const (
	PeriodWeekly  LeaderboardPeriod = "weekly"
	PeriodMonthly LeaderboardPeriod = "monthly"
	PeriodAllTime LeaderboardPeriod = "allTime"
)

func ParseLeaderboardPeriod(s string) (LeaderboardPeriod, error) {
	switch p := LeaderboardPeriod(s); p {
	case "":
		return PeriodWeekly, nil
	case PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return p, nil
	}
	return "", Validation("period must be one of weekly, monthly, allTime")
}

func (p LeaderboardPeriod) Since(now time.Time) time.Time {
	switch p {
	case PeriodMonthly:
		return now.AddDate(0, 0, -30)
	case PeriodAllTime:
		return time.Time{}
	default:
		return now.AddDate(0, 0, -7)
	}
}

// LeaderboardRow é uma linha crua vinda do repositório
type LeaderboardRow struct {
	Address        string
	DisplayName    *string
	Avatar         *string
	WinRate        int
	TotalWinnings  decimal.Decimal
	PeriodWinnings decimal.Decimal
}

type LeaderboardEntry struct {
	Rank        int             `json:"rank"`
	Address     string          `json:"address"`
	DisplayName *string         `json:"displayName"`
	Avatar      *string         `json:"avatar"`
	WinRate     int             `json:"winRate"`
	Winnings    decimal.Decimal `json:"winnings"`
}

const LeaderboardSize = 10

// RankLeaderboard ordena pelos ganhos do período (ou totais em allTime) e
// numera a partir de 1.
func RankLeaderboard(rows []LeaderboardRow, period LeaderboardPeriod) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		w := r.PeriodWinnings
		if period == PeriodAllTime {
			w = r.TotalWinnings
		}
		out = append(out, LeaderboardEntry{
			Address: r.Address, DisplayName: r.DisplayName, Avatar: r.Avatar,
			WinRate: r.WinRate, Winnings: w,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Winnings.GreaterThan(out[j].Winnings)
	})
	if len(out) > LeaderboardSize {
		out = out[:LeaderboardSize]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
