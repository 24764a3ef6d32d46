package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/bet-service/dto"
)

func (a *API) connectWallet(w http.ResponseWriter, r *http.Request) {
	var req dto.ConnectWalletRequest
	if !a.decode(w, r, &req) {
		return
	}
	u, created, err := a.Svc.ConnectWallet(r.Context(), req.WalletAddress)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ConnectWalletResponse{User: u, Created: created})
}

// betStats: GET /user/{address}/bet-stats, zerado para carteira desconhecida
func (a *API) betStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.Svc.BetStats(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// positionStats: GET /bets/statistics?address
func (a *API) positionStats(w http.ResponseWriter, r *http.Request) {
	address, ok := requireQuery(w, r, "address")
	if !ok {
		return
	}
	pb, err := a.Svc.PositionStats(r.Context(), address)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pb)
}

func (a *API) transactions(w http.ResponseWriter, r *http.Request) {
	address, ok := requireQuery(w, r, "address")
	if !ok {
		return
	}
	txs, err := a.Svc.Transactions(r.Context(), address)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

// userBets: GET /users/bets?address, vazio para carteira desconhecida
func (a *API) userBets(w http.ResponseWriter, r *http.Request) {
	address, ok := requireQuery(w, r, "address")
	if !ok {
		return
	}
	bets, err := a.Svc.UserBets(r.Context(), address)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if bets == nil {
		bets = []domain.UserBet{}
	}
	writeJSON(w, http.StatusOK, dto.UserBetsResponse{Bets: bets})
}

func (a *API) profile(w http.ResponseWriter, r *http.Request) {
	address, ok := requireQuery(w, r, "address")
	if !ok {
		return
	}
	p, err := a.Svc.Profile(r.Context(), address)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ProfileResponse{User: p.User, Stats: p.Stats})
}

// stats: GET /users/stats?address&timeFrame=1d|7d|30d|all
func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	address, ok := requireQuery(w, r, "address")
	if !ok {
		return
	}
	st, err := a.Svc.Stats(r.Context(), address, r.URL.Query().Get("timeFrame"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) activity(w http.ResponseWriter, r *http.Request) {
	address, ok := requireQuery(w, r, "address")
	if !ok {
		return
	}
	items, err := a.Svc.Activity(r.Context(), address, queryInt(r, "limit"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilItems(items))
}

func (a *API) communityActivity(w http.ResponseWriter, r *http.Request) {
	items, err := a.Svc.CommunityActivity(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilItems(items))
}

func (a *API) leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := a.Svc.Leaderboard(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func nonNilItems(items []domain.ActivityItem) []domain.ActivityItem {
	if items == nil {
		return []domain.ActivityItem{}
	}
	return items
}
