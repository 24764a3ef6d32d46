package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/bet-service/dto"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/internal/bet-service/service"
)

// queryInt devolve 0 para parâmetro ausente ou inválido; o serviço aplica o default
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

// listBets: GET /bets?category&status&page&limit
func (a *API) listBets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := a.Svc.ListBets(r.Context(), repo.BetFilter{
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBetListResponse(page))
}

func (a *API) createBet(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBetRequest
	if !a.decode(w, r, &req) {
		return
	}
	creator, ok := a.actingWallet(w, r, req.Creator)
	if !ok {
		return
	}
	bet, err := a.Svc.CreateBet(r.Context(), service.CreateBetInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		MinimumBet:  req.MinimumBet,
		MaximumBet:  req.MaximumBet,
		EndTime:     req.EndTime,
		Creator:     creator,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewBetResponse(bet))
}

func (a *API) getBet(w http.ResponseWriter, r *http.Request) {
	bet, err := a.Svc.GetBet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBetResponse(bet))
}

// quote: GET /bets/{id}/quote?position&amount
func (a *API) quote(w http.ResponseWriter, r *http.Request) {
	position, ok := requireQuery(w, r, "position")
	if !ok {
		return
	}
	raw, ok := requireQuery(w, r, "amount")
	if !ok {
		return
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "amount must be a number"})
		return
	}
	res, err := a.Svc.Quote(r.Context(), chi.URLParam(r, "id"), position, amount)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// chainAddresses: GET /bets/{id}/solana-address
func (a *API) chainAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := a.Svc.ChainAddresses(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addrs)
}

func (a *API) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if !a.decode(w, r, &req) {
		return
	}
	wallet, ok := a.actingWallet(w, r, req.WalletAddress)
	if !ok {
		return
	}
	bet, err := a.Svc.PlaceBet(r.Context(), service.PlaceBetInput{
		BetID:         chi.URLParam(r, "id"),
		Position:      req.Position,
		Amount:        *req.Amount,
		WalletAddress: wallet,
		OnChainTxID:   req.OnChainTxID,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBetResponse(bet))
}

func (a *API) withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if !a.decode(w, r, &req) {
		return
	}
	wallet, ok := a.actingWallet(w, r, req.WalletAddress)
	if !ok {
		return
	}
	res, err := a.Svc.Withdraw(r.Context(), service.WithdrawInput{
		BetID:         chi.URLParam(r, "id"),
		WalletAddress: wallet,
		OnChainTxID:   req.OnChainTxID,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WithdrawResponse{
		Success:     true,
		Message:     "Funds withdrawn successfully",
		Payout:      res.Payout,
		UserBet:     res.Participant,
		Transaction: res.Transaction,
	})
}

func (a *API) resolveBet(w http.ResponseWriter, r *http.Request) {
	var req dto.ResolveBetRequest
	if !a.decode(w, r, &req) {
		return
	}
	wallet, ok := a.actingWallet(w, r, req.WalletAddress)
	if !ok {
		return
	}
	bet, err := a.Svc.ResolveBet(r.Context(), service.ResolveInput{
		BetID:         chi.URLParam(r, "id"),
		WalletAddress: wallet,
		Outcome:       req.Outcome,
		OnChainTxID:   req.OnChainTxID,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBetResponse(bet))
}

func (a *API) closeBet(w http.ResponseWriter, r *http.Request) {
	a.actorTransition(w, r, a.Svc.CloseBet)
}

func (a *API) cancelBet(w http.ResponseWriter, r *http.Request) {
	a.actorTransition(w, r, a.Svc.CancelBet)
}

func (a *API) disputeBet(w http.ResponseWriter, r *http.Request) {
	a.actorTransition(w, r, a.Svc.DisputeBet)
}

type transitionFunc = func(ctx context.Context, in service.ActorInput) (*domain.Bet, error)

// actorTransition trata close/cancel/dispute, que só dependem da carteira
func (a *API) actorTransition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	var req dto.ActorRequest
	if !a.decode(w, r, &req) {
		return
	}
	wallet, ok := a.actingWallet(w, r, req.WalletAddress)
	if !ok {
		return
	}
	bet, err := fn(r.Context(), service.ActorInput{BetID: chi.URLParam(r, "id"), WalletAddress: wallet})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBetResponse(bet))
}
