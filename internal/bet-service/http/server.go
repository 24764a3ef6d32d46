package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/chain"
	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/bet-service/dto"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/internal/bet-service/service"
)

// Service é o que os handlers usam da camada de serviço
type Service interface {
	CreateBet(ctx context.Context, in service.CreateBetInput) (*domain.Bet, error)
	ListBets(ctx context.Context, f repo.BetFilter) (*domain.BetPage, error)
	GetBet(ctx context.Context, id string) (*domain.Bet, error)
	Quote(ctx context.Context, id, position string, amount decimal.Decimal) (domain.QuoteResult, error)
	PlaceBet(ctx context.Context, in service.PlaceBetInput) (*domain.Bet, error)
	Withdraw(ctx context.Context, in service.WithdrawInput) (*service.WithdrawResult, error)
	ResolveBet(ctx context.Context, in service.ResolveInput) (*domain.Bet, error)
	CloseBet(ctx context.Context, in service.ActorInput) (*domain.Bet, error)
	CancelBet(ctx context.Context, in service.ActorInput) (*domain.Bet, error)
	DisputeBet(ctx context.Context, in service.ActorInput) (*domain.Bet, error)

	ConnectWallet(ctx context.Context, address string) (*domain.User, bool, error)
	BetStats(ctx context.Context, address string) (domain.UserStats, error)
	PositionStats(ctx context.Context, address string) (domain.PositionBreakdown, error)
	Transactions(ctx context.Context, address string) ([]domain.Transaction, error)
	Profile(ctx context.Context, address string) (*service.Profile, error)
	Stats(ctx context.Context, address, timeFrame string) (domain.TimeFrameStats, error)
	Activity(ctx context.Context, address string, limit int) ([]domain.ActivityItem, error)
	CommunityActivity(ctx context.Context) ([]domain.ActivityItem, error)
	Leaderboard(ctx context.Context, period string) ([]domain.LeaderboardEntry, error)
	UserBets(ctx context.Context, address string) ([]domain.UserBet, error)
	ChainAddresses(ctx context.Context, betID string) (chain.Addresses, error)
}

// API expõe os endpoints REST do SolBet e o feed WebSocket de pools
type API struct {
	Svc         Service
	Auth        Authenticator // nil recusa toda mutação com 401
	Log         *zap.Logger
	WS          http.HandlerFunc // nil desliga /ws
	Metrics     *Metrics         // opcional
	CORSOrigins []string
}

// Router retorna o roteador HTTP com todas as rotas
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(CORS(a.CORSOrigins))
	r.Use(AccessLog(a.Log))
	if a.Metrics != nil {
		r.Use(a.Metrics.Instrument)
	}

	r.Route("/bets", func(r chi.Router) {
		r.Get("/", a.listBets)
		r.Get("/statistics", a.positionStats)
		r.Get("/{id}", a.getBet)
		r.Get("/{id}/quote", a.quote)
		r.Get("/{id}/solana-address", a.chainAddresses)

		// mutações agem em nome da carteira do token
		r.Group(func(r chi.Router) {
			r.Use(a.requireWallet)
			r.Post("/", a.createBet)
			r.Put("/{id}/place", a.placeBet)
			r.Post("/{id}/withdraw", a.withdraw)
			r.Put("/{id}/resolve", a.resolveBet)
			r.Post("/{id}/close", a.closeBet)
			r.Post("/{id}/cancel", a.cancelBet)
			r.Post("/{id}/dispute", a.disputeBet)
		})
	})

	r.Post("/auth/wallet/connect", a.connectWallet)
	if a.Auth != nil {
		r.Get("/auth/nonce", a.nonce)
		r.Post("/auth/login", a.login)
		r.Post("/auth/dev-login", a.devLogin)
	}
	r.Get("/user/{address}/bet-stats", a.betStats)
	r.Route("/users", func(r chi.Router) {
		r.Get("/transactions", a.transactions)
		r.Get("/profile", a.profile)
		r.Get("/stats", a.stats)
		r.Get("/activity", a.activity)
		r.Get("/bets", a.userBets)
	})
	r.Get("/community/activity", a.communityActivity)
	r.Get("/community/leaderboard", a.leaderboard)

	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf mapeia o Kind do erro de domínio para o status HTTP
func statusOf(k domain.Kind) int {
	switch k {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError devolve a mensagem dos erros de domínio; erros internos são
// logados e respondidos com corpo genérico.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(domain.KindOf(err))
	if status == http.StatusInternalServerError {
		a.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("requestId", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, status, dto.ErrorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, dto.ErrorResponse{Error: err.Error()})
}

// decode lê o corpo JSON e valida os campos obrigatórios. Em caso de erro a
// resposta já foi escrita.
func (a *API) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
		return false
	}
	if err := dto.Validate(req); err != nil {
		fields := dto.MissingFields(err)
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:  "missing required fields: " + strings.Join(fields, ", "),
			Fields: fields,
		})
		return false
	}
	return true
}

// requireQuery lê um parâmetro obrigatório da query string
func requireQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: name + " is required"})
		return "", false
	}
	return v, true
}
