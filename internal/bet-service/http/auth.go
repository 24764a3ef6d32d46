package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/solbet/solbet-platform/internal/bet-service/auth"
	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/bet-service/dto"
	"github.com/solbet/solbet-platform/pkg/contracts/api"
)

// Authenticator é o fluxo de login por assinatura da carteira
type Authenticator interface {
	Challenge(ctx context.Context, wallet string) (auth.Challenge, error)
	Login(ctx context.Context, wallet, signature string) (*auth.Session, error)
	LoginWithoutSignature(ctx context.Context, wallet string) (*auth.Session, error)
	Wallet(token string) (string, error)
}

var (
	errMissingToken   = domain.Unauthorized("missing bearer token")
	errWalletMismatch = domain.Forbidden("wallet does not match the authenticated session")
)

type walletKey struct{}

// requireWallet exige um Bearer válido e guarda a carteira da sessão no contexto
func (a *API) requireWallet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" || a.Auth == nil {
			a.writeError(w, r, errMissingToken)
			return
		}
		wallet, err := a.Auth.Wallet(strings.TrimSpace(token))
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), walletKey{}, wallet)))
	})
}

// actingWallet devolve a carteira da sessão. A carteira informada no corpo,
// quando presente, tem que ser a mesma.
func (a *API) actingWallet(w http.ResponseWriter, r *http.Request, claimed string) (string, bool) {
	wallet, _ := r.Context().Value(walletKey{}).(string)
	if wallet == "" {
		a.writeError(w, r, errMissingToken)
		return "", false
	}
	if claimed != "" && claimed != wallet {
		a.writeError(w, r, errWalletMismatch)
		return "", false
	}
	return wallet, true
}

// nonce: GET /auth/nonce?walletAddress
func (a *API) nonce(w http.ResponseWriter, r *http.Request) {
	wallet, ok := requireQuery(w, r, "walletAddress")
	if !ok {
		return
	}
	c, err := a.Auth.Challenge(r.Context(), wallet)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NonceResponse{
		WalletAddress: wallet,
		Nonce:         c.Nonce,
		Message:       c.Message,
		ExpiresAt:     c.ExpiresAt,
	})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !a.decode(w, r, &req) {
		return
	}
	s, err := a.Auth.Login(r.Context(), req.WalletAddress, req.Signature)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.LoginResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: s.User})
}

func (a *API) devLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.DevLoginRequest
	if !a.decode(w, r, &req) {
		return
	}
	s, err := a.Auth.LoginWithoutSignature(r.Context(), req.WalletAddress)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.LoginResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: s.User})
}
