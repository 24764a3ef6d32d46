// Package auth autentica carteiras Solana: o cliente pede um nonce, assina a
// mensagem com a chave da carteira e troca a assinatura por um JWT.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/chain"
	"github.com/solbet/solbet-platform/internal/bet-service/domain"
)

const (
	DefaultNonceTTL = 5 * time.Minute
	messagePrefix   = "Sign in to SolBet: "
)

var ErrNoChallenge = domain.Unauthorized("no pending challenge for wallet")

// Users cria o usuário no primeiro login
type Users interface {
	ConnectWallet(ctx context.Context, address string) (*domain.User, bool, error)
}

type Challenge struct {
	Nonce     string
	Message   string
	ExpiresAt time.Time
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type Authenticator struct {
	log      *zap.Logger
	nonces   NonceStore
	tokens   *Tokens
	users    Users
	nonceTTL time.Duration
	now      func() time.Time

	// DevLogin libera o login sem assinatura; só para ambientes locais
	DevLogin bool
}

func NewAuthenticator(log *zap.Logger, nonces NonceStore, tokens *Tokens, users Users, nonceTTL time.Duration) *Authenticator {
	if nonceTTL <= 0 {
		nonceTTL = DefaultNonceTTL
	}
	return &Authenticator{
		log:      log,
		nonces:   nonces,
		tokens:   tokens,
		users:    users,
		nonceTTL: nonceTTL,
		now:      time.Now,
	}
}

// Message é o texto que a carteira assina para o nonce
func Message(nonce string) string { return messagePrefix + nonce }

func (a *Authenticator) Challenge(ctx context.Context, wallet string) (Challenge, error) {
	if !chain.ValidAddress(wallet) {
		return Challenge{}, chain.ErrInvalidAddress
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return Challenge{}, errors.Wrap(err, "generate nonce")
	}
	nonce := hex.EncodeToString(buf)
	if err := a.nonces.Put(ctx, wallet, nonce, a.nonceTTL); err != nil {
		return Challenge{}, err
	}
	return Challenge{Nonce: nonce, Message: Message(nonce), ExpiresAt: a.now().Add(a.nonceTTL)}, nil
}

// Login consome o desafio pendente, confere a assinatura e abre a sessão. Um
// nonce já usado ou expirado não serve para outra tentativa.
func (a *Authenticator) Login(ctx context.Context, wallet, signature string) (*Session, error) {
	if !chain.ValidAddress(wallet) {
		return nil, chain.ErrInvalidAddress
	}
	nonce, ok, err := a.nonces.Take(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoChallenge
	}
	if err := chain.VerifySignature(wallet, []byte(Message(nonce)), signature); err != nil {
		a.log.Info("login rejected", zap.String("wallet", wallet), zap.Error(err))
		return nil, err
	}
	return a.open(ctx, wallet)
}

// LoginWithoutSignature abre a sessão direto; erro Forbidden fora do modo dev
func (a *Authenticator) LoginWithoutSignature(ctx context.Context, wallet string) (*Session, error) {
	if !a.DevLogin {
		return nil, domain.Forbidden("dev login is disabled")
	}
	if wallet == "" {
		return nil, domain.Validation("wallet address is required")
	}
	a.log.Warn("dev login bypasses signature verification", zap.String("wallet", wallet))
	return a.open(ctx, wallet)
}

func (a *Authenticator) open(ctx context.Context, wallet string) (*Session, error) {
	u, _, err := a.users.ConnectWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	token, exp, err := a.tokens.Issue(u.ID, u.WalletAddress)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// Wallet valida o token e devolve a carteira da sessão
func (a *Authenticator) Wallet(token string) (string, error) {
	c, err := a.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	return c.WalletAddress, nil
}
