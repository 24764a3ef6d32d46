package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/solbet/solbet-platform/pkg/contracts/api"
)

// APIError é a resposta não-2xx da API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("solbet api: %d %s", e.Status, e.Message)
}

// Client fala com o bet-service via HTTP. Depois de Login (ou SetSession) as
// mutações vão autenticadas com o token da sessão.
type Client struct {
	http *resty.Client

	mu     sync.RWMutex
	token  string
	wallet string
}

func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// SetSession usa um token já emitido para a carteira
func (c *Client) SetSession(token, wallet string) {
	c.mu.Lock()
	c.token, c.wallet = token, wallet
	c.mu.Unlock()
}

// Wallet é a carteira da sessão atual, vazia antes do login
func (c *Client) Wallet() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wallet
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var apiErr api.ErrorResponse
	req := c.http.R().SetContext(ctx).SetError(&apiErr)
	c.mu.RLock()
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	c.mu.RUnlock()
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return &APIError{Status: resp.StatusCode(), Message: msg}
	}
	return nil
}

// BetQuery filtra a listagem de apostas; zeros ficam a cargo do servidor
type BetQuery struct {
	Category string
	Status   string
	Page     int
	Limit    int
}

func (q BetQuery) values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func betPath(id, action string) string {
	p := "/bets/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *Client) GetBet(ctx context.Context, id string) (*api.Bet, error) {
	var out api.Bet
	if err := c.do(ctx, http.MethodGet, betPath(id, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListBets(ctx context.Context, q BetQuery) (*api.BetList, error) {
	var out api.BetList
	if err := c.do(ctx, http.MethodGet, "/bets", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Quote simula a colocação de amount no lado position
func (c *Client) Quote(ctx context.Context, betID, position string, amount decimal.Decimal) (*api.Quote, error) {
	var out api.Quote
	q := url.Values{"position": {position}, "amount": {amount.String()}}
	if err := c.do(ctx, http.MethodGet, betPath(betID, "quote"), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChainAddresses(ctx context.Context, betID string) (api.ChainAddresses, error) {
	var out api.ChainAddresses
	err := c.do(ctx, http.MethodGet, betPath(betID, "solana-address"), nil, nil, &out)
	return out, err
}

func (c *Client) BetStats(ctx context.Context, address string) (api.UserStats, error) {
	var out api.UserStats
	err := c.do(ctx, http.MethodGet, "/user/"+url.PathEscape(address)+"/bet-stats", nil, nil, &out)
	return out, err
}

func (c *Client) Transactions(ctx context.Context, address string) ([]api.Transaction, error) {
	var out []api.Transaction
	q := url.Values{"address": {address}}
	if err := c.do(ctx, http.MethodGet, "/users/transactions", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UserBets(ctx context.Context, address string) ([]api.UserBet, error) {
	var out api.UserBetsResponse
	q := url.Values{"address": {address}}
	if err := c.do(ctx, http.MethodGet, "/users/bets", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Bets, nil
}

// Nonce pede o desafio que a carteira deve assinar
func (c *Client) Nonce(ctx context.Context, wallet string) (*api.NonceResponse, error) {
	var out api.NonceResponse
	q := url.Values{"walletAddress": {wallet}}
	if err := c.do(ctx, http.MethodGet, "/auth/nonce", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login troca a assinatura (base58) da mensagem do nonce por uma sessão
func (c *Client) Login(ctx context.Context, wallet, signature string) (*api.LoginResponse, error) {
	var out api.LoginResponse
	req := api.LoginRequest{WalletAddress: wallet, Signature: signature}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	c.SetSession(out.Token, out.User.WalletAddress)
	return &out, nil
}

func (c *Client) CreateBet(ctx context.Context, req api.CreateBetRequest) (*api.Bet, error) {
	var out api.Bet
	if err := c.do(ctx, http.MethodPost, "/bets", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PlaceBet(ctx context.Context, betID string, req api.PlaceBetRequest) (*api.Bet, error) {
	var out api.Bet
	if err := c.do(ctx, http.MethodPut, betPath(betID, "place"), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Withdraw(ctx context.Context, betID string, req api.WithdrawRequest) (*api.WithdrawResponse, error) {
	var out api.WithdrawResponse
	if err := c.do(ctx, http.MethodPost, betPath(betID, "withdraw"), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResolveBet(ctx context.Context, betID string, req api.ResolveBetRequest) (*api.Bet, error) {
	var out api.Bet
	if err := c.do(ctx, http.MethodPut, betPath(betID, "resolve"), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CloseBet(ctx context.Context, betID string) (*api.Bet, error) {
	return c.transition(ctx, betID, "close")
}

func (c *Client) CancelBet(ctx context.Context, betID string) (*api.Bet, error) {
	return c.transition(ctx, betID, "cancel")
}

func (c *Client) DisputeBet(ctx context.Context, betID string) (*api.Bet, error) {
	return c.transition(ctx, betID, "dispute")
}

func (c *Client) transition(ctx context.Context, betID, action string) (*api.Bet, error) {
	var out api.Bet
	if err := c.do(ctx, http.MethodPost, betPath(betID, action), nil, api.ActorRequest{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
