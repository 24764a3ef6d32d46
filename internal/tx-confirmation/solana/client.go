package solana

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/solbet/solbet-platform/internal/tx-confirmation/dto"
)

// Client fala JSON-RPC com um nó Solana
type Client struct {
	client *resty.Client
}

func NewClient(rpcURL string) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(rpcURL, "/")).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json")
	// além de falhas de rede, 429 e 5xx do nó também são repetidos
	c.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
	})
	return &Client{client: c}
}

// SignatureStatus consulta uma assinatura com histórico completo. Devolve nil
// sem erro quando o nó ainda não conhece a assinatura.
func (c *Client) SignatureStatus(ctx context.Context, signature string) (*dto.SignatureStatus, error) {
	var out dto.SignatureStatusesResp
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(dto.RPCRequest{
			JSONRPC: "2.0",
			ID:      1,
			Method:  "getSignatureStatuses",
			Params: []any{
				[]string{signature},
				map[string]bool{"searchTransactionHistory": true},
			},
		}).
		SetResult(&out).
		Post("")
	if err != nil {
		return nil, errors.Wrap(err, "solana rpc")
	}
	if resp.IsError() {
		return nil, errors.Errorf("solana rpc http %s", resp.Status())
	}
	if out.Error != nil {
		return nil, errors.Errorf("solana rpc error %d: %s", out.Error.Code, out.Error.Message)
	}
	if out.Result == nil || len(out.Result.Value) == 0 {
		return nil, nil
	}
	return out.Result.Value[0], nil
}
