package dto

// RPCRequest é o envelope JSON-RPC 2.0 enviado ao nó Solana
type RPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SignatureStatus é um item de getSignatureStatuses; Err != nil indica que a
// transação falhou on-chain.
type SignatureStatus struct {
	Slot               uint64  `json:"slot"`
	Confirmations      *uint64 `json:"confirmations"`
	Err                any     `json:"err"`
	ConfirmationStatus string  `json:"confirmationStatus"` // processed | confirmed | finalized
}

type SlotContext struct {
	Slot uint64 `json:"slot"`
}

type SignatureStatusesResult struct {
	Context SlotContext        `json:"context"`
	Value   []*SignatureStatus `json:"value"` // nil para assinatura desconhecida
}

type SignatureStatusesResp struct {
	JSONRPC string                   `json:"jsonrpc"`
	ID      int                      `json:"id"`
	Result  *SignatureStatusesResult `json:"result,omitempty"`
	Error   *RPCError                `json:"error,omitempty"`
}
