// Package simulator imita o getSignatureStatuses de um nó Solana para
// ambientes locais sem validador.
package simulator

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/tx-confirmation/dto"
)

const (
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

type signature struct {
	polls  int
	failed bool
	slot   uint64
}

// Simulator responde "processed" nas primeiras PendingPolls consultas de cada
// assinatura e depois "finalized", com falha on-chain em FailPercent% delas.
type Simulator struct {
	Log          *zap.Logger
	PendingPolls int
	FailPercent  int
	Roll         func() int // 0..99; default aleatório

	OnStatus func(status string) // métricas: processed | finalized | failed

	mu   sync.Mutex
	slot uint64
	sigs map[string]*signature
}

func New(log *zap.Logger, pendingPolls, failPercent int) *Simulator {
	return &Simulator{
		Log:          log,
		PendingPolls: pendingPolls,
		FailPercent:  failPercent,
		Roll:         func() int { return rand.IntN(100) },
		sigs:         make(map[string]*signature),
	}
}

func (s *Simulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req dto.RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.reply(w, dto.SignatureStatusesResp{Error: &dto.RPCError{Code: codeInvalidRequest, Message: "Invalid request"}})
		return
	}
	if req.Method != "getSignatureStatuses" {
		s.reply(w, dto.SignatureStatusesResp{ID: req.ID, Error: &dto.RPCError{Code: codeMethodNotFound, Message: "Method not found"}})
		return
	}
	sigs, ok := signatures(req.Params)
	if !ok {
		s.reply(w, dto.SignatureStatusesResp{ID: req.ID, Error: &dto.RPCError{Code: codeInvalidParams, Message: "Invalid params"}})
		return
	}

	s.mu.Lock()
	s.slot++
	res := &dto.SignatureStatusesResult{Context: dto.SlotContext{Slot: s.slot}}
	for _, sig := range sigs {
		res.Value = append(res.Value, s.poll(sig))
	}
	s.mu.Unlock()

	s.reply(w, dto.SignatureStatusesResp{ID: req.ID, Result: res})
}

// poll avança o estado da assinatura; chamado com mu travado
func (s *Simulator) poll(sig string) *dto.SignatureStatus {
	st, ok := s.sigs[sig]
	if !ok {
		st = &signature{failed: s.Roll() < s.FailPercent, slot: s.slot}
		s.sigs[sig] = st
	}
	st.polls++

	out := &dto.SignatureStatus{Slot: st.slot}
	switch {
	case st.polls <= s.PendingPolls:
		out.ConfirmationStatus = "processed"
	case st.failed:
		out.ConfirmationStatus = "finalized"
		out.Err = map[string]any{"InstructionError": []any{0, "Custom"}}
	default:
		out.ConfirmationStatus = "finalized"
	}

	status := out.ConfirmationStatus
	if out.Err != nil {
		status = "failed"
	}
	if st.polls == s.PendingPolls+1 {
		s.Log.Info("signature settled", zap.String("sig", sig), zap.String("status", status))
	}
	if s.OnStatus != nil {
		s.OnStatus(status)
	}
	return out
}

// signatures extrai a lista do primeiro parâmetro
func signatures(params []any) ([]string, bool) {
	if len(params) == 0 {
		return nil, false
	}
	raw, ok := params[0].([]any)
	if !ok || len(raw) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		sig, ok := v.(string)
		if !ok || sig == "" {
			return nil, false
		}
		out = append(out, sig)
	}
	return out, true
}

func (s *Simulator) reply(w http.ResponseWriter, resp dto.SignatureStatusesResp) {
	resp.JSONRPC = "2.0"
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
