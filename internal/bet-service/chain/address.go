// Package chain cuida do formato Solana das carteiras: endereços base58 de
// 32 bytes, assinaturas ed25519 de mensagens e os endereços derivados das apostas.
package chain

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/mr-tron/base58"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
)

var (
	ErrInvalidAddress   = domain.Validation("invalid wallet address")
	ErrInvalidSignature = domain.Unauthorized("invalid signature")
)

// PublicKey decodifica o endereço da carteira na chave ed25519
func PublicKey(address string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return nil, ErrInvalidAddress
	}
	return ed25519.PublicKey(raw), nil
}

func ValidAddress(address string) bool {
	_, err := PublicKey(address)
	return err == nil
}

// VerifySignature confere a assinatura base58 de message feita pela carteira
func VerifySignature(address string, message []byte, signature string) error {
	pub, err := PublicKey(address)
	if err != nil {
		return err
	}
	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return ErrInvalidSignature
	}
	if !ed25519.Verify(pub, message, sig) {
		return ErrInvalidSignature
	}
	return nil
}

// EncodeSignature é o inverso do formato aceito por VerifySignature
func EncodeSignature(sig []byte) string { return base58.Encode(sig) }

// EncodeAddress devolve o endereço base58 da chave pública
func EncodeAddress(pub ed25519.PublicKey) string { return base58.Encode(pub) }

// Addresses são as contas on-chain de uma aposta
type Addresses struct {
	BetAccount    string `json:"betAccount"`
	EscrowAccount string `json:"escrowAccount"`
}

// DeriveAddresses gera endereços determinísticos a partir do id, da criação
// e do criador da aposta. Usado quando a aposta ainda não tem contas gravadas.
func DeriveAddresses(betID string, createdAt time.Time, creatorID string) Addresses {
	seed := fmt.Sprintf("%s-%d-%s", betID, createdAt.UnixMilli(), creatorID)
	bet := sha256.Sum256([]byte("bet:" + seed))
	escrow := sha256.Sum256([]byte("escrow:" + seed))
	return Addresses{
		BetAccount:    base58.Encode(bet[:]),
		EscrowAccount: base58.Encode(escrow[:]),
	}
}
