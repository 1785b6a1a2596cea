package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog/log"
	"github.com/spruceid/siwe-go"

	"github.com/GoAgora/go-agora/internal/chain"
)

// Verifier checks signed SIWE messages.
type Verifier struct {
	chains chain.Source
	nonces *NonceStore
	now    func() time.Time
}

// NewVerifier returns a verifier consuming nonces from nonces.
// chains serves the EIP-1271 fallback, a nil chains disables it.
func NewVerifier(chains chain.Source, nonces *NonceStore) *Verifier {
	return &Verifier{chains: chains, nonces: nonces, now: time.Now}
}

// Verify checks that message was signed by its address for domain and uses an issued nonce.
func (v *Verifier) Verify(ctx context.Context, domain, message, signature string) (*siwe.Message, error) {
	msg, err := siwe.ParseMessage(message)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if domain != "" && msg.GetDomain() != domain {
		return nil, ErrDomainMismatch
	}

	if ok, errValid := msg.ValidAt(v.now()); !ok || errValid != nil {
		return nil, ErrInvalidMessage
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if !v.eoaSignature(msg, signature, sig) && !v.contractSignature(ctx, msg, message, sig) {
		return nil, ErrInvalidSignature
	}

	ok, err := v.nonces.Consume(msg.GetNonce())
	if err != nil {
		return nil, fmt.Errorf("consume nonce: %w", err)
	}

	if !ok {
		return nil, ErrInvalidNonce
	}

	return msg, nil
}

// eoaSignature reports whether sig is an EIP-191 signature of msg by its address.
// Only 65 byte signatures can come from an EOA.
func (v *Verifier) eoaSignature(msg *siwe.Message, signature string, sig []byte) bool {
	if len(sig) != crypto.SignatureLength {
		return false
	}

	if _, err := msg.VerifyEIP191(signature); err != nil {
		log.Debug().Err(err).Str("address", msg.GetAddress().Hex()).Msg("eoa signature check failed, trying eip-1271")
		return false
	}

	return true
}

// contractSignature asks a smart contract wallet whether it signed message.
func (v *Verifier) contractSignature(ctx context.Context, msg *siwe.Message, message string, sig []byte) bool {
	if v.chains == nil {
		return false
	}

	chainID := int64(msg.GetChainID())
	if chainID <= 0 {
		chainID = chain.MainnetID
	}

	r, err := v.chains.Reader(ctx, chainID)
	if err != nil {
		log.Warn().Err(err).Int64("chain_id", chainID).Msg("no reader for eip-1271 check")
		return false
	}

	addr := msg.GetAddress()

	code, err := r.CodeAt(ctx, addr)
	if err != nil || len(code) == 0 {
		return false
	}

	hash := common.BytesToHash(accounts.TextHash([]byte(message)))

	valid, err := r.IsValidSignature(ctx, addr, hash, sig)
	if err != nil {
		log.Warn().Err(err).Str("address", addr.Hex()).Int64("chain_id", chainID).Msg("eip-1271 check failed")
		return false
	}

	return valid
}
