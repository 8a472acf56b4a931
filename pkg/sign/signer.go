package sign

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Ensure our types implement the interfaces at compile time.
var _ Signer = (*EthereumSigner)(nil)
var _ Signer = DisabledSigner{}

// Signer produces secp256k1 signatures over digests.
type Signer interface {
	// Ready returns a *KeyError when the signer cannot sign at all.
	Ready() error
	// Sign signs a digest. The nonce is derived from the digest and the key,
	// so the same inputs always give the same signature.
	Sign(digest Digest) (RawSignature, error)
}

// EthereumSigner signs with go-ethereum's secp256k1 implementation, which
// derives nonces per RFC 6979.
type EthereumSigner struct {
	key *SecretKey
}

// NewEthereumSigner wraps an already validated key.
func NewEthereumSigner(key *SecretKey) *EthereumSigner {
	return &EthereumSigner{key: key}
}

// NewEthereumSignerFromHex parses privateKeyHex and wraps the result.
func NewEthereumSignerFromHex(privateKeyHex string) (*EthereumSigner, error) {
	key, err := ParseSecretKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	return NewEthereumSigner(key), nil
}

func (s *EthereumSigner) Ready() error {
	if s == nil || s.key == nil {
		return &KeyError{Err: ErrKeyMissing}
	}
	return nil
}

// Sign returns the raw (r, s) pair together with the recovery ID.
func (s *EthereumSigner) Sign(digest Digest) (RawSignature, error) {
	if err := s.Ready(); err != nil {
		return RawSignature{}, err
	}

	sig, err := ethcrypto.Sign(digest[:], s.key.priv)
	if err != nil {
		return RawSignature{}, fmt.Errorf("failed to sign digest: %w", err)
	}
	if len(sig) != ethcrypto.SignatureLength {
		return RawSignature{}, fmt.Errorf("invalid signature length: got %d, want %d", len(sig), ethcrypto.SignatureLength)
	}

	recoveryID := sig[64]
	return RawSignature{
		R:          new(big.Int).SetBytes(sig[:32]),
		S:          new(big.Int).SetBytes(sig[32:64]),
		RecoveryID: &recoveryID,
	}, nil
}

// Key returns the signer's key, for deriving its public identity.
func (s *EthereumSigner) Key() *SecretKey { return s.key }

// Address returns the address of the signing key.
func (s *EthereumSigner) Address() common.Address { return s.key.Address() }

// DisabledSigner stands in when no usable key was configured. Every call
// fails with the same *KeyError so the rest of the host keeps working.
type DisabledSigner struct {
	err *KeyError
}

// NewDisabledSigner returns a signer that always fails with cause. Causes that
// are not a *KeyError are reported as a missing key.
func NewDisabledSigner(cause error) DisabledSigner {
	var keyErr *KeyError
	if errors.As(cause, &keyErr) {
		return DisabledSigner{err: keyErr}
	}
	return DisabledSigner{err: &KeyError{Err: ErrKeyMissing}}
}

func (d DisabledSigner) Ready() error {
	if d.err == nil {
		return &KeyError{Err: ErrKeyMissing}
	}
	return d.err
}

func (d DisabledSigner) Sign(Digest) (RawSignature, error) {
	return RawSignature{}, d.Ready()
}
