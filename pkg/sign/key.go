package sign

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SecretKeyLength is the byte length of a secp256k1 private scalar.
const SecretKeyLength = 32

// SecretKey is an immutable secp256k1 private key. It is safe for concurrent use
// and prints as a placeholder so it cannot leak through formatting.
type SecretKey struct {
	priv *ecdsa.PrivateKey
}

// ParseSecretKey parses 64 hexadecimal characters, optionally prefixed with "0x".
// All validation happens here, before the key can reach a signer.
func ParseSecretKey(privateKeyHex string) (*SecretKey, error) {
	if privateKeyHex == "" {
		return nil, &KeyError{Err: ErrKeyMissing}
	}

	digits := privateKeyHex
	if len(digits) >= 2 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		digits = digits[2:]
	}
	if len(digits) != 2*SecretKeyLength {
		return nil, &KeyError{
			Err:    ErrKeyMalformed,
			Detail: fmt.Sprintf("expected %d hex characters, got %d", 2*SecretKeyLength, len(digits)),
		}
	}

	raw, err := hex.DecodeString(digits)
	if err != nil {
		return nil, &KeyError{Err: ErrKeyMalformed, Detail: "key contains non-hexadecimal characters"}
	}
	defer clear(raw)

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(raw); overflow || scalar.IsZero() {
		return nil, &KeyError{Err: ErrKeyOutOfRange}
	}
	scalar.Zero()

	priv, err := ethcrypto.ToECDSA(raw)
	if err != nil {
		return nil, &KeyError{Err: ErrKeyOutOfRange}
	}
	return &SecretKey{priv: priv}, nil
}

// PublicKey returns the public half of the key.
func (k *SecretKey) PublicKey() *ecdsa.PublicKey {
	return &k.priv.PublicKey
}

// PublicKeyHex returns the uncompressed public key as 0x-prefixed hex.
func (k *SecretKey) PublicKeyHex() string {
	return hexutil.Encode(ethcrypto.FromECDSAPub(&k.priv.PublicKey))
}

// Address returns the Ethereum-style address derived from the public key.
func (k *SecretKey) Address() common.Address {
	return ethcrypto.PubkeyToAddress(k.priv.PublicKey)
}

func (k *SecretKey) String() string { return "SecretKey(redacted)" }

func (k *SecretKey) GoString() string { return k.String() }
