package sign

import (
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	curveOrder     = new(big.Int).Set(ethcrypto.S256().Params().N)
	halfCurveOrder = new(big.Int).Rsh(curveOrder, 1)
)

// CurveOrder returns a copy of the secp256k1 group order n.
func CurveOrder() *big.Int { return new(big.Int).Set(curveOrder) }

// RawSignature is a signature as produced by a Signer. RecoveryID is nil when
// the signer does not report one.
type RawSignature struct {
	R, S       *big.Int
	RecoveryID *byte
}

// NormalizedSignature is a RawSignature with s <= n/2.
type NormalizedSignature struct {
	R, S       *big.Int
	RecoveryID *byte
}

// IsLowS reports whether s lies in the lower half of the curve order.
func (sig NormalizedSignature) IsLowS() bool {
	return sig.S != nil && sig.S.Cmp(halfCurveOrder) <= 0
}

// Normalize rewrites sig into low-s form. When s > n/2 it becomes n - s and the
// recovery ID, if any, is flipped: negating s negates the nonce point, which
// swaps the recoverable public key. The input is never modified.
func Normalize(sig RawSignature) NormalizedSignature {
	r := copyInt(sig.R)
	s := copyInt(sig.S)

	var recoveryID *byte
	if sig.RecoveryID != nil {
		id := *sig.RecoveryID
		recoveryID = &id
	}

	if s.Cmp(halfCurveOrder) > 0 {
		s.Sub(curveOrder, s)
		if recoveryID != nil {
			*recoveryID ^= 1
		}
	}

	return NormalizedSignature{R: r, S: s, RecoveryID: recoveryID}
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
