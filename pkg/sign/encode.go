package sign

import (
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// EncodedSignature is the base64 (standard alphabet, padded) form of a DER
// ECDSA signature.
type EncodedSignature string

func (e EncodedSignature) String() string { return string(e) }

// Encode serializes sig as DER, SEQUENCE { INTEGER r, INTEGER s } with minimal
// big-endian integers, and then as base64.
func Encode(sig NormalizedSignature) EncodedSignature {
	return EncodedSignature(base64.StdEncoding.EncodeToString(MarshalDER(sig)))
}

// MarshalDER returns the DER encoding of sig.
func MarshalDER(sig NormalizedSignature) []byte {
	var r, s secp256k1.ModNScalar
	r.SetByteSlice(copyInt(sig.R).Bytes())
	s.SetByteSlice(copyInt(sig.S).Bytes())
	return ecdsa.NewSignature(&r, &s).Serialize()
}

// DecodeSignature reverses Encode. The DER must be strict: minimal integers,
// 0 < r, s < n, and no trailing bytes. The recovery ID is not part of the
// encoding and comes back nil.
func DecodeSignature(encoded EncodedSignature) (NormalizedSignature, error) {
	der, err := base64.StdEncoding.Strict().DecodeString(string(encoded))
	if err != nil {
		return NormalizedSignature{}, fmt.Errorf("invalid base64 signature: %w", err)
	}
	if _, err := ecdsa.ParseDERSignature(der); err != nil {
		return NormalizedSignature{}, fmt.Errorf("invalid DER signature: %w", err)
	}

	r, s := new(big.Int), new(big.Int)
	input := cryptobyte.String(der)
	var inner cryptobyte.String
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return NormalizedSignature{}, fmt.Errorf("invalid DER signature structure")
	}

	return NormalizedSignature{R: r, S: s}, nil
}
