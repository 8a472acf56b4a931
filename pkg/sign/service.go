package sign

import (
	"github.com/snehendu098/ghost/galasigner/pkg/canonical"
)

// Result is the outcome of signing one object. Only Signature and
// StringToSign are part of the wire format.
type Result struct {
	Signature    EncodedSignature `json:"signature"`
	StringToSign string           `json:"stringToSign"`

	Digest     Digest              `json:"-"`
	Normalized NormalizedSignature `json:"-"`
}

// Service signs objects: canonicalize, hash, sign, normalize, encode.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	signer Signer
}

func NewService(signer Signer) *Service {
	return &Service{signer: signer}
}

// Ready reports whether the underlying signer has a usable key.
func (s *Service) Ready() error {
	return s.signer.Ready()
}

// SignObject signs obj. Any failure aborts the whole call and is returned as a
// *SigningError wrapping the failing stage's error; there is no partial
// result. A missing key is reported before the object is looked at.
func (s *Service) SignObject(obj map[string]any) (Result, error) {
	if err := s.signer.Ready(); err != nil {
		return Result{}, &SigningError{Stage: StageKey, Err: err}
	}

	canonicalBytes, err := canonical.Canonicalize(obj)
	if err != nil {
		return Result{}, &SigningError{Stage: StageCanonicalize, Err: err}
	}

	digest := Keccak256(canonicalBytes)
	raw, err := s.signer.Sign(digest)
	if err != nil {
		return Result{}, &SigningError{Stage: StageSign, Err: err}
	}
	normalized := Normalize(raw)

	return Result{
		Signature:    Encode(normalized),
		StringToSign: string(canonicalBytes),
		Digest:       digest,
		Normalized:   normalized,
	}, nil
}
