package sign

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyMissing means no private key was configured.
	ErrKeyMissing = errors.New("private key missing")
	// ErrKeyMalformed means the configured key is not 64 hexadecimal characters.
	ErrKeyMalformed = errors.New("private key malformed")
	// ErrKeyOutOfRange means the key is zero or not below the curve order.
	ErrKeyOutOfRange = errors.New("private key is not a valid secp256k1 scalar")
)

// KeyError reports a missing or unusable private key.
// It never carries key material.
type KeyError struct {
	Err    error
	Detail string
}

func (e *KeyError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Detail)
}

func (e *KeyError) Unwrap() error { return e.Err }

// Stage names a step of the signing pipeline.
type Stage string

const (
	StageKey          Stage = "key"
	StageCanonicalize Stage = "canonicalize"
	StageSign         Stage = "sign"
)

// SigningError is returned by Service.SignObject. Err is the failing stage's
// error as produced by that stage.
type SigningError struct {
	Stage Stage
	Err   error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }
