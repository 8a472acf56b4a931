package sign

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// DigestLength is the size of a Keccak-256 output.
const DigestLength = 32

// Digest is the Keccak-256 hash that gets signed.
type Digest [DigestLength]byte

// Keccak256 hashes data exactly as given.
func Keccak256(data []byte) Digest {
	return Digest(ethcrypto.Keccak256Hash(data))
}

func (d Digest) Bytes() []byte { return d[:] }

// String implements the fmt.Stringer interface
func (d Digest) String() string {
	return hexutil.Encode(d[:])
}
