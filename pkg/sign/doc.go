// Package sign produces deterministic secp256k1 signatures over JSON-like objects.
//
// A signature is computed by a fixed pipeline:
//
//   - canonicalize the object (package canonical, RFC 8785 with the
//     top-level "signature" key left out)
//   - hash the canonical bytes with Keccak-256
//   - sign the digest with secp256k1, nonce derived per RFC 6979
//   - normalize to low-s form
//   - encode as DER and then base64
//
// Every step is deterministic, so signing the same object with the same key
// always yields the same bytes, whatever the key order of the input.
//
// # Security Design
//
// This package follows security best practices by:
//   - Validating the key once, before it can reach a signer
//   - Never exposing private key material through errors or formatting
//   - Keeping keys immutable so they can be shared across goroutines
//
// Usage
//
//	key, err := sign.ParseSecretKey(os.Getenv("GALA_PK_HEX"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	service := sign.NewService(sign.NewEthereumSigner(key))
//
//	result, err := service.SignObject(map[string]any{"a": 1, "b": "x"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Signature, result.StringToSign)
package sign
