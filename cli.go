package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/snehendu098/ghost/galasigner/pkg/galachain"
	"github.com/snehendu098/ghost/galasigner/pkg/log"
	"github.com/snehendu098/ghost/galasigner/pkg/sign"
)

const cliUsage = `usage:
  galasigner                    run the signing API
  galasigner sign [file]        sign the JSON object in file, or stdin
  galasigner address            print the signer address and public key
  galasigner pubkey <address>   look up the registered public key of a wallet address`

// runCli executes one command and writes its JSON result to stdout.
func runCli(ctx context.Context, logger log.Logger, cfg *Config, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(cliUsage)
	}

	switch args[0] {
	case "sign":
		if len(args) > 2 {
			return errors.New("sign takes at most one file argument")
		}
		in := stdin
		if len(args) == 2 && args[1] != "-" {
			file, err := os.Open(args[1])
			if err != nil {
				return errors.Wrap(err, "failed to open payload file")
			}
			defer file.Close()
			in = file
		}
		service, _ := newSigningService(cfg.PrivateKeyHex, logger)
		return signCommand(in, stdout, service)
	case "address":
		key, err := sign.ParseSecretKey(cfg.PrivateKeyHex)
		if err != nil {
			return fmt.Errorf("%w. %s", err, keyErrorHint)
		}
		return writeJSON(stdout, map[string]string{
			"address":   key.Address().Hex(),
			"publicKey": key.PublicKeyHex(),
		})
	case "pubkey":
		if len(args) != 2 {
			return errors.New("pubkey takes exactly one wallet address")
		}
		client := galachain.NewClient(cfg.PublicKey, nil, logger)
		publicKey, err := client.GetPublicKey(ctx, args[1])
		if err != nil {
			return err
		}
		return writeJSON(stdout, map[string]string{"publicKey": publicKey})
	case "help", "-h", "--help":
		_, err := fmt.Fprintln(stdout, cliUsage)
		return err
	default:
		return errors.Errorf("unknown CLI command %q\n%s", args[0], cliUsage)
	}
}

// signCommand signs the single JSON object read from in.
func signCommand(in io.Reader, out io.Writer, service *sign.Service) error {
	decoder := json.NewDecoder(io.LimitReader(in, 64<<20))
	decoder.UseNumber()

	var payload map[string]any
	if err := decoder.Decode(&payload); err != nil {
		return errors.Wrap(err, "payload must be a JSON object")
	}
	if payload == nil {
		return errors.New("payload must be a JSON object")
	}

	result, err := service.SignObject(payload)
	if err != nil {
		return err
	}
	return writeJSON(out, result)
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

// newSigningService parses the configured key. Without a usable key the
// service still starts, and every signing call fails with the key error.
func newSigningService(privateKeyHex string, logger log.Logger) (*sign.Service, *sign.SecretKey) {
	key, err := sign.ParseSecretKey(privateKeyHex)
	if err != nil {
		logger.Warn("signing disabled until a valid key is configured",
			"reason", err.Error(),
			"hint", keyErrorHint,
		)
		return sign.NewService(sign.NewDisabledSigner(err)), nil
	}

	logger.Info("signer initialized", "address", key.Address().Hex(), "publicKey", key.PublicKeyHex())
	return sign.NewService(sign.NewEthereumSigner(key)), key
}
