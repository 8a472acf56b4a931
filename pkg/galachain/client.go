package galachain

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-retry"

	"github.com/snehendu098/ghost/galasigner/pkg/log"
)

// DefaultEndpoint is the public GalaSwap gateway of the public-key contract.
const DefaultEndpoint = "https://api-galaswap.gala.com/galachain/api/asset/public-key-contract/GetPublicKey"

// maxResponseBody bounds how much of a response is read.
const maxResponseBody = 1 << 20

// Config controls the lookup endpoint and its retry policy.
type Config struct {
	Endpoint    string        `env:"SIGNER_PUBKEY_ENDPOINT" env-default:"https://api-galaswap.gala.com/galachain/api/asset/public-key-contract/GetPublicKey" env-description:"GetPublicKey endpoint URL"`
	Timeout     time.Duration `env:"SIGNER_PUBKEY_TIMEOUT" env-default:"10s" env-description:"Timeout of a single lookup attempt"`
	MaxRetries  uint64        `env:"SIGNER_PUBKEY_MAX_RETRIES" env-default:"3" env-description:"Retries after a failed attempt"`
	BaseBackoff time.Duration `env:"SIGNER_PUBKEY_BACKOFF" env-default:"250ms" env-description:"First retry delay, doubled per retry"`
	MaxBackoff  time.Duration `env:"SIGNER_PUBKEY_MAX_BACKOFF" env-default:"5s" env-description:"Upper bound of a single retry delay"`
}

// Client calls GetPublicKey. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     log.Logger
}

// NewClient returns a client for cfg. Zero fields of cfg fall back to the
// defaults; a nil httpClient uses http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client, logger log.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 250 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.BaseBackoff {
		cfg.MaxBackoff = cfg.BaseBackoff
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Client{cfg: cfg, httpClient: httpClient, logger: logger.WithName("galachain")}
}

type getPublicKeyRequest struct {
	User string `json:"user"`
}

// GetPublicKey returns the public key registered for address.
func (c *Client) GetPublicKey(ctx context.Context, address string) (string, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(getPublicKeyRequest{User: address})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode GetPublicKey request")
	}

	backoff := retry.WithMaxRetries(c.cfg.MaxRetries,
		retry.WithCappedDuration(c.cfg.MaxBackoff, retry.NewExponential(c.cfg.BaseBackoff)))

	attempt := 0
	body, err := retry.DoValue(ctx, backoff, func(ctx context.Context) ([]byte, error) {
		attempt++
		body, err := c.fetch(ctx, payload)
		if err == nil {
			return body, nil
		}
		if ctx.Err() == nil && isTemporary(err) {
			c.logger.Warn("GetPublicKey attempt failed", "address", address, "attempt", attempt, "error", err)
			return nil, retry.RetryableError(err)
		}
		return nil, err
	})
	if err != nil {
		return "", errors.Wrapf(err, "public key lookup for %s failed after %d attempt(s)", address, attempt)
	}

	key, err := ParsePublicKey(body)
	if err != nil {
		return "", errors.Wrapf(err, "public key lookup for %s", address)
	}
	c.logger.Debug("public key resolved", "address", address, "attempts", attempt)
	return key, nil
}

func (c *Client) fetch(ctx context.Context, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build GetPublicKey request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &transportError{err: errors.Wrap(err, "failed to read GetPublicKey response")}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, body)
	}
	return body, nil
}

// transportError marks failures below HTTP, which are always retried.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTemporary(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	var tErr *transportError
	return errors.As(err, &tErr)
}
