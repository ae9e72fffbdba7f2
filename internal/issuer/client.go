// Package issuer mints invite codes from the upstream AT Protocol PDS.
package issuer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"invitegate/internal/platform/metrics"
	"invitegate/internal/platform/telemetry"
	"invitegate/pkg/domain"
)

var (
	ErrUpstream          = errors.New("invite authority error")
	ErrChainNotSupported = errors.New("chain not supported by issuer")
)

const (
	DefaultTestChainCode = "stems-social-fakeinvite"
	DefaultTimeout       = 10 * time.Second

	createInvitePath = "/xrpc/com.atproto.server.createInviteCode"
	metricTarget     = "pds"
)

// Client mints real codes on the primary chain and a fixed sentinel code on
// the test chain.
type Client struct {
	chains        domain.Chains
	baseURL       string
	adminUser     string
	adminPassword string
	testCode      string
	httpClient    *http.Client
	timeout       time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

func WithTestChainCode(code string) Option {
	return func(cl *Client) {
		if code != "" {
			cl.testCode = code
		}
	}
}

func WithAdminUser(user string) Option {
	return func(cl *Client) {
		if user != "" {
			cl.adminUser = user
		}
	}
}

func NewClient(chains domain.Chains, baseURL, adminPassword string, opts ...Option) *Client {
	c := &Client{
		chains:        chains,
		baseURL:       strings.TrimRight(baseURL, "/"),
		adminUser:     "admin",
		adminPassword: adminPassword,
		testCode:      DefaultTestChainCode,
		httpClient:    &http.Client{Transport: telemetry.Transport(nil)},
		timeout:       DefaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Mint returns a new single-use invite code for chainID.
func (c *Client) Mint(ctx context.Context, chainID domain.ChainID) (string, error) {
	switch {
	case c.chains.IsPrimary(chainID):
		return c.createInviteCode(ctx)
	case c.chains.IsTest(chainID):
		return c.testCode, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrChainNotSupported, chainID)
	}
}

type createInviteRequest struct {
	UseCount int `json:"useCount"`
}

type createInviteResponse struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) createInviteCode(ctx context.Context) (code string, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveExternalCall(metricTarget, outcome(err), start)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(createInviteRequest{UseCount: 1})
	if err != nil {
		return "", fmt.Errorf("encode invite request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createInvitePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.adminUser, c.adminPassword)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	var out createInviteResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s %s", ErrUpstream, resp.StatusCode, out.Error, out.Message)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUpstream, decodeErr)
	}
	if out.Code == "" {
		return "", fmt.Errorf("%w: response has no code", ErrUpstream)
	}
	return out.Code, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeError
	}
}
