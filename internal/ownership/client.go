// Package ownership asks the ENS subgraph which names an account holds.
package ownership

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
	pstrings "invitegate/pkg/platform/strings"
)

var (
	ErrOracleUnavailable = errors.New("ownership oracle unavailable")
	ErrAccountNotFound   = errors.New("account not found")
	ErrChainNotSupported = errors.New("no ownership oracle for chain")
)

const (
	DefaultTimeout = 10 * time.Second
	metricTarget   = "subgraph"

	ownsQuery = `query Owns($id: ID!, $name: String!) {
  account(id: $id) {
    id
    domains(where: {name: $name}) { id name }
    wrappedDomains(where: {name: $name}) { id name }
  }
}`

	listQuery = `query Names($id: ID!) {
  account(id: $id) {
    id
    domains { id name }
    wrappedDomains { id name }
  }
}`
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		Account *account `json:"account"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type account struct {
	ID             string      `json:"id"`
	Domains        []namedNode `json:"domains"`
	WrappedDomains []namedNode `json:"wrappedDomains"`
}

type namedNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client queries one subgraph endpoint per chain.
type Client struct {
	endpoints  map[domain.ChainID]string
	httpClient *http.Client
	timeout    time.Duration
	suffix     string
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

// WithSuffix sets the name suffix Domains filters on (default ".eth").
func WithSuffix(suffix string) Option {
	return func(cl *Client) {
		if suffix != "" {
			cl.suffix = suffix
		}
	}
}

func NewClient(endpoints map[domain.ChainID]string, opts ...Option) *Client {
	c := &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{Transport: telemetry.Transport(nil)},
		timeout:    DefaultTimeout,
		suffix:     ".eth",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// OwnsDomain reports whether address holds name, plainly or wrapped.
func (c *Client) OwnsDomain(ctx context.Context, address domain.Address, name domain.DomainName, chainID domain.ChainID) (bool, error) {
	acct, err := c.query(ctx, chainID, ownsQuery, map[string]any{
		"id":   address.String(),
		"name": name.String(),
	})
	if err != nil {
		return false, err
	}
	if acct == nil {
		return false, ErrAccountNotFound
	}
	for _, d := range append(acct.Domains, acct.WrappedDomains...) {
		if d.Name == name.String() {
			return true, nil
		}
	}
	return false, nil
}

// Domains lists the second-level names held by address. An unknown account
// has none.
func (c *Client) Domains(ctx context.Context, address domain.Address, chainID domain.ChainID) ([]string, error) {
	acct, err := c.query(ctx, chainID, listQuery, map[string]any{"id": address.String()})
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return []string{}, nil
	}
	var names []string
	for _, d := range append(acct.Domains, acct.WrappedDomains...) {
		n, err := domain.ParseDomainName(d.Name, c.suffix)
		if err != nil || !n.IsSecondLevel(c.suffix) {
			continue
		}
		names = append(names, d.Name)
	}
	return pstrings.Dedupe(names), nil
}

func (c *Client) query(ctx context.Context, chainID domain.ChainID, query string, vars map[string]any) (_ *account, err error) {
	endpoint, ok := c.endpoints[chainID]
	if !ok || endpoint == "" {
		return nil, fmt.Errorf("%w: %s", ErrChainNotSupported, chainID)
	}

	start := time.Now()
	defer func() {
		metrics.ObserveExternalCall(metricTarget, outcome(err), start)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("encode subgraph query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrOracleUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrOracleUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out graphQLResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrOracleUnavailable, err)
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("%w: graphql: %s", ErrOracleUnavailable, out.Errors[0].Message)
	}
	return out.Data.Account, nil
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
