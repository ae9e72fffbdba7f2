// Package service runs the invite flow: verify a signed challenge, burn its
// nonce, confirm domain ownership, then return an existing grant or mint and
// record a new one.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"invitegate/internal/challenge"
	"invitegate/internal/invite/metrics"
	"invitegate/internal/invite/models"
	"invitegate/internal/issuer"
	"invitegate/internal/ledger"
	"invitegate/internal/ownership"
	"invitegate/pkg/domain"
	dErrors "invitegate/pkg/domain-errors"
	"invitegate/pkg/platform/sentinel"
	"invitegate/pkg/requestcontext"
)

const tracerName = "invitegate/invite"

// Policy is the issuance policy.
type Policy struct {
	Chains       domain.Chains
	DomainSuffix string
	// MaxInvites caps grants on the primary chain; 0 means no cap.
	MaxInvites int
}

// Service orchestrates invite requests.
type Service struct {
	policy    Policy
	nonces    NonceStore
	verifier  ChallengeVerifier
	oracle    OwnershipOracle
	ledger    Ledger
	issuer    InviteIssuer
	publisher GrantPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p GrantPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func New(policy Policy, nonces NonceStore, verifier ChallengeVerifier, oracle OwnershipOracle, ledger Ledger, issuer InviteIssuer, opts ...Option) *Service {
	s := &Service{
		policy:   policy,
		nonces:   nonces,
		verifier: verifier,
		oracle:   oracle,
		ledger:   ledger,
		issuer:   issuer,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueNonce hands out a fresh challenge nonce.
func (s *Service) IssueNonce(ctx context.Context) (string, error) {
	nonce, err := s.nonces.Issue(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue nonce",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return "", internalError(err)
	}
	if s.metrics != nil {
		s.metrics.IncNonceIssued()
	}
	return nonce, nil
}

// RequestInvite runs one invite request to completion. A consumed nonce is
// never given back, whatever happens after it is burned.
func (s *Service) RequestInvite(ctx context.Context, req models.Request) (*models.Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "invite.RequestInvite")
	defer span.End()

	fl := newFlow(span)
	result, err := s.requestInvite(ctx, fl, req)
	s.finish(ctx, fl, req, result, err, start)
	return result, err
}

func (s *Service) requestInvite(ctx context.Context, fl *flow, req models.Request) (*models.Result, error) {
	name, err := domain.ParseDomainName(req.Domain, s.policy.DomainSuffix)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, models.ReasonInvalidDomain, "Invalid domain.")
	}
	if req.Message == "" || req.Signature == "" {
		return nil, dErrors.NewReason(dErrors.CodeInvalidInput, models.ReasonInvalidChallenge, "Invalid siwe data.")
	}

	fl.enter(StateVerifying)
	claim, err := s.verifier.Verify(ctx, req.Message, req.Signature, req.ExpectedNonce)
	if err != nil {
		return nil, verifierError(err)
	}
	fl.claim = claim

	fl.enter(StateNonceConsuming)
	if err := s.nonces.Consume(ctx, claim.Nonce); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeAuthFailed, models.ReasonNonceReuse, "Nonce re-use. Refresh and try again.")
		}
		return nil, internalError(err)
	}

	fl.enter(StateOwnershipChecking)
	owns, err := s.oracle.OwnsDomain(ctx, claim.Owner, name, claim.ChainID)
	switch {
	case errors.Is(err, ownership.ErrAccountNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeOwnership, models.ReasonOwnershipNotEstablished, "Account does not exist.")
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, models.ReasonOracleUnavailable, "Ownership could not be checked.")
	case !owns:
		return nil, dErrors.NewReason(dErrors.CodeOwnership, models.ReasonOwnershipNotEstablished, "Account does not own this domain.")
	}

	fl.enter(StateLedgerChecking)
	existing, err := s.ledger.FindExisting(ctx, name, claim.Owner, claim.ChainID)
	if err == nil {
		return &models.Result{Grant: existing, Fresh: false}, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, internalError(err)
	}
	if s.policy.Chains.IsPrimary(claim.ChainID) && s.policy.MaxInvites > 0 {
		issued, err := s.ledger.CountIssued(ctx, claim.ChainID)
		if err != nil {
			return nil, internalError(err)
		}
		if issued >= s.policy.MaxInvites {
			return nil, dErrors.NewReason(dErrors.CodeCapacity, models.ReasonCapReached, "Not issuing new invites currently. Try again later.")
		}
	}

	fl.enter(StateIssuing)
	code, err := s.issuer.Mint(ctx, claim.ChainID)
	if err != nil {
		if errors.Is(err, issuer.ErrChainNotSupported) {
			return nil, dErrors.Wrap(err, dErrors.CodeAuthFailed, models.ReasonChainNotSupported, "Chain not supported.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, models.ReasonUpstreamError, "Could not create new invite code.")
	}

	fl.enter(StateRecording)
	grant, err := s.ledger.Create(ctx, ledger.InviteGrant{
		Domain:     name,
		Owner:      claim.Owner,
		ChainID:    claim.ChainID,
		InviteCode: code,
		CreatedAt:  requestcontext.Now(ctx),
	})
	if errors.Is(err, sentinel.ErrConflict) {
		// A concurrent request recorded first; the code minted here is unused.
		winner, ferr := s.ledger.FindExisting(ctx, name, claim.Owner, claim.ChainID)
		if ferr == nil {
			s.logger.WarnContext(ctx, "lost grant race, returning existing grant",
				"request_id", requestcontext.RequestID(ctx),
				"domain", name.String(),
				"chain_id", claim.ChainID.String(),
			)
			return &models.Result{Grant: winner, Fresh: false}, nil
		}
		if errors.Is(ferr, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, models.ReasonLedgerInconsistent, "Ledger inconsistent.")
		}
		return nil, internalError(ferr)
	}
	if err != nil {
		return nil, internalError(err)
	}

	s.publish(ctx, *grant)
	return &models.Result{Grant: grant, Fresh: true}, nil
}

func (s *Service) publish(ctx context.Context, grant ledger.InviteGrant) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishGranted(ctx, grant); err != nil {
		if s.metrics != nil {
			s.metrics.IncEventFailed()
		}
		s.logger.WarnContext(ctx, "failed to publish grant event",
			"request_id", requestcontext.RequestID(ctx),
			"grant_id", grant.ID.String(),
			"error", err,
		)
	}
}

func (s *Service) finish(ctx context.Context, fl *flow, req models.Request, result *models.Result, err error, start time.Time) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"domain", req.Domain,
	}
	if fl.claim != nil {
		attrs = append(attrs, "chain_id", fl.claim.ChainID.String(), "owner", fl.claim.Owner.String())
		fl.span.SetAttributes(attribute.Int64("invite.chain_id", int64(fl.claim.ChainID)))
	}

	var outcome string
	if err != nil {
		reached := fl.state
		fl.enter(StateFailed)
		reason := models.ReasonInternal
		level := slog.LevelWarn
		if de, ok := dErrors.As(err); ok {
			reason = de.Reason
			if dErrors.IsServerSide(de.Code) {
				level = slog.LevelError
			}
		}
		outcome = reason
		fl.span.SetStatus(codes.Error, reason)
		fl.span.RecordError(err)
		attrs = append(attrs, "state", string(reached), "reason", reason, "error", err)
		s.logger.Log(ctx, level, "invite request failed", attrs...)
	} else {
		fl.enter(StateDone)
		outcome = "existing"
		if result.Fresh {
			outcome = "granted"
		}
		fl.span.SetAttributes(attribute.Bool("invite.fresh", result.Fresh))
		attrs = append(attrs, "state", string(StateDone), "fresh", result.Fresh, "grant_id", result.Grant.ID.String())
		s.logger.InfoContext(ctx, "invite request completed", attrs...)
	}

	if s.metrics != nil {
		s.metrics.IncRequest(outcome)
		s.metrics.ObserveRequestDuration(time.Since(start).Seconds())
		if err == nil {
			s.metrics.IncGrant(result.Grant.ChainID.String(), result.Fresh)
		}
	}
}

// Stats reports per-chain grant counts and the primary chain's headroom.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	counts, err := s.ledger.CountByChain(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	stats := &models.Stats{MaxLimit: s.policy.MaxInvites, Issued: counts}
	if s.policy.MaxInvites > 0 {
		primary := 0
		for _, c := range counts {
			if s.policy.Chains.IsPrimary(c.ChainID) {
				primary = c.Count
			}
		}
		stats.Remaining = max(s.policy.MaxInvites-primary, 0)
	}
	return stats, nil
}

// OwnedDomains lists the claimable names held by address on chainID.
func (s *Service) OwnedDomains(ctx context.Context, address, chainID string) (*models.OwnedDomains, error) {
	addr, err := domain.ParseAddress(address)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, models.ReasonInvalidRequest, "Invalid address.")
	}
	chain, err := domain.ParseChainID(chainID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, models.ReasonInvalidRequest, "Invalid chain id.")
	}
	if !s.policy.Chains.Supported(chain) {
		return nil, dErrors.NewReason(dErrors.CodeAuthFailed, models.ReasonChainNotSupported, "Chain not supported.")
	}
	names, err := s.oracle.Domains(ctx, addr, chain)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list owned domains",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, models.ReasonOracleUnavailable, "Ownership could not be checked.")
	}
	return &models.OwnedDomains{Address: addr, ChainID: chain, Domains: names}, nil
}

func verifierError(err error) error {
	switch {
	case errors.Is(err, challenge.ErrMalformed):
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, models.ReasonMalformedChallenge, "Malformed sign-in message.")
	case errors.Is(err, challenge.ErrChainNotSupported):
		return dErrors.Wrap(err, dErrors.CodeAuthFailed, models.ReasonChainNotSupported, "Chain not supported.")
	case errors.Is(err, challenge.ErrBadSignature):
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, models.ReasonInvalidSignature, "Invalid signature.")
	case errors.Is(err, challenge.ErrNonceMismatch):
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, models.ReasonNonceMismatch, "Nonce mismatch. Refresh and try again.")
	case errors.Is(err, challenge.ErrExpired):
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, models.ReasonMessageExpired, "Sign-in message expired. Refresh and try again.")
	case errors.Is(err, challenge.ErrDomainMismatch):
		return dErrors.Wrap(err, dErrors.CodeAuthFailed, models.ReasonDomainMismatch, "Sign-in message was issued for another site.")
	default:
		return internalError(err)
	}
}

func internalError(err error) error {
	return dErrors.Wrap(err, dErrors.CodeInternal, models.ReasonInternal, "Internal error.")
}
