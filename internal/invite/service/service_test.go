package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"invitegate/internal/challenge"
	"invitegate/internal/challenge/challengetest"
	"invitegate/internal/invite/metrics"
	"invitegate/internal/invite/models"
	"invitegate/internal/invite/service/mocks"
	"invitegate/internal/issuer"
	"invitegate/internal/ledger"
	"invitegate/internal/nonce"
	"invitegate/internal/ownership"
	"invitegate/pkg/domain"
	dErrors "invitegate/pkg/domain-errors"
	"invitegate/pkg/platform/sentinel"
	"invitegate/pkg/requestcontext"
)

var testChains = domain.Chains{Primary: domain.ChainMainnet, Test: domain.ChainGoerli}

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	oracle    *mocks.MockOwnershipOracle
	issuer    *mocks.MockInviteIssuer
	publisher *mocks.MockGrantPublisher
	nonces    *nonce.InMemoryStore
	ledger    *ledger.InMemoryStore
	metrics   *metrics.Metrics
	logs      *bytes.Buffer
	service   *Service
	alice     *challengetest.Signer
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.oracle = mocks.NewMockOwnershipOracle(s.ctrl)
	s.issuer = mocks.NewMockInviteIssuer(s.ctrl)
	s.publisher = mocks.NewMockGrantPublisher(s.ctrl)
	s.nonces = nonce.NewInMemoryStore()
	s.ledger = ledger.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.logs = &bytes.Buffer{}
	s.alice = challengetest.NewSigner(s.T())
	s.service = s.newService(0, s.ledger)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) newService(maxInvites int, l Ledger) *Service {
	return New(
		Policy{Chains: testChains, DomainSuffix: ".eth", MaxInvites: maxInvites},
		s.nonces,
		challenge.NewVerifier(testChains),
		s.oracle,
		l,
		s.issuer,
		WithLogger(slog.New(slog.NewJSONHandler(s.logs, nil))),
		WithMetrics(s.metrics),
		WithPublisher(s.publisher),
	)
}

// request runs the nonce + sign steps a wallet performs and returns the
// invite request it would submit.
func (s *ServiceSuite) request(signer *challengetest.Signer, chain domain.ChainID, name string) models.Request {
	token, err := s.service.IssueNonce(context.Background())
	s.Require().NoError(err)
	msg, sig := signer.SignedChallenge(s.T(), chain, token)
	return models.Request{Message: msg, Signature: sig, Domain: name, ExpectedNonce: token}
}

func (s *ServiceSuite) requireReason(err error, code dErrors.Code, reason string) {
	s.T().Helper()
	s.Require().Error(err)
	de, ok := dErrors.As(err)
	s.Require().True(ok, "expected domain error, got %v", err)
	s.Equal(code, de.Code)
	s.Equal(reason, de.Reason)
}

func (s *ServiceSuite) TestFreshThenExistingGrant() {
	ctx := context.Background()
	s.oracle.EXPECT().OwnsDomain(gomock.Any(), s.alice.Owner(), domain.DomainName("alice.eth"), domain.ChainMainnet).Return(true, nil).Times(2)
	s.issuer.EXPECT().Mint(gomock.Any(), domain.ChainMainnet).Return("stems-social-aaaaa-bbbbb", nil).Times(1)
	s.publisher.EXPECT().PublishGranted(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, g ledger.InviteGrant) error {
			s.Equal(domain.DomainName("alice.eth"), g.Domain)
			s.Equal(s.alice.Owner(), g.Owner)
			return nil
		}).Times(1)

	first, err := s.service.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
	s.Require().NoError(err)
	s.True(first.Fresh)
	s.Equal("stems-social-aaaaa-bbbbb", first.Grant.InviteCode)

	second, err := s.service.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
	s.Require().NoError(err)
	s.False(second.Fresh)
	s.Equal(first.Grant.InviteCode, second.Grant.InviteCode)

	s.Equal(1.0, promtest.ToFloat64(s.metrics.Requests.WithLabelValues("granted")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Requests.WithLabelValues("existing")))
	s.Equal(2.0, promtest.ToFloat64(s.metrics.NoncesIssued))
}

func (s *ServiceSuite) TestGrantStampedWithRequestTime() {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.issuer.EXPECT().Mint(gomock.Any(), domain.ChainMainnet).Return("code-1", nil)
	s.publisher.EXPECT().PublishGranted(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, g ledger.InviteGrant) error {
			s.True(at.Equal(g.CreatedAt))
			return nil
		})

	res, err := s.service.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
	s.Require().NoError(err)
	s.True(at.Equal(res.Grant.CreatedAt))

	stored, err := s.ledger.FindExisting(context.Background(), "alice.eth", s.alice.Owner(), domain.ChainMainnet)
	s.Require().NoError(err)
	s.True(at.Equal(stored.CreatedAt))
}

func (s *ServiceSuite) TestSameOwnerOtherDomainGetsExistingGrant() {
	ctx := context.Background()
	s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(2)
	s.issuer.EXPECT().Mint(gomock.Any(), domain.ChainMainnet).Return("code-1", nil).Times(1)
	s.publisher.EXPECT().PublishGranted(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
	s.Require().NoError(err)

	res, err := s.service.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice2.eth"))
	s.Require().NoError(err)
	s.False(res.Fresh)
	s.Equal(domain.DomainName("alice.eth"), res.Grant.Domain)
}

func (s *ServiceSuite) TestInvalidDomainRejectedBeforeAnyWork() {
	ctx := context.Background()
	for _, name := range []string{"", "alice", "alice.com", "Alice.eth", "ALICE.ETH", ".eth", " alice.eth", "alice.eth "} {
		s.Run(name, func() {
			req := s.request(s.alice, domain.ChainMainnet, name)
			_, err := s.service.RequestInvite(ctx, req)
			s.requireReason(err, dErrors.CodeInvalidInput, models.ReasonInvalidDomain)

			// nonce untouched: it can still be consumed
			s.NoError(s.nonces.Consume(ctx, req.ExpectedNonce))
		})
	}
	s.Equal(8, s.nonces.Len())
}

func (s *ServiceSuite) TestMissingChallenge() {
	_, err := s.service.RequestInvite(context.Background(), models.Request{Domain: "alice.eth", Signature: "0x00"})
	s.requireReason(err, dErrors.CodeInvalidInput, models.ReasonInvalidChallenge)

	_, err = s.service.RequestInvite(context.Background(), models.Request{Domain: "alice.eth", Message: "hi"})
	s.requireReason(err, dErrors.CodeInvalidInput, models.ReasonInvalidChallenge)
}

func (s *ServiceSuite) TestVerifierFailures() {
	ctx := context.Background()

	s.Run("unsupported chain", func() {
		req := s.request(s.alice, domain.ChainID(137), "alice.eth")
		_, err := s.service.RequestInvite(ctx, req)
		s.requireReason(err, dErrors.CodeAuthFailed, models.ReasonChainNotSupported)
		s.Equal(400, dErrors.ToHTTPStatus(dErrors.CodeAuthFailed))
	})

	s.Run("signature from another key", func() {
		req := s.request(s.alice, domain.ChainMainnet, "alice.eth")
		req.Signature = challengetest.NewSigner(s.T()).Sign(s.T(), req.Message)
		_, err := s.service.RequestInvite(ctx, req)
		s.requireReason(err, dErrors.CodeUnauthorized, models.ReasonInvalidSignature)
	})

	s.Run("no session", func() {
		req := s.request(s.alice, domain.ChainMainnet, "alice.eth")
		req.ExpectedNonce = ""
		_, err := s.service.RequestInvite(ctx, req)
		s.requireReason(err, dErrors.CodeUnauthorized, models.ReasonNonceMismatch)
	})

	s.Run("malformed", func() {
		_, err := s.service.RequestInvite(ctx, models.Request{Domain: "alice.eth", Message: "hello", Signature: "0x00", ExpectedNonce: "abcdefgh"})
		s.requireReason(err, dErrors.CodeInvalidInput, models.ReasonMalformedChallenge)
	})

	s.Equal(0, s.nonces.Len(), "verifier failures never consume the nonce")
}

func (s *ServiceSuite) TestNonceReuse() {
	ctx := context.Background()
	s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(1)

	req := s.request(s.alice, domain.ChainMainnet, "alice.eth")
	_, err := s.service.RequestInvite(ctx, req)
	s.requireReason(err, dErrors.CodeOwnership, models.ReasonOwnershipNotEstablished)

	// the nonce was burned by the failed attempt and is not refunded
	_, err = s.service.RequestInvite(ctx, req)
	s.requireReason(err, dErrors.CodeAuthFailed, models.ReasonNonceReuse)
}

func (s *ServiceSuite) TestConcurrentSameNonceOnlyOnePasses() {
	ctx := context.Background()
	s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(1)
	s.issuer.EXPECT().Mint(gomock.Any(), gomock.Any()).Return("code-1", nil).Times(1)
	s.publisher.EXPECT().PublishGranted(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	req := s.request(s.alice, domain.ChainMainnet, "alice.eth")
	const workers = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ok    int
		reuse int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.RequestInvite(ctx, req)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if dErrors.HasReason(err, models.ReasonNonceReuse) {
				reuse++
			}
		}()
	}
	wg.Wait()
	s.Equal(1, ok)
	s.Equal(workers-1, reuse)
}

func (s *ServiceSuite) TestOwnershipFailures() {
	ctx := context.Background()

	s.Run("account not found", func() {
		s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, ownership.ErrAccountNotFound)
		_, err := s.service.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
		s.requireReason(err, dErrors.CodeOwnership, models.ReasonOwnershipNotEstablished)
	})

	s.Run("oracle unavailable", func() {
		s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, ownership.ErrOracleUnavailable)
		_, err := s.service.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
		s.requireReason(err, dErrors.CodeUpstream, models.ReasonOracleUnavailable)
		s.Equal(500, dErrors.ToHTTPStatus(dErrors.CodeUpstream))
	})

	s.Equal(2, s.nonces.Len(), "nonces stay consumed after later failures")
}

func (s *ServiceSuite) TestCapAppliesToPrimaryChainOnly() {
	ctx := context.Background()
	svc := s.newService(1, s.ledger)
	_, err := s.ledger.Create(ctx, ledger.InviteGrant{
		Domain: "bob.eth", Owner: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", ChainID: domain.ChainMainnet, InviteCode: "bob-code",
	})
	s.Require().NoError(err)

	s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(2)
	s.issuer.EXPECT().Mint(gomock.Any(), domain.ChainGoerli).Return(issuer.DefaultTestChainCode, nil).Times(1)
	s.publisher.EXPECT().PublishGranted(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	_, err = svc.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
	s.requireReason(err, dErrors.CodeCapacity, models.ReasonCapReached)

	res, err := svc.RequestInvite(ctx, s.request(s.alice, domain.ChainGoerli, "alice.eth"))
	s.Require().NoError(err)
	s.True(res.Fresh)
	s.Equal(issuer.DefaultTestChainCode, res.Grant.InviteCode)
}

func (s *ServiceSuite) TestCapDoesNotBlockExistingGrant() {
	ctx := context.Background()
	svc := s.newService(1, s.ledger)
	_, err := s.ledger.Create(ctx, ledger.InviteGrant{
		Domain: "alice.eth", Owner: s.alice.Owner(), ChainID: domain.ChainMainnet, InviteCode: "alice-code",
	})
	s.Require().NoError(err)
	s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	res, err := svc.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
	s.Require().NoError(err)
	s.False(res.Fresh)
	s.Equal("alice-code", res.Grant.InviteCode)
}

func (s *ServiceSuite) TestIssuerFailureRecordsNothing() {
	ctx := context.Background()
	s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.issuer.EXPECT().Mint(gomock.Any(), domain.ChainMainnet).Return("", issuer.ErrUpstream)

	_, err := s.service.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
	s.requireReason(err, dErrors.CodeUpstream, models.ReasonUpstreamError)

	n, err := s.ledger.CountIssued(ctx, domain.ChainMainnet)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *ServiceSuite) TestCreateConflictReturnsWinner() {
	ctx := context.Background()
	l := mocks.NewMockLedger(s.ctrl)
	svc := s.newService(0, l)
	winner := &ledger.InviteGrant{ID: uuid.New(), Domain: "alice.eth", Owner: s.alice.Owner(), ChainID: domain.ChainMainnet, InviteCode: "winner"}

	s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.issuer.EXPECT().Mint(gomock.Any(), domain.ChainMainnet).Return("loser", nil)
	gomock.InOrder(
		l.EXPECT().FindExisting(gomock.Any(), domain.DomainName("alice.eth"), s.alice.Owner(), domain.ChainMainnet).Return(nil, sentinel.ErrNotFound),
		l.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrConflict),
		l.EXPECT().FindExisting(gomock.Any(), domain.DomainName("alice.eth"), s.alice.Owner(), domain.ChainMainnet).Return(winner, nil),
	)

	res, err := svc.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
	s.Require().NoError(err)
	s.False(res.Fresh)
	s.Equal("winner", res.Grant.InviteCode)
}

func (s *ServiceSuite) TestCreateConflictWithoutWinnerIsInconsistent() {
	ctx := context.Background()
	l := mocks.NewMockLedger(s.ctrl)
	svc := s.newService(0, l)

	s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.issuer.EXPECT().Mint(gomock.Any(), gomock.Any()).Return("code", nil)
	l.EXPECT().FindExisting(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound).Times(2)
	l.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrConflict)

	_, err := svc.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
	s.requireReason(err, dErrors.CodeInternal, models.ReasonLedgerInconsistent)
	s.Contains(s.logs.String(), `"state":"recording"`)
}

func (s *ServiceSuite) TestLedgerReadFailureIsInternal() {
	ctx := context.Background()
	l := mocks.NewMockLedger(s.ctrl)
	svc := s.newService(0, l)
	s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	l.EXPECT().FindExisting(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("disk on fire"))

	_, err := svc.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
	s.requireReason(err, dErrors.CodeInternal, models.ReasonInternal)
}

func (s *ServiceSuite) TestPublishFailureDoesNotFailRequest() {
	ctx := context.Background()
	s.oracle.EXPECT().OwnsDomain(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.issuer.EXPECT().Mint(gomock.Any(), gomock.Any()).Return("code", nil)
	s.publisher.EXPECT().PublishGranted(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	res, err := s.service.RequestInvite(ctx, s.request(s.alice, domain.ChainMainnet, "alice.eth"))
	s.Require().NoError(err)
	s.True(res.Fresh)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.EventsFailed))
}

func (s *ServiceSuite) TestStats() {
	ctx := context.Background()
	for i, g := range []ledger.InviteGrant{
		{Domain: "a.eth", Owner: "0x000000000000000000000000000000000000000a", ChainID: domain.ChainMainnet},
		{Domain: "b.eth", Owner: "0x000000000000000000000000000000000000000b", ChainID: domain.ChainMainnet},
		{Domain: "a.eth", Owner: "0x000000000000000000000000000000000000000a", ChainID: domain.ChainGoerli},
	} {
		g.InviteCode = string(rune('x' + i))
		_, err := s.ledger.Create(ctx, g)
		s.Require().NoError(err)
	}

	s.Run("with cap", func() {
		stats, err := s.newService(5, s.ledger).Stats(ctx)
		s.Require().NoError(err)
		s.Equal(5, stats.MaxLimit)
		s.Equal(3, stats.Remaining)
		s.Equal([]ledger.ChainCount{{ChainID: 1, Count: 2}, {ChainID: 5, Count: 1}}, stats.Issued)
	})

	s.Run("cap exceeded floors at zero", func() {
		stats, err := s.newService(1, s.ledger).Stats(ctx)
		s.Require().NoError(err)
		s.Equal(0, stats.Remaining)
	})

	s.Run("no cap", func() {
		stats, err := s.service.Stats(ctx)
		s.Require().NoError(err)
		s.Equal(0, stats.MaxLimit)
		s.Equal(0, stats.Remaining)
	})
}

func (s *ServiceSuite) TestOwnedDomains() {
	ctx := context.Background()
	addr := s.alice.Address.Hex()

	s.Run("lists names", func() {
		s.oracle.EXPECT().Domains(gomock.Any(), s.alice.Owner(), domain.ChainMainnet).Return([]string{"alice.eth"}, nil)
		out, err := s.service.OwnedDomains(ctx, addr, "1")
		s.Require().NoError(err)
		s.Equal([]string{"alice.eth"}, out.Domains)
	})

	s.Run("bad address", func() {
		_, err := s.service.OwnedDomains(ctx, "nope", "1")
		s.requireReason(err, dErrors.CodeInvalidInput, models.ReasonInvalidRequest)
	})

	s.Run("bad chain", func() {
		_, err := s.service.OwnedDomains(ctx, addr, "x")
		s.requireReason(err, dErrors.CodeInvalidInput, models.ReasonInvalidRequest)
	})

	s.Run("unsupported chain", func() {
		_, err := s.service.OwnedDomains(ctx, addr, "137")
		s.requireReason(err, dErrors.CodeAuthFailed, models.ReasonChainNotSupported)
	})

	s.Run("oracle down", func() {
		s.oracle.EXPECT().Domains(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, ownership.ErrOracleUnavailable)
		_, err := s.service.OwnedDomains(ctx, addr, "5")
		s.requireReason(err, dErrors.CodeUpstream, models.ReasonOracleUnavailable)
	})
}

func (s *ServiceSuite) TestIssueNonceFailure() {
	n := mocks.NewMockNonceStore(s.ctrl)
	svc := New(Policy{Chains: testChains, DomainSuffix: ".eth"}, n, challenge.NewVerifier(testChains), s.oracle, s.ledger, s.issuer)
	n.EXPECT().Issue(gomock.Any()).Return("", errors.New("no entropy"))

	_, err := svc.IssueNonce(context.Background())
	s.requireReason(err, dErrors.CodeInternal, models.ReasonInternal)
}
