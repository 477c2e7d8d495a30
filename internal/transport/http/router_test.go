package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "impactledger/internal/jwt_token"
	"impactledger/internal/platform/metrics"
	"impactledger/internal/registry/handler"
	"impactledger/internal/registry/service"
	"impactledger/internal/registry/store"
	id "impactledger/pkg/domain"
	"impactledger/pkg/testutil"
)

const (
	adminAccount = id.AccountID("ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")
	otherAccount = id.AccountID("ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG")
)

type stack struct {
	router http.Handler
	jwt    *jwttoken.JWTService
	reg    *prometheus.Registry
}

func newStack(t *testing.T, checks map[string]HealthCheck) *stack {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(reg)
	jwt := jwttoken.NewJWTService("router-test-key", "impactledger")

	svc := service.New(store.NewInMemory(), service.NewAdminAuthorizer(adminAccount),
		service.WithLogger(logger), service.WithMetrics(m))
	h := handler.New(svc, logger, jwttoken.NewMiddlewareValidator(jwt))

	return &stack{
		router: NewRouter(Dependencies{
			Logger:   logger,
			Latency:  m,
			Gatherer: reg,
			Checks:   checks,
			Routes:   []Registrar{h},
		}),
		jwt: jwt,
		reg: reg,
	}
}

func (s *stack) bearer(t *testing.T, account id.AccountID) string {
	t.Helper()
	token, err := s.jwt.GenerateToken(account, time.Hour)
	require.NoError(t, err)
	return token
}

func TestLedgerOverHTTP(t *testing.T) {
	s := newStack(t, nil)

	testutil.Given(t, "a delegate registered by any account", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/delegates", handler.RegisterDelegateRequest{
			Name: "Impact Research Expert", Specialization: "Climate Change Mitigation",
		})
		testutil.WithBearer(req, s.bearer(t, otherAccount))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
		testutil.AssertJSONContains(t, rr, "delegate_id", float64(1))
	})

	score75, score100 := uint64(75), uint64(100)
	issue := func(t *testing.T, account id.AccountID, score *uint64) int {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/credentials", handler.IssueCredentialRequest{
			DelegateID: 1, Title: "Climate Impact Assessment", Description: "Regional study", ImpactScore: score,
		})
		testutil.WithBearer(req, s.bearer(t, account))
		return testutil.DoRequest(s.router, req).Code
	}

	testutil.When(t, "a non-admin tries to issue", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, issue(t, otherAccount, &score75))
	})

	testutil.When(t, "the admin issues two credentials", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, issue(t, adminAccount, &score75))
		assert.Equal(t, http.StatusCreated, issue(t, adminAccount, &score100))
	})

	testutil.Then(t, "the total is the sum of both scores", func(t *testing.T) {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/delegates/1/impact"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "total_impact", float64(175))
	})

	testutil.And(t, "credential IDs started at 1 despite the rejected attempt", func(t *testing.T) {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/credentials/1"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "impact_score", float64(75))
	})

	testutil.Then(t, "request metrics are exported", func(t *testing.T) {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(t, rr)
		assert.Contains(t, rr.Body.String(), "impactledger_credentials_issued_total 2")
	})
}

func TestHealthz(t *testing.T) {
	t.Run("ok without checks", func(t *testing.T) {
		s := newStack(t, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("failing dependency degrades", func(t *testing.T) {
		s := newStack(t, map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		rr := testutil.DoRequest(s.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		assert.Contains(t, rr.Body.String(), `"redis":"connection refused"`)
		assert.Contains(t, rr.Body.String(), `"postgres":"ok"`)
	})
}
