// Package e2e runs the Gherkin scenarios in features/ against the full HTTP
// stack served in-process.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	jwttoken "impactledger/internal/jwt_token"
	"impactledger/internal/platform/metrics"
	"impactledger/internal/registry/handler"
	"impactledger/internal/registry/service"
	"impactledger/internal/registry/store"
	httptransport "impactledger/internal/transport/http"
	id "impactledger/pkg/domain"
)

const signingKey = "e2e-signing-key"

// TestContext holds one scenario's server and last response.
type TestContext struct {
	server  *httptest.Server
	jwt     *jwttoken.JWTService
	token   string
	status  int
	body    []byte
	decoded map[string]any
}

// NewTestContext starts a fresh registry whose administrator is admin.
func NewTestContext(admin id.AccountID, policy service.UnknownDelegatePolicy) *TestContext {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	jwt := jwttoken.NewJWTService(signingKey, "impactledger")

	svc := service.New(store.NewInMemory(), service.NewAdminAuthorizer(admin),
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithUnknownDelegatePolicy(policy),
	)
	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:  logger,
		Latency: m,
		Routes:  []httptransport.Registrar{handler.New(svc, logger, jwttoken.NewMiddlewareValidator(jwt))},
	})
	return &TestContext{server: httptest.NewServer(router), jwt: jwt}
}

func (tc *TestContext) Close() {
	tc.server.Close()
}

// AuthenticateAs makes later requests carry a bearer token for account.
func (tc *TestContext) AuthenticateAs(account string) error {
	token, err := tc.jwt.GenerateToken(id.AccountID(account), time.Hour)
	if err != nil {
		return err
	}
	tc.token = token
	return nil
}

func (tc *TestContext) POST(path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, tc.server.URL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	return tc.do(req)
}

func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.server.URL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.status = resp.StatusCode
	tc.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.decoded = nil
	if len(tc.body) > 0 {
		var decoded map[string]any
		if err := json.Unmarshal(tc.body, &decoded); err == nil {
			tc.decoded = decoded
		}
	}
	return nil
}

func (tc *TestContext) StatusCode() int {
	return tc.status
}

// GetResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	if tc.decoded == nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.body)
	}
	v, ok := tc.decoded[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, tc.body)
	}
	return v, nil
}
