package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "impactledger/internal/jwt_token"
	"impactledger/internal/platform/config"
	"impactledger/internal/registry/service"
	"impactledger/internal/registry/store"
	httptransport "impactledger/internal/transport/http"
	auditmemory "impactledger/pkg/platform/audit/store/memory"
)

func TestUnknownDelegatePolicy(t *testing.T) {
	assert.Equal(t, service.UnknownDelegateZero, unknownDelegatePolicy(config.UnknownDelegateZero))
	assert.Equal(t, service.UnknownDelegateNotFound, unknownDelegatePolicy(config.UnknownDelegateNotFound))
}

func TestOpenStoreFallsBackToMemory(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	checks := map[string]httptransport.HealthCheck{}

	s, closeStore, err := openStore(context.Background(), config.Default(), log, false, checks)
	require.NoError(t, err)
	defer closeStore()

	assert.IsType(t, &store.InMemory{}, s)
	assert.Empty(t, checks)
}

func TestOpenAuditStoreFallsBackToMemory(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, closeAudit, err := openAuditStore(context.Background(), config.Default(), log)
	require.NoError(t, err)
	defer closeAudit()

	assert.IsType(t, &auditmemory.InMemoryStore{}, s)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("REGISTRY_CONFIG", "")
	t.Setenv("REGISTRY_ADMINISTRATOR", "deployer")
	t.Setenv("JWT_SIGNING_KEY", "cli-test-key")

	var out bytes.Buffer
	cmd := tokenCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--account", "wallet-1"})
	require.NoError(t, cmd.Execute())

	claims, err := jwttoken.NewJWTService("cli-test-key", "impactledger").ValidateToken(string(bytes.TrimSpace(out.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, "wallet-1", claims.Subject)
}
