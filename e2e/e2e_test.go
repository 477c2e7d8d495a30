package e2e

import (
	"context"
	"testing"

	"github.com/cucumber/godog"

	"impactledger/internal/registry/service"
)

const administrator = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func initializeScenario(ctx *godog.ScenarioContext) {
	tc := &TestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		policy := service.UnknownDelegateNotFound
		for _, tag := range sc.Tags {
			if tag.Name == "@zero-policy" {
				policy = service.UnknownDelegateZero
			}
		}
		*tc = *NewTestContext(administrator, policy)
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		tc.Close()
		return ctx, err
	})

	ctx.Step(`^I am the registry administrator$`, func() error {
		return tc.AuthenticateAs(administrator)
	})
	RegisterSteps(ctx, tc)
}
