package e2e

import (
	"github.com/cucumber/godog"

	"impactledger/e2e/steps/ledger"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ledger.RegisterSteps(ctx, tc)
}
