package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	AuthenticateAs(account string) error
	StatusCode() int
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers delegate and credential step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ledgerSteps{tc: tc}

	ctx.Step(`^I am authenticated as "([^"]*)"$`, steps.authenticateAs)
	ctx.Step(`^I register a delegate "([^"]*)" specializing in "([^"]*)"$`, steps.registerDelegate)
	ctx.Step(`^I issue a credential "([^"]*)" with impact (\d+) to delegate (\d+)$`, steps.issueCredential)
	ctx.Step(`^I request the total impact of delegate (\d+)$`, steps.requestTotalImpact)
	ctx.Step(`^I request credential (\d+)$`, steps.requestCredential)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be (\d+)$`, steps.fieldShouldBeNumber)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBeString)
	ctx.Step(`^delegate (\d+) should have total impact (\d+)$`, steps.delegateShouldHaveTotal)
}

type ledgerSteps struct {
	tc TestContext
}

func (s *ledgerSteps) authenticateAs(ctx context.Context, account string) error {
	return s.tc.AuthenticateAs(account)
}

func (s *ledgerSteps) registerDelegate(ctx context.Context, name, specialization string) error {
	return s.tc.POST("/delegates", map[string]any{
		"name":           name,
		"specialization": specialization,
	})
}

func (s *ledgerSteps) issueCredential(ctx context.Context, title string, score int64, delegateID int64) error {
	return s.tc.POST("/credentials", map[string]any{
		"delegate_id":  delegateID,
		"title":        title,
		"description":  "Issued in scenario: " + title,
		"impact_score": score,
	})
}

func (s *ledgerSteps) requestTotalImpact(ctx context.Context, delegateID int64) error {
	return s.tc.GET(fmt.Sprintf("/delegates/%d/impact", delegateID))
}

func (s *ledgerSteps) requestCredential(ctx context.Context, credentialID int64) error {
	return s.tc.GET(fmt.Sprintf("/credentials/%d", credentialID))
}

func (s *ledgerSteps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.StatusCode(); got != want {
		return fmt.Errorf("expected status %d, got %d", want, got)
	}
	return nil
}

func (s *ledgerSteps) fieldShouldBeNumber(ctx context.Context, field string, want int64) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	n, ok := v.(float64)
	if !ok {
		return fmt.Errorf("field %q is %T, not a number", field, v)
	}
	if n != float64(want) {
		return fmt.Errorf("expected %s=%d, got %s", field, want, strconv.FormatFloat(n, 'f', -1, 64))
	}
	return nil
}

func (s *ledgerSteps) fieldShouldBeString(ctx context.Context, field, want string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if v != want {
		return fmt.Errorf("expected %s=%q, got %v", field, want, v)
	}
	return nil
}

func (s *ledgerSteps) delegateShouldHaveTotal(ctx context.Context, delegateID, want int64) error {
	if err := s.requestTotalImpact(ctx, delegateID); err != nil {
		return err
	}
	if err := s.statusShouldBe(ctx, 200); err != nil {
		return err
	}
	return s.fieldShouldBeNumber(ctx, "total_impact", want)
}
