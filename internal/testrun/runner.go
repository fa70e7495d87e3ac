// Package testrun executes Dialogflow CX test cases with a bounded retry
// budget for the window in which a freshly changed flow is still training.
package testrun

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"

	"cxkit/internal/clock"
	"cxkit/pkg/logging"
)

const (
	DefaultWait       = 10 * time.Second
	DefaultMaxRetries = 3
)

// ErrModelNotReady reports that the flow's NLU model does not exist yet and
// the run should be attempted again after retraining.
var ErrModelNotReady = errors.New("NLU model not ready")

// Executor starts a test case run and waits for the long-running operation
// to finish.
type Executor interface {
	RunTestCase(ctx context.Context, name string) (*cxpb.TestCaseResult, error)
}

// TestCaseFailureError reports that the agent's behaviour differed from the
// test case's expectations. It is never retried.
type TestCaseFailureError struct {
	DisplayName string
	Result      *cxpb.TestCaseResult
}

func (e *TestCaseFailureError) Error() string {
	return fmt.Sprintf("test %q failed", e.DisplayName)
}

// Differences returns the differences reported for the first turn.
func (e *TestCaseFailureError) Differences() []*cxpb.TestRunDifference {
	turns := e.Result.GetConversationTurns()
	if len(turns) == 0 {
		return nil
	}
	return turns[0].GetVirtualAgentOutput().GetDifferences()
}

// RetriesExhaustedError reports that every attempt hit ErrModelNotReady.
type RetriesExhaustedError struct {
	DisplayName string
	Attempts    int
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("retry count exceeded for test %q: %d", e.DisplayName, e.Attempts)
}

// Runner runs test cases, sleeping Wait before every attempt and giving up
// after MaxRetries model-not-ready answers.
type Runner struct {
	Executor   Executor
	Clock      clock.Clock
	Wait       time.Duration
	MaxRetries int
}

// NewRunner returns a Runner with the default wait and retry budget.
func NewRunner(exec Executor) *Runner {
	return &Runner{
		Executor:   exec,
		Clock:      clock.Real{},
		Wait:       DefaultWait,
		MaxRetries: DefaultMaxRetries,
	}
}

// Run executes tc until it completes or the retry budget is spent.
//
// A completed run whose first turn reports differences, or whose overall
// result is not PASSED, yields a *TestCaseFailureError. ErrModelNotReady is
// the only retried condition; any other error is returned immediately.
func (r *Runner) Run(ctx context.Context, tc *cxpb.TestCase) (*cxpb.TestCaseResult, error) {
	clk := r.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	retries := 0
	for retries < r.MaxRetries {
		if err := clk.Sleep(ctx, r.Wait); err != nil {
			return nil, err
		}

		result, err := r.Executor.RunTestCase(ctx, tc.GetName())
		if errors.Is(err, ErrModelNotReady) {
			retries++
			logging.Info("TestRun", "Model for %q not ready (attempt %d/%d)", tc.GetDisplayName(), retries, r.MaxRetries)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("running test %q: %w", tc.GetDisplayName(), err)
		}

		if Failed(result) {
			return result, &TestCaseFailureError{DisplayName: tc.GetDisplayName(), Result: result}
		}
		logging.Info("TestRun", "Test %q passed", tc.GetDisplayName())
		return result, nil
	}

	return nil, &RetriesExhaustedError{DisplayName: tc.GetDisplayName(), Attempts: retries}
}

// Failed reports whether a completed result counts as a failure: any
// difference on the first turn, or an overall result other than PASSED.
func Failed(result *cxpb.TestCaseResult) bool {
	turns := result.GetConversationTurns()
	if len(turns) > 0 && len(turns[0].GetVirtualAgentOutput().GetDifferences()) > 0 {
		return true
	}
	return result.GetTestResult() != cxpb.TestResult_PASSED
}
