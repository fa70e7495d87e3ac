package sample

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"

	"cxkit/internal/testrun"
)

// Result is the outcome of running one test case.
type Result struct {
	DisplayName   string
	ExpectFailure bool
	// Passed is true when the run completed without a test case failure.
	Passed      bool
	Differences []*cxpb.TestRunDifference
	Err         error
}

// AsExpected reports whether the outcome matched the case's expectation.
func (r Result) AsExpected() bool {
	return r.Passed != r.ExpectFailure
}

func resultFor(name string, expectFailure bool, err error) (Result, error) {
	res := Result{DisplayName: name, ExpectFailure: expectFailure, Passed: err == nil, Err: err}
	var failure *testrun.TestCaseFailureError
	if errors.As(err, &failure) {
		res.Differences = failure.Differences()
		return res, nil
	}
	// Anything other than a semantic failure aborts the run.
	return res, err
}

// OutcomeError lists the test cases whose outcome did not match their
// expectation.
type OutcomeError struct {
	Mismatched []Result
}

func (e *OutcomeError) Error() string {
	names := make([]string, 0, len(e.Mismatched))
	for _, r := range e.Mismatched {
		names = append(names, fmt.Sprintf("%q", r.DisplayName))
	}
	return fmt.Sprintf("%d test case(s) did not behave as expected: %s", len(e.Mismatched), strings.Join(names, ", "))
}

// Unwrap exposes the underlying test case failures.
func (e *OutcomeError) Unwrap() []error {
	var errs []error
	for _, r := range e.Mismatched {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

// Check returns an *OutcomeError when any result was not as expected.
func Check(results []Result) error {
	var mismatched []Result
	for _, r := range results {
		if !r.AsExpected() {
			mismatched = append(mismatched, r)
		}
	}
	if len(mismatched) == 0 {
		return nil
	}
	return &OutcomeError{Mismatched: mismatched}
}
