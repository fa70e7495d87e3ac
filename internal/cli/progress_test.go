package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_ReturnsResult(t *testing.T) {
	for _, quiet := range []bool{true, false} {
		var buf bytes.Buffer
		calls := 0

		err := Progress(&buf, quiet, "Training flow", func() error {
			calls++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	}
}

func TestProgress_PropagatesError(t *testing.T) {
	failed := errors.New("training failed")
	var buf bytes.Buffer

	err := Progress(&buf, false, "Training flow", func() error { return failed })

	assert.Same(t, failed, err)
}

func TestProgress_QuietWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	_ = Progress(&buf, true, "Running tests", func() error { return nil })
	assert.Empty(t, buf.String())
}
