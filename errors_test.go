package svcreg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCycleError(t *testing.T) {
	t.Parallel()

	err := &CycleError{Name: "a", Chain: []string{"a", "b", "a"}}
	assert.ErrorIs(t, err, ErrDependencyCycle)
	assert.NotErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "a->b->a")
	assert.Contains(t, err.Error(), `"a"`)
}

func TestConfigurationError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := &ConfigurationError{Name: "svc", Stage: "inject", Cause: cause}

	assert.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "inject")
	assert.Contains(t, err.Error(), `"svc"`)
}

func TestConfigurationErrorWrapsCycle(t *testing.T) {
	t.Parallel()

	inner := &CycleError{Name: "a", Chain: []string{"a", "a"}}
	err := &ConfigurationError{Name: "b", Stage: "inject", Cause: fmt.Errorf("lookup: %w", inner)}

	assert.ErrorIs(t, err, ErrDependencyCycle)

	var cycleErr *CycleError
	assert.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"a", "a"}, cycleErr.Chain)
}
