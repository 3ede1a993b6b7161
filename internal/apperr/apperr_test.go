package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_NilError(t *testing.T) {
	t.Parallel()

	require.NoError(t, Wrap(ConfigError, nil))
}

func TestWrap_PreservesSentinel(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("device path not specified")

	err := Wrap(MissingPrerequisite, sentinel)

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, sentinel.Error(), err.Error())
}

func TestErrorf_WrapVerb(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("wrong profile number")

	err := Errorf(ArgumentError, "%w: %d", sentinel, 42)

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "wrong profile number: 42", err.Error())
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil is success", err: nil, want: 0},
		{name: "missing prerequisite", err: Errorf(MissingPrerequisite, "no device"), want: 1},
		{name: "argument error", err: Errorf(ArgumentError, "bad url"), want: 2},
		{name: "config error", err: Errorf(ConfigError, "no bios type"), want: 3},
		{name: "runtime error", err: Errorf(RuntimeError, "script failed"), want: 4},
		{name: "untagged falls back to runtime", err: errors.New("boom"), want: 4},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitCode_TagSurvivesOuterWrapping(t *testing.T) {
	t.Parallel()

	inner := Errorf(ConfigError, "build parameter set to false")
	outer := fmt.Errorf("resolving selection: %w", inner)

	assert.Equal(t, int(ConfigError), ExitCode(outer))
}
