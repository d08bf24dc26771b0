package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunResultString(t *testing.T) {
	r := &RunResult{
		RunID:    "run-1",
		Status:   TestStatusPass,
		ExitCode: 0,
		Stable:   10,
		Flakey:   2,
		Duration: 12300 * time.Millisecond,
	}
	assert.Equal(t, "run run-1: pass (exit=0, stable=10, flakey=2, duration=12.3s)", r.String())
}

func TestRunResultString_Nil(t *testing.T) {
	var r *RunResult
	assert.Equal(t, "no result", r.String())
}
