package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrToLabel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, "nil"},
		{"simple error", errors.New("connection refused"), "connection_refused"},
		{"punctuation stripped", errors.New("dial tcp 127.0.0.1:8000: connect!"), "dial_tcp_connect"},
		{"wrapped error", errors.New("opening test list: no such file"), "opening_test_list_no_such_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errToLabel(tt.err))
		})
	}
}

func TestRecordersDontPanic(t *testing.T) {
	RecordError("test_error")
	RecordErrorDetails("classifier", errors.New("connection refused"))
	RecordErrorDetails("classifier", nil)
	RecordClassification("stable")
	RecordClassification("flakey")
	RecordRun("run-1", "pass", 10, 2, 12*time.Second)
	RecordRun("run-1", "fail", 0, 0, 0)
}
