package testutils

import (
	"reflect"
	"strings"
	"testing"

	"github.com/benoitkugler/cssbox/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func AssertEqual(t *testing.T, got, exp interface{}) {
	t.Helper()
	if !reflect.DeepEqual(exp, got) {
		t.Fatalf("expected\n%v\n got \n%v", exp, got)
	}
}

// CapturedLogs stores the warnings emitted while it is active.
type CapturedLogs struct {
	logs    *observer.ObservedLogs
	restore func()
}

// CaptureLogs redirects the global loggers until one of
// the Assert methods is called.
//
//	defer tu.CaptureLogs().AssertNoLogs(t)
func CaptureLogs() *CapturedLogs {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := logger.ReplaceBase(zap.New(core))
	return &CapturedLogs{logs: logs, restore: restore}
}

// Logs returns the captured messages and stops the capture.
func (c *CapturedLogs) Logs() []string {
	c.restore()
	var out []string
	for _, entry := range c.logs.All() {
		out = append(out, entry.Message)
	}
	return out
}

func (c *CapturedLogs) AssertNoLogs(t *testing.T) {
	t.Helper()
	if l := c.Logs(); len(l) > 0 {
		t.Fatalf("expected no logs, got (%d): \n%s", len(l), strings.Join(l, "\n"))
	}
}

// AssertLogs checks that exactly len(contains) warnings were emitted, the
// i-th containing contains[i].
func (c *CapturedLogs) AssertLogs(t *testing.T, contains ...string) {
	t.Helper()
	l := c.Logs()
	if len(l) != len(contains) {
		t.Fatalf("expected %d logs, got (%d): \n%s", len(contains), len(l), strings.Join(l, "\n"))
	}
	for i, s := range contains {
		if !strings.Contains(l[i], s) {
			t.Fatalf("log %d: expected %q in %q", i, s, l[i])
		}
	}
}
