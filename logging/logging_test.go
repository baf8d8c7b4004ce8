package logging

import (
	"testing"

	"go.viam.com/test"
)

func TestObservedLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)

	logger.Debugw("constants", "ticks_per_meter", 21845.3)
	logger.Infof("rate %v", 100)
	test.That(t, logs.Len(), test.ShouldEqual, 2)

	entries := logs.TakeAll()
	test.That(t, entries[0].Message, test.ShouldEqual, "constants")
	test.That(t, entries[0].ContextMap()["ticks_per_meter"], test.ShouldEqual, 21845.3)
	test.That(t, entries[1].Message, test.ShouldEqual, "rate 100")
}

func TestSubloggerSharesLevel(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("loop")

	sub.Info("started")
	test.That(t, logs.FilterLoggerName("loop").Len(), test.ShouldEqual, 1)

	logger.SetLevel(WARN)
	test.That(t, sub.GetLevel(), test.ShouldEqual, WARN)
	sub.Info("dropped")
	sub.Warn("kept")
	test.That(t, logs.Len(), test.ShouldEqual, 2)

	nested := sub.Sublogger("encoders")
	nested.Error("read failed")
	test.That(t, logs.FilterLoggerName("loop.encoders").Len(), test.ShouldEqual, 1)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Level
	}{
		{"", INFO},
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.want)
		test.That(t, levelFromZap(level.AsZap()), test.ShouldEqual, tc.want)
	}

	_, err := LevelFromString("verbose")
	test.That(t, err, test.ShouldBeError, `unknown log level "verbose"`)
}
