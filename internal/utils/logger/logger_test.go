package logger

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dwarvesf/crypto-bookkeeper/internal/types/environments"
)

type fatalHook struct {
	called bool
}

func (h *fatalHook) OnWrite(_ *zapcore.CheckedEntry, _ []zapcore.Field) {
	h.called = true
}

func observed(level zapcore.Level, opts ...zap.Option) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &Logger{wrappedLogger: zap.New(core, opts...)}, logs
}

var _ = Describe("Logger", func() {
	Describe("#New", func() {
		DescribeTable("builds a logger for every environment",
			func(env environments.Environment, debugEnabled bool) {
				l := New(env)
				Expect(l).NotTo(BeNil())
				Expect(l.wrappedLogger.Core().Enabled(zapcore.InfoLevel)).To(BeTrue())
				Expect(l.wrappedLogger.Core().Enabled(zapcore.DebugLevel)).To(Equal(debugEnabled))
			},
			Entry("production", environments.Production, false),
			Entry("staging", environments.Staging, false),
			Entry("development", environments.Development, true),
			Entry("test", environments.Test, false),
			Entry("unknown falls back to production", environments.Environment("qa"), false),
		)
	})

	Describe("writing entries", func() {
		It("emits fields in key order", func() {
			l, logs := observed(zapcore.InfoLevel)

			l.Error("[controller][PersistEntries] insert entry", map[string]string{
				"tx_hash": "0xabc",
				"error":   "duplicate key",
				"index":   "1",
			})

			Expect(logs.Len()).To(Equal(1))
			entry := logs.All()[0]
			Expect(entry.Level).To(Equal(zapcore.ErrorLevel))
			Expect(entry.Message).To(Equal("[controller][PersistEntries] insert entry"))
			keys := []string{}
			for _, f := range entry.Context {
				keys = append(keys, f.Key)
			}
			Expect(keys).To(Equal([]string{"error", "index", "tx_hash"}))
		})

		It("drops entries below the configured level", func() {
			l, logs := observed(zapcore.InfoLevel)

			l.Debug("prompt built", map[string]string{"chars": "1200"})
			l.Warn("item 2: unrecognised shape")

			Expect(logs.Len()).To(Equal(1))
			Expect(logs.All()[0].Level).To(Equal(zapcore.WarnLevel))
			Expect(logs.All()[0].Context).To(BeEmpty())
		})

		It("adds child fields to every entry", func() {
			l, logs := observed(zapcore.InfoLevel)
			run := l.With(map[string]string{"run_id": "run-1"})

			run.Info("start", map[string]string{"address": "0x1"})
			run.Info("finished")
			l.Info("unrelated")

			Expect(logs.FilterField(zap.String("run_id", "run-1")).Len()).To(Equal(2))
			Expect(logs.FilterMessage("unrelated").All()[0].Context).To(BeEmpty())
		})

		It("runs the fatal hook", func() {
			hook := &fatalHook{}
			l, logs := observed(zapcore.InfoLevel, zap.WithFatalHook(hook))

			l.Fatal("failed to connect to postgres", map[string]string{"error": "refused"})

			Expect(hook.called).To(BeTrue())
			Expect(logs.Len()).To(Equal(1))
		})
	})
})
