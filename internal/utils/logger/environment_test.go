package logger

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var _ = Describe("Logger configs", func() {
	It("writes json to stdout in production", func() {
		cfg := newProductionLoggerConfig()

		Expect(cfg.Level.Level()).To(Equal(zap.InfoLevel))
		Expect(cfg.Encoding).To(Equal("json"))
		Expect(cfg.EncoderConfig.TimeKey).To(Equal("timestamp"))
		Expect(cfg.OutputPaths).To(Equal([]string{"stdout"}))
		Expect(cfg.ErrorOutputPaths).To(Equal([]string{"stderr"}))
	})

	It("drops caller and stacktraces in staging", func() {
		cfg := newStagingLoggerConfig()

		Expect(cfg.Encoding).To(Equal("json"))
		Expect(cfg.DisableCaller).To(BeTrue())
		Expect(cfg.DisableStacktrace).To(BeTrue())
	})

	It("uses console encoding at debug level in development", func() {
		cfg := newDevelopmentLoggerConfig()

		Expect(cfg.Level.Level()).To(Equal(zap.DebugLevel))
		Expect(cfg.Development).To(BeTrue())
		Expect(cfg.Encoding).To(Equal("console"))
	})

	It("writes nowhere in tests", func() {
		cfg := newTestLoggerConfig()

		Expect(cfg.OutputPaths).To(BeEmpty())
		Expect(cfg.ErrorOutputPaths).To(BeEmpty())
	})
})
