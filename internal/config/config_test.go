package config_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"morning/internal/config"
)

var _ = Describe("Load", func() {
	unset := func(keys ...string) {
		for _, k := range keys {
			GinkgoT().Setenv(k, "")
		}
	}

	BeforeEach(func() {
		unset("PORT", "OPENAI_API_KEY", "OPENAI_MODEL", "AI_RATE_LIMIT", "AI_RATE_BURST",
			"AI_TIMEOUT_SECONDS", "REDIS_URL", "PRESENCE_CHANNEL", "STT_PROVIDER", "LISTEN_IDLE_SECONDS", "SESSION_IDLE_MINUTES")
	})

	It("applies defaults", func() {
		cfg, err := config.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal("8080"))
		Expect(cfg.OpenAIModel).To(Equal("gpt-4o-mini"))
		Expect(cfg.AITimeout).To(Equal(30 * time.Second))
		Expect(cfg.AIRateLimit).To(Equal(3.0))
		Expect(cfg.AIRateBurst).To(Equal(5))
		Expect(cfg.PresenceChannel).To(Equal("morning-presence"))
		Expect(cfg.MeetingBaseURL).To(Equal("https://meet.jit.si"))
		Expect(cfg.STTProvider).To(BeEmpty())
		Expect(cfg.ListenIdleTimeout).To(Equal(60 * time.Second))
		Expect(cfg.SessionIdleTTL).To(Equal(30 * time.Minute))
	})

	It("reads overrides", func() {
		GinkgoT().Setenv("PORT", "9000")
		GinkgoT().Setenv("AI_RATE_LIMIT", "0.5")
		GinkgoT().Setenv("STT_PROVIDER", "FPT")
		GinkgoT().Setenv("LISTEN_IDLE_SECONDS", "15")
		GinkgoT().Setenv("SESSION_IDLE_MINUTES", "5")

		cfg, err := config.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal("9000"))
		Expect(cfg.AIRateLimit).To(Equal(0.5))
		Expect(cfg.STTProvider).To(Equal("fpt"))
		Expect(cfg.ListenIdleTimeout).To(Equal(15 * time.Second))
		Expect(cfg.SessionIdleTTL).To(Equal(5 * time.Minute))
	})

	It("ignores unparseable numbers", func() {
		GinkgoT().Setenv("AI_RATE_BURST", "lots")
		cfg, err := config.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.AIRateBurst).To(Equal(5))
	})

	DescribeTable("rejects bad values",
		func(key, value string) {
			GinkgoT().Setenv(key, value)
			_, err := config.Load()
			Expect(err).To(HaveOccurred())
		},
		Entry("zero rate", "AI_RATE_LIMIT", "0"),
		Entry("zero burst", "AI_RATE_BURST", "0"),
		Entry("zero session ttl", "SESSION_IDLE_MINUTES", "0"),
		Entry("unknown STT provider", "STT_PROVIDER", "whisper"),
	)
})
