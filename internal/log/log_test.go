package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	pkglog "morning/internal/log"
)

var _ = Describe("Truncate", func() {
	It("keeps short strings", func() {
		Expect(pkglog.Truncate("abc", 5)).To(Equal("abc"))
	})

	It("cuts long strings", func() {
		Expect(pkglog.Truncate("abcdef", 3)).To(Equal("abc..."))
	})
})

var _ = Describe("Ctx", func() {
	It("returns the stored logger", func() {
		var buf bytes.Buffer
		ctx := pkglog.WithLogger(context.Background(), zerolog.New(&buf))
		logger := pkglog.Ctx(ctx)
		logger.Info().Msg("hello")
		Expect(buf.String()).To(ContainSubstring(`"message":"hello"`))
	})
})

var _ = Describe("GinMiddleware", func() {
	var (
		buf    bytes.Buffer
		router *gin.Engine
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		buf.Reset()
		router = gin.New()
		router.Use(pkglog.GinMiddleware(zerolog.New(&buf)))
		router.GET("/ping", func(c *gin.Context) {
			c.Set(pkglog.FieldSessionID, "sess-1")
			logger := pkglog.Ctx(c.Request.Context())
			logger.Info().Msg("inside")
			c.Status(http.StatusNoContent)
		})
	})

	It("assigns a request id and logs the request", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		reqID := w.Header().Get("X-Request-ID")
		Expect(reqID).NotTo(BeEmpty())

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		Expect(lines).To(HaveLen(2))

		var inside, done map[string]any
		Expect(json.Unmarshal(lines[0], &inside)).To(Succeed())
		Expect(json.Unmarshal(lines[1], &done)).To(Succeed())
		Expect(inside).To(HaveKeyWithValue(pkglog.FieldRequestID, reqID))
		Expect(done).To(HaveKeyWithValue(pkglog.FieldStatus, BeNumerically("==", http.StatusNoContent)))
		Expect(done).To(HaveKeyWithValue(pkglog.FieldSessionID, "sess-1"))
	})

	It("echoes a supplied request id", func() {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Header().Get("X-Request-ID")).To(Equal("abc"))
	})
})
