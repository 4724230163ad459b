package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"morning/internal/ai"
)

var _ = Describe("Client.Ask", func() {
	var (
		server  *httptest.Server
		status  int
		body    string
		lastReq map[string]any
		client  *ai.Client
	)

	BeforeEach(func() {
		status = http.StatusOK
		lastReq = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &lastReq)
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		}))
		DeferCleanup(server.Close)
		client = ai.NewClient(ai.Config{BaseURL: server.URL + "/v1", Model: "gpt-4o-mini"})
	})

	It("returns the trimmed reply verbatim", func() {
		body = completionBody("  Ask about their next hire.\n")

		answer, err := client.Ask(context.Background(), "sk", "what now?", []string{"we are hiring"})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("Ask about their next hire."))
		Expect(lastReq["temperature"]).To(BeNumerically("~", 0.7, 0.001))
	})

	It("sends only the trailing eight transcript lines", func() {
		body = completionBody("ok")
		lines := []string{"l1", "l2", "l3", "l4", "l5", "l6", "l7", "l8", "l9", "l10"}

		_, err := client.Ask(context.Background(), "sk", "q", lines)
		Expect(err).NotTo(HaveOccurred())

		user := lastReq["messages"].([]any)[1].(map[string]any)["content"].(string)
		Expect(user).To(HavePrefix("User question: q\n\nRecent meeting transcript:\n"))
		Expect(user).To(HaveSuffix(strings.Join(lines[2:], "\n")))
		Expect(user).NotTo(ContainSubstring("l1\n"))
	})

	It("says so when there is no transcript", func() {
		body = completionBody("ok")

		_, err := client.Ask(context.Background(), "sk", "q", nil)
		Expect(err).NotTo(HaveOccurred())
		user := lastReq["messages"].([]any)[1].(map[string]any)["content"].(string)
		Expect(user).To(HaveSuffix("No transcript yet."))
	})

	It("substitutes a notice for an empty reply", func() {
		body = completionBody("   ")

		answer, err := client.Ask(context.Background(), "sk", "q", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("No response returned by AI service."))
	})

	It("substitutes a notice when the envelope has no choices", func() {
		body = `{"id":"chatcmpl-test","choices":[]}`

		answer, err := client.Ask(context.Background(), "sk", "q", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("No response returned by AI service."))
	})

	It("reports the HTTP status of a failed call", func() {
		status = http.StatusTooManyRequests
		body = `{"error":{"message":"slow down","type":"rate_limit"}}`

		_, err := client.Ask(context.Background(), "sk", "q", nil)
		var f *ai.Failure
		Expect(errors.As(err, &f)).To(BeTrue())
		Expect(f.Reason).To(Equal(ai.ReasonStatus))
		Expect(f.Status).To(Equal(http.StatusTooManyRequests))
	})
})
