package suggest_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"morning/internal/ai"
	"morning/internal/suggest"
)

type stubAsker struct {
	answer string
	err    error
	calls  int
}

func (s *stubAsker) Ask(context.Context, string, string, []string) (string, error) {
	s.calls++
	return s.answer, s.err
}

func first(int) int { return 0 }

var _ = Describe("LocalSuggestion", func() {
	It("returns a bare template without transcript context", func() {
		Expect(suggest.LocalSuggestion(nil, first)).To(Equal("You could ask: “What project are you most energized by this quarter?”"))
	})

	It("quotes recent context", func() {
		got := suggest.LocalSuggestion([]string{"we ship friday", "then demo"}, func(int) int { return 1 })
		Expect(got).To(Equal("Try: “Who should we introduce you to after this call?” I also heard: “we ship friday then demo...”"))
	})

	DescribeTable("wraps out-of-range picks",
		func(pick int, want string) {
			Expect(suggest.LocalSuggestion(nil, func(int) int { return pick })).To(HavePrefix(want))
		},
		Entry("negative", -1, "Follow with:"),
		Entry("far negative", -5, "Try:"),
		Entry("past the end", 4, "Try:"),
	)

	It("caps the excerpt at 120 characters of the last five lines", func() {
		lines := []string{"dropped", strings.Repeat("é", 80), strings.Repeat("b", 80), "c", "d", "e"}
		got := suggest.LocalSuggestion(lines, first)
		Expect(got).NotTo(ContainSubstring("dropped"))

		excerpt := got[strings.Index(got, "I also heard: “")+len("I also heard: “") : strings.LastIndex(got, "...”")]
		Expect([]rune(excerpt)).To(HaveLen(120))
	})
})

var _ = Describe("Engine.Answer", func() {
	var asker *stubAsker

	BeforeEach(func() {
		asker = &stubAsker{}
	})

	It("uses local templates without a credential", func() {
		reply := suggest.NewEngine(asker).WithPicker(first).Answer(context.Background(), "", "who next?", nil)
		Expect(asker.calls).To(BeZero())
		Expect(reply.Source).To(Equal(suggest.SourceLocal))
		Expect(reply.Text).To(HavePrefix("You could ask:"))
	})

	It("returns the AI answer when it succeeds", func() {
		asker.answer = "Ask about their roadmap."
		reply := suggest.NewEngine(asker).Answer(context.Background(), "sk", "who next?", nil)
		Expect(asker.calls).To(Equal(1))
		Expect(reply).To(Equal(suggest.Reply{Text: "Ask about their roadmap.", Source: suggest.SourceAI}))
	})

	It("embeds the HTTP status in the failure message", func() {
		asker.err = &ai.Failure{Reason: ai.ReasonStatus, Status: 401}
		reply := suggest.NewEngine(asker).Answer(context.Background(), "sk", "q", nil)
		Expect(reply.Source).To(Equal(suggest.SourceAIError))
		Expect(reply.Text).To(Equal("OpenAI request failed (401). Using local suggestions only."))
	})

	It("embeds the failure cause when there is no status", func() {
		asker.err = &ai.Failure{Reason: ai.ReasonTransport, Err: errors.New("dial tcp: refused")}
		reply := suggest.NewEngine(asker).Answer(context.Background(), "sk", "q", nil)
		Expect(reply.Text).To(Equal("Could not reach OpenAI (dial tcp: refused). Using local suggestions only."))
	})

	It("handles untyped errors", func() {
		asker.err = errors.New("weird")
		reply := suggest.NewEngine(asker).Answer(context.Background(), "sk", "q", nil)
		Expect(reply.Text).To(ContainSubstring("weird"))
	})
})

var _ = Describe("Engine with the AI client", func() {
	It("answers with a notice when the service returns no choices", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id":"x","choices":[]}`)
		}))
		DeferCleanup(server.Close)

		client := ai.NewClient(ai.Config{BaseURL: server.URL + "/v1"})
		reply := suggest.NewEngine(client).Answer(context.Background(), "sk", "q", nil)
		Expect(reply).To(Equal(suggest.Reply{Text: "No response returned by AI service.", Source: suggest.SourceAI}))
	})
})
