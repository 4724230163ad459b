package stt_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	pkglog "morning/internal/log"
	"morning/internal/stt"
)

type fakeProvider struct {
	mu    sync.Mutex
	texts map[string]string
	err   error
	raw   string

	// busy, when set, is signalled on each call, which then waits for the
	// stream to be cancelled.
	busy chan string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Transcribe(ctx context.Context, path string) (*stt.Result, error) {
	if p.busy != nil {
		p.busy <- filepath.Base(path)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		if p.raw != "" {
			return &stt.Result{Provider: "fake", RawResponse: p.raw}, p.err
		}
		return nil, p.err
	}
	return &stt.Result{Transcript: p.texts[filepath.Base(path)], Provider: "fake"}, nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ = Describe("ProviderStream", func() {
	var (
		dir      string
		provider *fakeProvider
		finals   chan string
		errs     chan error
		ended    chan struct{}
		handlers stt.Handlers
	)

	segment := func(name string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte("audio"), 0o644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		provider = &fakeProvider{texts: map[string]string{"a.wav": "first line", "b.wav": "second line"}}
		finals = make(chan string, 4)
		errs = make(chan error, 4)
		ended = make(chan struct{}, 4)
		handlers = stt.Handlers{
			OnFinal: func(r stt.Result) { finals <- r.Transcript },
			OnError: func(err error) { errs <- err },
			OnEnd:   func() { ended <- struct{}{} },
		}
	})

	It("rejects segments before it is started", func() {
		s := stt.NewProviderStream(provider, time.Minute)
		Expect(s.Feed(segment("a.wav"))).To(MatchError(stt.ErrStreamNotRunning))
	})

	It("delivers each segment as a final result in order and removes the file", func() {
		s := stt.NewProviderStream(provider, time.Minute)
		Expect(s.Start(context.Background(), handlers)).To(Succeed())
		DeferCleanup(s.Stop)

		a := segment("a.wav")
		Expect(s.Feed(a)).To(Succeed())
		Expect(s.Feed(segment("b.wav"))).To(Succeed())

		Eventually(finals).Should(Receive(Equal("first line")))
		Eventually(finals).Should(Receive(Equal("second line")))
		Eventually(func() bool { _, err := os.Stat(a); return os.IsNotExist(err) }).Should(BeTrue())
	})

	It("reports provider errors without ending", func() {
		provider.err = errors.New("quota")
		s := stt.NewProviderStream(provider, time.Minute)
		Expect(s.Start(context.Background(), handlers)).To(Succeed())
		DeferCleanup(s.Stop)

		Expect(s.Feed(segment("a.wav"))).To(Succeed())
		Eventually(errs).Should(Receive(MatchError("quota")))
		Consistently(ended, 50*time.Millisecond).ShouldNot(Receive())
	})

	It("logs the provider body of a failed transcription at debug level", func() {
		provider.err = errors.New("bad request")
		provider.raw = `{"status":1,"message":"unsupported codec"}`
		var buf syncBuffer
		ctx := pkglog.WithLogger(context.Background(), zerolog.New(&buf).Level(zerolog.DebugLevel))

		s := stt.NewProviderStream(provider, time.Minute)
		Expect(s.Start(ctx, handlers)).To(Succeed())
		DeferCleanup(s.Stop)

		Expect(s.Feed(segment("a.wav"))).To(Succeed())
		Eventually(errs).Should(Receive(MatchError("bad request")))
		Eventually(buf.String).Should(ContainSubstring(`"raw":"{\"status\":1,\"message\":\"unsupported codec\"}"`))
	})

	It("removes queued segments when it stops before reaching them", func() {
		provider.busy = make(chan string, 1)
		s := stt.NewProviderStream(provider, time.Minute)
		Expect(s.Start(context.Background(), handlers)).To(Succeed())

		a, b := segment("a.wav"), segment("b.wav")
		Expect(s.Feed(a)).To(Succeed())
		Eventually(provider.busy).Should(Receive(Equal("a.wav")))
		Expect(s.Feed(b)).To(Succeed())

		Expect(s.Stop()).To(Succeed())
		Eventually(ended).Should(Receive())
		for _, path := range []string{a, b} {
			_, err := os.Stat(path)
			Expect(os.IsNotExist(err)).To(BeTrue(), path)
		}

		// Nothing from the old run is transcribed after a restart.
		provider.busy = nil
		Expect(s.Start(context.Background(), handlers)).To(Succeed())
		DeferCleanup(s.Stop)
		Consistently(finals, 50*time.Millisecond).ShouldNot(Receive())
	})

	It("ends once after Stop", func() {
		s := stt.NewProviderStream(provider, time.Minute)
		Expect(s.Start(context.Background(), handlers)).To(Succeed())
		Expect(s.Start(context.Background(), handlers)).To(MatchError(stt.ErrStreamRunning))

		Expect(s.Stop()).To(Succeed())
		Eventually(ended).Should(Receive())
		Consistently(ended, 50*time.Millisecond).ShouldNot(Receive())
	})

	It("ends on its own after the idle timeout", func() {
		s := stt.NewProviderStream(provider, 20*time.Millisecond)
		Expect(s.Start(context.Background(), handlers)).To(Succeed())
		Eventually(ended).Should(Receive())
		Expect(s.Feed(segment("a.wav"))).To(MatchError(stt.ErrStreamNotRunning))
	})

	It("is restarted by a listener after an idle end", func() {
		s := stt.NewProviderStream(provider, 20*time.Millisecond)
		var mu sync.Mutex
		var heard []string
		l := stt.NewListener(s, func(text string) {
			mu.Lock()
			heard = append(heard, text)
			mu.Unlock()
		})
		Expect(l.Start(context.Background())).To(Succeed())
		DeferCleanup(l.Stop)

		Eventually(func() int { return l.Snapshot().Restarts }).Should(BeNumerically(">=", 1))
		Eventually(func() error { return s.Feed(segment("a.wav")) }).Should(Succeed())
		Eventually(func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), heard...)
		}).Should(ContainElement("first line"))
	})
})
