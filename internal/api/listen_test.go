package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"morning/internal/api"
	"morning/internal/match"
	"morning/internal/meeting"
	"morning/internal/presence"
	"morning/internal/room"
	"morning/internal/session"
	"morning/internal/storage"
	"morning/internal/store"
	"morning/internal/stt"
	"morning/internal/suggest"
)

type cannedProvider struct{ text string }

func (cannedProvider) Name() string { return "canned" }

func (p cannedProvider) Transcribe(context.Context, string) (*stt.Result, error) {
	return &stt.Result{Transcript: p.text, Provider: "canned"}, nil
}

var _ = Describe("listening with a speech-to-text provider", func() {
	var (
		router *gin.Engine
		sid    string
	)

	send := func(req *http.Request) *httptest.ResponseRecorder {
		req.Header.Set(api.HeaderSessionID, sid)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	upload := func() *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("audio", "seg.webm")
		Expect(err).NotTo(HaveOccurred())
		_, _ = part.Write(bytes.Repeat([]byte{1}, 2048))
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/listen/audio", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return send(req)
	}

	BeforeEach(func() {
		provider := cannedProvider{text: "we are raising for our startup"}
		sessions := session.NewManager(func() stt.Stream {
			return stt.NewProviderStream(provider, time.Minute)
		})
		h := api.NewHandler(api.Deps{
			Sessions: sessions,
			Launcher: meeting.NewLauncher(match.NewSelector(room.DefaultCatalog(), nil), meeting.NewLinkBuilder("")),
			Agent:    suggest.NewEngine(nil),
			Prefs:    store.NewPreferences(store.NewMemoryKV()),
			Presence: presence.NewMemoryChannel(),
			Audio:    storage.NewAudioStore(GinkgoT().TempDir()),
		})
		router = gin.New()
		h.RegisterRoutes(router)

		s := sessions.Create()
		sid = s.ID
		DeferCleanup(s.Close)
	})

	It("refuses audio before listening starts", func() {
		Expect(upload().Code).To(Equal(http.StatusConflict))
	})

	It("transcribes uploaded segments into the transcript", func() {
		w := send(httptest.NewRequest(http.MethodPost, "/api/v1/listen/start", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(stt.StatusListening))

		Expect(upload().Code).To(Equal(http.StatusAccepted))

		Eventually(func() []string {
			w := send(httptest.NewRequest(http.MethodGet, "/api/v1/transcript", nil))
			var env struct {
				Data struct {
					Lines []string `json:"lines"`
				} `json:"data"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &env)).To(Succeed())
			return env.Data.Lines
		}).Should(Equal([]string{"we are raising for our startup"}))

		w = send(httptest.NewRequest(http.MethodGet, "/api/v1/agent/feed", nil))
		Expect(w.Body.String()).To(ContainSubstring(session.AuthorAutoSuggest))

		w = send(httptest.NewRequest(http.MethodPost, "/api/v1/listen/stop", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Eventually(func() stt.State {
			s := send(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/current", nil))
			var env struct {
				Data struct {
					Listen stt.Snapshot `json:"listen"`
				} `json:"data"`
			}
			Expect(json.Unmarshal(s.Body.Bytes(), &env)).To(Succeed())
			if env.Data.Listen.State == "idle" {
				return stt.StateIdle
			}
			return stt.StateActive
		}).Should(Equal(stt.StateIdle))
	})
})
