package meeting_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"morning/internal/match"
	"morning/internal/meeting"
	"morning/internal/room"
)

type recordingSelector struct {
	got room.MatchRequest
	sel match.Selection
}

func (r *recordingSelector) SelectBestRoom(_ context.Context, req room.MatchRequest) match.Selection {
	r.got = req
	return r.sel
}

var _ = Describe("LinkBuilder", func() {
	b := meeting.NewLinkBuilder("")

	It("links to the room with the display name prefilled", func() {
		Expect(b.Build("", "morning-product-lab", "Ada Lovelace")).
			To(Equal(`https://meet.jit.si/morning-product-lab#userInfo.displayName="Ada%20Lovelace"`))
	})

	It("escapes like encodeURIComponent", func() {
		Expect(b.Build("", "r", `Zoë & "co" (ok)!`)).
			To(Equal(`https://meet.jit.si/r#userInfo.displayName="Zo%C3%AB%20%26%20%22co%22%20(ok)!"`))
	})

	It("prefers the custom URL", func() {
		Expect(b.Build(" https://zoom.test/j/1 ", "r", "Ada")).To(Equal("https://zoom.test/j/1"))
	})

	It("uses a configured host", func() {
		Expect(meeting.NewLinkBuilder("https://meet.example.org/").Build("", "r", "A")).
			To(Equal(`https://meet.example.org/r#userInfo.displayName="A"`))
	})
})

var _ = Describe("ValidateLaunch", func() {
	DescribeTable("requires name and vibe",
		func(name, vibe string, ok bool) {
			err := meeting.ValidateLaunch(name, vibe)
			if ok {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(meeting.ErrMissingFields))
			}
		},
		Entry("both set", "Ada", "startup", true),
		Entry("blank name", "  ", "startup", false),
		Entry("blank vibe", "Ada", "", false),
	)
})

var _ = Describe("Launcher", func() {
	var sel *recordingSelector

	BeforeEach(func() {
		sel = &recordingSelector{sel: match.Selection{
			Result: room.MatchResult{RoomName: "Morning Founders Floor", RoomSlug: "morning-founders-floor"},
			Source: match.SourceHeuristic,
		}}
	})

	It("matches on the last eight transcript lines and builds the link", func() {
		lines := []string{"l1", "l2", "l3", "l4", "l5", "l6", "l7", "l8", "l9", "l10"}
		l := meeting.NewLauncher(sel, meeting.NewLinkBuilder(""))

		out, err := l.Launch(context.Background(), meeting.LaunchRequest{
			DisplayName: " Ada ", Vibe: " startup ", Goal: "hire", Credential: " sk ",
		}, lines)
		Expect(err).NotTo(HaveOccurred())

		Expect(sel.got).To(Equal(room.MatchRequest{
			Vibe: "startup", Goal: "hire", Transcript: "l3 l4 l5 l6 l7 l8 l9 l10", Credential: "sk",
		}))
		Expect(out.URL).To(Equal(`https://meet.jit.si/morning-founders-floor#userInfo.displayName="Ada"`))
		Expect(out.Target).To(Equal("_blank"))
		Expect(out.Features).To(Equal("noopener,noreferrer"))
		Expect(out.Status).To(Equal("Auto-joining Morning Founders Floor for Ada."))
		Expect(out.Message).To(Equal("Matched you to Morning Founders Floor. Need a crisp opening line?"))
	})

	It("does not match an invalid request", func() {
		l := meeting.NewLauncher(sel, meeting.NewLinkBuilder(""))
		_, err := l.Launch(context.Background(), meeting.LaunchRequest{DisplayName: "Ada"}, nil)
		Expect(err).To(MatchError(meeting.ErrMissingFields))
		Expect(sel.got).To(Equal(room.MatchRequest{}))
	})

	It("works with the real selector offline", func() {
		l := meeting.NewLauncher(match.NewSelector(room.DefaultCatalog(), nil), meeting.NewLinkBuilder(""))
		out, err := l.Launch(context.Background(), meeting.LaunchRequest{DisplayName: "Ada", Vibe: "product roadmap"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Match.RoomSlug).To(Equal("morning-product-lab"))
		Expect(out.Source).To(Equal(match.SourceHeuristic))
	})
})
