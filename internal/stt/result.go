package stt

// Result is one transcription. Confidence is zero when the provider does
// not report it. RawResponse keeps the provider's body so failed
// transcriptions can be inspected in debug logs.
type Result struct {
	Transcript  string
	Confidence  float64
	Provider    string
	RawResponse string
}

// rawExcerptLen bounds the provider body written to debug logs.
const rawExcerptLen = 500
