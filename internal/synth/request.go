package synth

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgnsrekt/voxcue/internal/cache"
)

// Emotion is an optional speaking style annotation.
type Emotion struct {
	Style  string  // e.g. "cheerful"
	Degree float64 // style intensity, 0.01 to 2; zero leaves it to the service
	Role   string  // role-play persona, e.g. "Girl"
}

// Request is one text-to-speech call. Requests are values; build a new one
// rather than modifying a shared one.
type Request struct {
	Text    string
	Voice   string
	Rate    string // e.g. "+0%"
	Pitch   string // e.g. "+0Hz"
	Volume  string // e.g. "+0%"
	Emotion *Emotion
}

// Enriched reports whether the request carries a style annotation.
func (r Request) Enriched() bool {
	return r.Emotion != nil && (r.Emotion.Style != "" || r.Emotion.Role != "")
}

// Plain returns a copy of r without the style annotation.
func (r Request) Plain() Request {
	r.Emotion = nil
	return r
}

// CacheKey identifies the audio this request produces.
func (r Request) CacheKey() string {
	parts := []string{r.Voice, r.Rate, r.Pitch, r.Volume, r.Text}
	if r.Enriched() {
		parts = append(parts, r.Emotion.Style, strconv.FormatFloat(r.Emotion.Degree, 'f', 2, 64), r.Emotion.Role)
	}
	return cache.Key(parts...)
}

// Locale derives the xml:lang value from a voice name such as
// "zh-CN-XiaoxiaoNeural".
func (r Request) Locale() string {
	parts := strings.SplitN(r.Voice, "-", 3)
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return "en-US"
}

// SSML renders the request as a speak document. Enriched requests wrap the
// prosody in an mstts:express-as element.
func (r Request) SSML() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' "+
		"xmlns:mstts='https://www.w3.org/2001/mstts' xml:lang='%s'>", escape(r.Locale()))
	fmt.Fprintf(&b, "<voice name='%s'>", escape(r.Voice))

	if r.Enriched() {
		b.WriteString("<mstts:express-as")
		if r.Emotion.Style != "" {
			fmt.Fprintf(&b, " style='%s'", escape(r.Emotion.Style))
		}
		if r.Emotion.Degree > 0 {
			fmt.Fprintf(&b, " styledegree='%s'", strconv.FormatFloat(r.Emotion.Degree, 'f', -1, 64))
		}
		if r.Emotion.Role != "" {
			fmt.Fprintf(&b, " role='%s'", escape(r.Emotion.Role))
		}
		b.WriteString(">")
	}

	fmt.Fprintf(&b, "<prosody rate='%s' pitch='%s' volume='%s'>%s</prosody>",
		escape(orDefault(r.Rate, "+0%")), escape(orDefault(r.Pitch, "+0Hz")),
		escape(orDefault(r.Volume, "+0%")), escape(r.Text))

	if r.Enriched() {
		b.WriteString("</mstts:express-as>")
	}
	b.WriteString("</voice></speak>")
	return b.String()
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
