// Package voices lists neural voices and resolves user-typed voice names.
package voices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
)

var (
	// ErrUnknownVoice indicates a query matched no voice.
	ErrUnknownVoice = errors.New("unknown voice")
	// ErrAmbiguousVoice indicates a query matched several voices equally well.
	ErrAmbiguousVoice = errors.New("ambiguous voice")
)

// Voice describes one synthesis voice.
type Voice struct {
	ShortName string   `json:"ShortName"`
	Locale    string   `json:"Locale"`
	Gender    string   `json:"Gender"`
	Styles    []string `json:"StyleList,omitempty"`
}

// String implements fmt.Stringer.
func (v Voice) String() string {
	return v.ShortName
}

// SupportsStyle reports whether the voice lists style.
func (v Voice) SupportsStyle(style string) bool {
	for _, s := range v.Styles {
		if strings.EqualFold(s, style) {
			return true
		}
	}
	return false
}

// Catalog is an ordered list of voices.
type Catalog []Voice

// String implements fuzzy.Source.
func (c Catalog) String(i int) string {
	return c[i].ShortName
}

// Len implements fuzzy.Source.
func (c Catalog) Len() int {
	return len(c)
}

// Builtin returns the voices known without a network call.
func Builtin() Catalog {
	c := make(Catalog, len(builtin))
	copy(c, builtin)
	return c
}

var builtin = Catalog{
	{ShortName: "zh-CN-XiaoxiaoNeural", Locale: "zh-CN", Gender: "Female",
		Styles: []string{"affectionate", "angry", "calm", "cheerful", "chat", "fearful", "gentle", "sad", "serious"}},
	{ShortName: "zh-CN-XiaoyiNeural", Locale: "zh-CN", Gender: "Female"},
	{ShortName: "zh-CN-YunjianNeural", Locale: "zh-CN", Gender: "Male"},
	{ShortName: "zh-CN-YunxiNeural", Locale: "zh-CN", Gender: "Male",
		Styles: []string{"angry", "assistant", "cheerful", "depressed", "disgruntled", "embarrassed", "fearful", "narration-relaxed", "sad", "serious"}},
	{ShortName: "zh-CN-YunxiaNeural", Locale: "zh-CN", Gender: "Male"},
	{ShortName: "zh-CN-YunyangNeural", Locale: "zh-CN", Gender: "Male",
		Styles: []string{"customerservice", "narration-professional", "newscast-casual"}},
	{ShortName: "zh-TW-HsiaoChenNeural", Locale: "zh-TW", Gender: "Female"},
	{ShortName: "zh-HK-HiuMaanNeural", Locale: "zh-HK", Gender: "Female"},
	{ShortName: "en-US-AriaNeural", Locale: "en-US", Gender: "Female",
		Styles: []string{"angry", "chat", "cheerful", "customerservice", "empathetic", "excited", "friendly", "hopeful", "narration-professional", "newscast-casual", "sad", "shouting", "terrified", "unfriendly", "whispering"}},
	{ShortName: "en-US-GuyNeural", Locale: "en-US", Gender: "Male",
		Styles: []string{"angry", "cheerful", "excited", "friendly", "hopeful", "newscast", "sad", "shouting", "terrified", "unfriendly", "whispering"}},
	{ShortName: "en-US-JennyNeural", Locale: "en-US", Gender: "Female",
		Styles: []string{"angry", "assistant", "chat", "cheerful", "customerservice", "excited", "friendly", "hopeful", "newscast", "sad", "shouting", "terrified", "unfriendly", "whispering"}},
	{ShortName: "en-GB-SoniaNeural", Locale: "en-GB", Gender: "Female"},
	{ShortName: "ja-JP-NanamiNeural", Locale: "ja-JP", Gender: "Female"},
}

// Fetch downloads a voice list in the service's JSON format.
func Fetch(ctx context.Context, url string) (Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to build voice list request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch voice list: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to fetch voice list: %s", resp.Status)
	}

	var c Catalog
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&c); err != nil {
		return nil, fmt.Errorf("unable to decode voice list: %w", err)
	}
	sort.SliceStable(c, func(i, j int) bool { return c[i].ShortName < c[j].ShortName })
	return c, nil
}

// Locale returns the voices whose locale starts with prefix, e.g. "zh" or
// "en-US".
func (c Catalog) Locale(prefix string) Catalog {
	var out Catalog
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v.Locale), strings.ToLower(prefix)) {
			out = append(out, v)
		}
	}
	return out
}

// Resolve finds the voice meant by query. An exact, case-insensitive match
// wins; otherwise the best fuzzy match is used, unless several voices tie
// for the best score.
func (c Catalog) Resolve(query string) (Voice, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Voice{}, fmt.Errorf("%w: empty name", ErrUnknownVoice)
	}
	for _, v := range c {
		if strings.EqualFold(v.ShortName, query) {
			return v, nil
		}
	}

	matches := fuzzy.FindFrom(query, c)
	switch {
	case len(matches) == 0:
		return Voice{}, fmt.Errorf("%w: %q", ErrUnknownVoice, query)
	case len(matches) > 1 && matches[0].Score == matches[1].Score:
		return Voice{}, fmt.Errorf("%w: %q matches %s and %s",
			ErrAmbiguousVoice, query, matches[0].Str, matches[1].Str)
	default:
		return c[matches[0].Index], nil
	}
}

// ResolveAll resolves every query, returning the voices in query order
// without duplicates.
func (c Catalog) ResolveAll(queries []string) (Catalog, error) {
	seen := make(map[string]struct{}, len(queries))
	out := make(Catalog, 0, len(queries))
	var errs []error
	for _, q := range queries {
		v, err := c.Resolve(q)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := seen[v.ShortName]; ok {
			continue
		}
		seen[v.ShortName] = struct{}{}
		out = append(out, v)
	}
	return out, errors.Join(errs...)
}
