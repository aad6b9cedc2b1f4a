package voices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExact(t *testing.T) {
	v, err := Builtin().Resolve("ZH-cn-xiaoxiaoneural")
	require.NoError(t, err)
	assert.Equal(t, "zh-CN-XiaoxiaoNeural", v.ShortName)
	assert.True(t, v.SupportsStyle("Cheerful"))
	assert.False(t, v.SupportsStyle("whispering"))
}

func TestResolveFuzzy(t *testing.T) {
	v, err := Builtin().Resolve("yunyang")
	require.NoError(t, err)
	assert.Equal(t, "zh-CN-YunyangNeural", v.ShortName)
}

func TestResolveUnknown(t *testing.T) {
	_, err := Builtin().Resolve("qqqqzzzz")
	assert.ErrorIs(t, err, ErrUnknownVoice)

	_, err = Builtin().Resolve("  ")
	assert.ErrorIs(t, err, ErrUnknownVoice)
}

func TestResolveAmbiguous(t *testing.T) {
	c := Catalog{
		{ShortName: "xx-AA-TestNeural"},
		{ShortName: "xx-BB-TestNeural"},
	}
	_, err := c.Resolve("TestNeural")
	assert.ErrorIs(t, err, ErrAmbiguousVoice)
}

func TestResolveAllDeduplicates(t *testing.T) {
	got, err := Builtin().ResolveAll([]string{"en-US-AriaNeural", "en-us-arianeural", "zh-CN-YunxiNeural"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "en-US-AriaNeural", got[0].ShortName)
	assert.Equal(t, "zh-CN-YunxiNeural", got[1].ShortName)

	got, err = Builtin().ResolveAll([]string{"en-US-AriaNeural", "qqqqzzzz"})
	assert.ErrorIs(t, err, ErrUnknownVoice)
	assert.Len(t, got, 1)
}

func TestLocale(t *testing.T) {
	for _, v := range Builtin().Locale("zh") {
		assert.Contains(t, v.Locale, "zh-")
	}
	assert.Len(t, Builtin().Locale("en-GB"), 1)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"ShortName":"zh-CN-YunxiNeural","Locale":"zh-CN","Gender":"Male"},
			{"ShortName":"en-US-AriaNeural","Locale":"en-US","Gender":"Female","StyleList":["chat"]}
		]`))
	}))
	defer srv.Close()

	c, err := Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, c, 2)
	assert.Equal(t, "en-US-AriaNeural", c[0].ShortName)
	assert.True(t, c[0].SupportsStyle("chat"))
}

func TestFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}
