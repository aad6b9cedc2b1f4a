package synth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCLITransportArgs(t *testing.T) {
	tr := NewCLITransport(CLIConfig{})
	args := tr.Args(Request{Text: "你好", Voice: "zh-CN-XiaoxiaoNeural", Rate: "-10%"})

	assert.Equal(t, []string{
		"--voice", "zh-CN-XiaoxiaoNeural",
		"--rate=-10%",
		"--pitch=+0Hz",
		"--volume=+0%",
		"--text", "你好",
	}, args)
	assert.Equal(t, "cli", tr.Name())
}

func TestCLITransportRejectsStyles(t *testing.T) {
	tr := NewCLITransport(CLIConfig{Binary: "does-not-exist", Timeout: time.Second})
	err := tr.Synthesize(context.Background(), enrichedRequest(), io.Discard)
	assert.ErrorIs(t, err, ErrEmotionUnsupported)
}

func TestCLITransportMissingBinary(t *testing.T) {
	tr := NewCLITransport(CLIConfig{Binary: "voxcue-no-such-binary", Timeout: time.Second})
	err := tr.Synthesize(context.Background(), Request{Text: "hi", Voice: "en-US-AriaNeural"}, io.Discard)
	assert.Error(t, err)
}

func TestRefreshGate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewRefreshGate(time.Minute)
	g.now = func() time.Time { return now }

	assert.True(t, g.Acquire(false))
	assert.False(t, g.Acquire(false))
	assert.True(t, g.Acquire(true), "force bypasses the cooldown")

	now = now.Add(2 * time.Minute)
	assert.True(t, g.Acquire(false))
	assert.Equal(t, now, g.Last())
}
