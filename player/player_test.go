package player

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundviz/mailbox"
)

type call struct {
	out string
	err error
}

// scriptRunner answers by joined argv; status answers are consumed in order
// and the last one repeats.
type scriptRunner struct {
	mu      sync.Mutex
	answers map[string][]call
	calls   []string
}

func (r *scriptRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, key)
	q := r.answers[key]
	if len(q) == 0 {
		return "", nil
	}
	c := q[0]
	if len(q) > 1 {
		r.answers[key] = q[1:]
	}
	return c.out, c.err
}

func newController(answers map[string][]call) (*Controller, *scriptRunner, *mailbox.Memory) {
	r := &scriptRunner{answers: answers}
	mb := mailbox.NewMemory()
	return &Controller{Runner: r, Mailbox: mb, Sleep: func(time.Duration) {}}, r, mb
}

func TestPlayPauseWaitsForStatusChange(t *testing.T) {
	c, r, _ := newController(map[string][]call{
		"playerctl -p spotify status": {{out: "Playing\n"}, {out: "Playing\n"}, {out: "Paused\n"}},
	})
	assert.Equal(t, "PAUSED", c.Control(context.Background(), "play-pause"))
	assert.Contains(t, r.calls, "playerctl -p spotify play-pause")
}

func TestPlayPauseGivesUpAfterTenPolls(t *testing.T) {
	c, r, _ := newController(map[string][]call{
		"playerctl -p spotify status": {{out: "Playing"}},
	})
	assert.Equal(t, "PLAYING", c.Control(context.Background(), "play-pause"))

	polls := 0
	for _, k := range r.calls {
		if k == "playerctl -p spotify status" {
			polls++
		}
	}
	assert.Equal(t, 1+pollAttempts, polls)
}

func TestPlayPauseNoStatus(t *testing.T) {
	c, _, _ := newController(nil)
	assert.Equal(t, "...", c.Control(context.Background(), "play-pause"))
}

func TestNextPrevious(t *testing.T) {
	c, r, mb := newController(nil)
	mb.Set(mailbox.ActivePlayer, "vlc")
	assert.Equal(t, "󰒭 NEXT", c.Control(context.Background(), "next"))
	assert.Equal(t, "󰒮 PREV", c.Control(context.Background(), "previous"))
	assert.Equal(t, []string{"playerctl -p vlc next", "playerctl -p vlc previous"}, r.calls)
}

func TestControlFailureIsERR(t *testing.T) {
	c, _, _ := newController(map[string][]call{
		"playerctl -p spotify next":       {{err: errors.New("exec: not found")}},
		"playerctl -p spotify play-pause": {{err: errors.New("exec: not found")}},
	})
	assert.Equal(t, "ERR", c.Control(context.Background(), "next"))
	assert.Equal(t, "ERR", c.Control(context.Background(), "play-pause"))
	assert.Equal(t, "ERR", c.Control(context.Background(), "shuffle"))
}

func TestControlTruncates(t *testing.T) {
	long := strings.Repeat("ä", 40)
	c, _, _ := newController(map[string][]call{
		"playerctl -p spotify status": {{out: ""}, {out: long}},
	})
	got := c.Control(context.Background(), "play-pause")
	assert.Equal(t, maxOutput, len([]rune(got)))
}

func TestPlayers(t *testing.T) {
	c, _, _ := newController(map[string][]call{
		"playerctl -l": {{out: "spotify\nfirefox.instance2\nfirefox.instance9\n"}},
	})
	players, err := c.Players(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"spotify", "firefox"}, players)
}

func TestPlayersFallback(t *testing.T) {
	c, _, _ := newController(nil)
	players, err := c.Players(context.Background())
	assert.ErrorIs(t, err, ErrNoOutput)
	assert.Equal(t, defaultPlayers, players)
}

func TestSwitchWraps(t *testing.T) {
	c, _, mb := newController(map[string][]call{
		"playerctl -l": {{out: "spotify\nvlc\n"}},
	})
	assert.Equal(t, "vlc", c.Switch(context.Background()))
	assert.Equal(t, "vlc", mb.Get(mailbox.ActivePlayer))
	assert.Equal(t, "spotify", c.Switch(context.Background()))
}

func TestSwitchUnknownActive(t *testing.T) {
	c, _, mb := newController(map[string][]call{
		"playerctl -l": {{out: "firefox\nvlc\n"}},
	})
	mb.Set(mailbox.ActivePlayer, "mpv")
	assert.Equal(t, "vlc", c.Switch(context.Background()))
}

func TestIcon(t *testing.T) {
	for _, p := range defaultPlayers {
		assert.NotEmpty(t, Icon(p), p)
	}
	assert.Equal(t, "\uf1bc", Icon("spotify"))
	assert.Equal(t, "\ue743", Icon("chrome"))
	assert.Equal(t, "", Icon("mpv"))
}

func TestWatchIcon(t *testing.T) {
	mb := mailbox.NewMemory()
	mb.Set(mailbox.ActivePlayer, "vlc")

	ctx, cancel := context.WithCancel(context.Background())
	wake := make(chan struct{})
	var got []string
	emit := func(s string) error {
		got = append(got, s)
		switch len(got) {
		case 1:
			mb.Set(mailbox.ActivePlayer, "firefox")
			go func() { wake <- struct{}{} }()
		case 2:
			cancel()
		}
		return nil
	}

	require.NoError(t, WatchIcon(ctx, mb, emit, time.Hour, wake))
	assert.Equal(t, []string{"󰕼", "󰈹"}, got)
}

func TestWatchIconEmitError(t *testing.T) {
	boom := fmt.Errorf("stdout closed")
	err := WatchIcon(context.Background(), mailbox.NewMemory(), func(string) error { return boom }, time.Hour, nil)
	assert.ErrorIs(t, err, boom)
}
