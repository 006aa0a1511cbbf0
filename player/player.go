// Package player drives media players through playerctl and keeps track of
// which player the controller targets.
package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"soundviz/log"
	"soundviz/mailbox"
)

const (
	DefaultPlayer = "spotify"

	SwitchMessage = "\uf443 Player"

	maxOutput    = 25
	pollAttempts = 10
	pollInterval = 50 * time.Millisecond
)

var (
	ErrNoOutput = errors.New("playerctl returned no players")

	defaultPlayers = []string{"spotify", "firefox", "chromium", "chrome", "vlc"}

	icons = map[string]string{
		"spotify":  "\uf1bc",
		"firefox":  "\U000f0239",
		"chromium": "\ue743",
		"chrome":   "\ue743",
		"vlc":      "\U000f057c",
	}
)

// Runner runs an external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// Exec runs commands with os/exec.
type Exec struct{}

func (Exec) Run(ctx context.Context, name string, args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return string(out), fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return string(out), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return string(out), nil
}

func Icon(name string) string {
	return icons[name]
}

type Controller struct {
	Runner  Runner
	Mailbox mailbox.Mailbox
	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

func New(mb mailbox.Mailbox) *Controller {
	return &Controller{Runner: Exec{}, Mailbox: mb, Sleep: time.Sleep}
}

// Active returns the targeted player, spotify when none was chosen.
func (c *Controller) Active() string {
	if p := c.Mailbox.Get(mailbox.ActivePlayer); p != "" {
		return p
	}
	return DefaultPlayer
}

func (c *Controller) SetActive(name string) {
	c.Mailbox.Set(mailbox.ActivePlayer, name)
}

// Players lists running players by bus name with the instance suffix
// stripped. It falls back to a fixed list when playerctl knows none.
func (c *Controller) Players(ctx context.Context) ([]string, error) {
	out, err := c.Runner.Run(ctx, "playerctl", "-l")
	var players []string
	seen := map[string]bool{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		name, _, _ := strings.Cut(strings.TrimSpace(line), ".")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		players = append(players, name)
	}
	if len(players) == 0 {
		if err == nil {
			err = ErrNoOutput
		}
		return append([]string(nil), defaultPlayers...), err
	}
	return players, nil
}

func (c *Controller) status(ctx context.Context, player string) string {
	out, _ := c.Runner.Run(ctx, "playerctl", "-p", player, "status")
	return strings.ToLower(strings.TrimSpace(out))
}

// Control runs cmd against the active player and returns the short text to
// show for it. Failures come back as "ERR"; Control itself never fails.
func (c *Controller) Control(ctx context.Context, cmd string) string {
	out, err := c.control(ctx, cmd)
	if err != nil {
		log.Warnf("playerctl %s: %v", cmd, err)
		return "ERR"
	}
	return truncate(out, maxOutput)
}

func (c *Controller) control(ctx context.Context, cmd string) (string, error) {
	player := c.Active()
	switch cmd {
	case "play-pause":
		before := c.status(ctx, player)
		if _, err := c.Runner.Run(ctx, "playerctl", "-p", player, "play-pause"); err != nil {
			return "", err
		}
		after := before
		for range pollAttempts {
			c.Sleep(pollInterval)
			after = c.status(ctx, player)
			if after != before && after != "" {
				break
			}
		}
		if after == "" {
			return "...", nil
		}
		return strings.ToUpper(after), nil

	case "next", "previous":
		if _, err := c.Runner.Run(ctx, "playerctl", "-p", player, cmd); err != nil {
			return "", err
		}
		if cmd == "next" {
			return "󰒭 NEXT", nil
		}
		return "󰒮 PREV", nil

	default:
		return "", fmt.Errorf("unknown command %q", cmd)
	}
}

// Switch advances the active player to the next running one, wrapping
// around, and returns the new name.
func (c *Controller) Switch(ctx context.Context) string {
	players, err := c.Players(ctx)
	if err != nil {
		log.Warnf("listing players: %v", err)
	}
	current := c.Active()
	i := 0
	for j, p := range players {
		if p == current {
			i = j
			break
		}
	}
	next := players[(i+1)%len(players)]
	c.SetActive(next)
	return next
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
