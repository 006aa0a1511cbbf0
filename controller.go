package main

import (
	"context"
	"time"

	"soundviz/anim"
	"soundviz/log"
	"soundviz/mailbox"
	"soundviz/notify"
	"soundviz/player"
	"soundviz/render"
)

const controlTimeout = 3 * time.Second

// controller implements the one-shot modes: leave a message, wake every
// visualizer, exit. Failures are logged and never change the exit status.
type controller struct {
	mb      mailbox.Mailbox
	ch      notify.Channel
	players *player.Controller
	// timeout bounds each playerctl round trip; zero means controlTimeout.
	timeout time.Duration
}

func (c *controller) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithTimeout(ctx, controlTimeout)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *controller) send(mode, text string, action anim.Action) {
	if err := notify.Send(c.mb, c.ch, text, action); err != nil {
		log.Warnf("%s broadcast: %v", mode, err)
	}
	log.Controller(mode, text)
}

func (c *controller) scanDevice() {
	c.send("scan_device", render.ScanMessage, anim.ActionScanDevice)
}

func (c *controller) switchPlayer(ctx context.Context) string {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	next := c.players.Switch(ctx)
	c.send("switch_player", player.SwitchMessage, anim.ActionBareAnimate)
	return next
}

func (c *controller) control(ctx context.Context, cmd string) string {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	text := c.players.Control(ctx, cmd)
	c.send("playerctl", text, anim.ActionBareAnimate)
	return text
}
