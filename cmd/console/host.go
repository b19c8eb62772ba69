package main

import (
	"context"
	"fmt"

	"github.com/jwebster45206/npc-dialogue/pkg/emotion"
	"github.com/jwebster45206/npc-dialogue/pkg/host"
)

type requestKind int

const (
	requestText requestKind = iota
	requestChoices
	requestInput
	requestImage
	requestAffect
)

// hostRequest is a host call waiting on the UI. The engine goroutine blocks
// until the model writes exactly one hostReply.
type hostRequest struct {
	kind        requestKind
	prompt      string
	text        string
	placeholder string
	choices     []host.Choice
	image       host.Image
	affect      emotion.Symbol
	reply       chan hostReply
}

type hostReply struct {
	choice host.Choice
	text   string
	ok     bool
	err    error
}

// consoleHost implements host.Player by forwarding every call into the
// bubbletea program.
type consoleHost struct {
	playerID string
	host.Variables
	send func(msg any)
}

var _ host.Player = (*consoleHost)(nil)

func newConsoleHost(playerID string, vars host.Variables, send func(msg any)) *consoleHost {
	return &consoleHost{playerID: playerID, Variables: vars, send: send}
}

func (h *consoleHost) ID() string {
	return h.playerID
}

func (h *consoleHost) ShowChoices(ctx context.Context, prompt string, choices []host.Choice) (host.Choice, bool, error) {
	r, err := h.roundTrip(ctx, hostRequest{kind: requestChoices, prompt: prompt, choices: choices})
	return r.choice, r.ok, err
}

func (h *consoleHost) ShowInput(ctx context.Context, prompt, placeholder string) (string, bool, error) {
	r, err := h.roundTrip(ctx, hostRequest{kind: requestInput, prompt: prompt, placeholder: placeholder})
	return r.text, r.ok, err
}

func (h *consoleHost) ShowText(ctx context.Context, text string) error {
	_, err := h.roundTrip(ctx, hostRequest{kind: requestText, text: text})
	return err
}

func (h *consoleHost) OpenImageViewer(ctx context.Context, img host.Image) error {
	_, err := h.roundTrip(ctx, hostRequest{kind: requestImage, image: img})
	return err
}

func (h *consoleHost) ShowAffect(ctx context.Context, sym emotion.Symbol) error {
	_, err := h.roundTrip(ctx, hostRequest{kind: requestAffect, affect: sym})
	return err
}

func (h *consoleHost) roundTrip(ctx context.Context, req hostRequest) (hostReply, error) {
	req.reply = make(chan hostReply, 1)
	h.send(req)
	select {
	case r := <-req.reply:
		if r.err != nil {
			return r, r.err
		}
		return r, nil
	case <-ctx.Done():
		return hostReply{}, fmt.Errorf("host call abandoned: %w", ctx.Err())
	}
}
