// Package dialogue runs one NPC conversation turn: menu, backend request,
// reply decoding and paginated display.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-dialogue/internal/logger"
	"github.com/jwebster45206/npc-dialogue/internal/observe"
	"github.com/jwebster45206/npc-dialogue/internal/services"
	"github.com/jwebster45206/npc-dialogue/pkg/chat"
	"github.com/jwebster45206/npc-dialogue/pkg/emotion"
	"github.com/jwebster45206/npc-dialogue/pkg/host"
	"github.com/jwebster45206/npc-dialogue/pkg/persona"
	"github.com/jwebster45206/npc-dialogue/pkg/reply"
	"github.com/jwebster45206/npc-dialogue/pkg/session"
	"github.com/jwebster45206/npc-dialogue/pkg/textchunk"
	"github.com/jwebster45206/npc-dialogue/pkg/textfilter"
)

// ArtifactSummaryLength is the rune length of a remembered artifact.
const ArtifactSummaryLength = 100

// TurnPublisher receives turn lifecycle notifications.
type TurnPublisher interface {
	PublishTurnStarted(ctx context.Context, playerID, turnID, persona, userMessage string) error
	PublishTurnCompleted(ctx context.Context, playerID, turnID, persona string, chunks int, imageURL string) error
	PublishTurnFailed(ctx context.Context, playerID, turnID, persona, outcome, reason string) error
	PublishFarewell(ctx context.Context, playerID, persona string) error
}

// Options configures an Engine. Zero values are usable.
type Options struct {
	Logger    *slog.Logger
	Metrics   *observe.Metrics
	Publisher TurnPublisher
	// Filter softens replies for rated personas. Nil uses textfilter.Default.
	Filter *textfilter.Filter
	// ChunkSize is the display page length in runes.
	ChunkSize int
	// BaseURL resolves personas that name an agent ID instead of a URL.
	BaseURL string
}

// Engine drives conversations for any number of players and personas.
type Engine struct {
	chat      services.ChatService
	parser    *reply.Parser
	logger    *slog.Logger
	metrics   *observe.Metrics
	publisher TurnPublisher
	filter    *textfilter.Filter
	chunkSize int
	baseURL   string

	locks sync.Map // "player\x00persona" -> *sync.Mutex
}

// New creates an engine that talks to backends through cs.
func New(cs services.ChatService, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Filter == nil {
		opts.Filter = textfilter.Default()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = textchunk.DefaultMaxLength
	}
	return &Engine{
		chat:      cs,
		parser:    reply.NewParser(opts.Logger),
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		filter:    opts.Filter,
		chunkSize: opts.ChunkSize,
		baseURL:   opts.BaseURL,
	}
}

// lock serializes turns for one (player, persona) session.
func (e *Engine) lock(playerID, personaKey string) func() {
	v, _ := e.locks.LoadOrStore(playerID+"\x00"+personaKey, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Interact runs one full turn between player and p. Backend and decode
// failures are voiced in character and never returned; the error is non-nil
// only when a host call fails.
func (e *Engine) Interact(ctx context.Context, player host.Player, p *persona.Persona) (*Result, error) {
	unlock := e.lock(player.ID(), p.Key)
	defer unlock()

	t := &turn{
		engine:  e,
		player:  player,
		persona: p,
		sel:     p.Selector(),
		result:  &Result{TurnID: uuid.NewString()},
	}
	t.log = logger.WithTurn(logger.WithPlayer(e.logger, player.ID(), p.Key), t.result.TurnID)
	t.enter(StateIdle)

	t.sess = session.Load(ctx, player, player.ID(), p.Key, p.SessionKeys(), t.log)

	err := t.run(ctx)
	t.enter(StateIdle)
	if err != nil {
		t.log.Error("Turn aborted by host failure", "error", err)
		return t.result, err
	}
	return t.result, nil
}

// LeaveMap ends the player's presence near p, forgetting its last artifact.
func (e *Engine) LeaveMap(ctx context.Context, player host.Player, p *persona.Persona) error {
	if !p.TracksArtifacts() {
		return nil
	}
	unlock := e.lock(player.ID(), p.Key)
	defer unlock()

	log := logger.WithPlayer(e.logger, player.ID(), p.Key)
	sess := session.Load(ctx, player, player.ID(), p.Key, p.SessionKeys(), log)
	if !sess.HasArtifact() {
		return nil
	}
	sess.ClearArtifact()
	if err := sess.Save(ctx); err != nil {
		return fmt.Errorf("failed to clear artifact: %w", err)
	}
	log.Debug("Artifact cleared on leaving map")
	return nil
}

// turn is the mutable state of one Interact call.
type turn struct {
	engine  *Engine
	player  host.Player
	persona *persona.Persona
	sel     emotion.Selector
	sess    *session.Session
	log     *slog.Logger
	result  *Result
}

func (t *turn) enter(s State) {
	t.result.States = append(t.result.States, s)
	t.log.Debug("Dialogue state", "state", s)
}

func (t *turn) run(ctx context.Context) error {
	p := t.persona

	var (
		choice persona.Choice
		ok     bool
		err    error
	)
	if p.Recall != nil && p.TracksArtifacts() && t.sess.HasArtifact() {
		t.enter(StateAwaitingChoice)
		if err := t.say(ctx, emotion.EventRecollection, p.RecallLine(t.sess.LastArtifactSummary)); err != nil {
			return err
		}
		prompt := p.Recall.Prompt
		if prompt == "" {
			prompt = p.Lines.MenuPrompt
		}
		choice, ok, err = t.choose(ctx, prompt, p.Recall.Choices)
	} else {
		if t.sess.IsNew() {
			t.enter(StateGreeting)
			if err := t.say(ctx, emotion.EventGreeting, p.Lines.Greeting); err != nil {
				return err
			}
			t.sess.Append(chat.ChatMessage{Role: chat.ChatRoleAgent, Content: p.Lines.Greeting})
		}
		t.enter(StateAwaitingChoice)
		choice, ok, err = t.choose(ctx, p.Lines.MenuPrompt, p.Choices)
	}
	if err != nil {
		return err
	}
	if !ok || choice.EffectiveKind() == persona.KindExit {
		return t.farewell(ctx, p.Lines.Farewell)
	}

	message := choice.UserMessage(t.sess.LastArtifactSummary)
	if choice.EffectiveKind() == persona.KindInput {
		text, ok, err := t.player.ShowInput(ctx, p.Lines.InputPrompt, p.Lines.InputPlaceholder)
		if err != nil {
			return fmt.Errorf("failed to show input: %w", err)
		}
		text = strings.TrimSpace(text)
		if !ok || text == "" {
			line := p.Lines.InputDeclined
			if line == "" {
				line = p.Lines.Farewell
			}
			return t.farewell(ctx, line)
		}
		if err := chat.ValidateUserInput(text); errors.Is(err, chat.ErrMessageTooLong) {
			t.log.Warn("Truncating player input", "runes", utf8.RuneCountInString(text))
			text = string([]rune(text)[:chat.MaxMessageLength])
		}
		message = text
	}
	if strings.TrimSpace(message) == "" {
		return t.farewell(ctx, p.Lines.Farewell)
	}

	return t.commit(ctx, choice, message)
}

// choose shows a menu and maps the host's answer back to a persona choice.
func (t *turn) choose(ctx context.Context, prompt string, choices []persona.Choice) (persona.Choice, bool, error) {
	picked, ok, err := t.player.ShowChoices(ctx, prompt, persona.MenuChoices(choices))
	if err != nil {
		return persona.Choice{}, false, fmt.Errorf("failed to show choices: %w", err)
	}
	if !ok {
		return persona.Choice{}, false, nil
	}
	c, found := persona.FindChoice(choices, picked.Value)
	if !found {
		t.log.Warn("Host returned unknown choice", "value", picked.Value)
		return persona.Choice{}, false, nil
	}
	return c, true, nil
}

func (t *turn) farewell(ctx context.Context, line string) error {
	t.result.Outcome = OutcomeFarewell
	if err := t.say(ctx, emotion.EventFarewell, line); err != nil {
		return err
	}
	t.engine.metrics.RecordTurn(ctx, t.persona.Key, string(OutcomeFarewell))
	if t.engine.publisher != nil {
		if err := t.engine.publisher.PublishFarewell(ctx, t.player.ID(), t.persona.Key); err != nil {
			t.log.Warn("Failed to publish farewell", "error", err)
		}
	}
	t.log.Info("Player left without asking")
	return nil
}

func (t *turn) commit(ctx context.Context, choice persona.Choice, message string) error {
	p := t.persona
	t.enter(StateCommitted)

	if choice.ClearArtifact {
		t.sess.ClearArtifact()
	}

	affect := choice.Affect
	if affect == "" {
		affect = t.sel.ForEvent(emotion.EventAwaitingResponse)
	}
	if err := t.affect(ctx, affect); err != nil {
		return err
	}
	thinking := choice.Thinking
	if thinking == "" {
		thinking = p.Lines.Thinking
	}
	if thinking != "" {
		if err := t.show(ctx, thinking); err != nil {
			return err
		}
	}

	t.sess.Append(chat.ChatMessage{Role: chat.ChatRoleUser, Content: message})
	t.result.UserMessage = message
	if t.engine.publisher != nil {
		if err := t.engine.publisher.PublishTurnStarted(ctx, t.player.ID(), t.result.TurnID, p.Key, message); err != nil {
			t.log.Warn("Failed to publish turn start", "error", err)
		}
	}

	url := p.ResolveURL(t.engine.baseURL)
	if url == "" {
		t.log.Error("Backend URL is not configured", "agent_id", p.Backend.AgentID)
		return t.fail(ctx, StateHardFailure, OutcomeHardFailure, emotion.EventTransportError, p.Lines.Unconfigured, "backend url not configured")
	}

	t.enter(StateRequestInFlight)
	req := chat.NewDialogueRequest(t.sess.History)
	start := time.Now()
	resp, err := t.engine.chat.Send(ctx, url, &req)
	elapsed := time.Since(start)
	if err != nil {
		var se *services.StatusError
		if errors.As(err, &se) {
			t.engine.metrics.RecordBackend(ctx, p.Key, strconv.Itoa(se.StatusCode), elapsed)
			t.log.Warn("Backend rejected request", "status", se.StatusCode, "body", se.Body)
			return t.fail(ctx, StateSoftFailure, OutcomeSoftFailure, emotion.EventRequestFailed, p.Lines.SoftFailure, err.Error())
		}
		t.engine.metrics.RecordBackend(ctx, p.Key, "error", elapsed)
		t.log.Error("Backend request failed", "error", err)
		return t.fail(ctx, StateHardFailure, OutcomeHardFailure, emotion.EventTransportError, p.Lines.HardFailure, err.Error())
	}
	t.engine.metrics.RecordBackend(ctx, p.Key, strconv.Itoa(resp.StatusCode), elapsed)
	t.log.Debug("Backend replied", "status", resp.StatusCode, "body", resp.Body, "duration", elapsed)

	return t.succeed(ctx, choice, resp.Body)
}

func (t *turn) succeed(ctx context.Context, choice persona.Choice, body string) error {
	p := t.persona
	t.enter(StateSuccess)

	parsed := t.engine.parser.Parse(body, p.Lines.Placeholder)
	if parsed.Format != chat.FormatChatCompletion {
		t.engine.metrics.RecordParseFallback(ctx, p.Key, string(parsed.Format))
	}
	t.result.Reply = parsed
	t.sess.Append(chat.ChatMessage{Role: chat.ChatRoleAgent, Content: parsed.Text})

	ext := reply.ExtractImageLink(parsed.Text)
	t.result.ImageURL = ext.URL
	switch choice.EffectiveArtifact() {
	case persona.ArtifactAlways:
		t.sess.SetArtifact(reply.Summarize(ext.Remainder, ArtifactSummaryLength))
	case persona.ArtifactWithImage:
		if ext.HasImage() {
			t.sess.SetArtifact(reply.Summarize(ext.Remainder, ArtifactSummaryLength))
		}
	}
	t.save(ctx)

	if err := t.affect(ctx, t.sel.ForReply(parsed.EmotionTag)); err != nil {
		return err
	}

	if ext.HasImage() {
		if err := t.showImage(ctx, ext.URL); err != nil {
			return err
		}
	}

	text := ext.Remainder
	if textfilter.ShouldFilter(p.ContentRating) {
		text = t.engine.filter.Apply(text)
	}
	if text != "" {
		t.result.Chunks = textchunk.Split(text, t.engine.chunkSize)
		for _, chunk := range t.result.Chunks {
			if err := t.show(ctx, chunk); err != nil {
				return err
			}
		}
	}

	if p.Lines.Closing != "" {
		if err := t.say(ctx, emotion.EventClosing, p.Lines.Closing); err != nil {
			return err
		}
	}

	t.result.Outcome = OutcomeSuccess
	t.engine.metrics.RecordTurn(ctx, p.Key, string(OutcomeSuccess))
	if t.engine.publisher != nil {
		if err := t.engine.publisher.PublishTurnCompleted(ctx, t.player.ID(), t.result.TurnID, p.Key, len(t.result.Chunks), ext.URL); err != nil {
			t.log.Warn("Failed to publish turn completion", "error", err)
		}
	}
	t.log.Info("Turn completed", "format", parsed.Format, "chunks", len(t.result.Chunks), "image", ext.HasImage())
	return nil
}

func (t *turn) showImage(ctx context.Context, url string) error {
	p := t.persona
	img := host.Image{URL: url, Title: p.Viewer.Title, Description: p.Viewer.Description}
	if img.Title == "" {
		img.Title = p.Name
	}
	if err := t.player.OpenImageViewer(ctx, img); err != nil {
		t.engine.metrics.RecordImage(ctx, p.Key, "error")
		t.log.Warn("Image viewer failed", "url", url, "error", err)
		if p.Lines.ViewerFailure != "" {
			return t.show(ctx, p.Lines.ViewerFailure)
		}
		return nil
	}
	t.engine.metrics.RecordImage(ctx, p.Key, "ok")
	return nil
}

// fail voices a failed request. The user message is already in history, so
// the session is saved before anything is displayed.
func (t *turn) fail(ctx context.Context, state State, outcome Outcome, ev emotion.Event, line, reason string) error {
	t.enter(state)
	t.result.Outcome = outcome
	t.save(ctx)

	t.engine.metrics.RecordTurn(ctx, t.persona.Key, string(outcome))
	if t.engine.publisher != nil {
		if err := t.engine.publisher.PublishTurnFailed(ctx, t.player.ID(), t.result.TurnID, t.persona.Key, string(outcome), reason); err != nil {
			t.log.Warn("Failed to publish turn failure", "error", err)
		}
	}
	return t.say(ctx, ev, line)
}

// save persists the session. Store errors are logged, not surfaced: the
// player still gets a reply for this turn.
func (t *turn) save(ctx context.Context) {
	if err := t.sess.Save(ctx); err != nil {
		logger.WithError(t.log, err).Error("Failed to save session")
	}
}

// say shows the event's affect followed by line.
func (t *turn) say(ctx context.Context, ev emotion.Event, line string) error {
	if err := t.affect(ctx, t.sel.ForEvent(ev)); err != nil {
		return err
	}
	if line == "" {
		return nil
	}
	return t.show(ctx, line)
}

func (t *turn) affect(ctx context.Context, sym emotion.Symbol) error {
	if err := t.player.ShowAffect(ctx, sym); err != nil {
		return fmt.Errorf("failed to show affect: %w", err)
	}
	return nil
}

func (t *turn) show(ctx context.Context, text string) error {
	if err := t.player.ShowText(ctx, text); err != nil {
		return fmt.Errorf("failed to show text: %w", err)
	}
	return nil
}
