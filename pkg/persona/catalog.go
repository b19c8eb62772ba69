package persona

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jwebster45206/npc-dialogue/pkg/emotion"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a persona key is not in the catalog.
var ErrNotFound = errors.New("persona not found")

var validRatings = map[string]bool{"": true, "G": true, "PG": true, "PG13": true, "R": true}

var validEvents = map[emotion.Event]bool{
	emotion.EventGreeting:         true,
	emotion.EventFarewell:         true,
	emotion.EventAwaitingResponse: true,
	emotion.EventRequestFailed:    true,
	emotion.EventTransportError:   true,
	emotion.EventRequestSucceeded: true,
	emotion.EventRecollection:     true,
	emotion.EventClosing:          true,
}

// Catalog is a set of personas, usually loaded from one YAML file.
//
// Example:
//
//	personas:
//	  - key: phin
//	    name: Phin
//	    history_key: PHIN_HISTORY
//	    backend:
//	      agent_id: rpgjs-pixel-alchemist-phin
//	    lines:
//	      greeting: "Greetings! I am Phin."
//	      ...
type Catalog struct {
	Personas []*Persona `yaml:"personas"`
}

// LoadFile reads and validates a persona catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open persona file %q: %w", path, err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load persona file %q: %w", path, err)
	}
	return c, nil
}

// Load decodes a catalog from r, rejecting unknown fields, and validates it.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode persona yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Get returns the persona with key.
func (c *Catalog) Get(key string) (*Persona, error) {
	for _, p := range c.Personas {
		if p.Key == key {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}

// Keys returns every persona key, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Personas))
	for _, p := range c.Personas {
		keys = append(keys, p.Key)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks every persona and rejects duplicate keys.
func (c *Catalog) Validate() error {
	if len(c.Personas) == 0 {
		return errors.New("catalog has no personas")
	}
	var errs []error
	seen := make(map[string]bool)
	for i, p := range c.Personas {
		if p == nil {
			errs = append(errs, fmt.Errorf("personas[%d] is empty", i))
			continue
		}
		if seen[p.Key] {
			errs = append(errs, fmt.Errorf("personas[%d]: duplicate key %q", i, p.Key))
		}
		seen[p.Key] = true
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("personas[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Validate returns a joined error listing every problem with the persona.
func (p *Persona) Validate() error {
	var errs []error
	req := func(field, value string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", field))
		}
	}
	req("key", p.Key)
	req("name", p.Name)
	req("history_key", p.HistoryKey)
	req("lines.greeting", p.Lines.Greeting)
	req("lines.farewell", p.Lines.Farewell)
	req("lines.menu_prompt", p.Lines.MenuPrompt)
	req("lines.placeholder", p.Lines.Placeholder)
	req("lines.soft_failure", p.Lines.SoftFailure)
	req("lines.hard_failure", p.Lines.HardFailure)
	req("lines.unconfigured", p.Lines.Unconfigured)

	if p.HistoryKey != "" && p.HistoryKey == p.ArtifactKey {
		errs = append(errs, errors.New("artifact_key must differ from history_key"))
	}
	if p.DefaultEmotion != "" && !p.DefaultEmotion.IsValid() {
		errs = append(errs, fmt.Errorf("default_emotion %q is not a known symbol", p.DefaultEmotion))
	}
	for ev, sym := range p.Affects {
		if !validEvents[ev] {
			errs = append(errs, fmt.Errorf("affects: unknown event %q", ev))
		}
		if !sym.IsValid() {
			errs = append(errs, fmt.Errorf("affects.%s: %q is not a known symbol", ev, sym))
		}
	}
	if !validRatings[p.ContentRating] {
		errs = append(errs, fmt.Errorf("content_rating %q is invalid; valid values: G, PG, PG13, R", p.ContentRating))
	}

	if len(p.Choices) == 0 {
		errs = append(errs, errors.New("at least one choice is required"))
	}
	errs = append(errs, p.validateChoices("choices", p.Choices)...)

	if p.Recall != nil {
		if !p.TracksArtifacts() {
			errs = append(errs, errors.New("recall requires artifact_key"))
		}
		if p.Recall.Line == "" {
			errs = append(errs, errors.New("recall.line is required"))
		}
		if len(p.Recall.Choices) == 0 {
			errs = append(errs, errors.New("recall.choices must not be empty"))
		}
		errs = append(errs, p.validateChoices("recall.choices", p.Recall.Choices)...)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("persona %q: %w", p.Key, errors.Join(errs...))
}

func (p *Persona) validateChoices(field string, choices []Choice) []error {
	var errs []error
	values := make(map[string]bool)
	for i, c := range choices {
		prefix := fmt.Sprintf("%s[%d]", field, i)
		if c.Text == "" {
			errs = append(errs, fmt.Errorf("%s.text is required", prefix))
		}
		if c.Value == "" {
			errs = append(errs, fmt.Errorf("%s.value is required", prefix))
		} else if values[c.Value] {
			errs = append(errs, fmt.Errorf("%s: duplicate value %q", prefix, c.Value))
		}
		values[c.Value] = true

		switch c.EffectiveKind() {
		case KindNormal, KindExit:
		case KindInput:
			if p.Lines.InputPrompt == "" {
				errs = append(errs, fmt.Errorf("%s: input choices require lines.input_prompt", prefix))
			}
		default:
			errs = append(errs, fmt.Errorf("%s.kind %q is invalid; valid values: normal, input, exit", prefix, c.Kind))
		}

		switch c.EffectiveArtifact() {
		case ArtifactNone:
		case ArtifactAlways, ArtifactWithImage:
			if !p.TracksArtifacts() {
				errs = append(errs, fmt.Errorf("%s.artifact requires artifact_key", prefix))
			}
		default:
			errs = append(errs, fmt.Errorf("%s.artifact %q is invalid; valid values: none, always, with_image", prefix, c.Artifact))
		}
		if c.ClearArtifact && !p.TracksArtifacts() {
			errs = append(errs, fmt.Errorf("%s.clear_artifact requires artifact_key", prefix))
		}
		if c.Affect != "" && !c.Affect.IsValid() {
			errs = append(errs, fmt.Errorf("%s.affect %q is not a known symbol", prefix, c.Affect))
		}
	}
	return errs
}
