package command

import (
	"strings"
	"sync"

	"github.com/cory-johannsen/grue/internal/game/world"
)

// ParsedCommand is the structured form of one line of player input.
type ParsedCommand struct {
	// Verb is the canonical verb, or VerbUnknown.
	Verb Verb
	// Object is the direct object phrase. The engine rewrites it to a canonical ID.
	Object string
	// Target is the indirect object after a non-instrument preposition.
	Target string
	// Instrument is the object after "with" or "using".
	Instrument string
	// Direction is set for movement.
	Direction world.Direction
	// Preposition is the preposition that split object from target or instrument.
	Preposition string
	// All is set when the object was "all".
	All bool
	// Except lists the phrases excluded by "all except ...".
	Except []string
	// Raw is the input as typed.
	Raw string
	// Remainder holds the normalised words of an unrecognised command.
	Remainder string
}

var fillers = map[string]bool{
	"the": true, "a": true, "an": true, "my": true, "your": true,
	"his": true, "her": true, "its": true, "some": true, "this": true,
	"that": true, "these": true, "those": true,
}

var instrumentPrepositions = map[string]bool{"with": true, "using": true}

var targetPrepositions = map[string]bool{
	"in": true, "into": true, "inside": true, "on": true, "onto": true,
	"to": true, "at": true, "from": true, "under": true, "behind": true,
	"through": true, "over": true, "off": true, "out": true,
}

var exceptWords = map[string]bool{"except": true, "but": true}

var defaultRegistry = sync.OnceValue(DefaultRegistry)

// Parse parses text with the default registry.
func Parse(text string) ParsedCommand {
	return defaultRegistry().Parse(text)
}

// Parse turns free text into a ParsedCommand. It never fails: input that
// matches no verb yields VerbUnknown with the normalised words in Remainder.
//
// Postcondition: Returns a ParsedCommand whose Raw field is text.
func (r *Registry) Parse(text string) ParsedCommand {
	pc := ParsedCommand{Verb: VerbUnknown, Raw: text}
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return pc
	}

	if len(tokens) == 1 {
		if dir, ok := world.ParseDirection(tokens[0]); ok {
			pc.Verb = VerbGo
			pc.Direction = dir
			return pc
		}
	}

	// "turn lamp on" / "switch the lamp off"
	if n := len(tokens); n >= 3 && (tokens[0] == "turn" || tokens[0] == "switch") {
		switch tokens[n-1] {
		case "on":
			pc.Verb = VerbTurnOn
			r.fillObject(&pc, tokens[1:n-1])
			return pc
		case "off":
			pc.Verb = VerbTurnOff
			r.fillObject(&pc, tokens[1:n-1])
			return pc
		}
	}

	var rest []string
	if cmd, ok := r.phrase(tokens); ok {
		pc.Verb = cmd.Verb
		rest = tokens[2:]
	} else if cmd, ok := r.Resolve(tokens[0]); ok {
		pc.Verb = cmd.Verb
		rest = tokens[1:]
	} else {
		pc.Remainder = strings.Join(tokens, " ")
		return pc
	}

	if pc.Verb == VerbGo {
		if len(rest) > 0 {
			if dir, ok := world.ParseDirection(rest[0]); ok && len(rest) == 1 {
				pc.Direction = dir
				return pc
			}
			pc.Object = strings.Join(rest, " ")
		}
		return pc
	}

	r.fillObject(&pc, rest)
	return pc
}

// phrase resolves a two-word verb phrase at the start of tokens.
func (r *Registry) phrase(tokens []string) (*Command, bool) {
	if len(tokens) < 2 {
		return nil, false
	}
	return r.Resolve(tokens[0] + " " + tokens[1])
}

// fillObject splits the words after the verb on the first preposition.
func (r *Registry) fillObject(pc *ParsedCommand, rest []string) {
	objectWords := rest
	for i, w := range rest {
		if !instrumentPrepositions[w] && !targetPrepositions[w] {
			continue
		}
		objectWords = rest[:i]
		pc.Preposition = w
		if i == len(rest)-1 {
			break
		}
		tail := strings.Join(rest[i+1:], " ")
		if instrumentPrepositions[w] {
			pc.Instrument = tail
		} else {
			pc.Target = tail
		}
		break
	}

	if len(objectWords) > 0 && objectWords[0] == "all" {
		pc.All = true
		if len(objectWords) > 2 && exceptWords[objectWords[1]] {
			pc.Except = splitList(objectWords[2:])
		}
		return
	}
	pc.Object = strings.Join(objectWords, " ")
}

// splitList splits "lamp and sword" into ["lamp", "sword"].
func splitList(words []string) []string {
	var out []string
	var cur []string
	for _, w := range words {
		if w == "and" {
			if len(cur) > 0 {
				out = append(out, strings.Join(cur, " "))
			}
			cur = nil
			continue
		}
		cur = append(cur, w)
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

// tokenize lowercases text, drops punctuation and filler words.
func tokenize(text string) []string {
	text = strings.ToLower(text)
	text = strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', '!', ';', ':', '"':
			return ' '
		}
		return r
	}, text)
	var out []string
	for _, w := range strings.Fields(text) {
		if fillers[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}
