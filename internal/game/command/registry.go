package command

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps verb identifiers and aliases to Command definitions.
type Registry struct {
	commands map[Verb]*Command // canonical verb → command
	words    map[string]Verb   // verb identifier or alias → canonical verb
}

// NewRegistry creates a Registry populated with the given commands.
//
// Precondition: No two commands may share a verb or alias.
// Postcondition: Returns a Registry or an error on verb/alias collisions.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[Verb]*Command, len(cmds)),
		words:    make(map[string]Verb),
	}

	for i := range cmds {
		cmd := &cmds[i]
		if cmd.Verb == "" || cmd.Verb == VerbUnknown {
			return nil, fmt.Errorf("command %d: verb must be set and not %q", i, VerbUnknown)
		}
		if _, exists := r.commands[cmd.Verb]; exists {
			return nil, fmt.Errorf("duplicate verb: %q", cmd.Verb)
		}
		if existing, exists := r.words[string(cmd.Verb)]; exists {
			return nil, fmt.Errorf("verb %q conflicts with an alias of %q", cmd.Verb, existing)
		}
		r.commands[cmd.Verb] = cmd
		r.words[string(cmd.Verb)] = cmd.Verb

		for _, alias := range cmd.Aliases {
			alias = strings.ToLower(strings.Join(strings.Fields(alias), " "))
			if len(strings.Fields(alias)) > 2 {
				return nil, fmt.Errorf("alias %q of %q: at most two words", alias, cmd.Verb)
			}
			if existing, exists := r.words[alias]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, cmd.Verb)
			}
			r.words[alias] = cmd.Verb
		}
	}

	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
//
// Postcondition: Returns a Registry with all built-in commands registered.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by verb identifier or alias. The input may be
// a single word or a two-word phrase.
//
// Postcondition: Returns (command, true) if found, or (nil, false).
func (r *Registry) Resolve(input string) (*Command, bool) {
	verb, ok := r.words[input]
	if !ok {
		return nil, false
	}
	return r.commands[verb], true
}

// Command returns the definition of verb.
func (r *Registry) Command(verb Verb) (*Command, bool) {
	cmd, ok := r.commands[verb]
	return cmd, ok
}

// Usage returns the usage example of verb, or an empty string if unknown.
func (r *Registry) Usage(verb Verb) string {
	if cmd, ok := r.commands[verb]; ok {
		return cmd.Usage
	}
	return ""
}

// Commands returns all registered commands sorted by verb.
func (r *Registry) Commands() []*Command {
	result := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		result = append(result, cmd)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Verb < result[j].Verb })
	return result
}

// CommandsByCategory returns commands grouped by category, each group sorted by verb.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.Commands() {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	return categories
}
