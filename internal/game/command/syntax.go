package command

import "fmt"

// SyntaxError reports a command missing a slot its verb requires.
type SyntaxError struct {
	Verb    Verb
	Missing string
	Usage   string
}

func (e *SyntaxError) Error() string {
	if e.Usage == "" {
		return fmt.Sprintf("%s: missing %s", e.Verb, e.Missing)
	}
	return fmt.Sprintf("%s: missing %s (try %q)", e.Verb, e.Missing, e.Usage)
}

// Validate checks that pc fills every slot its verb requires.
//
// Postcondition: Returns nil, or a *SyntaxError naming the missing slot and a usage example.
func (pc ParsedCommand) Validate(r *Registry) error {
	cmd, ok := r.Command(pc.Verb)
	if !ok {
		return nil
	}
	hasObject := pc.Object != "" || (pc.All && cmd.Multi)
	missing := ""
	switch cmd.Requires {
	case SlotsDirection:
		if pc.Direction == "" {
			missing = "direction"
		}
	case SlotsObject:
		if !hasObject {
			missing = "object"
		}
	case SlotsObjectAndTarget:
		if !hasObject {
			missing = "object"
		} else if pc.Target == "" {
			missing = "target"
		}
	}
	if pc.All && !cmd.Multi {
		missing = "single object"
	}
	if missing == "" {
		return nil
	}
	return &SyntaxError{Verb: pc.Verb, Missing: missing, Usage: cmd.Usage}
}
