// Package flavor selects narrative variations. Selection goes through the
// Selector interface so engine behaviour stays deterministic under test.
package flavor

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/game/dice"
)

// Category names a family of interchangeable lines.
type Category string

// Line categories.
const (
	CantDoThat     Category = "cant_do_that"
	UnknownVerb    Category = "unknown_verb"
	Empty          Category = "empty_input"
	NothingHappens Category = "nothing_happens"
	NotHere        Category = "not_here"
	Darkness       Category = "darkness"
	Jump           Category = "jump"
	Yell           Category = "yell"
	Pray           Category = "pray"
	Listen         Category = "listen"
	Smell          Category = "smell"
)

var catalog = map[Category][]string{
	CantDoThat: {
		"You can't do that.",
		"That doesn't seem to work.",
		"Nothing you try has any effect.",
	},
	UnknownVerb: {
		"I don't know how to do that.",
		"That's not a verb I recognise.",
		"I don't understand that.",
	},
	Empty: {
		"I beg your pardon?",
	},
	NothingHappens: {
		"Nothing happens.",
		"Nothing obvious happens.",
	},
	NotHere: {
		"You don't see that here.",
		"There is nothing like that here.",
	},
	Darkness: {
		"It is too dark to see.",
		"You can't see a thing in the dark.",
	},
	Jump: {
		"Wheeee!",
		"You jump on the spot, fruitlessly.",
	},
	Yell: {
		"Aaaarrrrgggghhhh!",
		"Your voice echoes back at you.",
	},
	Pray: {
		"If you pray enough, your prayers may be answered.",
	},
	Listen: {
		"You hear nothing unusual.",
	},
	Smell: {
		"You smell nothing unusual.",
	},
}

// Lines returns the catalogued lines of a category.
func Lines(cat Category) []string {
	return catalog[cat]
}

// Selector picks one line out of several.
type Selector interface {
	// Pick returns one element of options, or "" when options is empty.
	Pick(cat Category, options []string) string
}

// Text picks a line of cat from the catalog.
func Text(sel Selector, cat Category) string {
	return sel.Pick(cat, catalog[cat])
}

// RandomSelector picks lines using a dice.Source.
type RandomSelector struct {
	src    dice.Source
	logger *zap.Logger
}

// NewRandomSelector creates a selector drawing from src and logging each pick at debug level.
//
// Precondition: src and logger must be non-nil.
func NewRandomSelector(src dice.Source, logger *zap.Logger) *RandomSelector {
	return &RandomSelector{src: src, logger: logger}
}

// Pick returns a random element of options.
func (s *RandomSelector) Pick(cat Category, options []string) string {
	if len(options) == 0 {
		return ""
	}
	i := s.src.Intn(len(options))
	s.logger.Debug("flavor pick",
		zap.String("category", string(cat)),
		zap.Int("index", i),
		zap.Int("options", len(options)),
	)
	return options[i]
}

// FirstSelector always picks the first option.
type FirstSelector struct{}

// Pick returns options[0].
func (FirstSelector) Pick(_ Category, options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[0]
}
