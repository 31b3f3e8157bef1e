// Package command provides the verb vocabulary, the registry that resolves
// typed words to verbs, and the parser that turns free text into a ParsedCommand.
package command

// Verb is the canonical identifier of a command in the closed vocabulary.
type Verb string

// The verb vocabulary.
const (
	VerbUnknown   Verb = "unknown"
	VerbGo        Verb = "go"
	VerbBack      Verb = "back"
	VerbLook      Verb = "look"
	VerbExamine   Verb = "examine"
	VerbRead      Verb = "read"
	VerbInventory Verb = "inventory"
	VerbScore     Verb = "score"
	VerbDiagnose  Verb = "diagnose"
	VerbWait      Verb = "wait"
	VerbRestart   Verb = "restart"
	VerbHelp      Verb = "help"
	VerbTake      Verb = "take"
	VerbDrop      Verb = "drop"
	VerbPut       Verb = "put"
	VerbOpen      Verb = "open"
	VerbClose     Verb = "close"
	VerbLock      Verb = "lock"
	VerbUnlock    Verb = "unlock"
	VerbTurnOn    Verb = "turn_on"
	VerbTurnOff   Verb = "turn_off"
	VerbAttack    Verb = "attack"
	VerbWear      Verb = "wear"
	VerbRemove    Verb = "remove"
	VerbEnter     Verb = "enter"
	VerbExit      Verb = "exit"
	VerbMove      Verb = "move"
	VerbPush      Verb = "push"
	VerbPull      Verb = "pull"
	VerbEat       Verb = "eat"
	VerbDrink     Verb = "drink"
	VerbUse       Verb = "use"
	VerbClimb     Verb = "climb"
	VerbGive      Verb = "give"
	VerbTouch     Verb = "touch"
	VerbRing      Verb = "ring"
	VerbPray      Verb = "pray"
	VerbListen    Verb = "listen"
	VerbSmell     Verb = "smell"
	VerbBreak     Verb = "break"
	VerbTie       Verb = "tie"
	VerbWave      Verb = "wave"
	VerbBurn      Verb = "burn"
	VerbSearch    Verb = "search"
	VerbJump      Verb = "jump"
	VerbYell      Verb = "yell"
)

// Categories for organizing commands in help output.
const (
	CategoryMovement    = "movement"
	CategoryObservation = "observation"
	CategoryObjects     = "objects"
	CategoryCombat      = "combat"
	CategorySystem      = "system"
)

// Slots names the parts of a command a verb requires.
type Slots int

// Slot requirements.
const (
	SlotsNone Slots = iota
	SlotsDirection
	SlotsObject
	SlotsObjectAndTarget
)

// Command defines a player-invocable verb.
type Command struct {
	// Verb is the canonical verb identifier.
	Verb Verb
	// Aliases are alternate words or two-word phrases for this verb.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Usage is an example invocation shown when a required slot is missing.
	Usage string
	// Category groups the command in help output.
	Category string
	// Requires lists the slots that must be filled.
	Requires Slots
	// Multi marks verbs accepting "all" and "all except ...".
	Multi bool
}

// Name is the word a player types for the canonical verb.
func (c *Command) Name() string {
	switch c.Verb {
	case VerbTurnOn:
		return "turn on"
	case VerbTurnOff:
		return "turn off"
	}
	return string(c.Verb)
}

// BuiltinCommands returns every verb of the vocabulary except VerbUnknown.
func BuiltinCommands() []Command {
	return []Command{
		// Movement
		{Verb: VerbGo, Aliases: []string{"walk", "run", "travel", "head"}, Help: "Move in a direction", Usage: "go north", Category: CategoryMovement, Requires: SlotsDirection},
		{Verb: VerbBack, Aliases: []string{"go back", "return", "retreat"}, Help: "Return to the previous room", Usage: "back", Category: CategoryMovement},
		{Verb: VerbEnter, Aliases: []string{"board", "get in", "embark", "climb in"}, Help: "Board a vehicle", Usage: "board boat", Category: CategoryMovement, Requires: SlotsObject},
		{Verb: VerbExit, Aliases: []string{"disembark", "get out", "leave"}, Help: "Leave your vehicle", Usage: "disembark", Category: CategoryMovement},
		{Verb: VerbClimb, Aliases: []string{"scale", "ascend"}, Help: "Climb something", Usage: "climb tree", Category: CategoryMovement, Requires: SlotsObject},
		{Verb: VerbJump, Aliases: []string{"leap", "hop"}, Help: "Jump", Usage: "jump", Category: CategoryMovement},

		// Observation
		{Verb: VerbLook, Aliases: []string{"l", "look around"}, Help: "Describe your surroundings", Usage: "look", Category: CategoryObservation},
		{Verb: VerbExamine, Aliases: []string{"x", "look at", "inspect", "describe", "check"}, Help: "Examine an object closely", Usage: "examine mailbox", Category: CategoryObservation, Requires: SlotsObject},
		{Verb: VerbRead, Aliases: []string{"peruse", "skim"}, Help: "Read something written", Usage: "read leaflet", Category: CategoryObservation, Requires: SlotsObject},
		{Verb: VerbSearch, Aliases: []string{"rummage"}, Help: "Search an object", Usage: "search sack", Category: CategoryObservation, Requires: SlotsObject},
		{Verb: VerbListen, Aliases: []string{"hear"}, Help: "Listen", Usage: "listen", Category: CategoryObservation},
		{Verb: VerbSmell, Aliases: []string{"sniff"}, Help: "Smell", Usage: "smell", Category: CategoryObservation},

		// Objects
		{Verb: VerbTake, Aliases: []string{"get", "pick up", "grab", "carry", "hold"}, Help: "Pick something up", Usage: "take lamp", Category: CategoryObjects, Requires: SlotsObject, Multi: true},
		{Verb: VerbDrop, Aliases: []string{"put down", "discard", "release"}, Help: "Drop something you carry", Usage: "drop lamp", Category: CategoryObjects, Requires: SlotsObject, Multi: true},
		{Verb: VerbPut, Aliases: []string{"place", "insert", "stash"}, Help: "Put something into a container", Usage: "put egg in case", Category: CategoryObjects, Requires: SlotsObjectAndTarget, Multi: true},
		{Verb: VerbOpen, Aliases: []string{"unseal"}, Help: "Open something", Usage: "open mailbox", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbClose, Aliases: []string{"shut"}, Help: "Close something", Usage: "close mailbox", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbLock, Aliases: []string{"secure"}, Help: "Lock something with its key", Usage: "lock chest with key", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbUnlock, Aliases: []string{"unbolt"}, Help: "Unlock something with its key", Usage: "unlock chest with key", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbTurnOn, Aliases: []string{"turn on", "switch on", "light", "activate"}, Help: "Turn a device or light on", Usage: "turn on lamp", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbTurnOff, Aliases: []string{"turn off", "switch off", "extinguish", "deactivate", "douse"}, Help: "Turn a device or light off", Usage: "turn off lamp", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbWear, Aliases: []string{"put on", "don"}, Help: "Wear something", Usage: "wear cloak", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbRemove, Aliases: []string{"take off", "doff"}, Help: "Take off something you wear", Usage: "remove cloak", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbMove, Aliases: []string{"shift", "slide", "lift"}, Help: "Move an object", Usage: "move rug", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbPush, Aliases: []string{"press", "shove"}, Help: "Push an object", Usage: "push button", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbPull, Aliases: []string{"tug", "yank"}, Help: "Pull an object", Usage: "pull lever", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbEat, Aliases: []string{"consume", "devour"}, Help: "Eat something", Usage: "eat lunch", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbDrink, Aliases: []string{"sip", "quaff"}, Help: "Drink something", Usage: "drink water", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbUse, Aliases: []string{"apply", "operate"}, Help: "Use an object", Usage: "use key", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbGive, Aliases: []string{"offer", "hand"}, Help: "Give something to someone", Usage: "give lunch to troll", Category: CategoryObjects, Requires: SlotsObjectAndTarget},
		{Verb: VerbTouch, Aliases: []string{"feel", "rub", "pat"}, Help: "Touch an object", Usage: "touch painting", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbRing, Aliases: []string{"chime"}, Help: "Ring something", Usage: "ring bell", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbBreak, Aliases: []string{"smash", "destroy", "shatter"}, Help: "Break something", Usage: "break window", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbTie, Aliases: []string{"attach", "fasten"}, Help: "Tie something", Usage: "tie rope to railing", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbWave, Aliases: []string{"brandish"}, Help: "Wave something", Usage: "wave sceptre", Category: CategoryObjects, Requires: SlotsObject},
		{Verb: VerbBurn, Aliases: []string{"ignite", "kindle"}, Help: "Set something alight", Usage: "burn leaflet", Category: CategoryObjects, Requires: SlotsObject},

		// Combat
		{Verb: VerbAttack, Aliases: []string{"kill", "fight", "hit", "strike", "stab", "slay"}, Help: "Attack a creature", Usage: "attack troll with sword", Category: CategoryCombat, Requires: SlotsObject},

		// System
		{Verb: VerbInventory, Aliases: []string{"i", "inv"}, Help: "List what you carry", Usage: "inventory", Category: CategorySystem},
		{Verb: VerbScore, Aliases: []string{"points"}, Help: "Show your score", Usage: "score", Category: CategorySystem},
		{Verb: VerbDiagnose, Aliases: []string{"health", "status"}, Help: "Report your state of mind", Usage: "diagnose", Category: CategorySystem},
		{Verb: VerbWait, Aliases: []string{"z", "rest"}, Help: "Let a turn pass", Usage: "wait", Category: CategorySystem},
		{Verb: VerbRestart, Aliases: []string{"reset"}, Help: "Start the game over", Usage: "restart", Category: CategorySystem},
		{Verb: VerbHelp, Aliases: []string{"?", "commands"}, Help: "Show available commands", Usage: "help", Category: CategorySystem},
		{Verb: VerbPray, Aliases: []string{"worship"}, Help: "Pray", Usage: "pray", Category: CategorySystem},
		{Verb: VerbYell, Aliases: []string{"shout", "scream"}, Help: "Yell at the top of your lungs", Usage: "yell", Category: CategorySystem},
	}
}
