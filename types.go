package talon

// Attr is a bitset of command attributes.
type Attr uint8

const (
	// AttrMutable marks a command that may be unregistered at runtime.
	AttrMutable Attr = 1 << iota
	// AttrConstruct marks a command that opens or closes a multi-line
	// construct. Construct commands bypass line capture so that "end"
	// can terminate the construct that is capturing lines.
	AttrConstruct
	// AttrAlias marks a command whose child subtree is shared with
	// another command. Unregistering an alias leaves the subtree alone.
	AttrAlias
)

// Result codes returned by command handlers and the dispatch engine.
// Zero is success; negative values are error categories. The engine
// only propagates these values, it never interprets them.
const (
	ResultOK             = 0
	ResultError          = -1
	ResultUnknownCommand = -2
	ResultBadVariable    = -3
	ResultTooDeep        = -4
	ResultBadExpression  = -5
)

// Handler is a function that handles a command. It receives the
// argument vector with the command's own keyword already stripped and
// returns an integer result code.
type Handler func(*Context) int

// Context is passed to command handlers.
type Context struct {
	Interp *Interpreter
	Cmd    *Command
	Args   []string
	Line   string // the full line after variable substitution
}

// Print writes formatted output through the interpreter's console.
func (c *Context) Print(format string, args ...interface{}) {
	c.Interp.console.Print(format, args...)
}

// Errorf reports a user-facing error through the interpreter's console.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.Interp.console.Error(format, args...)
}

// Config holds configuration for a Talon interpreter.
type Config struct {
	Debug           bool
	PromptName      string // name of the base construct frame
	PromptDelimiter string // joins frame names in the prompt
	PromptSuffix    string // terminal suffix appended to the prompt
	CommentMarker   string // truncates a line outside encapsulation
	MaxDepth        int    // dispatch recursion ceiling
	MaxExprDepth    int    // expression parse recursion ceiling
	HistoryFile     string // bbolt history database; empty disables
}

// DefaultConfig returns default configuration.
func DefaultConfig() *Config {
	return &Config{
		Debug:           false,
		PromptName:      "talon",
		PromptDelimiter: ":",
		PromptSuffix:    "> ",
		CommentMarker:   "#",
		MaxDepth:        64,
		MaxExprDepth:    32,
	}
}
