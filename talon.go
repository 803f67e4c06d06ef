// Package talon implements an embeddable command-line interpreter: a
// small scripting language for defining, organizing, and executing
// hierarchical commands interactively or from scripts.
package talon

import (
	"io"
	"os"
	"strconv"
	"strings"
)

// Interpreter ties together the command registry, the construct stack,
// the variable dictionary, the expression evaluator and the console.
// An interpreter instance is single-threaded: one line is fully
// dispatched before the next is read. Callers sharing an instance
// across goroutines must serialize access externally.
type Interpreter struct {
	config  *Config
	logger  *Logger
	console Console
	vars    *VarDict
	root    *Command
	frames  []*Frame
	pairs   []EncapsPair
	history *HistoryStore
	prompt  string
	depth   int
	quit    bool
}

// New creates a new interpreter with the built-in command set
// registered and the base construct frame pushed. A nil config uses
// defaults.
func New(config *Config) *Interpreter {
	if config == nil {
		config = DefaultConfig()
	}

	in := &Interpreter{
		config:  config,
		logger:  NewLogger(config.Debug),
		console: NewStdConsole(),
		vars:    NewVarDict(),
		root:    NewCommand(nil, "", "", "", 0),
		pairs:   DefaultPairs(),
	}

	// The base frame is never popped; it carries the base prompt.
	in.frames = []*Frame{{Name: config.PromptName}}
	in.rebuildPrompt()

	in.registerBuiltins()
	in.console.SetCompleter(in.Complete)

	if config.HistoryFile != "" {
		hist, err := OpenHistory(config.HistoryFile)
		if err != nil {
			in.logger.Warn("cannot open history %s: %v", config.HistoryFile, err)
		} else {
			in.history = hist
		}
	}

	return in
}

// Close releases resources held by the interpreter.
func (in *Interpreter) Close() error {
	if in.history != nil {
		err := in.history.Close()
		in.history = nil
		return err
	}
	return nil
}

// Logger returns the interpreter's logger, so embedders and the log
// builtin share one configuration.
func (in *Interpreter) Logger() *Logger {
	return in.logger
}

// Console returns the active console.
func (in *Interpreter) Console() Console {
	return in.console
}

// SetConsole replaces the console, re-wiring completion. Used by
// embedders and tests.
func (in *Interpreter) SetConsole(c Console) {
	in.console = c
	c.SetCompleter(in.Complete)
}

// Root returns the root of the command tree.
func (in *Interpreter) Root() *Command {
	return in.root
}

// RegisterCommand registers a command at the root of the tree.
func (in *Interpreter) RegisterCommand(cmd *Command) error {
	return in.root.Register(cmd)
}

// Vars returns the interpreter's variable dictionary.
func (in *Interpreter) Vars() *VarDict {
	return in.vars
}

// LastResult returns the return code of the most recently dispatched
// line, i.e. the current value of the "%?" variable.
func (in *Interpreter) LastResult() int {
	s, ok := in.vars.Get(VarLastResult)
	if !ok {
		return ResultOK
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return ResultOK
	}
	return code
}

// Quit flags the read loop to stop after the current line.
func (in *Interpreter) Quit() {
	in.quit = true
}

// Quitting reports whether quit has been requested.
func (in *Interpreter) Quitting() bool {
	return in.quit
}

// Evaluate runs the expression evaluator, reporting errors through the
// console. The boolean result is authoritative: ExprInvalid is also a
// theoretically valid value.
func (in *Interpreter) Evaluate(expr string) (int, bool) {
	val, off := EvalExpr(expr, in.config.MaxExprDepth, func(msg string) {
		in.console.Error("expression error: %s", msg)
	})
	if off >= 0 {
		in.logger.DebugCat(CatExpr, "expression failed at offset %d in %q", off, expr)
		return ExprInvalid, false
	}
	return val, true
}

// Run reads and dispatches lines until EOF or quit. Every non-blank
// line read interactively is appended to the persistent history. The
// return value is the final "%?" code.
func (in *Interpreter) Run() int {
	for !in.quit {
		line, err := in.console.ReadLine(in.prompt)
		if err == io.EOF {
			break
		}
		if err != nil {
			in.logger.ErrorCat(CatIO, "read: %v", err)
			break
		}
		if in.history != nil && strings.TrimSpace(line) != "" {
			if _, err := in.history.Add(line); err != nil {
				in.logger.DebugCat(CatIO, "history add: %v", err)
			}
		}
		in.Eval(line)
	}
	return in.LastResult()
}

// SourceFile redirects the console's input stream to a script file of
// newline-delimited commands and dispatches it line by line. The
// previous input stream is restored before returning, on both success
// and failure paths; the result is "%?" as of the last dispatched
// line, or an error code if the file cannot be opened.
func (in *Interpreter) SourceFile(path string) int {
	f, err := os.Open(path)
	if err != nil {
		in.console.Error("source: %v", err)
		return ResultError
	}
	defer f.Close()

	in.logger.DebugCat(CatIO, "sourcing %s", path)
	prev := in.console.SwapInput(f)
	defer in.console.SwapInput(prev)

	for !in.quit {
		line, err := in.console.ReadLine("")
		if err != nil {
			break
		}
		in.Eval(line)
	}
	return in.LastResult()
}

// Complete implements interactive tab completion against the command
// tree. It resolves every complete token of buffer through the tree,
// then prefix-matches the trailing partial token, returning the
// matching keywords and the text to insert at the cursor.
func (in *Interpreter) Complete(buffer string) (candidates []string, insert string) {
	if buffer == "" || strings.ContainsAny(buffer[len(buffer)-1:], " \t") {
		return nil, ""
	}
	tokens := Tokenize(buffer, in.pairs, " \t", in.config.CommentMarker)
	if len(tokens) == 0 {
		return nil, ""
	}

	node := in.root
	for _, tok := range tokens[:len(tokens)-1] {
		node = node.Find(tok)
		if node == nil {
			return nil, ""
		}
	}

	prefix := tokens[len(tokens)-1]
	matches, _ := node.PartialMatches(prefix)
	if len(matches) == 0 {
		return nil, ""
	}

	common := matches[0].Keyword
	for _, m := range matches[1:] {
		candidates = append(candidates, m.Keyword)
		for !strings.HasPrefix(m.Keyword, common) {
			common = common[:len(common)-1]
		}
	}
	candidates = append([]string{matches[0].Keyword}, candidates...)

	if len(common) > len(prefix) {
		insert = common[len(prefix):]
	}
	if len(matches) == 1 {
		insert += " "
	}
	return candidates, insert
}
