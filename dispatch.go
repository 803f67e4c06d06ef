package talon

import (
	"strconv"
	"strings"
)

// tokenDelims is the whitespace set that separates tokens.
const tokenDelims = " \t"

// Eval dispatches a single line of input: capture-or-substitute,
// tokenize, look up, execute, record the result in "%?". The engine
// propagates handler return codes without interpreting them.
func (in *Interpreter) Eval(line string) int {
	// Empty line is a no-op and does not update "%?".
	if line == "" {
		return ResultOK
	}

	// Recursion through source-style and routine-replay re-entrancy is
	// bounded by a fixed ceiling, not call-stack depth per se.
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > in.config.MaxDepth {
		in.console.Error("recursion limit exceeded (%d)", in.config.MaxDepth)
		in.setLastResult(ResultTooDeep)
		return ResultTooDeep
	}

	// Construct redirection: while a frame with a line handler is
	// active, lines are captured verbatim, before substitution, so
	// that a routine body is expanded at replay time rather than at
	// definition time. Only commands flagged AttrConstruct punch
	// through and execute (that is how "end" terminates the capture).
	if fr := in.activeFrame(); fr != nil && fr.OnLine != nil {
		raw := Tokenize(line, in.pairs, tokenDelims, in.config.CommentMarker)
		if len(raw) == 0 {
			return ResultOK
		}
		cmd := in.root.Find(raw[0])
		if cmd == nil || cmd.Attrs&AttrConstruct == 0 {
			in.logger.TraceCat(CatDispatch, "capturing line for construct %q", fr.Name)
			code := fr.OnLine(in, fr, line)
			in.setLastResult(code)
			return code
		}
	}

	expanded, code := in.substitute(line)
	if code != ResultOK {
		in.setLastResult(code)
		return code
	}

	tokens := Tokenize(expanded, in.pairs, tokenDelims, in.config.CommentMarker)
	if len(tokens) == 0 {
		return ResultOK
	}

	cmd := in.root.Find(tokens[0])
	if cmd == nil {
		in.console.Error("unknown command: %s", tokens[0])
		in.setLastResult(ResultUnknownCommand)
		return ResultUnknownCommand
	}

	in.logger.TraceCat(CatDispatch, "dispatching %q with %d argument(s)", tokens[0], len(tokens)-1)
	ctx := &Context{Interp: in, Cmd: cmd, Args: tokens[1:], Line: expanded}
	code = in.invoke(cmd, ctx)
	in.setLastResult(code)
	return code
}

// invoke runs a command's handler. A node registered without a handler
// is a pure group node and dispatches to its children.
func (in *Interpreter) invoke(cmd *Command, ctx *Context) int {
	if cmd.Handler == nil {
		return in.DispatchChildren(ctx)
	}
	return cmd.Handler(ctx)
}

// DispatchChildren resolves ctx.Args[0] among ctx.Cmd's sub-commands
// and invokes it with the remaining arguments. Handlers of commands
// that only group sub-commands forward here.
func (in *Interpreter) DispatchChildren(ctx *Context) int {
	if len(ctx.Args) == 0 {
		ctx.Errorf("%s: missing sub-command", ctx.Cmd.Keyword)
		return ResultError
	}
	child := ctx.Cmd.Find(ctx.Args[0])
	if child == nil {
		ctx.Errorf("unknown command: %s %s", ctx.Cmd.Keyword, ctx.Args[0])
		return ResultUnknownCommand
	}
	sub := &Context{Interp: in, Cmd: child, Args: ctx.Args[1:], Line: ctx.Line}
	return in.invoke(child, sub)
}

// substitute resolves {name} variable references left to right,
// non-recursively: the scan resumes after the spliced value, so braces
// inside a value are literal. An unresolved name aborts the whole
// line. Braces are first-match, non-nesting; an unmatched opening
// brace is left as-is.
func (in *Interpreter) substitute(line string) (string, int) {
	for i := 0; i < len(line); {
		open := strings.IndexByte(line[i:], '{')
		if open < 0 {
			break
		}
		open += i
		end := strings.IndexByte(line[open+1:], '}')
		if end < 0 {
			break
		}
		end += open + 1
		name := line[open+1 : end]
		value, ok := in.vars.Get(name)
		if !ok {
			in.console.Error("unresolved variable: %s", name)
			return "", ResultBadVariable
		}
		in.logger.TraceCat(CatVariable, "substituting {%s}", name)
		line = line[:open] + value + line[end+1:]
		i = open + len(value)
	}
	return line, ResultOK
}

// setLastResult stores code into the "%?" variable. Called for every
// line that reached tokenization, success or failure.
func (in *Interpreter) setLastResult(code int) {
	in.vars.Set(VarLastResult, strconv.Itoa(code))
}
