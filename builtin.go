package talon

import (
	"strconv"
	"strings"
)

// registerBuiltins installs the fixed built-in command set. These are
// ordinary commands implemented against the dispatch engine's public
// contract.
func (in *Interpreter) registerBuiltins() {
	reg := func(parent *Command, cmd *Command) *Command {
		if err := parent.Register(cmd); err != nil {
			in.logger.FatalCat(CatCommand, "builtin registration: %v", err)
		}
		return cmd
	}

	reg(in.root, NewCommand(biHelp, "help", "[command...]", "show command overview", 0))
	reg(in.root, NewCommand(biAlias, "alias", "<command> <name>", "register an alias for a command", 0))
	reg(in.root, NewCommand(biUnreg, "unreg", "<command...>", "unregister a mutable command", 0))
	reg(in.root, NewCommand(biPrint, "print", "[args...]", "print arguments, evaluating (expressions)", 0))
	reg(in.root, NewCommand(biAssign, "assign", "<name> <value>", "assign a variable, evaluating (expressions)", 0))
	reg(in.root, NewCommand(biSource, "source", "<file>", "dispatch lines from a script file", 0))
	reg(in.root, NewCommand(biRoutine, "routine", "<name>", "begin a routine definition", AttrConstruct))
	reg(in.root, NewCommand(biEnd, "end", "", "close the current construct", AttrConstruct))
	reg(in.root, NewCommand(biQuit, "quit", "", "leave the interpreter", 0))
	reg(in.root, NewCommand(biHistory, "history", "[count]", "show recent command history", 0))

	logCmd := reg(in.root, NewCommand(func(ctx *Context) int {
		return ctx.Interp.DispatchChildren(ctx)
	}, "log", "", "logging controls", 0))
	reg(logCmd, NewCommand(biLogLevel, "level", "<0-6>", "set the minimum log level", 0))
	reg(logCmd, NewCommand(biLogCategory, "category", "<name|all> <on|off>", "toggle a debug category", 0))
	reg(logCmd, NewCommand(biLogStatus, "status", "", "show the logging configuration", 0))
}

func biHelp(ctx *Context) int {
	node := ctx.Interp.root
	for _, tok := range ctx.Args {
		node = node.Find(tok)
		if node == nil {
			ctx.Errorf("help: unknown command: %s", tok)
			return ResultUnknownCommand
		}
	}
	width := node.Longest(0)
	var b strings.Builder
	node.Help(&b, 0, width)
	out := strings.TrimRight(b.String(), "\n")
	if out == "" {
		ctx.Errorf("help: %s has no sub-commands", strings.Join(ctx.Args, " "))
		return ResultError
	}
	ctx.Print("%s", out)
	return ResultOK
}

func biAlias(ctx *Context) int {
	if len(ctx.Args) < 2 {
		ctx.Errorf("usage: alias <command> <name>")
		return ResultError
	}
	src := ctx.Interp.root.Find(ctx.Args[0])
	if src == nil {
		ctx.Errorf("alias: unknown command: %s", ctx.Args[0])
		return ResultUnknownCommand
	}
	if err := ctx.Interp.root.Register(src.Alias(ctx.Args[1])); err != nil {
		ctx.Errorf("alias: %v", err)
		return ResultError
	}
	return ResultOK
}

func biUnreg(ctx *Context) int {
	if len(ctx.Args) < 1 {
		ctx.Errorf("usage: unreg <command...>")
		return ResultError
	}
	parent := ctx.Interp.root
	for _, tok := range ctx.Args[:len(ctx.Args)-1] {
		parent = parent.Find(tok)
		if parent == nil {
			ctx.Errorf("unreg: unknown command: %s", tok)
			return ResultUnknownCommand
		}
	}
	keyword := ctx.Args[len(ctx.Args)-1]
	child := parent.Find(keyword)
	if child == nil {
		ctx.Errorf("unreg: unknown command: %s", keyword)
		return ResultUnknownCommand
	}
	if err := parent.Unregister(child); err != nil {
		ctx.Errorf("unreg: %v", err)
		return ResultError
	}
	return ResultOK
}

func biPrint(ctx *Context) int {
	parts := make([]string, 0, len(ctx.Args))
	for _, arg := range ctx.Args {
		if strings.HasPrefix(arg, "(") {
			val, ok := ctx.Interp.Evaluate(arg)
			if !ok {
				return ResultBadExpression
			}
			parts = append(parts, strconv.Itoa(val))
			continue
		}
		parts = append(parts, arg)
	}
	ctx.Print("%s", strings.Join(parts, " "))
	return ResultOK
}

func biAssign(ctx *Context) int {
	if len(ctx.Args) < 2 {
		ctx.Errorf("usage: assign <name> <value>")
		return ResultError
	}
	name := ctx.Args[0]
	value := strings.Join(ctx.Args[1:], " ")
	if strings.HasPrefix(value, "(") {
		val, ok := ctx.Interp.Evaluate(value)
		if !ok {
			return ResultBadExpression
		}
		value = strconv.Itoa(val)
	}
	ctx.Interp.vars.Set(name, value)
	return ResultOK
}

func biSource(ctx *Context) int {
	if len(ctx.Args) < 1 {
		ctx.Errorf("usage: source <file>")
		return ResultError
	}
	return ctx.Interp.SourceFile(ctx.Args[0])
}

func biRoutine(ctx *Context) int {
	if len(ctx.Args) < 1 {
		ctx.Errorf("usage: routine <name>")
		return ResultError
	}
	return ctx.Interp.beginRoutine(ctx.Args[0])
}

func biEnd(ctx *Context) int {
	return ctx.Interp.PopFrame()
}

func biQuit(ctx *Context) int {
	ctx.Interp.Quit()
	return ResultOK
}

func biHistory(ctx *Context) int {
	if ctx.Interp.history == nil {
		ctx.Errorf("history is not enabled")
		return ResultError
	}
	n := 20
	if len(ctx.Args) > 0 {
		v, err := strconv.Atoi(ctx.Args[0])
		if err != nil || v < 1 {
			ctx.Errorf("usage: history [count]")
			return ResultError
		}
		n = v
	}
	cmds, err := ctx.Interp.history.Recent(n)
	if err != nil {
		ctx.Errorf("history: %v", err)
		return ResultError
	}
	for i, cmd := range cmds {
		ctx.Print("%3d  %s", i+1, cmd)
	}
	return ResultOK
}

func biLogLevel(ctx *Context) int {
	if len(ctx.Args) < 1 {
		ctx.Errorf("usage: log level <0-6>")
		return ResultError
	}
	n, err := strconv.Atoi(ctx.Args[0])
	if err != nil || n < int(LevelTrace) || n > int(LevelFatal) {
		ctx.Errorf("log level: expected a number between %d and %d", LevelTrace, LevelFatal)
		return ResultError
	}
	ctx.Interp.logger.SetMinLevel(LogLevel(n))
	return ResultOK
}

func biLogCategory(ctx *Context) int {
	if len(ctx.Args) < 2 {
		ctx.Errorf("usage: log category <name|all> <on|off>")
		return ResultError
	}
	name, state := ctx.Args[0], ctx.Args[1]
	if state != "on" && state != "off" {
		ctx.Errorf("log category: expected on or off, got %q", state)
		return ResultError
	}
	logger := ctx.Interp.logger
	if name == "all" {
		if state == "on" {
			logger.EnableAllCategories()
		} else {
			for _, cat := range allCategories {
				logger.DisableCategory(cat)
			}
		}
		return ResultOK
	}
	cat := LogCategory(name)
	known := false
	for _, c := range allCategories {
		if c == cat {
			known = true
			break
		}
	}
	if !known {
		ctx.Errorf("log category: unknown category %q", name)
		return ResultError
	}
	if state == "on" {
		logger.EnableCategory(cat)
	} else {
		logger.DisableCategory(cat)
	}
	return ResultOK
}

func biLogStatus(ctx *Context) int {
	logger := ctx.Interp.logger
	ctx.Print("minimum level: %d", logger.MinLevel())
	var enabled []string
	for _, cat := range allCategories {
		if logger.IsCategoryEnabled(cat) {
			enabled = append(enabled, string(cat))
		}
	}
	if len(enabled) == 0 {
		ctx.Print("debug categories: none")
	} else {
		ctx.Print("debug categories: %s", strings.Join(enabled, ", "))
	}
	return ResultOK
}
