package talon

import (
	"fmt"
	"strconv"
)

// Routine is a user-defined command body: a named, ordered sequence of
// raw, unexpanded lines. Lines are appended verbatim while the routine
// construct is open; when it closes, the routine is registered as a
// command whose handler replays the stored lines through the dispatch
// engine, performing substitution and evaluation at replay time.
type Routine struct {
	Name  string
	Lines []string
}

func (*Routine) framePayload() {}

// beginRoutine opens a "routine <name>" construct frame.
func (in *Interpreter) beginRoutine(name string) int {
	if name == "" {
		in.console.Error("routine: missing name")
		return ResultError
	}
	if in.root.Find(name) != nil {
		in.console.Error("routine: %q is already a command", name)
		return ResultError
	}

	in.PushFrame(&Frame{
		Name:    name,
		Payload: &Routine{Name: name},
		OnLine:  captureRoutineLine,
		OnPop:   registerRoutine,
	})
	return ResultOK
}

// captureRoutineLine appends one raw body line, verbatim.
func captureRoutineLine(in *Interpreter, fr *Frame, line string) int {
	r := fr.Payload.(*Routine)
	r.Lines = append(r.Lines, line)
	in.logger.TraceCat(CatRoutine, "routine %q captured line %d", r.Name, len(r.Lines))
	return ResultOK
}

// registerRoutine finalizes a closed routine definition, registering
// it as a mutable command at the root of the tree.
func registerRoutine(in *Interpreter, fr *Frame) int {
	r := fr.Payload.(*Routine)
	cmd := NewCommand(func(ctx *Context) int {
		return in.runRoutine(r, ctx.Args)
	}, r.Name, "[args]", fmt.Sprintf("user routine (%d lines)", len(r.Lines)), AttrMutable)

	if err := in.root.Register(cmd); err != nil {
		in.console.Error("routine: %v", err)
		return ResultError
	}
	in.logger.DebugCat(CatRoutine, "registered routine %q (%d lines)", r.Name, len(r.Lines))
	return ResultOK
}

// runRoutine replays a routine's lines. The invocation's argument
// vector is bound to "%N" and "%0".."%(N-1)" for the duration of the
// replay; previous bindings are restored afterwards so nested routine
// calls see their own arguments. The result is the code of the last
// replayed line.
func (in *Interpreter) runRoutine(r *Routine, args []string) int {
	restore := in.bindArgs(args)
	defer restore()

	code := ResultOK
	for _, line := range r.Lines {
		code = in.Eval(line)
	}
	return code
}

// bindArgs sets the positional-argument variables and returns a
// function restoring whatever they previously held.
func (in *Interpreter) bindArgs(args []string) func() {
	touched := []string{VarArgCount}
	for i := range args {
		touched = append(touched, "%"+strconv.Itoa(i))
	}

	saved := make(map[string]string, len(touched))
	existed := make(map[string]bool, len(touched))
	for _, name := range touched {
		if v, ok := in.vars.Get(name); ok {
			saved[name] = v
			existed[name] = true
		}
	}

	in.vars.Set(VarArgCount, strconv.Itoa(len(args)))
	for i, a := range args {
		in.vars.Set("%"+strconv.Itoa(i), a)
	}

	return func() {
		for _, name := range touched {
			if existed[name] {
				in.vars.Set(name, saved[name])
			} else {
				in.vars.Remove(name)
			}
		}
	}
}
