package talon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// newTestInterp builds an interpreter on an in-memory console with the
// given pre-loaded input.
func newTestInterp(t *testing.T, input string) (*Interpreter, *BufferConsole) {
	t.Helper()
	in := New(DefaultConfig())
	con := NewBufferConsole(input)
	in.SetConsole(con)
	t.Cleanup(func() { in.Close() })
	return in, con
}

// registerCapture registers a command that records every argument
// vector it is invoked with and returns code.
func registerCapture(t *testing.T, in *Interpreter, keyword string, code int) *[][]string {
	t.Helper()
	var calls [][]string
	err := in.RegisterCommand(NewCommand(func(ctx *Context) int {
		args := make([]string, len(ctx.Args))
		copy(args, ctx.Args)
		calls = append(calls, args)
		return code
	}, keyword, "", "", AttrMutable))
	if err != nil {
		t.Fatal(err)
	}
	return &calls
}

func TestEval(t *testing.T) {
	t.Run("arguments reach the handler", func(t *testing.T) {
		in, _ := newTestInterp(t, "")
		calls := registerCapture(t, in, "echo", ResultOK)
		if code := in.Eval("echo one two"); code != ResultOK {
			t.Fatalf("Eval = %d", code)
		}
		want := [][]string{{"one", "two"}}
		if diff := cmp.Diff(want, *calls); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("handler return code lands in %?", func(t *testing.T) {
		in, _ := newTestInterp(t, "")
		registerCapture(t, in, "seven", 7)
		if code := in.Eval("seven"); code != 7 {
			t.Fatalf("Eval = %d, want 7", code)
		}
		if got := in.LastResult(); got != 7 {
			t.Errorf("LastResult = %d, want 7", got)
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		in, con := newTestInterp(t, "")
		if code := in.Eval("nosuch"); code != ResultUnknownCommand {
			t.Fatalf("Eval = %d, want %d", code, ResultUnknownCommand)
		}
		if in.LastResult() != ResultUnknownCommand {
			t.Errorf("LastResult = %d", in.LastResult())
		}
		if !strings.Contains(con.Err.String(), "unknown command: nosuch") {
			t.Errorf("stderr = %q", con.Err.String())
		}
	})

	t.Run("blank and comment lines leave %? alone", func(t *testing.T) {
		in, _ := newTestInterp(t, "")
		registerCapture(t, in, "seven", 7)
		in.Eval("seven")
		for _, line := range []string{"", "   ", "\t", "# just a comment"} {
			if code := in.Eval(line); code != ResultOK {
				t.Errorf("Eval(%q) = %d", line, code)
			}
			if got := in.LastResult(); got != 7 {
				t.Errorf("after Eval(%q): LastResult = %d, want 7", line, got)
			}
		}
	})

	t.Run("group nodes dispatch to their children", func(t *testing.T) {
		in, _ := newTestInterp(t, "")
		group := NewCommand(nil, "net", "", "network controls", AttrMutable)
		if err := in.RegisterCommand(group); err != nil {
			t.Fatal(err)
		}
		var got []string
		if err := group.Register(NewCommand(func(ctx *Context) int {
			got = ctx.Args
			return ResultOK
		}, "up", "", "", 0)); err != nil {
			t.Fatal(err)
		}
		if code := in.Eval("net up eth0"); code != ResultOK {
			t.Fatalf("Eval = %d", code)
		}
		if diff := cmp.Diff([]string{"eth0"}, got); diff != "" {
			t.Errorf("sub-command args (-want +got):\n%s", diff)
		}
	})

	t.Run("group node without a sub-command", func(t *testing.T) {
		in, con := newTestInterp(t, "")
		if code := in.Eval("log"); code != ResultError {
			t.Fatalf("Eval = %d, want %d", code, ResultError)
		}
		if !strings.Contains(con.Err.String(), "missing sub-command") {
			t.Errorf("stderr = %q", con.Err.String())
		}
	})

	t.Run("group node with an unknown sub-command", func(t *testing.T) {
		in, _ := newTestInterp(t, "")
		if code := in.Eval("log bogus"); code != ResultUnknownCommand {
			t.Fatalf("Eval = %d, want %d", code, ResultUnknownCommand)
		}
	})

	t.Run("log level sub-command reconfigures the logger", func(t *testing.T) {
		in, _ := newTestInterp(t, "")
		if code := in.Eval("log level 3"); code != ResultOK {
			t.Fatalf("Eval = %d", code)
		}
		if got := in.Logger().MinLevel(); got != 3 {
			t.Errorf("MinLevel = %d, want 3", got)
		}
	})

	t.Run("recursion bottoms out instead of overflowing", func(t *testing.T) {
		in, con := newTestInterp(t, "")
		if err := in.RegisterCommand(NewCommand(func(ctx *Context) int {
			return ctx.Interp.Eval("loop")
		}, "loop", "", "", AttrMutable)); err != nil {
			t.Fatal(err)
		}
		if code := in.Eval("loop"); code != ResultTooDeep {
			t.Fatalf("Eval = %d, want %d", code, ResultTooDeep)
		}
		if !strings.Contains(con.Err.String(), "recursion limit exceeded") {
			t.Errorf("stderr = %q", con.Err.String())
		}
		// The depth counter unwinds, so the next line dispatches fine.
		if code := in.Eval("print recovered"); code != ResultOK {
			t.Errorf("Eval after limit = %d", code)
		}
	})
}

func TestSubstitution(t *testing.T) {
	t.Run("expanded line dispatches like its literal twin", func(t *testing.T) {
		in, _ := newTestInterp(t, "")
		calls := registerCapture(t, in, "echo", ResultOK)
		in.Vars().Set("greeting", "hello")
		in.Eval("echo {greeting} there")
		in.Eval("echo hello there")
		if len(*calls) != 2 {
			t.Fatalf("got %d calls", len(*calls))
		}
		if diff := cmp.Diff((*calls)[1], (*calls)[0]); diff != "" {
			t.Errorf("expanded vs literal args (-literal +expanded):\n%s", diff)
		}
	})

	t.Run("value splices mid-token", func(t *testing.T) {
		in, _ := newTestInterp(t, "")
		calls := registerCapture(t, in, "echo", ResultOK)
		in.Vars().Set("n", "42")
		in.Eval("echo id{n}x")
		want := [][]string{{"id42x"}}
		if diff := cmp.Diff(want, *calls); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("value containing spaces produces multiple tokens", func(t *testing.T) {
		in, _ := newTestInterp(t, "")
		calls := registerCapture(t, in, "echo", ResultOK)
		in.Vars().Set("pair", "a b")
		in.Eval("echo {pair}")
		want := [][]string{{"a", "b"}}
		if diff := cmp.Diff(want, *calls); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unresolved variable aborts the line", func(t *testing.T) {
		in, con := newTestInterp(t, "")
		calls := registerCapture(t, in, "echo", ResultOK)
		if code := in.Eval("echo {missing}"); code != ResultBadVariable {
			t.Fatalf("Eval = %d, want %d", code, ResultBadVariable)
		}
		if len(*calls) != 0 {
			t.Error("command ran despite the unresolved variable")
		}
		if in.LastResult() != ResultBadVariable {
			t.Errorf("LastResult = %d", in.LastResult())
		}
		if !strings.Contains(con.Err.String(), "unresolved variable: missing") {
			t.Errorf("stderr = %q", con.Err.String())
		}
	})

	t.Run("spliced values are not rescanned", func(t *testing.T) {
		in, _ := newTestInterp(t, "")
		calls := registerCapture(t, in, "echo", ResultOK)
		in.Vars().Set("tmpl", "{other}")
		if code := in.Eval("echo {tmpl}"); code != ResultOK {
			t.Fatalf("Eval = %d", code)
		}
		want := [][]string{{"{other}"}}
		if diff := cmp.Diff(want, *calls); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unmatched braces pass through", func(t *testing.T) {
		in, _ := newTestInterp(t, "")
		calls := registerCapture(t, in, "echo", ResultOK)
		in.Eval("echo half{open")
		in.Eval("echo half}closed")
		want := [][]string{{"half{open"}, {"half}closed"}}
		if diff := cmp.Diff(want, *calls); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRun(t *testing.T) {
	t.Run("dispatches lines until EOF", func(t *testing.T) {
		in, con := newTestInterp(t, "assign x 5\nprint {x}\n")
		if code := in.Run(); code != ResultOK {
			t.Fatalf("Run = %d", code)
		}
		if got := con.Out.String(); got != "5\n" {
			t.Errorf("stdout = %q", got)
		}
	})

	t.Run("quit stops the loop", func(t *testing.T) {
		in, con := newTestInterp(t, "quit\nprint after\n")
		in.Run()
		if !in.Quitting() {
			t.Error("Quitting = false after quit")
		}
		if strings.Contains(con.Out.String(), "after") {
			t.Errorf("lines dispatched after quit: %q", con.Out.String())
		}
	})

	t.Run("final line without a newline still dispatches", func(t *testing.T) {
		in, con := newTestInterp(t, "print done")
		in.Run()
		if got := con.Out.String(); got != "done\n" {
			t.Errorf("stdout = %q", got)
		}
	})
}

func TestSourceFile(t *testing.T) {
	writeScript := func(t *testing.T, name, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("script lines dispatch and input is restored", func(t *testing.T) {
		in, con := newTestInterp(t, "print back-to-console\n")
		path := writeScript(t, "setup.tn", "assign host example.org\nprint {host}\n")
		if code := in.Eval("source " + path); code != ResultOK {
			t.Fatalf("source = %d", code)
		}
		if v, _ := in.Vars().Get("host"); v != "example.org" {
			t.Errorf("host = %q", v)
		}
		// The console's own input is live again after the script ends.
		in.Run()
		want := "example.org\nback-to-console\n"
		if got := con.Out.String(); got != want {
			t.Errorf("stdout = %q, want %q", got, want)
		}
	})

	t.Run("scripts can source other scripts", func(t *testing.T) {
		in, con := newTestInterp(t, "")
		inner := writeScript(t, "inner.tn", "print inner\n")
		outer := writeScript(t, "outer.tn", "print before\nsource "+inner+"\nprint after\n")
		if code := in.Eval("source " + outer); code != ResultOK {
			t.Fatalf("source = %d", code)
		}
		want := "before\ninner\nafter\n"
		if got := con.Out.String(); got != want {
			t.Errorf("stdout = %q, want %q", got, want)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		in, con := newTestInterp(t, "")
		if code := in.Eval("source /no/such/file.tn"); code != ResultError {
			t.Fatalf("source = %d, want %d", code, ResultError)
		}
		if !strings.Contains(con.Err.String(), "source:") {
			t.Errorf("stderr = %q", con.Err.String())
		}
	})

	t.Run("script errors land in %?", func(t *testing.T) {
		in, _ := newTestInterp(t, "")
		path := writeScript(t, "bad.tn", "nosuch\n")
		if code := in.Eval("source " + path); code != ResultUnknownCommand {
			t.Errorf("source = %d, want %d", code, ResultUnknownCommand)
		}
	})
}

func TestComplete(t *testing.T) {
	in, _ := newTestInterp(t, "")

	t.Run("unique prefix completes with a trailing space", func(t *testing.T) {
		candidates, insert := in.Complete("pri")
		if diff := cmp.Diff([]string{"print"}, candidates); diff != "" {
			t.Errorf("candidates (-want +got):\n%s", diff)
		}
		if insert != "nt " {
			t.Errorf("insert = %q, want %q", insert, "nt ")
		}
	})

	t.Run("sub-command completion walks the tree", func(t *testing.T) {
		candidates, insert := in.Complete("log le")
		if diff := cmp.Diff([]string{"level"}, candidates); diff != "" {
			t.Errorf("candidates (-want +got):\n%s", diff)
		}
		if insert != "vel " {
			t.Errorf("insert = %q, want %q", insert, "vel ")
		}
	})

	t.Run("ambiguous prefix lists every match", func(t *testing.T) {
		candidates, insert := in.Complete("h")
		if diff := cmp.Diff([]string{"help", "history"}, candidates); diff != "" {
			t.Errorf("candidates (-want +got):\n%s", diff)
		}
		if insert != "" {
			t.Errorf("insert = %q, want empty", insert)
		}
	})

	t.Run("nothing to complete", func(t *testing.T) {
		for _, buffer := range []string{"", "log ", "zzz", "bogus sub"} {
			if candidates, insert := in.Complete(buffer); candidates != nil || insert != "" {
				t.Errorf("Complete(%q) = %v, %q", buffer, candidates, insert)
			}
		}
	})
}
