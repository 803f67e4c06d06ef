package talon

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistoryStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	st, err := OpenHistory(path)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("sequence numbers increase from one", func(t *testing.T) {
		next, err := st.NextSeq()
		if err != nil || next != 1 {
			t.Fatalf("NextSeq = %d, %v", next, err)
		}
		for i, cmd := range []string{"log level 3", "assign x 5", "print {x}"} {
			seq, err := st.Add(cmd)
			if err != nil {
				t.Fatal(err)
			}
			if seq != i+1 {
				t.Errorf("Add(%q) seq = %d, want %d", cmd, seq, i+1)
			}
		}
	})

	t.Run("lookup by sequence", func(t *testing.T) {
		cmd, err := st.Cmd(2)
		if err != nil {
			t.Fatal(err)
		}
		if cmd != "assign x 5" {
			t.Errorf("Cmd(2) = %q", cmd)
		}
	})

	t.Run("missing sequence", func(t *testing.T) {
		_, err := st.Cmd(99)
		if !errors.Is(err, ErrNoMatchingCmd) {
			t.Errorf("Cmd(99) err = %v, want ErrNoMatchingCmd", err)
		}
	})

	t.Run("recent returns newest entries oldest first", func(t *testing.T) {
		got, err := st.Recent(2)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"assign x 5", "print {x}"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Recent(2) mismatch (-want +got):\n%s", diff)
		}
		got, err = st.Recent(100)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 {
			t.Errorf("Recent(100) returned %d entries", len(got))
		}
	})

	t.Run("entries survive a reopen", func(t *testing.T) {
		if err := st.Close(); err != nil {
			t.Fatal(err)
		}
		st, err = OpenHistory(path)
		if err != nil {
			t.Fatal(err)
		}
		if cmd, err := st.Cmd(1); err != nil || cmd != "log level 3" {
			t.Errorf("Cmd(1) after reopen = %q, %v", cmd, err)
		}
		if next, err := st.NextSeq(); err != nil || next != 4 {
			t.Errorf("NextSeq after reopen = %d, %v", next, err)
		}
	})

	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestHistoryBuiltin(t *testing.T) {
	t.Run("interpreter records non-blank lines", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.HistoryFile = filepath.Join(t.TempDir(), "history.db")
		in := New(cfg)
		defer in.Close()
		con := NewBufferConsole("assign x 5\n\nprint {x}\nhistory\n")
		in.SetConsole(con)
		in.Run()

		out := con.Out.String()
		if !strings.Contains(out, "1  assign x 5") {
			t.Errorf("history output missing first line: %q", out)
		}
		if !strings.Contains(out, "print {x}") {
			t.Errorf("history output missing second line: %q", out)
		}
		// The blank line was not recorded.
		if strings.Contains(out, "4  ") {
			t.Errorf("too many history entries: %q", out)
		}
	})

	t.Run("disabled without a history file", func(t *testing.T) {
		in, con := newTestInterp(t, "")
		if code := in.Eval("history"); code != ResultError {
			t.Errorf("history = %d, want %d", code, ResultError)
		}
		if !strings.Contains(con.Err.String(), "history is not enabled") {
			t.Errorf("stderr = %q", con.Err.String())
		}
	})

	t.Run("rejects a bad count", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.HistoryFile = filepath.Join(t.TempDir(), "history.db")
		in := New(cfg)
		defer in.Close()
		con := NewBufferConsole("")
		in.SetConsole(con)
		if code := in.Eval("history zero"); code != ResultError {
			t.Errorf("history zero = %d, want %d", code, ResultError)
		}
	})
}
