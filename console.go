package talon

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// CompleteFunc supplies tab-completion candidates for the current
// input buffer, plus the text to insert at the cursor.
type CompleteFunc func(buffer string) (candidates []string, insert string)

// Console abstracts line-oriented input and output for the
// interpreter. Reading blocks; the interpreter core is synchronous.
type Console interface {
	// ReadLine returns the next line of input, without its trailing
	// newline. io.EOF signals the end of the current input stream.
	ReadLine(prompt string) (string, error)
	// SwapInput redirects input to r and returns the previous source;
	// a nil reader means the console's own default input. Callers must
	// restore the previous source before returning, on both success
	// and failure paths.
	SwapInput(r io.Reader) io.Reader
	// Print writes one line of formatted output.
	Print(format string, args ...interface{})
	// Error writes one line of formatted error output.
	Error(format string, args ...interface{})
	// SetCompleter registers the tab-completion callback.
	SetCompleter(fn CompleteFunc)
}

// StdConsole is the process-stdio console. When stdin is a terminal it
// provides raw-mode line editing, history recall and tab completion;
// otherwise it degrades to a plain buffered reader.
type StdConsole struct {
	out         io.Writer
	errOut      io.Writer
	scriptIn    *bufio.Reader // non-nil while input is swapped to a stream
	stdin       *bufio.Reader // plain reader for non-terminal stdin
	interactive bool
	completer   CompleteFunc
	terminal    *term.Terminal // kept across reads so history recall works
}

// NewStdConsole creates a console on the process's stdio.
func NewStdConsole() *StdConsole {
	return &StdConsole{
		out:         os.Stdout,
		errOut:      os.Stderr,
		interactive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
}

// ReadLine implements Console.
func (c *StdConsole) ReadLine(prompt string) (string, error) {
	if c.scriptIn != nil {
		return readStreamLine(c.scriptIn)
	}
	if c.interactive {
		return c.readInteractive(prompt)
	}
	if c.stdin == nil {
		c.stdin = bufio.NewReader(os.Stdin)
	}
	return readStreamLine(c.stdin)
}

// readInteractive edits one line in raw mode. The previous terminal
// state is restored before returning on every path.
func (c *StdConsole) readInteractive(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		if c.stdin == nil {
			c.stdin = bufio.NewReader(os.Stdin)
		}
		return readStreamLine(c.stdin)
	}
	defer term.Restore(fd, oldState)

	if c.terminal == nil {
		c.terminal = term.NewTerminal(stdioReadWriter{}, "")
		c.terminal.AutoCompleteCallback = c.autoComplete
	}
	c.terminal.SetPrompt(prompt)
	return c.terminal.ReadLine()
}

// autoComplete adapts the interpreter's completer to term.Terminal.
// Completion only triggers with the cursor at the end of the line.
func (c *StdConsole) autoComplete(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' || c.completer == nil || pos != len(line) {
		return "", 0, false
	}
	_, insert := c.completer(line)
	if insert == "" {
		return "", 0, false
	}
	newLine := line + insert
	return newLine, len(newLine), true
}

// SwapInput implements Console.
func (c *StdConsole) SwapInput(r io.Reader) io.Reader {
	prev := c.scriptIn
	c.scriptIn = toBufio(r)
	if prev == nil {
		return nil
	}
	return prev
}

// Print implements Console.
func (c *StdConsole) Print(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Error implements Console.
func (c *StdConsole) Error(format string, args ...interface{}) {
	fmt.Fprintf(c.errOut, format+"\n", args...)
}

// SetCompleter implements Console.
func (c *StdConsole) SetCompleter(fn CompleteFunc) {
	c.completer = fn
}

// stdioReadWriter feeds term.Terminal from the process's stdio.
type stdioReadWriter struct{}

func (stdioReadWriter) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriter) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

// BufferConsole is an in-memory console for tests and embedders that
// drive the interpreter programmatically.
type BufferConsole struct {
	base      *bufio.Reader
	scriptIn  *bufio.Reader
	Out       bytes.Buffer
	Err       bytes.Buffer
	completer CompleteFunc
}

// NewBufferConsole creates a console reading from the given input.
func NewBufferConsole(input string) *BufferConsole {
	return &BufferConsole{base: bufio.NewReader(strings.NewReader(input))}
}

// ReadLine implements Console.
func (c *BufferConsole) ReadLine(prompt string) (string, error) {
	if c.scriptIn != nil {
		return readStreamLine(c.scriptIn)
	}
	return readStreamLine(c.base)
}

// SwapInput implements Console.
func (c *BufferConsole) SwapInput(r io.Reader) io.Reader {
	prev := c.scriptIn
	c.scriptIn = toBufio(r)
	if prev == nil {
		return nil
	}
	return prev
}

// Print implements Console.
func (c *BufferConsole) Print(format string, args ...interface{}) {
	fmt.Fprintf(&c.Out, format+"\n", args...)
}

// Error implements Console.
func (c *BufferConsole) Error(format string, args ...interface{}) {
	fmt.Fprintf(&c.Err, format+"\n", args...)
}

// SetCompleter implements Console.
func (c *BufferConsole) SetCompleter(fn CompleteFunc) {
	c.completer = fn
}

// readStreamLine reads one newline-delimited line, tolerating a final
// line without a newline.
func readStreamLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF && line != "" {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// toBufio normalizes an input source to a buffered reader, preserving
// an already-buffered source so partially consumed input survives a
// swap-and-restore round trip.
func toBufio(r io.Reader) *bufio.Reader {
	switch v := r.(type) {
	case nil:
		return nil
	case *bufio.Reader:
		return v
	default:
		return bufio.NewReader(v)
	}
}
