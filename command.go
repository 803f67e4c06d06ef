package talon

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Registry errors. These are reported to the caller and never fatal;
// the registry itself performs no I/O.
var (
	ErrDuplicateKeyword = errors.New("keyword already registered")
	ErrNotFound         = errors.New("command not found")
	ErrImmutable        = errors.New("command is not mutable")
)

// Command is one node in the command tree. A command owns an ordered
// collection of sub-commands unless it is flagged AttrAlias, in which
// case the collection is shared with the alias source.
type Command struct {
	Keyword     string
	ArgHints    string
	Description string
	Handler     Handler
	Attrs       Attr

	// children is shared between an alias and its source, so both see
	// the same sub-command set. nil means no sub-commands yet.
	children *commandList
}

// commandList is an ordered collection of sibling commands. Order is
// registration order, not sorted, so help output and completion order
// match definition order.
type commandList struct {
	nodes []*Command
}

// NewCommand creates a command node.
func NewCommand(handler Handler, keyword, argHints, description string, attrs Attr) *Command {
	return &Command{
		Keyword:     keyword,
		ArgHints:    argHints,
		Description: description,
		Handler:     handler,
		Attrs:       attrs,
	}
}

// Register appends child to c's sub-commands. It fails if a direct
// child with the same keyword already exists. Identical keywords in
// different branches are legal.
func (c *Command) Register(child *Command) error {
	if c.children == nil {
		c.children = &commandList{}
	}
	for _, n := range c.children.nodes {
		if n.Keyword == child.Keyword {
			return fmt.Errorf("%w: %q under %q", ErrDuplicateKeyword, child.Keyword, c.Keyword)
		}
	}
	c.children.nodes = append(c.children.nodes, child)
	return nil
}

// Unregister removes child from c's direct sub-commands. The removed
// subtree is dropped; an alias keeps its shared subtree intact because
// the source command still references it.
func (c *Command) Unregister(child *Command) error {
	if c.children == nil {
		return fmt.Errorf("%w: %q under %q", ErrNotFound, child.Keyword, c.Keyword)
	}
	for i, n := range c.children.nodes {
		if n == child {
			if child.Attrs&AttrMutable == 0 {
				return fmt.Errorf("%w: %q", ErrImmutable, child.Keyword)
			}
			c.children.nodes = append(c.children.nodes[:i], c.children.nodes[i+1:]...)
			if child.Attrs&AttrAlias == 0 {
				child.children = nil
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %q under %q", ErrNotFound, child.Keyword, c.Keyword)
}

// Find returns the direct child with exactly the given keyword, or nil.
// Callers walk multiple levels themselves to resolve nested paths.
func (c *Command) Find(keyword string) *Command {
	if c.children == nil {
		return nil
	}
	for _, n := range c.children.nodes {
		if n.Keyword == keyword {
			return n
		}
	}
	return nil
}

// PartialMatches returns the direct children whose keyword starts with
// prefix, together with the length of the longest matching keyword
// (used to size interactive completion insertions). An empty prefix or
// a childless node yields no matches.
func (c *Command) PartialMatches(prefix string) ([]*Command, int) {
	if prefix == "" || c.children == nil {
		return nil, 0
	}
	var matches []*Command
	longest := 0
	for _, n := range c.children.nodes {
		if strings.HasPrefix(n.Keyword, prefix) {
			matches = append(matches, n)
			if len(n.Keyword) > longest {
				longest = len(n.Keyword)
			}
		}
	}
	return matches, longest
}

// Children returns the ordered sub-commands, for help and completion.
func (c *Command) Children() []*Command {
	if c.children == nil {
		return nil
	}
	return c.children.nodes
}

// Alias produces a new command with a fresh keyword but a shared
// pointer to c's sub-command collection. The alias is mutable and
// carries AttrConstruct if the source does, so construct keywords stay
// construct keywords under their aliases.
func (c *Command) Alias(keyword string) *Command {
	if c.children == nil {
		// Share an (initially empty) collection so sub-commands
		// registered on the source later appear under the alias too.
		c.children = &commandList{}
	}
	attrs := AttrAlias | AttrMutable
	if c.Attrs&AttrConstruct != 0 {
		attrs |= AttrConstruct
	}
	return &Command{
		Keyword:     keyword,
		ArgHints:    c.ArgHints,
		Description: fmt.Sprintf("alias for %s", c.Keyword),
		Handler:     c.Handler,
		Attrs:       attrs,
		children:    c.children,
	}
}

// helpIndent is the per-depth indentation of help output.
const helpIndent = 2

// Longest walks the subtree and returns the widest rendered
// "keyword arghints" column, including indentation, so that every
// sibling and descendant description aligns in a single help pass.
func (c *Command) Longest(depth int) int {
	width := 0
	for _, n := range c.Children() {
		w := depth*helpIndent + len(n.Keyword)
		if n.ArgHints != "" {
			w += 1 + len(n.ArgHints)
		}
		if w > width {
			width = w
		}
		if n.Attrs&AttrAlias == 0 {
			if sub := n.Longest(depth + 1); sub > width {
				width = sub
			}
		}
	}
	return width
}

// Help renders the subtree one command per line: indented keyword and
// arg hints right-padded to width, followed by the description.
// Aliased subtrees are not descended into, to avoid rendering a shared
// subtree twice.
func (c *Command) Help(w io.Writer, depth, width int) {
	for _, n := range c.Children() {
		left := strings.Repeat(" ", depth*helpIndent) + n.Keyword
		if n.ArgHints != "" {
			left += " " + n.ArgHints
		}
		fmt.Fprintf(w, "%-*s  %s\n", width, left, n.Description)
		if n.Attrs&AttrAlias == 0 {
			n.Help(w, depth+1, width)
		}
	}
}
