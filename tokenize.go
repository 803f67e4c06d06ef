package talon

import "strings"

// EncapsPair is a delimiter pair inside which ordinary token
// delimiters are ignored. Each pair nests independently via its own
// counter; a pair whose open and close characters are equal (quotes)
// simply toggles. Keep controls whether the outermost pair characters
// are retained in the produced token: parenthesized spans keep them
// (the expression evaluator wants the parens), quoted spans drop them.
type EncapsPair struct {
	Open  byte
	Close byte
	Keep  bool
}

// DefaultPairs are the encapsulation pairs used by the dispatch
// engine: double-quoted spans and parenthesized spans, in that order.
// The first matching pair wins when ambiguous.
func DefaultPairs() []EncapsPair {
	return []EncapsPair{
		{Open: '"', Close: '"', Keep: false},
		{Open: '(', Close: ')', Keep: true},
	}
}

// Tokenize splits line on the delimiter set, honoring the given
// encapsulation pairs. A comment marker encountered outside
// encapsulation truncates the rest of the line. An unterminated
// encapsulation absorbs the remainder of the line.
func Tokenize(line string, pairs []EncapsPair, delims, comment string) []string {
	var tokens []string
	var cur []byte
	haveCur := false

	flush := func() {
		if haveCur {
			tokens = append(tokens, string(cur))
			cur = cur[:0]
			haveCur = false
		}
	}

	i := 0
	for i < len(line) {
		if comment != "" && strings.HasPrefix(line[i:], comment) {
			break
		}
		c := line[i]

		if strings.IndexByte(delims, c) >= 0 {
			flush()
			i++
			continue
		}

		var pair *EncapsPair
		for k := range pairs {
			if pairs[k].Open == c {
				pair = &pairs[k]
				break
			}
		}
		if pair == nil {
			haveCur = true
			cur = append(cur, c)
			i++
			continue
		}

		// Encapsulated span: absorb embedded delimiters until the
		// nest counter returns to zero.
		haveCur = true
		if pair.Keep {
			cur = append(cur, c)
		}
		depth := 1
		i++
		for i < len(line) && depth > 0 {
			cc := line[i]
			switch {
			case cc == pair.Close:
				depth--
				if depth == 0 {
					if pair.Keep {
						cur = append(cur, cc)
					}
				} else {
					cur = append(cur, cc)
				}
			case cc == pair.Open:
				depth++
				cur = append(cur, cc)
			default:
				cur = append(cur, cc)
			}
			i++
		}
	}
	flush()
	return tokens
}
