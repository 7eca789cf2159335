/*
Package token turns free text into glyph indices.

Text is scanned into tokens: every character is a token, except that a bracketed
run such as "[Enter]" is one token ("Enter"), and, when asked, an unbracketed
space is a gap. Tokens are then matched against a keyset's glyph table, trying the
token as written, upper-cased and lower-cased, and finally replaced by their
position in the table.
*/
package token

import "strings"

// Gap is the index value standing for "no keycap here".
const Gap = -1

// Token is one scanned unit of text.
type Token struct {
	Text string
	Gap  bool
}

// GapToken is the token produced for an unbracketed space.
var GapToken = Token{Gap: true}

// T is shorthand for a literal token.
func T(text string) Token {
	return Token{Text: text}
}

func (t Token) String() string {
	if t.Gap {
		return "<gap>"
	}
	return t.Text
}

// Table is a keyset's effective glyph table. Position i holds the glyph with index i;
// blank cells are "" and never match a token.
type Table []string

// IndexOf returns the first position holding glyph, or -1.
func (t Table) IndexOf(glyph string) int {
	if glyph == "" {
		return -1
	}
	for i, g := range t {
		if g == glyph {
			return i
		}
	}
	return -1
}

// Contains reports whether glyph is in the table.
func (t Table) Contains(glyph string) bool {
	return t.IndexOf(glyph) >= 0
}

/*
Tokenize scans text left to right.

"[" opens a long token that collects everything up to the next "]". An unterminated
bracket takes the rest of the string. Outside brackets each character is a token,
and a space becomes GapToken when spaceToGap is set.
*/
func Tokenize(text string, spaceToGap bool) []Token {
	var (
		tokens []Token
		long   *strings.Builder
	)
	flush := func() {
		tokens[len(tokens)-1].Text = long.String()
	}

	for _, r := range text {
		switch {
		case long == nil && r == '[':
			long = &strings.Builder{}
			tokens = append(tokens, Token{})
		case long == nil && r == ' ' && spaceToGap:
			tokens = append(tokens, GapToken)
		case long != nil && r == ']':
			flush()
			long = nil
		case long != nil:
			long.WriteRune(r)
		default:
			tokens = append(tokens, Token{Text: string(r)})
		}
	}
	if long != nil {
		flush()
	}
	return tokens
}

/*
Normalize maps each token to the spelling the table uses: as written, then
upper-cased, then lower-cased. Gaps pass through.

Tokens with no spelling in the table are dropped without error. DetectWrongKeyset
relies on that: it compares lengths before and after.
*/
func Normalize(tokens []Token, table Table) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Gap {
			out = append(out, tok)
			continue
		}
		for _, variant := range []string{tok.Text, strings.ToUpper(tok.Text), strings.ToLower(tok.Text)} {
			if table.Contains(variant) {
				out = append(out, Token{Text: variant})
				break
			}
		}
	}
	return out
}

// ToIndices replaces each token with its table position, and gaps with Gap. Tokens
// not in the table are skipped; pass normalized tokens to keep positions aligned.
func ToIndices(tokens []Token, table Table) []int {
	indices := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Gap {
			indices = append(indices, Gap)
			continue
		}
		if i := table.IndexOf(tok.Text); i >= 0 {
			indices = append(indices, i)
		}
	}
	return indices
}

// IndexToToken is the inverse of ToIndices. It reports false for an index outside
// the table or for a blank cell.
func IndexToToken(index int, table Table) (string, bool) {
	if index < 0 || index >= len(table) || table[index] == "" {
		return "", false
	}
	return table[index], true
}

// Labels returns one display label per token, "" for gaps.
func Labels(tokens []Token) []string {
	labels := make([]string, len(tokens))
	for i, tok := range tokens {
		if !tok.Gap {
			labels[i] = tok.Text
		}
	}
	return labels
}

// StringToIndices runs the whole pipeline and also returns the matching labels.
func StringToIndices(text string, table Table, spaceToGap bool) ([]int, []string) {
	normalized := Normalize(Tokenize(text, spaceToGap), table)
	return ToIndices(normalized, table), Labels(normalized)
}

/*
DetectWrongKeyset guesses whether text was meant for another keyset: it reports
true when any token other than a space or bracket fails to match the table.
*/
func DetectWrongKeyset(text string, table Table) bool {
	var tokens []Token
	for _, tok := range Tokenize(text, false) {
		switch tok.Text {
		case " ", "[", "]":
			continue
		}
		tokens = append(tokens, tok)
	}
	return len(tokens) > len(Normalize(tokens, table))
}
