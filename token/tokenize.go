package token

import (
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Tokenize turns a single CSS selector string into the flat Token sequence
// described in §6 of SPEC_FULL.md. It delegates low-level lexing to
// tdewolff/parse/v2/css's Lexer (the same tokenizer this codebase's own
// css.Parser relies on for stylesheets) and builds the selector-specific
// token abstraction on top of its raw TokenType stream, since that package
// only tokenizes bare selector text — it has no notion of "this run of
// tokens is a type selector" or "this is the attribute operator".
func Tokenize(sel string) ([]Token, error) {
	raw, err := lexRaw(sel)
	if err != nil {
		return nil, fmt.Errorf("tokenize selector %q: %w", sel, err)
	}
	return assemble(sel, raw)
}

type rawToken struct {
	tt   css.TokenType
	data string
}

func lexRaw(sel string) ([]rawToken, error) {
	l := css.NewLexer(parse.NewInput(strings.NewReader(sel)))
	var out []rawToken
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && err != io.EOF {
				return nil, err
			}
			return out, nil
		}
		out = append(out, rawToken{tt: tt, data: string(data)})
	}
}

// assemble walks the raw lexer output and produces the selector-shaped
// Token stream, absorbing whitespace into descendant combinators and
// parsing the small sub-grammars (attribute selectors, pseudo-classes and
// pseudo-elements, class/id shorthand) that sit on top of the raw tokens.
func assemble(sel string, raw []rawToken) ([]Token, error) {
	var (
		out          []Token
		i            int
		pendingWS    bool
		haveCompound bool // true once a compound part has been emitted since the last combinator/comma/start
	)

	emit := func(t Token) {
		out = append(out, t)
	}

	flushDescendant := func() {
		if pendingWS && haveCompound {
			emit(Token{Kind: KindCombinator, Content: " "})
		}
		pendingWS = false
	}

	for i < len(raw) {
		t := raw[i]
		switch t.tt {
		case css.WhitespaceToken, css.CommentToken:
			pendingWS = true
			i++
			continue

		case css.CommaToken:
			pendingWS = false
			emit(Token{Kind: KindComma, Content: ","})
			haveCompound = false
			i++
			continue

		case css.DelimToken:
			switch t.data {
			case ">", "+", "~":
				pendingWS = false
				emit(Token{Kind: KindCombinator, Content: t.data})
				haveCompound = false
				i++
				continue
			case "*":
				flushDescendant()
				emit(Token{Kind: KindType, Name: "*", Content: t.data})
				haveCompound = true
				i++
				continue
			case ".":
				flushDescendant()
				if i+1 >= len(raw) || raw[i+1].tt != css.IdentToken {
					return nil, fmt.Errorf("selector %q: malformed class selector at position %d", sel, i)
				}
				emit(Token{Kind: KindClass, Name: raw[i+1].data, Content: "." + raw[i+1].data})
				haveCompound = true
				i += 2
				continue
			}
			return nil, fmt.Errorf("selector %q: unexpected character %q", sel, t.data)

		case css.IdentToken:
			flushDescendant()
			emit(Token{Kind: KindType, Name: t.data, Content: t.data})
			haveCompound = true
			i++
			continue

		case css.HashToken:
			flushDescendant()
			emit(Token{Kind: KindID, Name: strings.TrimPrefix(t.data, "#"), Content: t.data})
			haveCompound = true
			i++
			continue

		case css.LeftBracketToken:
			flushDescendant()
			tok, consumed, err := assembleAttribute(sel, raw, i)
			if err != nil {
				return nil, err
			}
			emit(tok)
			haveCompound = true
			i += consumed
			continue

		case css.ColonToken:
			flushDescendant()
			tok, consumed, err := assemblePseudo(sel, raw, i)
			if err != nil {
				return nil, err
			}
			emit(tok)
			haveCompound = true
			i += consumed
			continue

		default:
			return nil, fmt.Errorf("selector %q: unexpected token %v (%q)", sel, t.tt, t.data)
		}
	}

	return out, nil
}

func skipWS(raw []rawToken, i int) int {
	for i < len(raw) && (raw[i].tt == css.WhitespaceToken || raw[i].tt == css.CommentToken) {
		i++
	}
	return i
}

// assembleAttribute parses "[" ident (operator value)? (ws ident)? "]"
// starting at raw[start] (the LeftBracketToken) and returns the resulting
// Token plus how many raw tokens it consumed.
func assembleAttribute(sel string, raw []rawToken, start int) (Token, int, error) {
	i := start + 1
	i = skipWS(raw, i)
	if i >= len(raw) || raw[i].tt != css.IdentToken {
		return Token{}, 0, fmt.Errorf("selector %q: expected attribute name", sel)
	}
	name := strings.ToLower(raw[i].data)
	i++
	i = skipWS(raw, i)

	if i < len(raw) && raw[i].tt == css.RightBracketToken {
		return Token{Kind: KindAttribute, Name: name, Operator: "", Content: "[" + name + "]"}, i + 1 - start, nil
	}
	if i >= len(raw) {
		return Token{}, 0, fmt.Errorf("selector %q: unterminated attribute selector", sel)
	}

	var op string
	switch raw[i].tt {
	case css.IncludeMatchToken:
		op = "~="
	case css.DashMatchToken:
		op = "|="
	case css.PrefixMatchToken:
		op = "^="
	case css.SuffixMatchToken:
		op = "$="
	case css.SubstringMatchToken:
		op = "*="
	case css.DelimToken:
		if raw[i].data != "=" {
			return Token{}, 0, fmt.Errorf("selector %q: unexpected attribute operator %q", sel, raw[i].data)
		}
		op = "="
	default:
		return Token{}, 0, fmt.Errorf("selector %q: unexpected attribute operator token", sel)
	}
	i++
	i = skipWS(raw, i)

	if i >= len(raw) {
		return Token{}, 0, fmt.Errorf("selector %q: missing attribute value", sel)
	}
	var value string
	switch raw[i].tt {
	case css.StringToken:
		value = unquote(raw[i].data)
	case css.IdentToken:
		value = raw[i].data
	default:
		return Token{}, 0, fmt.Errorf("selector %q: unexpected attribute value token", sel)
	}
	i++
	i = skipWS(raw, i)

	caseFlag := CaseUnset
	if i < len(raw) && raw[i].tt == css.IdentToken {
		switch strings.ToLower(raw[i].data) {
		case "i":
			caseFlag = CaseInsensitive
		case "s":
			caseFlag = CaseSensitive
		default:
			return Token{}, 0, fmt.Errorf("selector %q: unexpected attribute flag %q", sel, raw[i].data)
		}
		i++
		i = skipWS(raw, i)
	}

	if i >= len(raw) || raw[i].tt != css.RightBracketToken {
		return Token{}, 0, fmt.Errorf("selector %q: unterminated attribute selector", sel)
	}
	i++

	return Token{
		Kind:     KindAttribute,
		Name:     name,
		Operator: op,
		Value:    value,
		AttrCase: caseFlag,
		Content:  "[" + name + op + value + "]",
	}, i - start, nil
}

// assemblePseudo parses either "::" ident (a pseudo-element) or
// ":" (ident | function ... ")") (a pseudo-class) starting at raw[start]
// (the first ColonToken).
func assemblePseudo(sel string, raw []rawToken, start int) (Token, int, error) {
	i := start + 1
	if i < len(raw) && raw[i].tt == css.ColonToken {
		i++
		if i >= len(raw) || raw[i].tt != css.IdentToken {
			return Token{}, 0, fmt.Errorf("selector %q: expected pseudo-element name", sel)
		}
		name := raw[i].data
		i++
		return Token{Kind: KindPseudoElement, Name: name, Content: "::" + name}, i - start, nil
	}

	if i >= len(raw) {
		return Token{}, 0, fmt.Errorf("selector %q: dangling ':'", sel)
	}
	switch raw[i].tt {
	case css.IdentToken:
		name := raw[i].data
		i++
		return Token{Kind: KindPseudoClass, Name: name, Content: ":" + name}, i - start, nil
	case css.FunctionToken:
		name := strings.TrimSuffix(raw[i].data, "(")
		i++
		depth := 1
		var argParts []string
		for i < len(raw) && depth > 0 {
			switch raw[i].tt {
			case css.FunctionToken, css.LeftParenthesisToken:
				depth++
				argParts = append(argParts, raw[i].data)
			case css.RightParenthesisToken:
				depth--
				if depth == 0 {
					i++
					goto done
				}
				argParts = append(argParts, raw[i].data)
			default:
				argParts = append(argParts, raw[i].data)
			}
			i++
		}
		return Token{}, 0, fmt.Errorf("selector %q: unterminated pseudo-class argument", sel)
	done:
		arg := strings.TrimSpace(strings.Join(argParts, ""))
		return Token{Kind: KindPseudoClass, Name: name, Argument: arg, Content: ":" + name + "(" + arg + ")"}, i - start, nil
	default:
		return Token{}, 0, fmt.Errorf("selector %q: expected pseudo-class after ':'", sel)
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
