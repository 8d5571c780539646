package search

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/subseqio/lz/internal/logging"
)

var parserLog = logging.ForComponent(logging.CompParser)

// TokenKind identifies what a parsed query token represents.
type TokenKind int

const (
	TokenVariable TokenKind = iota
	TokenGrpBegin
	TokenNotGrpBegin
	TokenGrpEnd
	TokenOr
)

// MatcherKind selects which leaf matcher a VARIABLE token evaluates with.
type MatcherKind int

const (
	MatchPrefix MatcherKind = iota
	MatchSuffix
	MatchSubstring
	MatchSubsequence
)

// Func returns the leaf matcher function for a MatcherKind.
func (m MatcherKind) Func() func(string, *QueryData) int {
	switch m {
	case MatchPrefix:
		return Prefix
	case MatchSuffix:
		return Suffix
	case MatchSubstring:
		return Substring
	case MatchSubsequence:
		return Subsequence
	default:
		parserLog.Error("invariant_violation", slog.Int("matcher_kind", int(m)))
		panic(fmt.Sprintf("search: unknown matcher kind %d", m))
	}
}

// FilterToken is one element of the flat token stream the parser produces
// for the boolean part of a query: either a leaf (VARIABLE, carrying a
// QueryData and a matcher selector) or a piece of grammar punctuation.
type FilterToken struct {
	QD      *QueryData
	Negate  bool
	Matcher MatcherKind
	Kind    TokenKind
}

// parser walks a query string left to right with a single shared cursor,
// mirroring the original's iterator pair threaded through recursive calls.
type parser struct {
	s   string
	pos int
	end int
	cfg Config
}

func (p *parser) atEnd() bool { return p.pos >= p.end }
func (p *parser) cur() byte   { return p.s[p.pos] }

// prevByte is the byte immediately before the cursor, or 0 at the start of
// the string.
func (p *parser) prevByte() byte {
	if p.pos == 0 {
		return 0
	}
	return p.s[p.pos-1]
}

func (p *parser) skipDelim(d byte) {
	for !p.atEnd() && p.cur() == d {
		p.pos++
	}
}

func isDelimByte(c byte, delims string) bool {
	return strings.IndexByte(delims, c) >= 0
}

// parseExact consumes bytes up to (not including) the first unescaped byte
// in delims, or the end of input. A backslash is dropped and the byte
// after it is taken literally, regardless of what that byte is.
func (p *parser) parseExact(delims string) (string, error) {
	if p.atEnd() {
		return "", newParseError(p.s, p.pos, "no string given; maybe you forgot to escape a meta character or close a phrase")
	}
	var sb strings.Builder
	for !p.atEnd() {
		c := p.cur()
		if c == '\\' {
			p.pos++
			if !p.atEnd() {
				sb.WriteByte(p.cur())
				p.pos++
			}
			continue
		}
		if isDelimByte(c, delims) {
			break
		}
		sb.WriteByte(c)
		p.pos++
	}
	return sb.String(), nil
}

// parsePhrase consumes a double-quoted phrase; the cursor must already be
// past the opening quote. Only space, ')' and '|' may follow the closing
// quote.
func (p *parser) parsePhrase() (string, error) {
	const validEndChars = " )|"

	s, err := p.parseExact("\"")
	if err != nil {
		return "", err
	}
	if len(s) < 1 {
		return "", newParseError(p.s, p.pos, "phrase can't be empty")
	}
	if p.atEnd() {
		return "", newParseError(p.s, p.pos, `closing " not found`)
	}
	if p.pos+1 < p.end && !isDelimByte(p.s[p.pos+1], validEndChars) {
		return "", newParseError(p.s, p.pos, `extra symbols after closing "`)
	}
	p.pos++
	return s, nil
}

// parseMeta consumes the operand of a prefix/suffix/exact/fuzzy operator:
// a phrase, or a bare word ending at space, ')' or '|'. metaName names the
// operator for the empty-operand error message.
func (p *parser) parseMeta(metaName string) (string, error) {
	if p.atEnd() {
		return "", newParseError(p.s, p.pos, "empty %s; nothing follows it", metaName)
	}
	c := p.cur()
	if c == '"' {
		p.pos++
		return p.parsePhrase()
	}
	if c == ' ' {
		return "", newParseError(p.s, p.pos,
			"empty %s; use \\ to escape the space, wrap in \" to match a space, or \\%s to match a literal %s",
			metaName, metaName, metaName)
	}
	return p.parseExact(" )|")
}

func (p *parser) parseFuzzyOperand() (string, error)   { return p.parseMeta("~") }
func (p *parser) parsePrefixOperand() (string, error)  { return p.parseMeta("^") }
func (p *parser) parseSuffixOperand() (string, error)  { return p.parseMeta("$") }
func (p *parser) parseDefaultOperand() (string, error) { return p.parseFuzzyOperand() }

func (p *parser) newVariableToken(q string, matcher MatcherKind) FilterToken {
	qd := NewQueryData(q, p.cfg)
	return FilterToken{QD: &qd, Matcher: matcher, Kind: TokenVariable}
}

// selectParse dispatches on the current byte to build one token and
// advances the cursor past it. ignoreNeg is true only while parsing the
// operand of a leading '!', so that "!!x" yields a literal "!x" rather
// than double negation.
func (p *parser) selectParse(ignoreNeg bool) (FilterToken, error) {
	ch := p.cur()
	switch {
	case ch == '^':
		p.pos++
		s, err := p.parsePrefixOperand()
		if err != nil {
			return FilterToken{}, err
		}
		return p.newVariableToken(s, MatchPrefix), nil

	case ch == '$':
		p.pos++
		s, err := p.parseSuffixOperand()
		if err != nil {
			return FilterToken{}, err
		}
		return p.newVariableToken(s, MatchSuffix), nil

	case ch == '"':
		p.pos++
		s, err := p.parsePhrase()
		if err != nil {
			return FilterToken{}, err
		}
		return p.newVariableToken(s, MatchSubsequence), nil

	case ch == '=':
		p.pos++
		s, err := p.parseExact(" )|")
		if err != nil {
			return FilterToken{}, err
		}
		return p.newVariableToken(s, MatchSubstring), nil

	case ch == '!' && !ignoreNeg:
		p.pos++
		tok, err := p.selectParse(true)
		if err != nil {
			return FilterToken{}, err
		}
		tok.Negate = true
		return tok, nil

	case ch == '~':
		p.pos++
		s, err := p.parseFuzzyOperand()
		if err != nil {
			return FilterToken{}, err
		}
		return p.newVariableToken(s, MatchSubsequence), nil

	case ch == '(':
		p.pos++
		if ignoreNeg {
			return FilterToken{Kind: TokenNotGrpBegin}, nil
		}
		return FilterToken{Kind: TokenGrpBegin}, nil

	case ch == ')':
		p.pos++
		return FilterToken{Kind: TokenGrpEnd}, nil

	case ch == '|':
		p.pos++
		return FilterToken{Kind: TokenOr}, nil

	default:
		s, err := p.parseDefaultOperand()
		if err != nil {
			return FilterToken{}, err
		}
		return p.newVariableToken(s, MatchSubsequence), nil
	}
}

// parseFuzzyPart consumes the fuzzy_part production: one or more
// space-separated fuzzy terms, stopping at " ;" (the cursor is left past
// the ';') or end of input.
func (p *parser) parseFuzzyPart() ([]QueryData, error) {
	if p.atEnd() {
		return nil, newParseError(p.s, p.pos, "query can't be empty")
	}
	p.skipDelim(' ')
	if p.atEnd() {
		return nil, newParseError(p.s, p.pos, "query can't be empty")
	}

	var queries []QueryData
	for !p.atEnd() {
		var q string
		var err error

		switch p.cur() {
		case '"':
			p.pos++
			q, err = p.parsePhrase()
			if err != nil {
				return nil, err
			}
			if !p.atEnd() && p.cur() != ' ' {
				return nil, newParseError(p.s, p.pos, `extra symbols after closing "`)
			}
		case ';':
			p.pos++
			return queries, nil
		default:
			q, err = p.parseExact(" ")
			if err != nil {
				return nil, err
			}
		}

		queries = append(queries, NewQueryData(q, p.cfg))
		p.skipDelim(' ')
	}
	return queries, nil
}

// parseBoolean consumes the boolean_part production into a flat token
// stream, validating adjacency rules that the tree builder cannot express
// structurally (dangling '|', unbalanced parens). An empty group "()" is
// accepted.
func (p *parser) parseBoolean() ([]FilterToken, error) {
	var tokens []FilterToken
	nBeg, nEnd := 0, 0

	p.skipDelim(' ')
	for !p.atEnd() {
		tok, err := p.selectParse(false)
		if err != nil {
			return nil, err
		}

		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			switch tok.Kind {
			case TokenOr:
				if last.Kind == TokenOr {
					return nil, newParseError(p.s, p.pos, "missing text after `|`")
				}
				if last.Kind == TokenGrpBegin || last.Kind == TokenNotGrpBegin {
					return nil, newParseError(p.s, p.pos, "missing text before `|`")
				}
			case TokenGrpEnd:
				if last.Kind == TokenOr {
					return nil, newParseError(p.s, p.pos, "missing text after `|`")
				}
				nEnd++
			}
		}
		if tok.Kind == TokenGrpBegin || tok.Kind == TokenNotGrpBegin {
			nBeg++
		}

		tokens = append(tokens, tok)
		p.skipDelim(' ')
	}

	if len(tokens) == 0 {
		return tokens, nil
	}

	last := tokens[len(tokens)-1]
	if last.Kind == TokenGrpBegin || last.Kind == TokenOr {
		return nil, newParseError(p.s, p.pos, "can't end in `|` or `(`")
	}
	first := tokens[0]
	if first.Kind == TokenGrpEnd || first.Kind == TokenOr {
		return nil, newParseError(p.s, p.pos, "can't begin in `|` or `)`")
	}
	if nBeg != nEnd {
		return nil, newParseError(p.s, p.pos, "unbalanced parentheses")
	}

	return tokens, nil
}

// ParseQuery parses a full query string into its fuzzy term list and its
// boolean-part token stream. cfg should already have smart case resolved
// (see ResolveSmartCase); every QueryData built during parsing inherits
// cfg's IgnoreCase, PreserveOrder, MaxSymbolGap and WordDelims.
func ParseQuery(query string, cfg Config) (fuzzyTerms []QueryData, tokens []FilterToken, err error) {
	if query == "" {
		err = newParseError(query, 0, "query can't be empty")
		parserLog.Warn("parse_failed", slog.String("query", query), slog.String("error", err.Error()))
		return nil, nil, err
	}

	p := &parser{s: query, pos: 0, end: len(query), cfg: cfg}

	fuzzyTerms, err = p.parseFuzzyPart()
	if err != nil {
		parserLog.Warn("parse_failed", slog.String("query", query), slog.String("error", err.Error()))
		return nil, nil, err
	}
	tokens, err = p.parseBoolean()
	if err != nil {
		parserLog.Warn("parse_failed", slog.String("query", query), slog.String("error", err.Error()))
		return nil, nil, err
	}
	return fuzzyTerms, tokens, nil
}
