/*
Package parser implements a hand-written recursive-descent parser over
the token.Token stream produced by package lexer, one method per X.680
production (spec.md §4.1): parseModule, parseAssignment, parseType,
parseConstraint, parseValue, and so on.
It performs no semantic resolution — parameterized types, information
object classes/sets, and table constraints are recognized syntactically
and retained as raw ast nodes for package ir's pre-processor to resolve.

First syntax error wins: Parse returns as soon as one production fails,
with no error recovery, matching spec.md §4.1.
*/
package parser

import (
	"fmt"

	"github.com/JesseCoretta/go-asn1kit/ast"
	"github.com/JesseCoretta/go-asn1kit/lexer"
	"github.com/JesseCoretta/go-asn1kit/token"
)

// Parser holds a one-token lookahead over a pre-scanned token list.
type Parser struct {
	toks []token.Token
	pos  int
	path string
}

// New returns a Parser over src, identified by path for error messages
// (path may be empty for in-memory text).
func New(src, path string) (*Parser, error) {
	toks, err := lexer.All(src)
	if err != nil {
		return nil, &ParseError{Path: path, Message: err.Error()}
	}
	return &Parser{toks: toks, path: path}, nil
}

// ParseError mirrors the root package's ParseError shape so callers
// get consistent line/column reporting whether the failure came from
// the lexer or the parser.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) errf(format string, args ...any) error {
	c := p.cur()
	return &ParseError{Path: p.path, Line: c.Pos.Line, Column: c.Pos.Column, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.cur().Kind != k {
		return token.Token{}, p.errf("unexpected token %q", p.cur().Text)
	}
	return p.advance(), nil
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

// Parse parses a single module from src.
func Parse(src, path string) (*ast.Module, error) {
	pr, err := New(src, path)
	if err != nil {
		return nil, err
	}
	return pr.parseModule()
}

func (p *Parser) parseModule() (*ast.Module, error) {
	nameTok, err := p.expect(token.TypeReference)
	if err != nil {
		return nil, err
	}
	m := &ast.Module{Name: nameTok.Text}

	if p.at(token.LBrace) {
		oid, err := p.parseObjectIDValue()
		if err != nil {
			return nil, err
		}
		m.OID = oid
	}

	if _, err := p.expect(token.KwDEFINITIONS); err != nil {
		return nil, err
	}

	for p.at(token.KwEXTENSIBILITY) || p.at(token.KwEXPLICIT) || p.at(token.KwIMPLICIT) || p.at(token.KwAUTOMATIC) {
		switch {
		case p.at(token.KwEXPLICIT):
			p.advance()
			if _, err := p.expect(token.KwTAGS); err != nil {
				return nil, err
			}
			m.TagDefault = ast.TagsExplicit
		case p.at(token.KwIMPLICIT):
			p.advance()
			if _, err := p.expect(token.KwTAGS); err != nil {
				return nil, err
			}
			m.TagDefault = ast.TagsImplicit
		case p.at(token.KwAUTOMATIC):
			p.advance()
			if _, err := p.expect(token.KwTAGS); err != nil {
				return nil, err
			}
			m.TagDefault = ast.TagsAutomatic
		case p.at(token.KwEXTENSIBILITY):
			p.advance()
			if _, err := p.expect(token.KwIMPLIED); err != nil {
				return nil, err
			}
			m.ExtensibilityImplied = true
		default:
			return nil, p.errf("unexpected module header token %q", p.cur().Text)
		}
	}

	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwBEGIN); err != nil {
		return nil, err
	}

	if p.at(token.KwEXPORTS) {
		p.advance()
		for p.at(token.TypeReference) || p.at(token.Identifier) {
			m.Exports = append(m.Exports, p.advance().Text)
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
	}

	if p.at(token.KwIMPORTS) {
		p.advance()
		for p.at(token.TypeReference) || p.at(token.Identifier) {
			var syms []string
			for {
				syms = append(syms, p.advance().Text)
				if p.at(token.Comma) {
					p.advance()
					continue
				}
				break
			}
			if _, err := p.expect(token.KwFROM); err != nil {
				return nil, err
			}
			modTok, err := p.expect(token.TypeReference)
			if err != nil {
				return nil, err
			}
			imp := ast.Import{Symbols: syms, Module: modTok.Text}
			if p.at(token.LBrace) {
				oid, err := p.parseObjectIDValue()
				if err != nil {
					return nil, err
				}
				imp.OID = oid
			}
			m.Imports = append(m.Imports, imp)
		}
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
	}

	for p.at(token.TypeReference) || p.at(token.Identifier) {
		a, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		m.Assignments = append(m.Assignments, *a)
	}

	if _, err := p.expect(token.KwEND); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) parseObjectIDValue() (*ast.ObjectID, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	oid := &ast.ObjectID{}
	for !p.at(token.RBrace) {
		switch {
		case p.at(token.Identifier):
			name := p.advance().Text
			num := -1
			if p.at(token.LParen) {
				p.advance()
				numTok, err := p.expect(token.Number)
				if err != nil {
					return nil, err
				}
				num = atoiMust(numTok.Text)
				if _, err := p.expect(token.RParen); err != nil {
					return nil, err
				}
			}
			oid.Names = append(oid.Names, name)
			oid.Numbers = append(oid.Numbers, num)
		case p.at(token.Number):
			numTok := p.advance()
			oid.Names = append(oid.Names, "")
			oid.Numbers = append(oid.Numbers, atoiMust(numTok.Text))
		default:
			return nil, p.errf("unexpected token %q in OBJECT IDENTIFIER value", p.cur().Text)
		}
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return oid, nil
}

func atoiMust(s string) int {
	n := 0
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}

// parseAssignment dispatches on the lookahead shape: "Name ::= CLASS"
// is a ClassAssignment, "Name ::= <Type>" is a TypeAssignment when Name
// starts uppercase, and a lowercase-led "name Type ::= value" is a
// ValueAssignment.
func (p *Parser) parseAssignment() (*ast.Assignment, error) {
	nameTok := p.advance()

	if nameTok.Kind == token.Identifier {
		// value assignment: "name Type ::= value"
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Assign); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Value: &ast.ValueAssignment{Name: nameTok.Text, Type: t, Val: v}}, nil
	}

	var params []string
	if p.at(token.LBrace) {
		// parameterized type assignment: "Name { Param1, Param2 } ::= ..."
		save := p.pos
		if ps, ok := p.tryParseFormalParams(); ok {
			params = ps
		} else {
			p.pos = save
		}
	}

	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}

	if p.at(token.KwCLASS) {
		ca, err := p.parseClassAssignment(nameTok.Text)
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Class: ca}, nil
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.Assignment{Type: &ast.TypeAssignment{Name: nameTok.Text, Params: params, Type: t}}, nil
}

func (p *Parser) tryParseFormalParams() ([]string, bool) {
	if !p.at(token.LBrace) {
		return nil, false
	}
	p.advance()
	var out []string
	for p.at(token.TypeReference) || p.at(token.Identifier) {
		out = append(out, p.advance().Text)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if !p.at(token.RBrace) {
		return nil, false
	}
	p.advance()
	return out, true
}

func (p *Parser) parseClassAssignment(name string) (*ast.ClassAssignment, error) {
	if _, err := p.expect(token.KwCLASS); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	ca := &ast.ClassAssignment{Name: name}
	for !p.at(token.RBrace) {
		if _, err := p.expect(token.At); err != nil {
			return nil, err
		}
		refTok := p.advance()
		field := ast.ClassField{Reference: "&" + refTok.Text}
		if refTok.Kind == token.TypeReference {
			field.IsType = true
		} else {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			field.Type = t
		}
		if p.at(token.KwUNIQUE) {
			p.advance()
			field.Unique = true
		}
		if p.at(token.KwOPTIONAL) {
			p.advance()
			field.Optional = true
		}
		ca.Fields = append(ca.Fields, field)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	if p.at(token.KwWITH) {
		p.advance()
		if _, err := p.expect(token.KwSYNTAX); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LBrace); err != nil {
			return nil, err
		}
		var syn ast.Syntax
		depth := 1
		for depth > 0 {
			t := p.advance()
			switch t.Kind {
			case token.LBrace:
				depth++
			case token.RBrace:
				depth--
				if depth == 0 {
					break
				}
			}
			if depth > 0 {
				syn.Tokens = append(syn.Tokens, t.Text)
			}
		}
		ca.Syntax = &syn
	}
	return ca, nil
}

// parseType parses one ASN.1 Type production, including an optional
// leading tag and trailing constraint list.
func (p *Parser) parseType() (ast.Type, error) {
	var tag *ast.Tag
	if p.at(token.LBracket) {
		var err error
		tag, err = p.parseTag()
		if err != nil {
			return ast.Type{}, err
		}
	}

	t, err := p.parseUntaggedType()
	if err != nil {
		return ast.Type{}, err
	}
	t.Tag = tag

	for p.at(token.LParen) {
		c, err := p.parseConstraint()
		if err != nil {
			return ast.Type{}, err
		}
		t.Constraints = append(t.Constraints, c)
	}
	return t, nil
}

func (p *Parser) parseTag() (*ast.Tag, error) {
	if _, err := p.expect(token.LBracket); err != nil {
		return nil, err
	}
	tag := &ast.Tag{}
	if p.at(token.TypeReference) {
		switch p.cur().Text {
		case "APPLICATION", "UNIVERSAL", "PRIVATE":
			tag.Class = p.advance().Text
		}
	}
	numTok, err := p.expect(token.Number)
	if err != nil {
		return nil, err
	}
	tag.Number = atoiMust(numTok.Text)
	if _, err := p.expect(token.RBracket); err != nil {
		return nil, err
	}
	if p.at(token.KwEXPLICIT) {
		p.advance()
		tag.Explicit = true
	} else if p.at(token.KwIMPLICIT) {
		p.advance()
		tag.Implicit = true
	}
	return tag, nil
}

func (p *Parser) parseUntaggedType() (ast.Type, error) {
	switch p.cur().Kind {
	case token.KwBOOLEAN:
		p.advance()
		return ast.Type{Kind: ast.KindBoolean}, nil
	case token.KwINTEGER:
		p.advance()
		t := ast.Type{Kind: ast.KindInteger}
		if p.at(token.LBrace) {
			enum, err := p.parseNamedNumberList()
			if err != nil {
				return ast.Type{}, err
			}
			t.Enum = enum
		}
		return t, nil
	case token.KwENUMERATED:
		p.advance()
		enum, err := p.parseNamedNumberList()
		if err != nil {
			return ast.Type{}, err
		}
		return ast.Type{Kind: ast.KindEnumerated, Enum: enum}, nil
	case token.KwREAL:
		p.advance()
		return ast.Type{Kind: ast.KindReal}, nil
	case token.KwNULL:
		p.advance()
		return ast.Type{Kind: ast.KindNull}, nil
	case token.KwBITSTRING:
		p.advance()
		p.consumeWord("STRING")
		t := ast.Type{Kind: ast.KindBitString}
		if p.at(token.LBrace) {
			enum, err := p.parseNamedNumberList()
			if err != nil {
				return ast.Type{}, err
			}
			t.Enum = enum
		}
		return t, nil
	case token.KwOCTETSTRING:
		p.advance()
		p.consumeWord("STRING")
		return ast.Type{Kind: ast.KindOctetString}, nil
	case token.KwOID:
		p.advance()
		p.consumeWord("IDENTIFIER")
		return ast.Type{Kind: ast.KindOID}, nil
	case token.KwRELATIVEOID:
		p.advance()
		return ast.Type{Kind: ast.KindRelativeOID}, nil
	case token.KwUTF8String:
		p.advance()
		return ast.Type{Kind: ast.KindUTF8String}, nil
	case token.KwNumericString:
		p.advance()
		return ast.Type{Kind: ast.KindNumericString}, nil
	case token.KwPrintableString:
		p.advance()
		return ast.Type{Kind: ast.KindPrintableString}, nil
	case token.KwT61String:
		p.advance()
		return ast.Type{Kind: ast.KindT61String}, nil
	case token.KwVideotexString:
		p.advance()
		return ast.Type{Kind: ast.KindVideotexString}, nil
	case token.KwIA5String:
		p.advance()
		return ast.Type{Kind: ast.KindIA5String}, nil
	case token.KwGraphicString:
		p.advance()
		return ast.Type{Kind: ast.KindGraphicString}, nil
	case token.KwVisibleString:
		p.advance()
		return ast.Type{Kind: ast.KindVisibleString}, nil
	case token.KwGeneralString:
		p.advance()
		return ast.Type{Kind: ast.KindGeneralString}, nil
	case token.KwUniversalString:
		p.advance()
		return ast.Type{Kind: ast.KindUniversalString}, nil
	case token.KwBMPString:
		p.advance()
		return ast.Type{Kind: ast.KindBMPString}, nil
	case token.KwCharacterString:
		p.advance()
		p.consumeWord("STRING")
		return ast.Type{Kind: ast.KindCharacterString}, nil
	case token.KwUTCTime:
		p.advance()
		return ast.Type{Kind: ast.KindUTCTime}, nil
	case token.KwGeneralizedTime:
		p.advance()
		return ast.Type{Kind: ast.KindGeneralizedTime}, nil
	case token.KwObjectDescriptor:
		p.advance()
		return ast.Type{Kind: ast.KindObjectDescriptor}, nil
	case token.KwEXTERNAL:
		p.advance()
		return ast.Type{Kind: ast.KindExternal}, nil
	case token.KwEMBEDDEDPDV:
		p.advance()
		p.consumeWord("PDV")
		return ast.Type{Kind: ast.KindEmbeddedPDV}, nil
	case token.KwANY:
		p.advance()
		if p.at(token.Identifier) && p.cur().Text == "DEFINED" {
			p.advance()
			if _, err := p.expect(token.KwBY); err != nil {
				return ast.Type{}, err
			}
			fieldTok, err := p.expect(token.Identifier)
			if err != nil {
				return ast.Type{}, err
			}
			return ast.Type{Kind: ast.KindAnyDefinedBy, Ref: fieldTok.Text}, nil
		}
		return ast.Type{Kind: ast.KindAny}, nil
	case token.KwSEQUENCE:
		return p.parseSequenceOrSet(ast.KindSequence, ast.KindSequenceOf, token.KwSEQUENCE)
	case token.KwSET:
		return p.parseSequenceOrSet(ast.KindSet, ast.KindSetOf, token.KwSET)
	case token.KwCHOICE:
		p.advance()
		members, err := p.parseMemberList()
		if err != nil {
			return ast.Type{}, err
		}
		return ast.Type{Kind: ast.KindChoice, Members: members}, nil
	case token.TypeReference:
		ref := p.advance().Text
		full := ref
		if p.at(token.Identifier) || p.at(token.TypeReference) {
			// module-qualified reference: "Module.Type" isn't tokenized
			// with a dot here since '.' is handled as DotDot/Ellipsis;
			// most modules reference unqualified type names, which is
			// all this toolkit resolves without cross-module aliasing.
		}
		if p.at(token.LBrace) {
			// either an actual-parameter list "T{INTEGER}" or an
			// object-set reference for a CLASS field type; retained
			// as Params for the pre-processor to disambiguate.
			save := p.pos
			p.advance()
			var params []ast.Type
			ok := true
			for !p.at(token.RBrace) {
				pt, err := p.parseType()
				if err != nil {
					ok = false
					break
				}
				params = append(params, pt)
				if p.at(token.Comma) {
					p.advance()
					continue
				}
				break
			}
			if ok && p.at(token.RBrace) {
				p.advance()
				return ast.Type{Kind: ast.KindReference, Ref: full, Params: params}, nil
			}
			p.pos = save
		}
		return ast.Type{Kind: ast.KindReference, Ref: full}, nil
	}
	return ast.Type{}, p.errf("unexpected token %q at start of Type", p.cur().Text)
}

// consumeWord consumes the current token if its spelling matches word,
// regardless of the Kind it lexed as (so "BIT STRING"'s trailing
// "STRING" consumes whether it lexed as Identifier or TypeReference).
func (p *Parser) consumeWord(word string) {
	if p.cur().Text == word {
		p.advance()
	}
}

func (p *Parser) parseSequenceOrSet(kindPlain, kindOf ast.TypeKind, kw token.Kind) (ast.Type, error) {
	if _, err := p.expect(kw); err != nil {
		return ast.Type{}, err
	}
	if p.at(token.KwOF) {
		p.advance()
		elem, err := p.parseType()
		if err != nil {
			return ast.Type{}, err
		}
		return ast.Type{Kind: kindOf, Component: &elem}, nil
	}
	members, err := p.parseMemberList()
	if err != nil {
		return ast.Type{}, err
	}
	return ast.Type{Kind: kindPlain, Members: members}, nil
}

func (p *Parser) parseMemberList() ([]ast.Member, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var out []ast.Member
	extGroup := -1
	for !p.at(token.RBrace) {
		if p.at(token.Ellipsis) {
			p.advance()
			out = append(out, ast.Member{ExtMarker: true, ExtGroupID: -1})
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		if p.at(token.LBracket) && p.peekAt(1).Kind == token.LBracket {
			p.advance()
			p.advance()
			extGroup++
			for !(p.at(token.RBracket) && p.peekAt(1).Kind == token.RBracket) {
				m, err := p.parseMember()
				if err != nil {
					return nil, err
				}
				m.ExtGroupID = extGroup
				out = append(out, m)
				if p.at(token.Comma) {
					p.advance()
					continue
				}
				break
			}
			p.advance()
			p.advance()
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		m, err := p.parseMember()
		if err != nil {
			return nil, err
		}
		m.ExtGroupID = -1
		out = append(out, m)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) parseMember() (ast.Member, error) {
	if p.at(token.KwCOMPONENTS) {
		p.advance()
		if _, err := p.expect(token.KwOF); err != nil {
			return ast.Member{}, err
		}
		t, err := p.parseType()
		if err != nil {
			return ast.Member{}, err
		}
		return ast.Member{ComponentsOf: &t}, nil
	}
	nameTok, err := p.expect(token.Identifier)
	if err != nil {
		return ast.Member{}, err
	}
	t, err := p.parseType()
	if err != nil {
		return ast.Member{}, err
	}
	m := ast.Member{Name: nameTok.Text, Type: t}
	if p.at(token.KwOPTIONAL) {
		p.advance()
		m.Optional = true
	} else if p.at(token.KwDEFAULT) {
		p.advance()
		v, err := p.parseValue()
		if err != nil {
			return ast.Member{}, err
		}
		m.Default = &v
	}
	return m, nil
}

func (p *Parser) parseNamedNumberList() ([]ast.NamedNumber, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var out []ast.NamedNumber
	for !p.at(token.RBrace) {
		if p.at(token.Ellipsis) {
			p.advance()
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		nameTok, err := p.expect(token.Identifier)
		if err != nil {
			return nil, err
		}
		nn := ast.NamedNumber{Name: nameTok.Text}
		if p.at(token.LParen) {
			p.advance()
			numTok, err := p.expect(token.Number)
			if err != nil {
				return nil, err
			}
			nn.Number = atoiMust(numTok.Text)
			if _, err := p.expect(token.RParen); err != nil {
				return nil, err
			}
		}
		out = append(out, nn)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return out, nil
}

// parseConstraint parses one "(...)" subtype constraint.
func (p *Parser) parseConstraint() (ast.Constraint, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return ast.Constraint{}, err
	}

	if p.at(token.KwSIZE) {
		p.advance()
		lo, hi, ext, err := p.parseRangeInParens()
		if err != nil {
			return ast.Constraint{}, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return ast.Constraint{}, err
		}
		return ast.Constraint{Kind: ast.ConstraintKindSize, Lower: lo, Upper: hi, Extensible: ext}, nil
	}

	if p.at(token.LBrace) {
		// an enumerated value-set constraint: "(red | green | blue)" is
		// handled below via bar-separated values; a literal set written
		// with braces names a table constraint's governing object set.
		ref, err := p.parseBraceRef()
		if err != nil {
			return ast.Constraint{}, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return ast.Constraint{}, err
		}
		return ast.Constraint{Kind: ast.ConstraintKindTable, TableRef: ref}, nil
	}

	// value-range or value-set constraint
	first, isRange, lo, hi, ext, err := p.parseConstraintHead()
	if err != nil {
		return ast.Constraint{}, err
	}
	if isRange {
		if _, err := p.expect(token.RParen); err != nil {
			return ast.Constraint{}, err
		}
		return ast.Constraint{Kind: ast.ConstraintKindValueRange, Lower: lo, Upper: hi, Extensible: ext}, nil
	}

	values := []ast.Value{first}
	for p.at(token.Bar) {
		p.advance()
		v, err := p.parseValue()
		if err != nil {
			return ast.Constraint{}, err
		}
		values = append(values, v)
	}
	if _, err := p.expect(token.RParen); err != nil {
		return ast.Constraint{}, err
	}
	return ast.Constraint{Kind: ast.ConstraintKindValueSet, Values: values}, nil
}

func (p *Parser) parseBraceRef() (string, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return "", err
	}
	depth := 1
	var parts []string
	for depth > 0 {
		t := p.advance()
		switch t.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth == 0 {
				continue
			}
		}
		parts = append(parts, t.Text)
	}
	joined := ""
	for _, s := range parts {
		joined += s
	}
	return joined, nil
}

func (p *Parser) parseRangeInParens() (*ast.ConstraintBound, *ast.ConstraintBound, bool, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, nil, false, err
	}
	lo, err := p.parseBound()
	if err != nil {
		return nil, nil, false, err
	}
	hi := lo
	if p.at(token.DotDot) {
		p.advance()
		hi, err = p.parseBound()
		if err != nil {
			return nil, nil, false, err
		}
	}
	ext := false
	if p.at(token.Comma) {
		p.advance()
		if _, err := p.expect(token.Ellipsis); err != nil {
			return nil, nil, false, err
		}
		ext = true
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, nil, false, err
	}
	return lo, hi, ext, nil
}

func (p *Parser) parseConstraintHead() (ast.Value, bool, *ast.ConstraintBound, *ast.ConstraintBound, bool, error) {
	lo, err := p.parseBound()
	if err != nil {
		// not a numeric/MIN/MAX bound: fall back to a value-set head
		v, verr := p.parseValue()
		if verr != nil {
			return ast.Value{}, false, nil, nil, false, err
		}
		return v, false, nil, nil, false, nil
	}
	if p.at(token.DotDot) {
		p.advance()
		hi, err := p.parseBound()
		if err != nil {
			return ast.Value{}, false, nil, nil, false, err
		}
		ext := false
		if p.at(token.Comma) {
			p.advance()
			if _, err := p.expect(token.Ellipsis); err != nil {
				return ast.Value{}, false, nil, nil, false, err
			}
			ext = true
		}
		return ast.Value{}, true, lo, hi, ext, nil
	}
	return ast.Value{Kind: ast.ValInteger, Int: lo.Value}, false, nil, nil, false, nil
}

func (p *Parser) parseBound() (*ast.ConstraintBound, error) {
	switch {
	case p.at(token.KwMIN):
		p.advance()
		return &ast.ConstraintBound{Min: true}, nil
	case p.at(token.KwMAX):
		p.advance()
		return &ast.ConstraintBound{Max: true}, nil
	case p.at(token.Number):
		n := p.advance().Text
		return &ast.ConstraintBound{Value: int64(atoiMust(n))}, nil
	}
	return nil, p.errf("expected MIN, MAX, or a number in constraint, got %q", p.cur().Text)
}

// parseValue parses one ASN.1 value literal.
func (p *Parser) parseValue() (ast.Value, error) {
	switch {
	case p.at(token.KwTRUE):
		p.advance()
		return ast.Value{Kind: ast.ValBoolean, Bool: true}, nil
	case p.at(token.KwFALSE):
		p.advance()
		return ast.Value{Kind: ast.ValBoolean, Bool: false}, nil
	case p.at(token.KwNULL):
		p.advance()
		return ast.Value{Kind: ast.ValNull}, nil
	case p.at(token.Number):
		n := p.advance().Text
		return ast.Value{Kind: ast.ValInteger, Int: int64(atoiMust(n))}, nil
	case p.at(token.CString):
		s := p.advance().Text
		return ast.Value{Kind: ast.ValCString, Text: s}, nil
	case p.at(token.BString):
		s := p.advance().Text
		return ast.Value{Kind: ast.ValBString, Bits: s}, nil
	case p.at(token.HString):
		s := p.advance().Text
		return ast.Value{Kind: ast.ValHString, Hex: s}, nil
	case p.at(token.LBrace):
		if isOIDShape(p.toks, p.pos) {
			oid, err := p.parseObjectIDValue()
			if err != nil {
				return ast.Value{}, err
			}
			return ast.Value{Kind: ast.ValOID, OID: oid}, nil
		}
		p.advance()
		var list []ast.Value
		for !p.at(token.RBrace) {
			v, err := p.parseValue()
			if err != nil {
				return ast.Value{}, err
			}
			list = append(list, v)
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RBrace); err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Kind: ast.ValList, List: list}, nil
	case p.at(token.Identifier):
		name := p.advance().Text
		return ast.Value{Kind: ast.ValReference, Ref: name}, nil
	}
	return ast.Value{}, p.errf("unexpected token %q at start of Value", p.cur().Text)
}

func isOIDShape(toks []token.Token, pos int) bool {
	if toks[pos].Kind != token.LBrace {
		return false
	}
	i := pos + 1
	return i < len(toks) && (toks[i].Kind == token.Identifier || toks[i].Kind == token.Number)
}
