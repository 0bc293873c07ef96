/*
Package token defines the lexical token kinds produced by the lexer
and consumed by the parser, grounded on informatter-nilan's token
package shape (a Kind enum + a Token struct carrying source position).
*/
package token

// Kind discriminates one lexical token.
type Kind uint8

const (
	EOF Kind = iota
	Illegal

	// Literals
	TypeReference // UpperCamel identifier: a type name
	Identifier    // lowerCamel identifier: a value/field name
	Number
	CString // quoted character string
	BString // 'xxxx'B
	HString // 'xxxx'H

	// Keywords
	KwSEQUENCE
	KwSET
	KwCHOICE
	KwOF
	KwOPTIONAL
	KwDEFAULT
	KwIMPLICIT
	KwEXPLICIT
	KwAUTOMATIC
	KwTAGS
	KwEXTENSIBILITY
	KwIMPLIED
	KwIMPORTS
	KwEXPORTS
	KwFROM
	KwCLASS
	KwWITH
	KwCOMPONENTS
	KwSYNTAX
	KwCONTAINING
	KwENCODED
	KwBY
	KwBEGIN
	KwEND
	KwDEFINITIONS
	KwUNIQUE
	KwTRUE
	KwFALSE
	KwNULL
	KwMIN
	KwMAX
	KwSIZE
	KwPATTERN
	KwANY // legacy ANY / ANY DEFINED BY

	// Universal type keywords
	KwBOOLEAN
	KwINTEGER
	KwENUMERATED
	KwREAL
	KwBITSTRING
	KwOCTETSTRING
	KwOID
	KwRELATIVEOID
	KwUTF8String
	KwNumericString
	KwPrintableString
	KwT61String
	KwVideotexString
	KwIA5String
	KwGraphicString
	KwVisibleString
	KwGeneralString
	KwUniversalString
	KwBMPString
	KwCharacterString
	KwUTCTime
	KwGeneralizedTime
	KwObjectDescriptor
	KwEXTERNAL
	KwEMBEDDEDPDV

	// Punctuation
	Assign // ::=
	LBrace
	RBrace
	LParen
	RParen
	LBracket
	RBracket
	Comma
	Bar
	DotDot    // ..
	Ellipsis  // ...
	At        // @
	Exclam    // !
	Minus
	Semicolon // ;
)

var keywords = map[string]Kind{
	"SEQUENCE": KwSEQUENCE, "SET": KwSET, "CHOICE": KwCHOICE, "OF": KwOF,
	"OPTIONAL": KwOPTIONAL, "DEFAULT": KwDEFAULT, "IMPLICIT": KwIMPLICIT,
	"EXPLICIT": KwEXPLICIT, "AUTOMATIC": KwAUTOMATIC, "TAGS": KwTAGS,
	"EXTENSIBILITY": KwEXTENSIBILITY, "IMPLIED": KwIMPLIED, "IMPORTS": KwIMPORTS,
	"EXPORTS": KwEXPORTS, "FROM": KwFROM, "CLASS": KwCLASS, "WITH": KwWITH,
	"COMPONENTS": KwCOMPONENTS, "SYNTAX": KwSYNTAX, "CONTAINING": KwCONTAINING,
	"ENCODED": KwENCODED, "BY": KwBY, "BEGIN": KwBEGIN, "END": KwEND,
	"DEFINITIONS": KwDEFINITIONS, "UNIQUE": KwUNIQUE, "TRUE": KwTRUE,
	"FALSE": KwFALSE, "NULL": KwNULL, "MIN": KwMIN, "MAX": KwMAX,
	"SIZE": KwSIZE, "PATTERN": KwPATTERN, "ANY": KwANY,
	"BOOLEAN": KwBOOLEAN, "INTEGER": KwINTEGER, "ENUMERATED": KwENUMERATED,
	"REAL": KwREAL, "BIT": KwBITSTRING, "OCTET": KwOCTETSTRING,
	"OBJECT": KwOID, "RELATIVE-OID": KwRELATIVEOID,
	"UTF8String": KwUTF8String, "NumericString": KwNumericString,
	"PrintableString": KwPrintableString, "T61String": KwT61String,
	"VideotexString": KwVideotexString, "IA5String": KwIA5String,
	"GraphicString": KwGraphicString, "VisibleString": KwVisibleString,
	"GeneralString": KwGeneralString, "UniversalString": KwUniversalString,
	"BMPString": KwBMPString, "CHARACTER": KwCharacterString,
	"UTCTime": KwUTCTime, "GeneralizedTime": KwGeneralizedTime,
	"ObjectDescriptor": KwObjectDescriptor, "EXTERNAL": KwEXTERNAL,
	"EMBEDDED": KwEMBEDDEDPDV,
}

// Lookup maps an identifier spelling to its keyword Kind, or
// Identifier/TypeReference per ASN.1's case convention if it isn't a
// reserved word.
func Lookup(s string) Kind {
	if k, ok := keywords[s]; ok {
		return k
	}
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		return TypeReference
	}
	return Identifier
}

// Position is a 1-based line/column source coordinate.
type Position struct {
	Line, Column int
}

// Token is one lexical unit: its Kind, the literal text it spans, and
// its source Position.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
}

func (t Token) String() string { return t.Text }
