package token

// Kind represents the category of a BibTeX token.
type Kind uint8

const (
	// Invalid indicates a malformed region the lexer recovered from.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// At represents the '@' that opens an entry.
	At
	// Ident represents an identifier: entry type, citation key, field key or
	// macro name.
	Ident
	// Number represents a bare integer value (e.g. year = 2024).
	Number
	// Quoted represents a quote-delimited value, delimiters included in Text.
	Quoted

	// LBrace represents '{'.
	LBrace
	// RBrace represents '}'.
	RBrace
	// LParen represents '('.
	LParen
	// RParen represents ')'.
	RParen
	// Comma represents ','.
	Comma
	// Equals represents '='.
	Equals
	// Concat represents the '#' concatenation operator.
	Concat

	// Comment represents inter-entry text the grammar ignores.
	Comment
	// Text represents a raw run inside a brace-delimited value. The parser
	// only consumes its span; the bytes stay verbatim in the source.
	Text
)

var kindNames = [...]string{
	Invalid: "Invalid",
	EOF:     "EOF",
	At:      "At",
	Ident:   "Ident",
	Number:  "Number",
	Quoted:  "Quoted",
	LBrace:  "LBrace",
	RBrace:  "RBrace",
	LParen:  "LParen",
	RParen:  "RParen",
	Comma:   "Comma",
	Equals:  "Equals",
	Concat:  "Concat",
	Comment: "Comment",
	Text:    "Text",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}
