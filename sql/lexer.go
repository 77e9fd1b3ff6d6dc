package sql

type Token struct {
	Type  TokenType
	Value string
}

type TokenType int

const (
	Identifier TokenType = iota
	String
	Int
	Float
	Build
	Schema
	Show
	Databases
	Tables
	In
	History
	Limit
	Tags
	Remotes
	Describe
	Compare
	With
	Diff
	Tag
	At
	Export
	To
	Add
	Remote
	Drop
	Push
	Pull
	Fetch
	From
	Branch
	TokenKeyword
	Ssh
	Key
	Passphrase
	EOF
	Unknown
)

func (token Token) String() string {
	switch token.Type {
	case Identifier:
		return "Identifier(" + token.Value + ")"
	case String:
		return "String(" + token.Value + ")"
	case Int:
		return "Int(" + token.Value + ")"
	case Float:
		return "Float(" + token.Value + ")"
	case EOF:
		return "EOF"
	case Unknown:
		return "Unknown(" + token.Value + ")"
	default:
		return "Keyword(" + toUpper(token.Value) + ")"
	}
}

type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
}

func NewLexer(input string) *Lexer {
	lexer := &Lexer{input: input}
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) readChar() {
	if lexer.readPosition >= len(lexer.input) {
		lexer.ch = 0
	} else {
		lexer.ch = lexer.input[lexer.readPosition]
	}
	lexer.position = lexer.readPosition
	lexer.readPosition++
}

func (lexer *Lexer) NextToken() Token {
	var token Token

	lexer.skipWhitespace()

	switch lexer.ch {
	case 0, ';':
		// a trailing semicolon ends the statement
		token = Token{Type: EOF, Value: ""}
	case '\'':
		token = Token{Type: String, Value: lexer.readString()}
	default:
		if isDigit(lexer.ch) {
			num := lexer.readNumber()
			if lexer.ch == '.' {
				lexer.readChar() // consume '.'
				decimal := lexer.readNumber()
				return Token{Type: Float, Value: num + "." + decimal}
			}
			return Token{Type: Int, Value: num}
		} else if isAlphaNumeric(lexer.ch) {
			literal := lexer.readIdentifier()
			return Token{Type: lookupIdentifier(literal), Value: literal}
		}
		token = Token{Type: Unknown, Value: string(lexer.ch)}
	}

	lexer.readChar()
	return token
}

func (lexer *Lexer) PeekToken() Token {
	savedPosition := lexer.position
	savedReadPosition := lexer.readPosition
	savedCh := lexer.ch

	token := lexer.NextToken()

	lexer.position = savedPosition
	lexer.readPosition = savedReadPosition
	lexer.ch = savedCh

	return token
}

func (lexer *Lexer) skipWhitespace() {
	for lexer.ch == ' ' || lexer.ch == '\t' || lexer.ch == '\n' || lexer.ch == '\r' {
		lexer.readChar()
	}
}

func (lexer *Lexer) readIdentifier() string {
	position := lexer.position
	for isAlphaNumeric(lexer.ch) {
		lexer.readChar()
	}
	return lexer.input[position:lexer.position]
}

// readString reads a single-quoted literal; '' is an escaped quote.
func (lexer *Lexer) readString() string {
	var out []byte
	for {
		lexer.readChar()
		if lexer.ch == 0 {
			return string(out)
		}
		if lexer.ch == '\'' {
			if lexer.peekChar() != '\'' {
				return string(out)
			}
			lexer.readChar()
		}
		out = append(out, lexer.ch)
	}
}

func (lexer *Lexer) peekChar() byte {
	if lexer.readPosition >= len(lexer.input) {
		return 0
	}
	return lexer.input[lexer.readPosition]
}

func (lexer *Lexer) readNumber() string {
	position := lexer.position
	for isDigit(lexer.ch) {
		lexer.readChar()
	}
	return lexer.input[position:lexer.position]
}

func isAlphaNumeric(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_' || ch == '.' || ch == '-' || ch == '/' || isDigit(ch)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func lookupIdentifier(id string) TokenType {
	switch toUpper(id) {
	case "BUILD":
		return Build
	case "SCHEMA":
		return Schema
	case "SHOW":
		return Show
	case "DATABASES":
		return Databases
	case "TABLES":
		return Tables
	case "IN":
		return In
	case "HISTORY":
		return History
	case "LIMIT":
		return Limit
	case "TAGS":
		return Tags
	case "REMOTES":
		return Remotes
	case "DESCRIBE":
		return Describe
	case "COMPARE":
		return Compare
	case "WITH":
		return With
	case "DIFF":
		return Diff
	case "TAG":
		return Tag
	case "AT":
		return At
	case "EXPORT":
		return Export
	case "TO":
		return To
	case "ADD":
		return Add
	case "REMOTE":
		return Remote
	case "DROP":
		return Drop
	case "PUSH":
		return Push
	case "PULL":
		return Pull
	case "FETCH":
		return Fetch
	case "FROM":
		return From
	case "BRANCH":
		return Branch
	case "TOKEN":
		return TokenKeyword
	case "SSH":
		return Ssh
	case "KEY":
		return Key
	case "PASSPHRASE":
		return Passphrase
	default:
		return Identifier
	}
}

// toUpper converts a string to uppercase without allocating for ASCII strings
func toUpper(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			b := make([]byte, len(s))
			for j := 0; j < len(s); j++ {
				if s[j] >= 'a' && s[j] <= 'z' {
					b[j] = s[j] - 32
				} else {
					b[j] = s[j]
				}
			}
			return string(b)
		}
	}
	return s
}

func tokenize(input string) []Token {
	lexer := NewLexer(input)

	var tokens []Token

	for {
		token := lexer.NextToken()
		if token.Type == EOF {
			return append(tokens, token)
		}
		tokens = append(tokens, token)
	}
}
