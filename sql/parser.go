package sql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownStatement = errors.New("unknown statement type")

type StatementType int

const (
	BuildStatementType StatementType = iota
	ShowDatabasesStatementType
	ShowTablesStatementType
	ShowHistoryStatementType
	ShowTagsStatementType
	ShowRemotesStatementType
	DescribeStatementType
	CompareStatementType
	DiffStatementType
	TagStatementType
	ExportStatementType
	AddRemoteStatementType
	DropRemoteStatementType
	PushStatementType
	PullStatementType
	FetchStatementType
)

type Statement interface {
	Type() StatementType
}

type BuildStatement struct{}

type ShowDatabasesStatement struct{}

type ShowTablesStatement struct {
	Database string
}

type ShowHistoryStatement struct {
	Limit int
}

type ShowTagsStatement struct{}

type ShowRemotesStatement struct{}

type DescribeStatement struct {
	Database string
	Table    string
}

// CompareStatement compares the built schema with the live database, or
// with a JSON schema dump when Source is set.
type CompareStatement struct {
	Source string
}

// DiffStatement compares two snapshots. An empty To means HEAD.
type DiffStatement struct {
	From string
	To   string
}

type TagStatement struct {
	Name string
	At   string
}

type ExportStatement struct {
	URL string
}

// AuthConfig represents authentication configuration for remote operations
type AuthConfig struct {
	Token      string // Token-based authentication
	SSHKeyPath string // Path to SSH private key
	Passphrase string // Passphrase for SSH key
	Username   string // Username for basic auth
	Password   string // Password for basic auth
}

type AddRemoteStatement struct {
	Name string
	URL  string
}

type DropRemoteStatement struct {
	Name string
}

type PushStatement struct {
	Remote string
	Branch string
	Auth   *AuthConfig
}

type PullStatement struct {
	Remote string
	Branch string
	Auth   *AuthConfig
}

type FetchStatement struct {
	Remote string
	Auth   *AuthConfig
}

func (s BuildStatement) Type() StatementType         { return BuildStatementType }
func (s ShowDatabasesStatement) Type() StatementType { return ShowDatabasesStatementType }
func (s ShowTablesStatement) Type() StatementType    { return ShowTablesStatementType }
func (s ShowHistoryStatement) Type() StatementType   { return ShowHistoryStatementType }
func (s ShowTagsStatement) Type() StatementType      { return ShowTagsStatementType }
func (s ShowRemotesStatement) Type() StatementType   { return ShowRemotesStatementType }
func (s DescribeStatement) Type() StatementType      { return DescribeStatementType }
func (s CompareStatement) Type() StatementType       { return CompareStatementType }
func (s DiffStatement) Type() StatementType          { return DiffStatementType }
func (s TagStatement) Type() StatementType           { return TagStatementType }
func (s ExportStatement) Type() StatementType        { return ExportStatementType }
func (s AddRemoteStatement) Type() StatementType     { return AddRemoteStatementType }
func (s DropRemoteStatement) Type() StatementType    { return DropRemoteStatementType }
func (s PushStatement) Type() StatementType          { return PushStatementType }
func (s PullStatement) Type() StatementType          { return PullStatementType }
func (s FetchStatement) Type() StatementType         { return FetchStatementType }

type Parser struct {
	lexer *Lexer
}

func NewParser(input string) *Parser {
	lexer := NewLexer(input)
	return &Parser{lexer: lexer}
}

// Parse reads exactly one statement; anything after it is an error.
func (parser *Parser) Parse() (Statement, error) {
	statement, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}

	if token := parser.lexer.NextToken(); token.Type != EOF {
		return nil, fmt.Errorf("unexpected %s after statement", token)
	}
	return statement, nil
}

func (parser *Parser) parseStatement() (Statement, error) {
	token := parser.lexer.NextToken()
	switch token.Type {
	case Build:
		parser.optional(Schema)
		return BuildStatement{}, nil
	case Show:
		return ParseShow(parser)
	case Describe:
		return ParseDescribe(parser)
	case Compare:
		return ParseCompare(parser)
	case Diff:
		return ParseDiff(parser)
	case Tag:
		return ParseTag(parser)
	case Export:
		return ParseExport(parser)
	case Add:
		if token := parser.lexer.NextToken(); token.Type != Remote {
			return nil, errors.New("expected REMOTE after ADD")
		}
		return ParseAddRemote(parser)
	case Drop:
		if token := parser.lexer.NextToken(); token.Type != Remote {
			return nil, errors.New("expected REMOTE after DROP")
		}
		return ParseDropRemote(parser)
	case Push:
		return ParsePush(parser)
	case Pull:
		return ParsePull(parser)
	case Fetch:
		return ParseFetch(parser)
	case EOF:
		return nil, errors.New("empty statement")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatement, token.Value)
	}
}

// optional consumes the next token if it has the given type.
func (parser *Parser) optional(tokenType TokenType) bool {
	if parser.lexer.PeekToken().Type == tokenType {
		parser.lexer.NextToken()
		return true
	}
	return false
}

func (parser *Parser) name(context string) (string, error) {
	token := parser.lexer.NextToken()
	if token.Type != Identifier && token.Type != String {
		return "", fmt.Errorf("expected %s", context)
	}
	return token.Value, nil
}

func (parser *Parser) literal(context string) (string, error) {
	token := parser.lexer.NextToken()
	if token.Type != String {
		return "", fmt.Errorf("expected quoted %s", context)
	}
	return token.Value, nil
}

func ParseShow(parser *Parser) (Statement, error) {
	token := parser.lexer.NextToken()
	switch token.Type {
	case Databases:
		return ShowDatabasesStatement{}, nil
	case Tables:
		token = parser.lexer.NextToken()
		if token.Type != In {
			return nil, errors.New("expected IN after TABLES")
		}
		database, err := parser.name("database name after IN")
		if err != nil {
			return nil, err
		}
		return ShowTablesStatement{Database: database}, nil
	case History:
		statement := ShowHistoryStatement{}
		if parser.optional(Limit) {
			token = parser.lexer.NextToken()
			if token.Type != Int {
				return nil, errors.New("expected number after LIMIT")
			}
			limit, err := strconv.Atoi(token.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid LIMIT: %w", err)
			}
			statement.Limit = limit
		}
		return statement, nil
	case Tags:
		return ShowTagsStatement{}, nil
	case Remotes:
		return ShowRemotesStatement{}, nil
	default:
		return nil, errors.New("expected DATABASES, TABLES, HISTORY, TAGS or REMOTES after SHOW")
	}
}

func ParseDescribe(parser *Parser) (Statement, error) {
	token := parser.lexer.NextToken()
	if token.Type != Identifier {
		return nil, errors.New("expected table name after DESCRIBE")
	}

	database, table, ok := strings.Cut(token.Value, ".")
	if !ok || database == "" || table == "" {
		return nil, errors.New("expected database.table after DESCRIBE")
	}
	return DescribeStatement{Database: database, Table: table}, nil
}

// ParseCompare parses COMPARE [SCHEMA] [WITH 'url']
func ParseCompare(parser *Parser) (Statement, error) {
	parser.optional(Schema)

	statement := CompareStatement{}
	if parser.optional(With) {
		source, err := parser.literal("URL after WITH")
		if err != nil {
			return nil, err
		}
		statement.Source = source
	}
	return statement, nil
}

// ParseDiff parses DIFF 'from' ['to']
func ParseDiff(parser *Parser) (Statement, error) {
	from, err := parser.literal("transaction after DIFF")
	if err != nil {
		return nil, err
	}

	statement := DiffStatement{From: from}
	if parser.lexer.PeekToken().Type == String {
		statement.To = parser.lexer.NextToken().Value
	}
	return statement, nil
}

// ParseTag parses TAG name [AT 'transaction']
func ParseTag(parser *Parser) (Statement, error) {
	name, err := parser.name("tag name after TAG")
	if err != nil {
		return nil, err
	}

	statement := TagStatement{Name: name}
	if parser.optional(At) {
		at, err := parser.literal("transaction after AT")
		if err != nil {
			return nil, err
		}
		statement.At = at
	}
	return statement, nil
}

// ParseExport parses EXPORT TO 'url'
func ParseExport(parser *Parser) (Statement, error) {
	if token := parser.lexer.NextToken(); token.Type != To {
		return nil, errors.New("expected TO after EXPORT")
	}
	url, err := parser.literal("URL after TO")
	if err != nil {
		return nil, err
	}
	return ExportStatement{URL: url}, nil
}

func ParseAddRemote(parser *Parser) (Statement, error) {
	name, err := parser.name("remote name after REMOTE")
	if err != nil {
		return nil, err
	}

	url, err := parser.name("URL after remote name")
	if err != nil {
		return nil, err
	}

	return AddRemoteStatement{Name: name, URL: url}, nil
}

// ParseDropRemote parses DROP REMOTE <name> statements
func ParseDropRemote(parser *Parser) (Statement, error) {
	name, err := parser.name("remote name after REMOTE")
	if err != nil {
		return nil, err
	}
	return DropRemoteStatement{Name: name}, nil
}

// remoteClauses holds the optional clauses shared by PUSH, PULL and FETCH.
type remoteClauses struct {
	remote string
	branch string
	auth   *AuthConfig
}

// parseRemoteClauses reads [<direction> remote] [BRANCH name] [WITH auth]
// in any order until the end of the statement.
func parseRemoteClauses(parser *Parser, direction TokenType, allowBranch bool) (remoteClauses, error) {
	clauses := remoteClauses{remote: "origin"}

	for {
		token := parser.lexer.PeekToken()
		switch {
		case token.Type == EOF:
			return clauses, nil
		case token.Type == direction:
			parser.lexer.NextToken()
			remote, err := parser.name("remote name")
			if err != nil {
				return clauses, err
			}
			clauses.remote = remote
		case token.Type == Branch && allowBranch:
			parser.lexer.NextToken()
			branch, err := parser.name("branch name after BRANCH")
			if err != nil {
				return clauses, err
			}
			clauses.branch = branch
		case token.Type == With:
			parser.lexer.NextToken()
			auth, err := parseAuth(parser)
			if err != nil {
				return clauses, err
			}
			clauses.auth = auth
		default:
			return clauses, fmt.Errorf("unexpected %s", token)
		}
	}
}

// ParsePush parses PUSH [TO <remote>] [BRANCH <branch>] [WITH TOKEN 'xxx' | WITH SSH KEY 'path' [PASSPHRASE 'xxx']]
func ParsePush(parser *Parser) (Statement, error) {
	clauses, err := parseRemoteClauses(parser, To, true)
	if err != nil {
		return nil, err
	}
	return PushStatement{Remote: clauses.remote, Branch: clauses.branch, Auth: clauses.auth}, nil
}

// ParsePull parses PULL [FROM <remote>] [BRANCH <branch>] [WITH ...]
func ParsePull(parser *Parser) (Statement, error) {
	clauses, err := parseRemoteClauses(parser, From, true)
	if err != nil {
		return nil, err
	}
	return PullStatement{Remote: clauses.remote, Branch: clauses.branch, Auth: clauses.auth}, nil
}

// ParseFetch parses FETCH [FROM <remote>] [WITH ...]
func ParseFetch(parser *Parser) (Statement, error) {
	clauses, err := parseRemoteClauses(parser, From, false)
	if err != nil {
		return nil, err
	}
	return FetchStatement{Remote: clauses.remote, Auth: clauses.auth}, nil
}

func parseAuth(parser *Parser) (*AuthConfig, error) {
	token := parser.lexer.NextToken()
	auth := &AuthConfig{}

	switch token.Type {
	case TokenKeyword:
		// TOKEN 'value'
		token = parser.lexer.NextToken()
		if token.Type != String {
			return nil, errors.New("expected string value after TOKEN")
		}
		auth.Token = token.Value
		return auth, nil

	case Ssh:
		// SSH KEY 'path' [PASSPHRASE 'xxx']
		token = parser.lexer.NextToken()
		if token.Type != Key {
			return nil, errors.New("expected KEY after SSH")
		}
		token = parser.lexer.NextToken()
		if token.Type != String {
			return nil, errors.New("expected path string after SSH KEY")
		}
		auth.SSHKeyPath = token.Value

		if parser.optional(Passphrase) {
			token = parser.lexer.NextToken()
			if token.Type != String {
				return nil, errors.New("expected string value after PASSPHRASE")
			}
			auth.Passphrase = token.Value
		}
		return auth, nil

	case Identifier:
		// USER 'username' PASSWORD 'password'
		if toUpper(token.Value) == "USER" {
			token = parser.lexer.NextToken()
			if token.Type != String {
				return nil, errors.New("expected string value after USER")
			}
			auth.Username = token.Value

			token = parser.lexer.NextToken()
			if token.Type != Identifier || toUpper(token.Value) != "PASSWORD" {
				return nil, errors.New("expected PASSWORD after username")
			}
			token = parser.lexer.NextToken()
			if token.Type != String {
				return nil, errors.New("expected string value after PASSWORD")
			}
			auth.Password = token.Value
			return auth, nil
		}
		return nil, errors.New("expected TOKEN, SSH, or USER after WITH")

	default:
		return nil, errors.New("expected TOKEN, SSH, or USER after WITH")
	}
}

func parse(input string) (Statement, error) {
	parser := NewParser(input)

	return parser.Parse()
}
