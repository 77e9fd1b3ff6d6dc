package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nickyhof/SchemaSpec/compare"
	"github.com/nickyhof/SchemaSpec/core"
	"github.com/nickyhof/SchemaSpec/live"
	"github.com/nickyhof/SchemaSpec/op"
	"github.com/nickyhof/SchemaSpec/ps"
	"github.com/nickyhof/SchemaSpec/spec"
	"github.com/nickyhof/SchemaSpec/sql"
)

var (
	ErrNoBuilders     = errors.New("no schema builders configured")
	ErrNoLiveDatabase = errors.New("no live database configured")
)

// Options wires the engine to its schema sources.
type Options struct {
	Spec   spec.Options
	Loader spec.Loader

	// Builders run on BUILD and COMPARE. When empty, a Loader that
	// provides its own builders (such as *spec.Registry) is asked for them.
	Builders []spec.Builder

	Live   live.Introspector
	S3     S3Config
	Logger *zap.Logger
}

type Engine struct {
	*ps.Persistence
	Identity core.Identity

	options Options
	logger  *zap.Logger
}

func NewEngine(persistence *ps.Persistence, identity core.Identity, options Options) *Engine {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.Spec == (spec.Options{}) {
		options.Spec = spec.DefaultOptions()
	}

	return &Engine{
		Persistence: persistence,
		Identity:    identity,
		options:     options,
		logger:      logger,
	}
}

// SetLive replaces the live database used by COMPARE.
func (engine *Engine) SetLive(introspector live.Introspector) {
	engine.options.Live = introspector
}

func (engine *Engine) Execute(query string) (Result, error) {
	return engine.ExecuteContext(context.Background(), query)
}

func (engine *Engine) ExecuteContext(ctx context.Context, query string) (Result, error) {
	parser := sql.NewParser(query)
	statement, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	engine.logger.Debug("executing statement", zap.String("query", query))

	switch statement.Type() {
	case sql.BuildStatementType:
		return engine.executeBuildStatement()
	case sql.ShowDatabasesStatementType:
		return engine.executeShowDatabasesStatement()
	case sql.ShowTablesStatementType:
		return engine.executeShowTablesStatement(statement.(sql.ShowTablesStatement))
	case sql.ShowHistoryStatementType:
		return engine.executeShowHistoryStatement(statement.(sql.ShowHistoryStatement))
	case sql.ShowTagsStatementType:
		return engine.executeShowTagsStatement()
	case sql.ShowRemotesStatementType:
		return engine.executeShowRemotesStatement()
	case sql.DescribeStatementType:
		return engine.executeDescribeStatement(statement.(sql.DescribeStatement))
	case sql.CompareStatementType:
		return engine.executeCompareStatement(ctx, statement.(sql.CompareStatement))
	case sql.DiffStatementType:
		return engine.executeDiffStatement(statement.(sql.DiffStatement))
	case sql.TagStatementType:
		return engine.executeTagStatement(statement.(sql.TagStatement))
	case sql.ExportStatementType:
		return engine.executeExportStatement(ctx, statement.(sql.ExportStatement))
	case sql.AddRemoteStatementType:
		return engine.executeAddRemoteStatement(statement.(sql.AddRemoteStatement))
	case sql.DropRemoteStatementType:
		return engine.executeDropRemoteStatement(statement.(sql.DropRemoteStatement))
	case sql.PushStatementType:
		return engine.executePushStatement(statement.(sql.PushStatement))
	case sql.PullStatementType:
		return engine.executePullStatement(statement.(sql.PullStatement))
	case sql.FetchStatementType:
		return engine.executeFetchStatement(statement.(sql.FetchStatement))
	default:
		return nil, fmt.Errorf("unsupported statement type: %v", statement.Type())
	}
}

func (engine *Engine) builders() []spec.Builder {
	if len(engine.options.Builders) > 0 {
		return engine.options.Builders
	}
	if provider, ok := engine.options.Loader.(interface{ Builders() []spec.Builder }); ok {
		return provider.Builders()
	}
	return nil
}

// BuildSchema runs the configured builders against a fresh server schema.
func (engine *Engine) BuildSchema() (*core.ServerSchema, error) {
	builders := engine.builders()
	if len(builders) == 0 {
		return nil, ErrNoBuilders
	}
	return spec.Build(engine.options.Spec, engine.options.Loader, engine.logger, builders...)
}

func (engine *Engine) executeBuildStatement() (CommitResult, error) {
	startTime := time.Now()

	server, err := engine.BuildSchema()
	if err != nil {
		return CommitResult{}, err
	}

	txn, _, err := op.SaveSnapshot(server, engine.Persistence, engine.Identity)
	if err != nil {
		return CommitResult{}, err
	}

	databases, tables, columns := server.Counts()
	if txn.Unchanged {
		engine.logger.Info("schema unchanged", zap.String("transaction", txn.Id))
	} else {
		engine.logger.Info("schema snapshot saved",
			zap.String("transaction", txn.Id),
			zap.Int("databases", databases),
			zap.Int("tables", tables),
			zap.Int("columns", columns))
	}

	return CommitResult{
		Transaction:      *txn,
		Unchanged:        txn.Unchanged,
		DatabasesWritten: databases,
		TablesWritten:    tables,
		ColumnsWritten:   columns,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     columns,
	}, nil
}

func (engine *Engine) executeShowDatabasesStatement() (QueryResult, error) {
	startTime := time.Now()

	databases := engine.Persistence.ListDatabases()

	data := make([][]string, len(databases))
	for i, db := range databases {
		data[i] = []string{db}
	}

	return QueryResult{
		Transaction:      engine.Persistence.LatestTransaction(),
		Columns:          []string{"name"},
		Data:             data,
		RecordsRead:      len(databases),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     len(databases),
	}, nil
}

func (engine *Engine) executeShowTablesStatement(statement sql.ShowTablesStatement) (QueryResult, error) {
	startTime := time.Now()

	tables := engine.Persistence.ListTables(statement.Database)

	data := make([][]string, len(tables))
	for i, table := range tables {
		data[i] = []string{table}
	}

	return QueryResult{
		Transaction:      engine.Persistence.LatestTransaction(),
		Columns:          []string{"name"},
		Data:             data,
		RecordsRead:      len(tables),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     len(tables),
	}, nil
}

func (engine *Engine) executeShowHistoryStatement(statement sql.ShowHistoryStatement) (QueryResult, error) {
	startTime := time.Now()

	history, err := engine.Persistence.History(statement.Limit)
	if err != nil {
		return QueryResult{}, err
	}

	data := make([][]string, len(history))
	for i, txn := range history {
		data[i] = []string{
			txn.ShortId(),
			txn.When.Format(time.RFC3339),
			txn.Author,
			strings.TrimSpace(txn.Message),
		}
	}

	return QueryResult{
		Columns:          []string{"transaction", "when", "author", "message"},
		Data:             data,
		RecordsRead:      len(history),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     len(history),
	}, nil
}

func (engine *Engine) executeShowTagsStatement() (QueryResult, error) {
	startTime := time.Now()

	tags, err := engine.Persistence.ListTags()
	if err != nil {
		return QueryResult{}, err
	}

	data := make([][]string, 0, len(tags))
	for _, tag := range tags {
		txn, err := engine.Persistence.ResolveTag(tag)
		if err != nil {
			return QueryResult{}, err
		}
		data = append(data, []string{tag, txn.ShortId(), txn.When.Format(time.RFC3339)})
	}

	return QueryResult{
		Columns:          []string{"tag", "transaction", "when"},
		Data:             data,
		RecordsRead:      len(data),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     len(data),
	}, nil
}

func (engine *Engine) executeDescribeStatement(statement sql.DescribeStatement) (QueryResult, error) {
	startTime := time.Now()

	table, err := engine.Persistence.GetTable(statement.Database, statement.Table)
	if err != nil {
		return QueryResult{}, err
	}

	data := make([][]string, len(table.Columns))
	for i, column := range table.Columns {
		data[i] = []string{
			column.Name,
			string(column.DataType),
			column.ColumnType,
			column.CharacterSet,
			column.Collation,
		}
	}

	return QueryResult{
		Transaction:      engine.Persistence.LatestTransaction(),
		Columns:          []string{"Column", "Data Type", "Column Type", "Charset", "Collation"},
		Data:             data,
		RecordsRead:      len(data),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     1,
	}, nil
}

// Compare builds the expected schema and checks source against it; an
// empty source means the configured live database.
func (engine *Engine) Compare(ctx context.Context, source string) (compare.Report, error) {
	expected, err := engine.BuildSchema()
	if err != nil {
		return compare.Report{}, err
	}

	var actual *core.ServerSchema
	if source == "" {
		if engine.options.Live == nil {
			return compare.Report{}, ErrNoLiveDatabase
		}
		actual, err = engine.options.Live.Introspect(ctx)
	} else {
		actual, err = ReadSchema(ctx, source, &engine.options.S3)
	}
	if err != nil {
		return compare.Report{}, err
	}

	report := compare.Compare(expected, actual, compare.Options{Namespace: engine.options.Spec.Namespace})
	engine.logger.Info("schema compared",
		zap.String("source", sourceName(source)),
		zap.Int("errors", report.Count(compare.SeverityError)),
		zap.Int("warnings", report.Count(compare.SeverityWarning)))
	return report, nil
}

func sourceName(source string) string {
	if source == "" {
		return "live"
	}
	return source
}

func (engine *Engine) executeCompareStatement(ctx context.Context, statement sql.CompareStatement) (QueryResult, error) {
	startTime := time.Now()

	report, err := engine.Compare(ctx, statement.Source)
	if err != nil {
		return QueryResult{}, err
	}

	return reportResult(report, startTime), nil
}

func (engine *Engine) executeDiffStatement(statement sql.DiffStatement) (QueryResult, error) {
	startTime := time.Now()

	from, err := engine.Persistence.ResolveTransaction(statement.From)
	if err != nil {
		return QueryResult{}, err
	}
	to := ps.Transaction{}
	if statement.To != "" {
		to, err = engine.Persistence.ResolveTransaction(statement.To)
		if err != nil {
			return QueryResult{}, err
		}
	}

	fromOp, err := op.GetSnapshot(engine.Persistence, from)
	if err != nil {
		return QueryResult{}, err
	}
	toOp, err := op.GetSnapshot(engine.Persistence, to)
	if err != nil {
		return QueryResult{}, err
	}

	// The later snapshot is the expectation the earlier one is held to.
	return reportResult(toOp.Diff(fromOp), startTime), nil
}

func reportResult(report compare.Report, startTime time.Time) QueryResult {
	data := make([][]string, len(report.Issues))
	for i, issue := range report.Issues {
		data[i] = []string{
			issue.Severity.String(),
			string(issue.Kind),
			issue.Target(),
			issue.Expected,
			issue.Actual,
		}
	}

	return QueryResult{
		Columns:          []string{"severity", "kind", "target", "expected", "actual"},
		Data:             data,
		RecordsRead:      len(data),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     len(data),
	}
}

func (engine *Engine) executeTagStatement(statement sql.TagStatement) (QueryResult, error) {
	startTime := time.Now()

	var at *ps.Transaction
	if statement.At != "" {
		txn, err := engine.Persistence.ResolveTransaction(statement.At)
		if err != nil {
			return QueryResult{}, err
		}
		at = &txn
	}

	txn, err := engine.Persistence.Tag(statement.Name, at)
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{
		Transaction:      txn,
		Columns:          []string{"Status"},
		Data:             [][]string{{fmt.Sprintf("Tagged '%s' at %s", statement.Name, txn.ShortId())}},
		RecordsRead:      1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

func (engine *Engine) executeExportStatement(ctx context.Context, statement sql.ExportStatement) (QueryResult, error) {
	startTime := time.Now()

	txn := engine.Persistence.LatestTransaction()
	server, err := engine.Persistence.LoadSnapshot(ps.Transaction{})
	if err != nil {
		return QueryResult{}, err
	}

	if err := WriteSchema(ctx, statement.URL, server, &engine.options.S3); err != nil {
		return QueryResult{}, err
	}

	databases, tables, _ := server.Counts()
	return QueryResult{
		Transaction: txn,
		Columns:     []string{"Status"},
		Data: [][]string{{fmt.Sprintf("Exported %d database(s), %d table(s) to '%s'",
			databases, tables, statement.URL)}},
		RecordsRead:      1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     tables,
	}, nil
}

func (engine *Engine) executeAddRemoteStatement(statement sql.AddRemoteStatement) (QueryResult, error) {
	startTime := time.Now()

	err := engine.Persistence.AddRemote(statement.Name, statement.URL)
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{
		Columns:          []string{"Status"},
		Data:             [][]string{{fmt.Sprintf("Remote '%s' added", statement.Name)}},
		RecordsRead:      1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

func (engine *Engine) executeShowRemotesStatement() (QueryResult, error) {
	startTime := time.Now()

	remotes, err := engine.Persistence.ListRemotes()
	if err != nil {
		return QueryResult{}, err
	}

	data := make([][]string, len(remotes))
	for i, remote := range remotes {
		data[i] = []string{remote.Name, strings.Join(remote.URLs, ", ")}
	}

	return QueryResult{
		Columns:          []string{"Name", "URL"},
		Data:             data,
		RecordsRead:      len(remotes),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

func (engine *Engine) executeDropRemoteStatement(statement sql.DropRemoteStatement) (QueryResult, error) {
	startTime := time.Now()

	err := engine.Persistence.RemoveRemote(statement.Name)
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{
		Columns:          []string{"Status"},
		Data:             [][]string{{fmt.Sprintf("Remote '%s' removed", statement.Name)}},
		RecordsRead:      1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

func (engine *Engine) executePushStatement(statement sql.PushStatement) (QueryResult, error) {
	startTime := time.Now()

	auth := convertAuthConfig(statement.Auth)
	err := engine.Persistence.Push(statement.Remote, statement.Branch, auth)
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{
		Columns:          []string{"Status"},
		Data:             [][]string{{fmt.Sprintf("Pushed to '%s'", statement.Remote)}},
		RecordsRead:      1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

func (engine *Engine) executePullStatement(statement sql.PullStatement) (QueryResult, error) {
	startTime := time.Now()

	auth := convertAuthConfig(statement.Auth)
	err := engine.Persistence.Pull(statement.Remote, statement.Branch, auth)
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{
		Transaction:      engine.Persistence.LatestTransaction(),
		Columns:          []string{"Status"},
		Data:             [][]string{{fmt.Sprintf("Pulled from '%s'", statement.Remote)}},
		RecordsRead:      1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

func (engine *Engine) executeFetchStatement(statement sql.FetchStatement) (QueryResult, error) {
	startTime := time.Now()

	auth := convertAuthConfig(statement.Auth)
	err := engine.Persistence.Fetch(statement.Remote, auth)
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{
		Columns:          []string{"Status"},
		Data:             [][]string{{fmt.Sprintf("Fetched from '%s'", statement.Remote)}},
		RecordsRead:      1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
	}, nil
}

// convertAuthConfig converts sql.AuthConfig to ps.RemoteAuth
func convertAuthConfig(auth *sql.AuthConfig) *ps.RemoteAuth {
	if auth == nil {
		return nil
	}

	if auth.Token != "" {
		return &ps.RemoteAuth{
			Type:  ps.AuthTypeToken,
			Token: auth.Token,
		}
	}

	if auth.SSHKeyPath != "" {
		return &ps.RemoteAuth{
			Type:       ps.AuthTypeSSH,
			KeyPath:    auth.SSHKeyPath,
			Passphrase: auth.Passphrase,
		}
	}

	if auth.Username != "" {
		return &ps.RemoteAuth{
			Type:     ps.AuthTypeBasic,
			Username: auth.Username,
			Password: auth.Password,
		}
	}

	return nil
}

