package ps

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"

	"github.com/nickyhof/SchemaSpec/core"
)

const (
	databaseSuffix = ".database"
	tableSuffix    = ".table"
)

func databasePath(database string) string {
	return database + databaseSuffix
}

func tablePath(database, table string) string {
	return path.Join(database, table+tableSuffix)
}

// SaveSnapshot records server as a new commit. When the resulting tree is
// identical to HEAD no commit is made and the HEAD transaction is returned
// with Unchanged set.
func (p *Persistence) SaveSnapshot(server *core.ServerSchema, identity core.Identity, message string) (Transaction, error) {
	if err := p.ensureInitialized(); err != nil {
		return Transaction{}, err
	}
	if server == nil {
		server = core.NewServerSchema()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var changes []TreeChange
	for _, dbName := range server.DatabaseNames() {
		database := server.Databases[dbName]

		header, err := json.Marshal(database.Header())
		if err != nil {
			return Transaction{}, fmt.Errorf("failed to marshal database %s: %w", dbName, err)
		}
		blob, err := p.createBlob(header)
		if err != nil {
			return Transaction{}, err
		}
		changes = append(changes, TreeChange{Path: databasePath(dbName), BlobHash: blob})

		for _, tableName := range database.TableNames() {
			data, err := json.Marshal(database.Tables[tableName])
			if err != nil {
				return Transaction{}, fmt.Errorf("failed to marshal table %s.%s: %w", dbName, tableName, err)
			}
			blob, err := p.createBlob(data)
			if err != nil {
				return Transaction{}, err
			}
			changes = append(changes, TreeChange{Path: tablePath(dbName, tableName), BlobHash: blob})
		}
	}

	treeHash, err := p.buildTree(changes)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to build snapshot tree: %w", err)
	}

	head, err := p.headCommit()
	if err != nil {
		return Transaction{}, err
	}
	if head != nil && head.TreeHash == treeHash {
		txn := transactionFromCommit(head)
		txn.Unchanged = true
		return txn, nil
	}

	if message == "" {
		message = fmt.Sprintf("Snapshot of %d databases", len(server.Databases))
	}

	return p.createCommit(treeHash, identity, message)
}

// resolveCommit maps a transaction to its commit; an empty id means HEAD.
func (p *Persistence) resolveCommit(txn Transaction) (*object.Commit, error) {
	if txn.Id == "" {
		head, err := p.headCommit()
		if err != nil {
			return nil, err
		}
		if head == nil {
			return nil, ErrNoSnapshot
		}
		return head, nil
	}

	hash, err := p.repo.ResolveRevision(plumbing.Revision(txn.Id))
	if err != nil {
		return nil, fmt.Errorf("transaction %s not found: %w", txn.Id, err)
	}

	commit, err := p.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("transaction %s not found: %w", txn.Id, err)
	}
	return commit, nil
}

// ResolveTransaction accepts a commit hash, tag, or revision expression
// such as HEAD~1.
func (p *Persistence) ResolveTransaction(ref string) (Transaction, error) {
	if err := p.ensureInitialized(); err != nil {
		return Transaction{}, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	commit, err := p.resolveCommit(Transaction{Id: ref})
	if err != nil {
		return Transaction{}, err
	}
	return transactionFromCommit(commit), nil
}

func (p *Persistence) treeAt(txn Transaction) (*object.Tree, error) {
	commit, err := p.resolveCommit(txn)
	if err != nil {
		return nil, err
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}
	return tree, nil
}

// LoadSnapshot reads the full server schema recorded by txn.
func (p *Persistence) LoadSnapshot(txn Transaction) (*core.ServerSchema, error) {
	if err := p.ensureInitialized(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	tree, err := p.treeAt(txn)
	if err != nil {
		return nil, err
	}

	server := core.NewServerSchema()
	for _, dbName := range treeEntryNames(tree, "", databaseSuffix) {
		database, err := readDatabase(tree, dbName)
		if err != nil {
			return nil, err
		}

		for _, tableName := range treeEntryNames(tree, dbName, tableSuffix) {
			table, err := readTable(tree, dbName, tableName)
			if err != nil {
				return nil, err
			}
			database.AddTable(table)
		}

		server.AddDatabase(database)
	}

	return server, nil
}

func readDatabase(tree *object.Tree, name string) (*core.DatabaseSchema, error) {
	data, err := readTreeFile(tree, databasePath(name))
	if err != nil {
		return nil, fmt.Errorf("database %s: %w", name, err)
	}

	database := core.NewDatabaseSchema(name)
	if err := json.Unmarshal(data, database); err != nil {
		return nil, fmt.Errorf("failed to unmarshal database %s: %w", name, err)
	}
	if database.Tables == nil {
		database.Tables = make(map[string]*core.TableSchema)
	}
	return database, nil
}

func readTable(tree *object.Tree, database, name string) (*core.TableSchema, error) {
	data, err := readTreeFile(tree, tablePath(database, name))
	if err != nil {
		return nil, fmt.Errorf("table %s.%s: %w", database, name, err)
	}

	var table core.TableSchema
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal table %s.%s: %w", database, name, err)
	}
	return &table, nil
}

// ListDatabases returns the database names in the HEAD snapshot.
func (p *Persistence) ListDatabases() []string {
	if !p.IsInitialized() {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	tree, err := p.treeAt(Transaction{})
	if err != nil {
		return nil
	}
	return treeEntryNames(tree, "", databaseSuffix)
}

// ListTables returns the table names of database in the HEAD snapshot.
func (p *Persistence) ListTables(database string) []string {
	if !p.IsInitialized() {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	tree, err := p.treeAt(Transaction{})
	if err != nil {
		return nil
	}
	return treeEntryNames(tree, database, tableSuffix)
}

// GetTable reads one table from the HEAD snapshot.
func (p *Persistence) GetTable(database, table string) (*core.TableSchema, error) {
	if err := p.ensureInitialized(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	tree, err := p.treeAt(Transaction{})
	if err != nil {
		return nil, err
	}
	return readTable(tree, database, table)
}
