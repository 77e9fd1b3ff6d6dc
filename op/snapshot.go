package op

import (
	"github.com/nickyhof/SchemaSpec/compare"
	"github.com/nickyhof/SchemaSpec/core"
	"github.com/nickyhof/SchemaSpec/ps"
)

type SnapshotOp struct {
	Transaction ps.Transaction
	Server      *core.ServerSchema
	Persistence *ps.Persistence
}

func SaveSnapshot(server *core.ServerSchema, persistence *ps.Persistence, identity core.Identity) (*ps.Transaction, *SnapshotOp, error) {
	return SaveSnapshotWithMessage(server, persistence, identity, "")
}

func SaveSnapshotWithMessage(server *core.ServerSchema, persistence *ps.Persistence, identity core.Identity, message string) (*ps.Transaction, *SnapshotOp, error) {
	txn, err := persistence.SaveSnapshot(server, identity, message)
	if err != nil {
		return nil, nil, err
	}

	return &txn, &SnapshotOp{
		Transaction: txn,
		Server:      server,
		Persistence: persistence,
	}, nil
}

// GetSnapshot loads the snapshot recorded by txn; the zero transaction
// loads HEAD.
func GetSnapshot(persistence *ps.Persistence, txn ps.Transaction) (*SnapshotOp, error) {
	server, err := persistence.LoadSnapshot(txn)
	if err != nil {
		return nil, err
	}

	if txn.Id == "" {
		txn = persistence.LatestTransaction()
	}

	return &SnapshotOp{
		Transaction: txn,
		Server:      server,
		Persistence: persistence,
	}, nil
}

func (op *SnapshotOp) DatabaseNames() []string {
	return op.Server.DatabaseNames()
}

// TableNames lists the tables of database, or nil when it is not in the
// snapshot.
func (op *SnapshotOp) TableNames(database string) []string {
	d := op.Server.Database(database)
	if d == nil {
		return nil
	}
	return d.TableNames()
}

func (op *SnapshotOp) Table(database, table string) (*core.TableSchema, bool) {
	t := op.Server.Database(database).Table(table)
	return t, t != nil
}

func (op *SnapshotOp) Counts() (databases, tables, columns int) {
	return op.Server.Counts()
}

// Diff reports how other differs from this snapshot, treating this one as
// the expected schema.
func (op *SnapshotOp) Diff(other *SnapshotOp) compare.Report {
	var actual *core.ServerSchema
	if other != nil {
		actual = other.Server
	}
	return compare.Compare(op.Server, actual, compare.Options{})
}
