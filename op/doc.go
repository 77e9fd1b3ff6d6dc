// Package op provides snapshot-level operations on top of the persistence
// layer.
//
// # SnapshotOp
//
//	txn, snap, err := op.SaveSnapshot(server, persistence, identity)
//	snap.DatabaseNames()
//	snap.TableNames("phabricator_phurl")
//	table, ok := snap.Table("phabricator_phurl", "phurl_url")
//
//	old, _ := op.GetSnapshot(persistence, earlier)
//	report := old.Diff(snap)
//
// # Architecture
//
//	Statement parser (sql/)
//	     ↓
//	Engine (db/)
//	     ↓
//	Operations (op/)     ← This package
//	     ↓
//	Persistence (ps/)
//	     ↓
//	Git Storage (go-git)
package op
