// Package ps stores schema snapshots in a Git repository.
//
// Each snapshot is one commit whose tree holds a JSON header per database
// and a JSON document per table:
//
//	phabricator_phurl.database
//	phabricator_phurl/phurl_url.table
//
// Trees are written with the plumbing API so no worktree is involved and
// an unchanged schema produces no commit.
//
// # Memory Persistence
//
//	persistence, err := ps.NewMemoryPersistence()
//
// # File Persistence
//
//	persistence, err := ps.NewFilePersistence("/path/to/data", nil)
//
// # History
//
//	txn, _ := persistence.SaveSnapshot(server, identity, "")
//	persistence.Tag("v1", &txn)
//	old, _ := persistence.LoadSnapshot(txn)
package ps
