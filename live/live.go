package live

import (
	"context"
	"strings"

	"github.com/nickyhof/SchemaSpec/core"
)

type Introspector interface {
	Introspect(ctx context.Context) (*core.ServerSchema, error)
}

// FilterNamespace returns the databases of server named "<namespace>_...".
// An empty namespace keeps everything.
func FilterNamespace(server *core.ServerSchema, namespace string) *core.ServerSchema {
	if namespace == "" || server == nil {
		return server
	}

	prefix := namespace + "_"
	filtered := core.NewServerSchema()
	for name, database := range server.Databases {
		if strings.HasPrefix(name, prefix) {
			filtered.AddDatabase(database)
		}
	}
	return filtered
}

type namespaced struct {
	inner     Introspector
	namespace string
}

// WithNamespace wraps inner so only databases in namespace are reported.
func WithNamespace(inner Introspector, namespace string) Introspector {
	return namespaced{inner: inner, namespace: namespace}
}

func (n namespaced) Introspect(ctx context.Context) (*core.ServerSchema, error) {
	server, err := n.inner.Introspect(ctx)
	if err != nil {
		return nil, err
	}
	return FilterNamespace(server, n.namespace), nil
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
