package store

import (
	"github.com/telebill-community/sql-to-jsonsql/lib/store/cachestore"
	"github.com/telebill-community/sql-to-jsonsql/lib/store/schemastore"
)

// Provider bundles the schema knowledge used during transpilation with the
// on-disk cache that persists it between runs.
type Provider struct {
	schemaStore *schemastore.SchemaStore
	cacheStore  *cachestore.CacheStore
}

func NewStoreProvider(schemaStore *schemastore.SchemaStore, cacheStore *cachestore.CacheStore) *Provider {
	return &Provider{
		schemaStore: schemaStore,
		cacheStore:  cacheStore,
	}
}

func (s *Provider) SchemaStore() *schemastore.SchemaStore {
	return s.schemaStore
}

func (s *Provider) CacheStore() *cachestore.CacheStore {
	return s.cacheStore
}
