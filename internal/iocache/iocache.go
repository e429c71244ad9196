// Package iocache provides the durable storage layer: the commit cache
// that avoids repeated forge or subprocess round-trips, and the run
// history store.
package iocache

import (
	"sync"

	"github.com/forgeworks/forgestat/internal/contract"
)

// CacheStoreManager manages the store instances for one process.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	commits      contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetCommitStore returns the commit CacheStore.
func (mgr *CacheStoreManager) GetCommitStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.commits
}

// GetHistoryStore returns the run HistoryStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
