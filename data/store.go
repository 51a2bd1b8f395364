// Package data provides file-backed state for the relay.
// Each data file has explicit Load/Save methods.
package data

import "sync"

var (
	dataDir   = "."
	dataDirMu sync.RWMutex
)

// SetDataDir sets the directory for all data files.
func SetDataDir(dir string) {
	dataDirMu.Lock()
	dataDir = dir
	dataDirMu.Unlock()
}

// DataDir returns the current data directory.
func DataDir() string {
	dataDirMu.RLock()
	defer dataDirMu.RUnlock()
	return dataDir
}

var (
	subscriptions     *SubscriptionsFile
	subscriptionsOnce sync.Once
)

// Subscriptions returns the push subscription state.
func Subscriptions() *SubscriptionsFile {
	subscriptionsOnce.Do(func() {
		subscriptions = &SubscriptionsFile{
			subscribers: make(map[string]*Subscription),
		}
	})
	return subscriptions
}
