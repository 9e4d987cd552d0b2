package stripe

import (
	"sync"
)

// LockManager manages per-company locks to prevent concurrent webhook
// processing for the same company while allowing parallel processing for
// different companies
type LockManager struct {
	locks sync.Map // map[string]*sync.Mutex
}

// NewLockManager creates a new lock manager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// LockCompany acquires the lock of the given company id.
// Returns a function that must be called to release the lock
func (lm *LockManager) LockCompany(companyID string) func() {
	lockInterface, _ := lm.locks.LoadOrStore(companyID, &sync.Mutex{})
	lock, ok := lockInterface.(*sync.Mutex)
	if !ok {
		// This should never happen if we only store *sync.Mutex values
		panic("unexpected type in lock manager")
	}
	lock.Lock()
	return lock.Unlock
}
