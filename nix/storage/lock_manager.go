package storage

import (
	"sync"
)

// OperationType defines whether an operation reads or modifies a tree
type OperationType int

const (
	// ReadOperation may run concurrently with other reads
	ReadOperation OperationType = iota

	// WriteOperation is exclusive
	WriteOperation
)

// LockManager serializes access to a shared tree. Reads share a read lock,
// writes take the exclusive lock. The lock is released when the callback
// returns, including on panic.
type LockManager struct {
	mu sync.RWMutex
}

// NewLockManager creates a ready to use lock manager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// Execute runs fn holding the lock appropriate for opType.
//
// Example:
//
//	err := lm.Execute(storage.WriteOperation, func() error {
//	    return root.SetAttr("updated_at", now)
//	})
func (lm *LockManager) Execute(opType OperationType, fn func() error) error {
	switch opType {
	case ReadOperation:
		lm.mu.RLock()
		defer lm.mu.RUnlock()
	case WriteOperation:
		lm.mu.Lock()
		defer lm.mu.Unlock()
	}
	return fn()
}

// ExecuteWithResult is Execute for callbacks that produce a value
func ExecuteWithResult[T any](lm *LockManager, opType OperationType, fn func() (T, error)) (T, error) {
	var result T
	err := lm.Execute(opType, func() error {
		var err error
		result, err = fn()
		return err
	})
	return result, err
}
