package contract

import (
	"sync"

	"github.com/google/uuid"
)

// ContractLocks serializes mutating operations per contract. Optimistic
// locking on the aggregate already rejects lost updates; the per-contract
// mutex avoids burning version conflicts on the common case of two requests
// hitting the same contract. One registry is shared across the payment and
// late-fee services so their operations exclude each other too.
type ContractLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*contractLock
}

type contractLock struct {
	mu   sync.Mutex
	refs int
}

func NewContractLocks() *ContractLocks {
	return &ContractLocks{locks: make(map[uuid.UUID]*contractLock)}
}

// Lock acquires the mutex for the given contract and returns its unlock
// function. Entries are removed once the last holder releases.
func (l *ContractLocks) Lock(contractID uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[contractID]
	if !ok {
		entry = &contractLock{}
		l.locks[contractID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, contractID)
		}
		l.mu.Unlock()
	}
}
