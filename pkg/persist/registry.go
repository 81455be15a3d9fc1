package persist

import "sync"

// Channel names of the conventional handles.
const (
	LocalName   = "local"
	SessionName = "session"
)

var (
	registryMu sync.RWMutex
	local      Storage = NewMemoryStorage()
	session    Storage = NewMemoryStorage()
)

// Local returns the durable handle. It is an in-memory backend until
// SetLocal installs another one.
func Local() Storage {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return local
}

// Session returns the session handle.
func Session() Storage {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return session
}

// SetLocal installs s as the durable handle and returns a function restoring
// the previous one.
func SetLocal(s Storage) (restore func()) {
	registryMu.Lock()
	prev := local
	local = s
	registryMu.Unlock()

	return func() {
		registryMu.Lock()
		local = prev
		registryMu.Unlock()
	}
}

// SetSession installs s as the session handle and returns a function
// restoring the previous one.
func SetSession(s Storage) (restore func()) {
	registryMu.Lock()
	prev := session
	session = s
	registryMu.Unlock()

	return func() {
		registryMu.Lock()
		session = prev
		registryMu.Unlock()
	}
}

// NameOf returns the channel name of s: LocalName or SessionName when s is
// one of the conventional handles, "" for any other backend.
func NameOf(s Storage) string {
	if !Valid(s) {
		return ""
	}

	registryMu.RLock()
	defer registryMu.RUnlock()
	switch {
	case sameHandle(s, local):
		return LocalName
	case sameHandle(s, session):
		return SessionName
	default:
		return ""
	}
}

func sameHandle(a, b Storage) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
