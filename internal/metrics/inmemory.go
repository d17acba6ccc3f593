package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered uint64
	LoginsSucceeded uint64
	LoginsFailed    uint64
	ArticlesCreated uint64
	ArticlesUpdated uint64
	ArticlesDeleted uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered uint64
	loginsSucceeded uint64
	loginsFailed    uint64
	articlesCreated uint64
	articlesUpdated uint64
	articlesDeleted uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered: atomic.LoadUint64(&m.usersRegistered),
		LoginsSucceeded: atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:    atomic.LoadUint64(&m.loginsFailed),
		ArticlesCreated: atomic.LoadUint64(&m.articlesCreated),
		ArticlesUpdated: atomic.LoadUint64(&m.articlesUpdated),
		ArticlesDeleted: atomic.LoadUint64(&m.articlesDeleted),
	}
}

func (m *InMemoryRecorder) IncUserRegistered() { atomic.AddUint64(&m.usersRegistered, 1) }
func (m *InMemoryRecorder) IncLoginSucceeded() { atomic.AddUint64(&m.loginsSucceeded, 1) }
func (m *InMemoryRecorder) IncLoginFailed()    { atomic.AddUint64(&m.loginsFailed, 1) }
func (m *InMemoryRecorder) IncArticleCreated() { atomic.AddUint64(&m.articlesCreated, 1) }
func (m *InMemoryRecorder) IncArticleUpdated() { atomic.AddUint64(&m.articlesUpdated, 1) }
func (m *InMemoryRecorder) IncArticleDeleted() { atomic.AddUint64(&m.articlesDeleted, 1) }
