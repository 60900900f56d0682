package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu            sync.Mutex
	registrations map[string]int
	cancellations int
	replacements  int
	periodsOpened int
	syncRuns      int
	syncFailures  int
	syncDurations []float64
	sheetWrites   int
	notifSent     int
	notifFailed   int
	startupTime   float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		registrations: make(map[string]int),
		syncDurations: make([]float64, 0),
	}
}

func (m *Mock) IncRegistrations(classification string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations[classification]++
}

func (m *Mock) IncCancellations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancellations++
}

func (m *Mock) IncReplacements() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replacements++
}

func (m *Mock) IncPeriodsOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periodsOpened++
}

func (m *Mock) IncSyncRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncRuns++
}

func (m *Mock) IncSyncFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncFailures++
}

func (m *Mock) ObserveSyncDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncDurations = append(m.syncDurations, seconds)
}

func (m *Mock) IncSheetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheetWrites++
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Registrations returns how often IncRegistrations was called with classification.
func (m *Mock) Registrations(classification string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registrations[classification]
}

// Cancellations returns the number of times IncCancellations was called.
func (m *Mock) Cancellations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancellations
}

// Replacements returns the number of times IncReplacements was called.
func (m *Mock) Replacements() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replacements
}

// PeriodsOpened returns the number of times IncPeriodsOpened was called.
func (m *Mock) PeriodsOpened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.periodsOpened
}

// SyncRuns returns the number of times IncSyncRuns was called.
func (m *Mock) SyncRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncRuns
}

// SyncFailures returns the number of times IncSyncFailures was called.
func (m *Mock) SyncFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncFailures
}

// SheetWrites returns the number of times IncSheetWrites was called.
func (m *Mock) SheetWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sheetWrites
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}

// NotifFailed returns the number of times IncNotifFailed was called.
func (m *Mock) NotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed
}
