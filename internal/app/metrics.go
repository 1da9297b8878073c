package app

import (
	"sync/atomic"
	"time"
)

// Metrics counts document, history and script activity.
type Metrics struct {
	documentsOpened atomic.Uint64
	documentsClosed atomic.Uint64

	historyChanges  atomic.Uint64
	pageActivations atomic.Uint64
	configReloads   atomic.Uint64

	scriptCount    atomic.Uint64
	scriptFailures atomic.Uint64
	scriptTotalNs  atomic.Int64
	scriptMaxNs    atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordDocumentOpened counts an opened document.
func (m *Metrics) RecordDocumentOpened() { m.documentsOpened.Add(1) }

// RecordDocumentClosed counts a closed document.
func (m *Metrics) RecordDocumentClosed() { m.documentsClosed.Add(1) }

// RecordHistoryChange counts a change in undo/redo availability.
func (m *Metrics) RecordHistoryChange() { m.historyChanges.Add(1) }

// RecordPageActivation counts a completed page switch.
func (m *Metrics) RecordPageActivation() { m.pageActivations.Add(1) }

// RecordConfigReload counts an applied configuration reload.
func (m *Metrics) RecordConfigReload() { m.configReloads.Add(1) }

// RecordScript records a script run and whether it failed.
func (m *Metrics) RecordScript(duration time.Duration, failed bool) {
	ns := duration.Nanoseconds()

	m.scriptCount.Add(1)
	m.scriptTotalNs.Add(ns)
	if failed {
		m.scriptFailures.Add(1)
	}

	// Update max (atomic compare-and-swap loop)
	for {
		old := m.scriptMaxNs.Load()
		if ns <= old {
			break
		}
		if m.scriptMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.scriptCount.Load()
	total := m.scriptTotalNs.Load()

	var avg time.Duration
	if count > 0 {
		avg = time.Duration(total / int64(count))
	}

	return MetricsSnapshot{
		DocumentsOpened: m.documentsOpened.Load(),
		DocumentsClosed: m.documentsClosed.Load(),
		HistoryChanges:  m.historyChanges.Load(),
		PageActivations: m.pageActivations.Load(),
		ConfigReloads:   m.configReloads.Load(),
		ScriptCount:     count,
		ScriptFailures:  m.scriptFailures.Load(),
		ScriptAvg:       avg,
		ScriptMax:       time.Duration(m.scriptMaxNs.Load()),
		Uptime:          time.Since(m.startTime),
	}
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	DocumentsOpened uint64
	DocumentsClosed uint64
	HistoryChanges  uint64
	PageActivations uint64
	ConfigReloads   uint64

	ScriptCount    uint64
	ScriptFailures uint64
	ScriptAvg      time.Duration
	ScriptMax      time.Duration

	Uptime time.Duration
}
