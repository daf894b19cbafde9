// Package testutils provides deterministic generators, fakes and helpers for
// webbehave testing. The generators are also used by production code so that
// test-mode runs produce stable output.
package testutils

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ModeProvider reports whether deterministic output is requested.
type ModeProvider interface {
	IsTestMode() bool
}

var (
	// Thread-safe counter for deterministic ID generation
	idCounter uint64
	idMutex   sync.Mutex

	// Thread-safe counter for deterministic timestamp generation
	timeCounter int64
	timeMutex   sync.Mutex
)

// GenerateUUID generates a UUID that is deterministic in test mode but random in production.
// In test mode, returns UUIDs in format: 00000001-0000-4000-8000-000000000001, 00000002-0000-4000-8000-000000000002, etc.
func GenerateUUID(ctx ModeProvider) string {
	if ctx != nil && ctx.IsTestMode() {
		return getDeterministicUUID()
	}
	return uuid.New().String()
}

// GetCurrentTime returns the current time, deterministic in test mode but real in production.
// In test mode, returns incrementing time starting from 2025-01-01T00:00:01Z.
func GetCurrentTime(ctx ModeProvider) time.Time {
	if ctx != nil && ctx.IsTestMode() {
		return getDeterministicTime()
	}
	return time.Now()
}

// TodayDate formats the run date as M-D-YYYY.
func TodayDate(ctx ModeProvider) string {
	if ctx != nil && ctx.IsTestMode() {
		return "1-1-2025"
	}
	return time.Now().Format("1-2-2006")
}

// getDeterministicUUID generates a deterministic UUID maintaining UUID v4 format.
func getDeterministicUUID() string {
	idMutex.Lock()
	defer idMutex.Unlock()

	idCounter++
	return fmt.Sprintf("%08x-0000-4000-8000-%012x", idCounter, idCounter)
}

// getDeterministicTime returns a time one second later on every call.
func getDeterministicTime() time.Time {
	timeMutex.Lock()
	defer timeMutex.Unlock()

	timeCounter++
	baseTime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return baseTime.Add(time.Duration(timeCounter) * time.Second)
}

// ResetTestCounters resets the deterministic counters for testing.
// This should only be called from test code to ensure consistent test runs.
func ResetTestCounters() {
	idMutex.Lock()
	timeMutex.Lock()
	defer idMutex.Unlock()
	defer timeMutex.Unlock()

	idCounter = 0
	timeCounter = 0
}

// StaticMode is a ModeProvider with a fixed answer.
type StaticMode bool

// IsTestMode implements ModeProvider.
func (m StaticMode) IsTestMode() bool { return bool(m) }
