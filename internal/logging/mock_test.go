package logging

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLogger_DerivedLoggersShareEntries(t *testing.T) {
	mock := NewMockLogger()
	boom := errors.New("boom")

	mock.Info("plain")
	mock.WithField(FieldFile, "data.json").WithError(boom).Error("save failed")

	entries := mock.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "ERROR", entries[1].Level)
	assert.Equal(t, boom, entries[1].Error)
	assert.Equal(t, []Field{{Key: FieldFile, Value: "data.json"}}, entries[1].Fields)
	assert.True(t, mock.HasEntry("ERROR", "save failed"))
	assert.Len(t, mock.GetEntriesByLevel("INFO"), 1)
}

func TestMockLogger_ConcurrentUse(t *testing.T) {
	mock := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			mock.WithField("n", n).Debug("tick")
		}(i)
	}
	wg.Wait()
	assert.Len(t, mock.GetEntries(), 20)

	mock.Clear()
	assert.Empty(t, mock.GetEntries())
}

func TestMockLogger_ZeroValueUsable(t *testing.T) {
	var mock MockLogger
	mock.Warn("zero value")
	assert.True(t, mock.HasEntry("WARN", "zero value"))
}

func TestMockLogger_ImplementsInterface(t *testing.T) {
	var _ Logger = (*MockLogger)(nil)
}
