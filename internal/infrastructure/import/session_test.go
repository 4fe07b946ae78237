package csvimport

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportSession(t *testing.T) {
	t.Run("New session starts at upload", func(t *testing.T) {
		s := NewImportSession(uuid.New(), "orders.csv", 1024)
		assert.Equal(t, StepUpload, s.Step)
		assert.False(t, s.IsTerminal())
	})

	t.Run("Mapping can be edited before processing", func(t *testing.T) {
		s := NewImportSession(uuid.New(), "orders.csv", 1024)
		s.AdvanceTo(StepMapping)

		err := s.SetMapping(FieldMapping{"Order": FieldOrderNumber})
		require.NoError(t, err)
		assert.Equal(t, FieldOrderNumber, s.Mapping["Order"])
	})

	t.Run("Mapping freezes once validation starts", func(t *testing.T) {
		for _, step := range []ImportStep{StepValidation, StepOptions, StepProcessing, StepComplete, StepFailed} {
			s := NewImportSession(uuid.New(), "orders.csv", 1024)
			s.AdvanceTo(step)

			err := s.SetMapping(FieldMapping{"Order": FieldOrderNumber})
			assert.ErrorIs(t, err, ErrMappingFrozen, "step %s", step)
		}
	})

	t.Run("Valid rows survive for processing", func(t *testing.T) {
		s := NewImportSession(uuid.New(), "orders.csv", 1024)
		rows := []*Row{{LineNumber: 2}, {LineNumber: 4}}
		s.SetValidRows(rows)

		require.Len(t, s.ValidRows(), 2)
		assert.Equal(t, 4, s.ValidRows()[1].LineNumber)
	})

	t.Run("Invalid mapping is rejected", func(t *testing.T) {
		s := NewImportSession(uuid.New(), "orders.csv", 1024)
		err := s.SetMapping(FieldMapping{
			"A": FieldOrderNumber,
			"B": FieldOrderNumber,
		})
		assert.Error(t, err)
	})

	t.Run("Terminal steps record completion time", func(t *testing.T) {
		s := NewImportSession(uuid.New(), "orders.csv", 1024)
		s.AdvanceTo(StepComplete)

		assert.True(t, s.IsTerminal())
		require.NotNil(t, s.CompletedAt)
	})

	t.Run("Validation result advances to options", func(t *testing.T) {
		s := NewImportSession(uuid.New(), "orders.csv", 1024)
		s.SetValidation(&ValidationSummary{TotalRows: 10, ValidRows: 9, ErrorRows: 1})

		assert.Equal(t, StepOptions, s.Step)
		assert.Equal(t, 9, s.Validation.ValidRows)
	})
}

func TestInMemorySessionStore(t *testing.T) {
	t.Run("Save and Get", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour)
		defer store.Stop()

		s := NewImportSession(uuid.New(), "orders.csv", 1024)
		require.NoError(t, store.Save(s))

		got, err := store.Get(s.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, s.ID, got.ID)
	})

	t.Run("Expired sessions are invisible", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Millisecond)
		defer store.Stop()

		s := NewImportSession(uuid.New(), "orders.csv", 1024)
		s.CreatedAt = time.Now().Add(-time.Minute)
		require.NoError(t, store.Save(s))

		got, err := store.Get(s.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("GetByStore filters on store ID", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour)
		defer store.Stop()

		storeID := uuid.New()
		require.NoError(t, store.Save(NewImportSession(storeID, "a.csv", 1)))
		require.NoError(t, store.Save(NewImportSession(storeID, "b.csv", 1)))
		require.NoError(t, store.Save(NewImportSession(uuid.New(), "c.csv", 1)))

		got, err := store.GetByStore(storeID, 10)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Cleanup reaps expired sessions", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Millisecond)
		defer store.Stop()

		s := NewImportSession(uuid.New(), "orders.csv", 1024)
		s.CreatedAt = time.Now().Add(-time.Minute)
		require.NoError(t, store.Save(s))

		store.Cleanup()

		store.mu.RLock()
		_, present := store.sessions[s.ID]
		store.mu.RUnlock()
		assert.False(t, present)
	})
}
