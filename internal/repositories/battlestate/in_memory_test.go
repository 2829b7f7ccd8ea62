package battlestate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnderr "github.com/tianyouyingfan/local-simple-dnd-tool/internal/errors"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/combat"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/uuid"
)

func TestInMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository(uuid.NewGoogleUUIDGenerator())

	encounter := combat.NewEncounter("enc-1")
	encounter.Participants = append(encounter.Participants, &combat.Participant{
		UID: "p1", Name: "Goblin", Type: combat.ParticipantTypeMonster,
		AC: 15, BaseMaxHP: 7, HPMax: 7, HPCurrent: 7,
	})

	t.Run("save and load round trip", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, encounter))
		got, err := repo.Load(ctx, "enc-1")
		require.NoError(t, err)
		assert.Equal(t, "enc-1", got.ID)
		require.Len(t, got.Participants, 1)
	})

	t.Run("load returns an independent copy", func(t *testing.T) {
		got, err := repo.Load(ctx, "enc-1")
		require.NoError(t, err)
		got.Participants[0].HPCurrent = 1

		again, err := repo.Load(ctx, "enc-1")
		require.NoError(t, err)
		assert.Equal(t, 7, again.Participants[0].HPCurrent)
	})

	t.Run("missing id is a not found error", func(t *testing.T) {
		_, err := repo.Load(ctx, "missing")
		assert.True(t, dnderr.IsNotFound(err))
	})

	t.Run("nil encounter is rejected", func(t *testing.T) {
		err := repo.Save(ctx, nil)
		assert.True(t, dnderr.IsInvalidArgument(err))
	})

	t.Run("list and delete", func(t *testing.T) {
		ids, err := repo.ListIDs(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, "enc-1")

		require.NoError(t, repo.Delete(ctx, "enc-1"))
		assert.True(t, dnderr.IsNotFound(repo.Delete(ctx, "enc-1")))
	})
}
