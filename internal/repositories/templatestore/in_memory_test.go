package templatestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dnderr "github.com/tianyouyingfan/local-simple-dnd-tool/internal/errors"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/templates"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/uuid"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewInMemoryStore(uuid.NewGoogleUUIDGenerator())
	require.NoError(t, err)

	t.Run("comes seeded with the default library", func(t *testing.T) {
		all, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, len(SeedTemplates()))

		goblin, err := store.GetByName(ctx, "哥布林")
		require.NoError(t, err)
		assert.Equal(t, 15, goblin.AC)
		assert.Equal(t, 7, goblin.HP.Average)
		assert.False(t, goblin.IsPC())
	})

	t.Run("seeded player characters carry hpMax", func(t *testing.T) {
		pc, err := store.GetByName(ctx, "艾瑞克")
		require.NoError(t, err)
		assert.True(t, pc.IsPC())
		assert.Equal(t, 32, pc.HPMax)
	})

	t.Run("save assigns an id and get returns a copy", func(t *testing.T) {
		custom := &templates.Template{Name: "Dire Badger", AC: 13, HP: templates.HP{Average: 15}, IsCustom: true}
		require.NoError(t, store.Save(ctx, custom))
		require.NotEmpty(t, custom.ID)

		got, err := store.Get(ctx, custom.ID)
		require.NoError(t, err)
		got.AC = 99

		again, err := store.Get(ctx, custom.ID)
		require.NoError(t, err)
		assert.Equal(t, 13, again.AC)
	})

	t.Run("nameless template is rejected", func(t *testing.T) {
		err := store.Save(ctx, &templates.Template{})
		assert.True(t, dnderr.IsInvalidArgument(err))
	})

	t.Run("delete", func(t *testing.T) {
		custom := &templates.Template{Name: "Ephemeral"}
		require.NoError(t, store.Save(ctx, custom))
		require.NoError(t, store.Delete(ctx, custom.ID))
		_, err := store.Get(ctx, custom.ID)
		assert.True(t, dnderr.IsNotFound(err))
	})
}
