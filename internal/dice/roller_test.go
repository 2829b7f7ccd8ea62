package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomRoller_Roll(t *testing.T) {
	roller := NewRandomRoller()

	t.Run("single d20 in range", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			result, err := roller.Roll(1, 20, 0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.Total, 1)
			assert.LessOrEqual(t, result.Total, 20)
			assert.Equal(t, result.Rolls[0] == 20, result.IsCrit)
			assert.Equal(t, result.Rolls[0] == 1, result.IsFumble)
		}
	})

	t.Run("bonus added to total not raw", func(t *testing.T) {
		result, err := roller.Roll(2, 6, 3)
		require.NoError(t, err)
		assert.Equal(t, result.RawTotal+3, result.Total)
		assert.Len(t, result.Rolls, 2)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := roller.Roll(0, 6, 0)
		assert.Error(t, err)
		_, err = roller.Roll(1, 0, 0)
		assert.Error(t, err)
	})
}

func TestMockRoller_Modes(t *testing.T) {
	t.Run("advantage keeps higher", func(t *testing.T) {
		mock := NewMockRoller()
		mock.SetRolls([]int{3, 17})
		result, err := mock.RollWithAdvantage(20, 2)
		require.NoError(t, err)
		assert.Equal(t, 17, result.RawTotal)
		assert.Equal(t, 19, result.Total)
		assert.Equal(t, []int{3, 17}, result.Rolls)
	})

	t.Run("disadvantage keeps lower", func(t *testing.T) {
		mock := NewMockRoller()
		mock.SetRolls([]int{3, 17})
		result, err := mock.RollWithDisadvantage(20, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, result.RawTotal)
		assert.Equal(t, 5, result.Total)
	})

	t.Run("kept natural 20 is a crit", func(t *testing.T) {
		mock := NewMockRoller()
		mock.SetRolls([]int{20, 5})
		result, err := mock.RollWithAdvantage(20, 0)
		require.NoError(t, err)
		assert.True(t, result.IsCrit)
		assert.False(t, result.IsFumble)
	})

	t.Run("runs out of rolls", func(t *testing.T) {
		mock := NewMockRoller()
		mock.SetRolls([]int{5})
		_, err := mock.RollWithAdvantage(20, 0)
		assert.Error(t, err)
	})

	t.Run("reset clears the queue", func(t *testing.T) {
		mock := NewMockRoller()
		mock.SetRolls([]int{5})
		mock.Reset()
		_, err := mock.Roll(1, 20, 0)
		assert.Error(t, err)
	})
}

func TestRollD20(t *testing.T) {
	mock := NewMockRoller()
	mock.SetRolls([]int{12, 4, 18, 4, 18})

	normal, err := RollD20(mock, ModeNormal)
	require.NoError(t, err)
	assert.Equal(t, 12, normal.RawTotal)

	adv, err := RollD20(mock, ModeAdvantage)
	require.NoError(t, err)
	assert.Equal(t, 18, adv.RawTotal)

	dis, err := RollD20(mock, ModeDisadvantage)
	require.NoError(t, err)
	assert.Equal(t, 4, dis.RawTotal)
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		terms    int
		flat     int
	}{
		{"simple", "2d6+3", 1, 3},
		{"multiple dice terms", "2d6+1d4+2", 2, 2},
		{"negative flat", "1d8-2", 1, -2},
		{"flat only", "5", 0, 5},
		{"empty", "", 0, 0},
		{"garbage term dropped", "2dX+3", 0, 3},
		{"whitespace tolerated", " 1d6 + 2 ", 1, 2},
		{"missing count defaults to one", "d6", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParseExpression(tt.expr)
			assert.Len(t, parsed.Dice, tt.terms)
			assert.Equal(t, tt.flat, parsed.Flat)
		})
	}
}

func TestRollDamage(t *testing.T) {
	t.Run("normal roll", func(t *testing.T) {
		mock := NewMockRoller()
		mock.SetRolls([]int{4, 5})
		result, err := RollDamage(mock, "2d6+3", false)
		require.NoError(t, err)
		assert.Equal(t, 12, result.Total)
		assert.Equal(t, []int{4, 5}, result.Rolls)
	})

	t.Run("crit doubles dice count not flat bonus", func(t *testing.T) {
		mock := NewMockRoller()
		mock.SetRolls([]int{4, 5, 6, 1})
		result, err := RollDamage(mock, "2d6+3", true)
		require.NoError(t, err)
		assert.Equal(t, 19, result.Total)
		assert.Len(t, result.Rolls, 4)
	})

	t.Run("malformed expression rolls zero", func(t *testing.T) {
		mock := NewMockRoller()
		result, err := RollDamage(mock, "not dice", false)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Total)
	})

	t.Run("negative total floors at zero", func(t *testing.T) {
		mock := NewMockRoller()
		mock.SetRolls([]int{1})
		result, err := RollDamage(mock, "1d4-10", false)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Total)
	})
}

func TestRollExpression(t *testing.T) {
	mock := NewMockRoller()
	mock.SetRolls([]int{3, 6, 2})
	result, err := RollExpression(mock, "2d8+1d4+2")
	require.NoError(t, err)
	assert.Equal(t, 13, result.Total)
	assert.Equal(t, []int{3, 6, 2}, result.Rolls)
	assert.Equal(t, 2, result.Flat)
}
