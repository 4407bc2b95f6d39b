package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"undercover_web/internal/models"
)

func makePlayers(n int) []models.GamePlayer {
	players := make([]models.GamePlayer, n)
	for i := range players {
		players[i] = models.GamePlayer{
			ID:       string(rune('a' + i)),
			Username: "玩家" + string(rune('A'+i)),
			IsAlive:  true,
		}
	}
	return players
}

func TestAssignRoles(t *testing.T) {
	wordPair := &models.WordPair{
		CivilianWord:   "蘋果",
		UndercoverWord: "水梨",
	}

	tests := []struct {
		name            string
		totalPlayers    int
		wantUndercovers int
	}{
		{"三人局一名臥底", 3, 1},
		{"四人局一名臥底", 4, 1},
		{"六人局兩名臥底", 6, 2},
		{"九人局三名臥底", 9, 3},
		{"十人局三名臥底", 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := makePlayers(tt.totalPlayers)
			assignRoles(players, wordPair)

			undercovers := 0
			for _, p := range players {
				switch p.Role {
				case models.RoleUndercover:
					undercovers++
					assert.Equal(t, "水梨", p.Word)
				case models.RoleCivilian:
					assert.Equal(t, "蘋果", p.Word)
				default:
					t.Fatalf("player %s has no role", p.ID)
				}
			}
			assert.Equal(t, tt.wantUndercovers, undercovers)
		})
	}
}

func TestNextAliveAfter(t *testing.T) {
	players := makePlayers(4)
	players[2].IsAlive = false // c 已被淘汰

	next := nextAliveAfter(players, "a")
	require.NotNil(t, next)
	assert.Equal(t, "b", next.ID)

	// 跳過被淘汰的玩家
	next = nextAliveAfter(players, "b")
	require.NotNil(t, next)
	assert.Equal(t, "d", next.ID)

	// 最後一位之後沒有人
	assert.Nil(t, nextAliveAfter(players, "d"))

	// 未知 ID 時回到第一位存活玩家
	next = nextAliveAfter(players, "unknown")
	require.NotNil(t, next)
	assert.Equal(t, "a", next.ID)
}

func TestFirstAlive(t *testing.T) {
	players := makePlayers(3)
	players[0].IsAlive = false

	first := firstAlive(players)
	require.NotNil(t, first)
	assert.Equal(t, "b", first.ID)

	for i := range players {
		players[i].IsAlive = false
	}
	assert.Nil(t, firstAlive(players))
}

func TestPickEliminated(t *testing.T) {
	alive := makePlayers(4)

	t.Run("最高票被淘汰", func(t *testing.T) {
		tally := map[string]int{"a": 1, "b": 3, "c": 1}
		assert.Equal(t, "b", pickEliminated(tally, alive))
	})

	t.Run("平票時從最高票者中選出", func(t *testing.T) {
		tally := map[string]int{"a": 2, "c": 2, "d": 1}
		got := pickEliminated(tally, alive)
		assert.Contains(t, []string{"a", "c"}, got)
	})

	t.Run("無人投票時隨機淘汰存活者", func(t *testing.T) {
		got := pickEliminated(map[string]int{}, alive)
		assert.Contains(t, []string{"a", "b", "c", "d"}, got)
	})

	t.Run("沒有存活者", func(t *testing.T) {
		assert.Empty(t, pickEliminated(map[string]int{"a": 1}, nil))
	})
}

func TestSpeechCountByPlayer(t *testing.T) {
	participants := []models.Participant{
		{ID: "p1", PlayerID: "a"},
		{ID: "p2", PlayerID: "b"},
	}
	speeches := []models.Speech{
		{ParticipantID: "p1"},
		{ParticipantID: "p1"},
		{ParticipantID: "p2"},
		{ParticipantID: "unknown"},
	}

	counts := speechCountByPlayer(speeches, participants)
	assert.Equal(t, 2, counts["a"])
	assert.Equal(t, 1, counts["b"])
	assert.NotContains(t, counts, "unknown")
}
