package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"undercover_web/internal/models"
)

func newTestRoomService() (*RoomService, *fakeRoomRepo, *fakeUserRepo) {
	roomRepo := newFakeRoomRepo()
	userRepo := newFakeUserRepo()
	svc := NewRoomService(
		roomRepo, newFakeGameRepo(), newFakeAIPlayerRepo(),
		NewUserService(userRepo), NewWebSocketManager(10), 10, 30,
	)
	return svc, roomRepo, userRepo
}

func TestCreateRoom(t *testing.T) {
	svc, _, _ := newTestRoomService()

	t.Run("正常創建", func(t *testing.T) {
		room, err := svc.CreateRoom(CreateRoomInput{
			Name:       "新手房",
			CreatorID:  "u1",
			MaxPlayers: 6,
			AICount:    2,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, room.ID)
		assert.Equal(t, models.RoomStatusWaiting, room.Status)
		// 房主自動加入
		assert.True(t, room.HasPlayer("u1"))
	})

	t.Run("人數下限", func(t *testing.T) {
		_, err := svc.CreateRoom(CreateRoomInput{Name: "太小", CreatorID: "u1", MaxPlayers: 2})
		assert.Error(t, err)
	})

	t.Run("人數上限", func(t *testing.T) {
		_, err := svc.CreateRoom(CreateRoomInput{Name: "太大", CreatorID: "u1", MaxPlayers: 11})
		assert.Error(t, err)
	})

	t.Run("AI 數量不能占滿全房", func(t *testing.T) {
		_, err := svc.CreateRoom(CreateRoomInput{Name: "全AI", CreatorID: "u1", MaxPlayers: 4, AICount: 4})
		assert.Error(t, err)
	})
}

func TestCreateRoomWordSettings(t *testing.T) {
	svc, roomRepo, _ := newTestRoomService()

	room, err := svc.CreateRoom(CreateRoomInput{
		Name:           "主題房",
		CreatorID:      "u1",
		MaxPlayers:     6,
		WordPairID:     "wp-1",
		WordCategory:   "食物",
		WordDifficulty: 3,
	})
	require.NoError(t, err)

	stored, err := roomRepo.FindByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, "wp-1", stored.Settings["word_pair_id"])
	assert.Equal(t, "食物", stored.Settings["word_category"])
	assert.Equal(t, float64(3), stored.Settings["word_difficulty"])
}

func TestGetRoomDetail(t *testing.T) {
	svc, _, userRepo := newTestRoomService()
	require.NoError(t, userRepo.Create(&models.User{
		ID: "u1", Username: "alice", Score: 120, GamesPlayed: 4, GamesWon: 2,
	}))
	require.NoError(t, userRepo.Create(&models.User{
		ID: "u2", Username: "bob", Score: 80,
	}))

	room, err := svc.CreateRoom(CreateRoomInput{Name: "房", CreatorID: "u1", MaxPlayers: 5})
	require.NoError(t, err)
	_, err = svc.JoinRoom(room.ID, "u2", "")
	require.NoError(t, err)

	detail, err := svc.GetRoomDetail(room.ID)
	require.NoError(t, err)
	require.Len(t, detail.Players, 2)

	assert.Equal(t, "alice", detail.Players[0].Username)
	assert.True(t, detail.Players[0].IsCreator)
	assert.Equal(t, 120, detail.Players[0].Score)
	assert.InDelta(t, 50.0, detail.Players[0].WinRate, 0.01)

	assert.Equal(t, "bob", detail.Players[1].Username)
	assert.False(t, detail.Players[1].IsCreator)
	assert.Zero(t, detail.OnlineCount)

	_, err = svc.GetRoomDetail("missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomMembershipEvents(t *testing.T) {
	roomRepo := newFakeRoomRepo()
	manager := NewWebSocketManager(10)
	svc := NewRoomService(
		roomRepo, newFakeGameRepo(), newFakeAIPlayerRepo(),
		NewUserService(newFakeUserRepo()), manager, 10, 30,
	)

	room, err := svc.CreateRoom(CreateRoomInput{Name: "房", CreatorID: "u1", MaxPlayers: 5})
	require.NoError(t, err)

	client := &Client{UserID: "u1", RoomID: room.ID, SendChan: make(chan *Event, 8)}
	require.NoError(t, manager.addClient(client))

	_, err = svc.JoinRoom(room.ID, "u2", "")
	require.NoError(t, err)
	require.NoError(t, svc.LeaveRoom(room.ID, "u2"))

	var types []string
	for len(client.SendChan) > 0 {
		types = append(types, (<-client.SendChan).Type)
	}
	assert.Equal(t, []string{"user_joined", "user_left"}, types)
}

func TestJoinRoom(t *testing.T) {
	svc, _, _ := newTestRoomService()
	room, err := svc.CreateRoom(CreateRoomInput{
		Name: "小房", CreatorID: "u1", MaxPlayers: 3, Password: "secret",
	})
	require.NoError(t, err)

	t.Run("密碼錯誤", func(t *testing.T) {
		_, err := svc.JoinRoom(room.ID, "u2", "wrong")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("密碼正確", func(t *testing.T) {
		joined, err := svc.JoinRoom(room.ID, "u2", "secret")
		require.NoError(t, err)
		assert.True(t, joined.HasPlayer("u2"))
	})

	t.Run("重複加入不報錯", func(t *testing.T) {
		joined, err := svc.JoinRoom(room.ID, "u2", "secret")
		require.NoError(t, err)
		assert.Equal(t, 2, joined.PlayerCount())
	})

	t.Run("房間滿了", func(t *testing.T) {
		_, err := svc.JoinRoom(room.ID, "u3", "secret")
		require.NoError(t, err)
		_, err = svc.JoinRoom(room.ID, "u4", "secret")
		assert.ErrorIs(t, err, ErrRoomFull)
	})

	t.Run("不存在的房間", func(t *testing.T) {
		_, err := svc.JoinRoom("missing", "u2", "")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestLeaveRoom(t *testing.T) {
	svc, roomRepo, _ := newTestRoomService()
	room, err := svc.CreateRoom(CreateRoomInput{Name: "房", CreatorID: "u1", MaxPlayers: 5})
	require.NoError(t, err)

	_, err = svc.JoinRoom(room.ID, "u2", "")
	require.NoError(t, err)

	t.Run("不在房間的人不能離開", func(t *testing.T) {
		assert.ErrorIs(t, svc.LeaveRoom(room.ID, "u9"), ErrNotInRoom)
	})

	t.Run("房主離開時移交房主", func(t *testing.T) {
		require.NoError(t, svc.LeaveRoom(room.ID, "u1"))
		updated, err := roomRepo.FindByID(room.ID)
		require.NoError(t, err)
		assert.Equal(t, "u2", updated.CreatorID)
		assert.False(t, updated.HasPlayer("u1"))
	})

	t.Run("最後一人離開時解散房間", func(t *testing.T) {
		require.NoError(t, svc.LeaveRoom(room.ID, "u2"))
		_, err := roomRepo.FindByID(room.ID)
		assert.Error(t, err)
	})
}

func TestKickAndTransfer(t *testing.T) {
	svc, roomRepo, _ := newTestRoomService()
	room, err := svc.CreateRoom(CreateRoomInput{Name: "房", CreatorID: "u1", MaxPlayers: 5})
	require.NoError(t, err)
	_, err = svc.JoinRoom(room.ID, "u2", "")
	require.NoError(t, err)

	t.Run("非房主不能踢人", func(t *testing.T) {
		assert.ErrorIs(t, svc.KickPlayer(room.ID, "u2", "u1"), ErrNotCreator)
	})

	t.Run("房主不能踢自己", func(t *testing.T) {
		assert.Error(t, svc.KickPlayer(room.ID, "u1", "u1"))
	})

	t.Run("轉移房主", func(t *testing.T) {
		require.NoError(t, svc.TransferOwnership(room.ID, "u1", "u2"))
		updated, _ := roomRepo.FindByID(room.ID)
		assert.Equal(t, "u2", updated.CreatorID)
	})

	t.Run("新房主踢出原房主", func(t *testing.T) {
		require.NoError(t, svc.KickPlayer(room.ID, "u2", "u1"))
		updated, _ := roomRepo.FindByID(room.ID)
		assert.False(t, updated.HasPlayer("u1"))
	})
}

func TestDeleteRoom(t *testing.T) {
	svc, roomRepo, _ := newTestRoomService()
	room, err := svc.CreateRoom(CreateRoomInput{Name: "房", CreatorID: "u1", MaxPlayers: 5})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteRoom(room.ID, "u2"), ErrNotCreator)

	require.NoError(t, svc.DeleteRoom(room.ID, "u1"))
	_, err = roomRepo.FindByID(room.ID)
	assert.Error(t, err)
}

func TestGameplayBlocksRoomChanges(t *testing.T) {
	svc, roomRepo, _ := newTestRoomService()
	room, err := svc.CreateRoom(CreateRoomInput{Name: "房", CreatorID: "u1", MaxPlayers: 5})
	require.NoError(t, err)
	_, err = svc.JoinRoom(room.ID, "u2", "")
	require.NoError(t, err)

	stored, _ := roomRepo.FindByID(room.ID)
	stored.Status = models.RoomStatusPlaying
	require.NoError(t, roomRepo.Update(stored))

	assert.Error(t, svc.LeaveRoom(room.ID, "u2"))
	assert.Error(t, svc.KickPlayer(room.ID, "u1", "u2"))
	assert.Error(t, svc.DeleteRoom(room.ID, "u1"))
	_, err = svc.JoinRoom(room.ID, "u3", "")
	assert.Error(t, err)
}
