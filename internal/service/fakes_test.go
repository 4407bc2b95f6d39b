package service

import (
	"errors"
	"sort"
	"sync"
	"time"

	"undercover_web/internal/models"
	"undercover_web/internal/repository"
)

var errNotFound = errors.New("record not found")

// 記憶體版的 repository 實作，測試服務層邏輯時不需資料庫

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]models.User)}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) FindByIDs(ids []string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	return r.Create(user)
}

func (r *fakeUserRepo) ListByScore(offset, limit int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.User
	for _, u := range r.users {
		if u.IsActive {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeUserRepo) CountActive() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) CountScoreAbove(score int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.IsActive && u.Score > score {
			n++
		}
	}
	return n, nil
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]models.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]models.Room)}
}

func (r *fakeRoomRepo) Create(room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = *room
	return nil
}

func (r *fakeRoomRepo) FindByID(id string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, errNotFound
	}
	return &room, nil
}

func (r *fakeRoomRepo) Update(room *models.Room) error {
	return r.Create(room)
}

func (r *fakeRoomRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
	return nil
}

func (r *fakeRoomRepo) FindAll(filters repository.RoomFilters) ([]models.Room, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Room
	for _, room := range r.rooms {
		if filters.Status == "" || room.Status == filters.Status {
			result = append(result, room)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeRoomRepo) FindIdleWaiting(cutoff time.Time) ([]models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Room
	for _, room := range r.rooms {
		if room.Status == models.RoomStatusWaiting && room.UpdatedAt.Before(cutoff) {
			result = append(result, room)
		}
	}
	return result, nil
}

type fakeGameRepo struct {
	mu           sync.Mutex
	games        map[string]models.Game
	participants map[string]models.Participant
	speeches     []models.Speech
	votes        []models.Vote
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{
		games:        make(map[string]models.Game),
		participants: make(map[string]models.Participant),
	}
}

func (r *fakeGameRepo) Create(game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[game.ID] = *game
	return nil
}

func (r *fakeGameRepo) FindByID(id string) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return nil, errNotFound
	}
	return &g, nil
}

func (r *fakeGameRepo) Update(game *models.Game) error {
	return r.Create(game)
}

func (r *fakeGameRepo) FindByRoom(roomID string) ([]models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Game
	for _, g := range r.games {
		if g.RoomID == roomID {
			result = append(result, g)
		}
	}
	return result, nil
}

func (r *fakeGameRepo) FindActiveByRoom(roomID string) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.games {
		if g.RoomID == roomID && g.CurrentPhase != models.PhaseFinished {
			g := g
			return &g, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeGameRepo) FindRecentFinishedByPlayer(playerID string, limit int) ([]models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Game
	for _, g := range r.games {
		if g.CurrentPhase != models.PhaseFinished || g.FindPlayer(playerID) == nil {
			continue
		}
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].FinishedAt, result[j].FinishedAt
		if ti == nil || tj == nil {
			return tj == nil
		}
		return ti.After(*tj)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeGameRepo) DeleteGameData(gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, gameID)
	for id, p := range r.participants {
		if p.GameID == gameID {
			delete(r.participants, id)
		}
	}
	return nil
}

func (r *fakeGameRepo) CreateParticipant(p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[p.ID] = *p
	return nil
}

func (r *fakeGameRepo) FindParticipant(gameID, playerID string) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.GameID == gameID && p.PlayerID == playerID {
			p := p
			return &p, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeGameRepo) ListParticipants(gameID string) ([]models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Participant
	for _, p := range r.participants {
		if p.GameID == gameID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeGameRepo) UpdateParticipant(p *models.Participant) error {
	return r.CreateParticipant(p)
}

func (r *fakeGameRepo) CreateSpeech(s *models.Speech) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speeches = append(r.speeches, *s)
	return nil
}

func (r *fakeGameRepo) ListSpeeches(gameID string) ([]models.Speech, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Speech
	for _, s := range r.speeches {
		if s.GameID == gameID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (r *fakeGameRepo) ListSpeechesByRound(gameID string, round int) ([]models.Speech, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Speech
	for _, s := range r.speeches {
		if s.GameID == gameID && s.RoundNumber == round {
			result = append(result, s)
		}
	}
	return result, nil
}

func (r *fakeGameRepo) MaxSpeechOrder(gameID string, round int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, s := range r.speeches {
		if s.GameID == gameID && s.RoundNumber == round && s.SpeechOrder > max {
			max = s.SpeechOrder
		}
	}
	return max, nil
}

func (r *fakeGameRepo) CreateVote(v *models.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes = append(r.votes, *v)
	return nil
}

func (r *fakeGameRepo) FindVote(gameID, voterID string, round int) (*models.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.votes {
		v := r.votes[i]
		if v.GameID == gameID && v.VoterID == voterID && v.RoundNumber == round {
			return &v, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeGameRepo) UpdateVote(v *models.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.votes {
		if r.votes[i].ID == v.ID {
			r.votes[i] = *v
			return nil
		}
	}
	return errNotFound
}

func (r *fakeGameRepo) ListVotes(gameID string) ([]models.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Vote
	for _, v := range r.votes {
		if v.GameID == gameID {
			result = append(result, v)
		}
	}
	return result, nil
}

func (r *fakeGameRepo) ListVotesByRound(gameID string, round int) ([]models.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Vote
	for _, v := range r.votes {
		if v.GameID == gameID && v.RoundNumber == round {
			result = append(result, v)
		}
	}
	return result, nil
}

type fakeWordPairRepo struct {
	mu    sync.Mutex
	pairs map[string]models.WordPair
}

func newFakeWordPairRepo() *fakeWordPairRepo {
	return &fakeWordPairRepo{pairs: make(map[string]models.WordPair)}
}

func (r *fakeWordPairRepo) Create(wp *models.WordPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs[wp.ID] = *wp
	return nil
}

func (r *fakeWordPairRepo) FindByID(id string) (*models.WordPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wp, ok := r.pairs[id]
	if !ok {
		return nil, errNotFound
	}
	return &wp, nil
}

func (r *fakeWordPairRepo) Update(wp *models.WordPair) error {
	return r.Create(wp)
}

func (r *fakeWordPairRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pairs, id)
	return nil
}

func (r *fakeWordPairRepo) List(filters repository.WordPairFilters) ([]models.WordPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.WordPair
	for _, wp := range r.pairs {
		if filters.Category != "" && wp.Category != filters.Category {
			continue
		}
		if filters.Difficulty > 0 && wp.Difficulty != filters.Difficulty {
			continue
		}
		result = append(result, wp)
	}
	return result, nil
}

func (r *fakeWordPairRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.pairs)), nil
}

type fakeAIPlayerRepo struct {
	mu  sync.Mutex
	ais map[string]models.AIPlayer
}

func newFakeAIPlayerRepo() *fakeAIPlayerRepo {
	return &fakeAIPlayerRepo{ais: make(map[string]models.AIPlayer)}
}

func (r *fakeAIPlayerRepo) Create(ai *models.AIPlayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ais[ai.ID] = *ai
	return nil
}

func (r *fakeAIPlayerRepo) FindByID(id string) (*models.AIPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ai, ok := r.ais[id]
	if !ok {
		return nil, errNotFound
	}
	return &ai, nil
}

func (r *fakeAIPlayerRepo) FindByIDs(ids []string) ([]models.AIPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.AIPlayer
	for _, id := range ids {
		if ai, ok := r.ais[id]; ok {
			result = append(result, ai)
		}
	}
	return result, nil
}

func (r *fakeAIPlayerRepo) Update(ai *models.AIPlayer) error {
	return r.Create(ai)
}

func (r *fakeAIPlayerRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ais, id)
	return nil
}

func (r *fakeAIPlayerRepo) ListActive() ([]models.AIPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.AIPlayer
	for _, ai := range r.ais {
		if ai.IsActive {
			result = append(result, ai)
		}
	}
	return result, nil
}

func (r *fakeAIPlayerRepo) List() ([]models.AIPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.AIPlayer
	for _, ai := range r.ais {
		result = append(result, ai)
	}
	return result, nil
}
