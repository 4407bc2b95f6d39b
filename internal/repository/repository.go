package repository

import "undercover_web/internal/storage"

type Repositories struct {
	User     UserRepository
	Room     RoomRepository
	Game     GameRepository
	WordPair WordPairRepository
	AIPlayer AIPlayerRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Room:     NewRoomRepository(db),
		Game:     NewGameRepository(db),
		WordPair: NewWordPairRepository(db),
		AIPlayer: NewAIPlayerRepository(db),
	}
}
