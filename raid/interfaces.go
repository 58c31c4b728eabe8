package raid

import (
	"context"
	"time"

	"api/domain"
)

// WebsocketConnection abstracts the transport endpoint of one participant.
type WebsocketConnection interface {
	Close(errCode string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

// Player is a connected participant as seen by the room actor.
type Player interface {
	Username() string
	Send(data []byte) error
	Ping()
	SetRoom(r *Room)
	CancelAndRelease()
}

// Scorer converts the concatenated round text into a damage value. It owns
// its own timeout and fallback policy and never returns an error: scoring
// failure must not stall the state machine.
type Scorer interface {
	Score(ctx context.Context, roundText string) int
}

// RaidResultSaver records the final outcome of a raid session.
type RaidResultSaver interface {
	SaveRaidResult(ctx context.Context, result domain.RaidResult) error
}

// UserStore is the persistence edge consulted when a connection is
// established.
type UserStore interface {
	GetOrCreateUser(ctx context.Context, username string) (domain.User, error)
}

// ClanStore resolves clan ids at the connection edge. Joins for clans that do
// not exist are rejected before any room is created.
type ClanStore interface {
	GetClanById(ctx context.Context, id int64) (domain.Clan, error)
}

type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}
