package raid

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RoomConfigs carries the knobs the registry hands to new rooms. A
// TurnTimeout of zero disables turn skipping entirely.
type RoomConfigs struct {
	BossHP      int
	TurnTimeout time.Duration
}

type registryJoinRequest struct {
	clanID  int64
	player  Player
	errChan chan error
}

// Registry owns the clan-id to room mapping. Rooms are created lazily on the
// first connection and live for the rest of the process; rooms for different
// clans run fully in parallel.
type Registry struct {
	rooms         map[int64]*Room
	configs       RoomConfigs
	scorer        Scorer
	results       RaidResultSaver
	joinReqs      chan registryJoinRequest
	tickerCreator PeriodicTickerChannelCreator
	log           zerolog.Logger
}

func NewRegistry(configs RoomConfigs, scorer Scorer, results RaidResultSaver, tickerCreator PeriodicTickerChannelCreator, log zerolog.Logger) *Registry {
	return &Registry{
		rooms:         make(map[int64]*Room),
		configs:       configs,
		scorer:        scorer,
		results:       results,
		joinReqs:      make(chan registryJoinRequest, 256),
		tickerCreator: tickerCreator,
		log:           log,
	}
}

// ForwardJoin routes a freshly-upgraded connection to its clan's room and
// waits for the room to accept it.
func (reg *Registry) ForwardJoin(ctx context.Context, clanID int64, player Player) error {
	errChan := make(chan error, 1)
	select {
	case reg.joinReqs <- registryJoinRequest{clanID: clanID, player: player, errChan: errChan}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (reg *Registry) RegistryActor(started chan struct{}) {
	ticker := reg.tickerCreator.Create(time.Second)
	pingTicker := reg.tickerCreator.Create(time.Second * 30)

	close(started)

	for {
		select {
		case now := <-ticker:
			for _, r := range reg.rooms {
				r.Tick(now)
			}
		case <-pingTicker:
			for _, r := range reg.rooms {
				r.PingPlayers()
			}
		case jreq := <-reg.joinReqs:
			reg.handleJoinReq(jreq)
		}
	}
}

func (reg *Registry) handleJoinReq(jreq registryJoinRequest) {
	room, ok := reg.rooms[jreq.clanID]
	if !ok {
		room = NewRoom(jreq.clanID, reg.configs, reg.scorer, reg.results, reg.log)
		reg.rooms[jreq.clanID] = room
		go room.RaidLoop()
		reg.log.Info().Int64("clan_id", jreq.clanID).Msg("raid room created")
	}
	room.RequestJoin(joinRequest{player: jreq.player, errChan: jreq.errChan})
}
