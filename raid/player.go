package raid

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// wsPlayer pumps one participant's websocket in and out of the room actor.
// ReadPump and WritePump each run on their own goroutine; everything else is
// called from the room actor goroutine only.
type wsPlayer struct {
	id       string
	username string
	socket   WebsocketConnection
	limiter  *rate.Limiter
	inbox    chan []byte
	pingChan chan struct{}
	done     chan struct{}
	room     *Room
	log      zerolog.Logger
}

func NewPlayer(username string, socket WebsocketConnection, log zerolog.Logger) *wsPlayer {
	id := uuid.NewString()
	return &wsPlayer{
		id:       id,
		username: username,
		socket:   socket,
		limiter:  rate.NewLimiter(5, 10),
		inbox:    make(chan []byte, 256),
		pingChan: make(chan struct{}, 1),
		done:     make(chan struct{}),
		log:      log.With().Str("conn_id", id).Str("username", username).Logger(),
	}
}

func (p *wsPlayer) Username() string { return p.username }

func (p *wsPlayer) SetRoom(r *Room) { p.room = r }

// Send enqueues data for the write pump. It never blocks: a participant that
// cannot drain its buffer is treated as disconnected by the caller, and a
// released connection reports an error instead of accepting the frame.
// Envelopes from this connection can still be queued in the room after it has
// been superseded, so late Sends must stay safe.
func (p *wsPlayer) Send(data []byte) error {
	select {
	case <-p.done:
		return ErrConnectionReleased
	default:
	}
	select {
	case p.inbox <- data:
		return nil
	default:
		return ErrSlowConsumer
	}
}

func (p *wsPlayer) Ping() {
	select {
	case p.pingChan <- struct{}{}:
	default:
	}
}

// CancelAndRelease closes the transport and stops the write pump. The room
// actor calls this exactly once, after unlinking the player from the room.
// The inbox stays open so a stale envelope processed later cannot make the
// actor send on a closed channel.
func (p *wsPlayer) CancelAndRelease() {
	p.socket.Close("")
	close(p.done)
}

// ReadPump decodes inbound frames and forwards well-formed actions to the
// room. Malformed frames are answered with a targeted notification and never
// reach the session mutation path.
func (p *wsPlayer) ReadPump() {
	defer p.room.RemoveMe(p)

	for {
		data, err := p.socket.Read()
		if err != nil {
			return
		}

		if !p.limiter.Allow() {
			p.log.Debug().Msg("rate limit exceeded, dropping frame")
			continue
		}

		var action Action
		if err := json.Unmarshal(data, &action); err != nil {
			p.log.Debug().Err(err).Msg("malformed frame")
			_ = p.Send(marshalNotification("Malformed message."))
			continue
		}

		switch action.Type {
		case ActionStartRaid:
		case ActionSubmitPart:
			if strings.TrimSpace(action.Content) == "" {
				_ = p.Send(marshalNotification("submit_part requires non-empty content."))
				continue
			}
		default:
			_ = p.Send(marshalNotification("Unknown action type."))
			continue
		}

		p.room.Dispatch(actionEnvelope{action: action, from: p})
	}
}

func (p *wsPlayer) WritePump() {
	for {
		select {
		case <-p.done:
			return
		case data := <-p.inbox:
			if err := p.socket.Write(data); err != nil {
				return
			}
		case <-p.pingChan:
			if err := p.socket.Ping(); err != nil {
				return
			}
		}
	}
}
