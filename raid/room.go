package raid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"api/domain"
)

type actionEnvelope struct {
	action Action
	from   Player
}

type joinRequest struct {
	player  Player
	errChan chan error
}

type gradeResult struct {
	round  int
	damage int
}

// Room serializes every mutation of one clan's Session through a single actor
// goroutine. Other goroutines only ever talk to it through its channels.
type Room struct {
	clanID  int64
	session *Session

	players []Player

	scorer       Scorer
	results      RaidResultSaver
	turnTimeout  time.Duration
	turnDeadline time.Time
	promptIndex  int

	inbox        chan actionEnvelope
	joinRequests chan joinRequest
	removals     chan Player
	gradeResults chan gradeResult
	ticks        chan time.Time
	pings        chan struct{}
	done         chan struct{}

	log zerolog.Logger
}

func NewRoom(clanID int64, configs RoomConfigs, scorer Scorer, results RaidResultSaver, log zerolog.Logger) *Room {
	return &Room{
		clanID:       clanID,
		session:      NewSession(configs.BossHP),
		scorer:       scorer,
		results:      results,
		turnTimeout:  configs.TurnTimeout,
		inbox:        make(chan actionEnvelope, 1024),
		joinRequests: make(chan joinRequest, 16),
		removals:     make(chan Player, 64),
		gradeResults: make(chan gradeResult, 1),
		ticks:        make(chan time.Time, 24),
		pings:        make(chan struct{}, 1),
		done:         make(chan struct{}),
		log:          log.With().Int64("clan_id", clanID).Logger(),
	}
}

func (r *Room) Dispatch(env actionEnvelope) {
	select {
	case r.inbox <- env:
	case <-r.done:
	}
}

func (r *Room) RequestJoin(jreq joinRequest) {
	select {
	case r.joinRequests <- jreq:
	case <-r.done:
		jreq.errChan <- ErrRoomClosed
	}
}

func (r *Room) RemoveMe(p Player) {
	select {
	case r.removals <- p:
	case <-r.done:
	}
}

func (r *Room) Tick(now time.Time) {
	select {
	case r.ticks <- now:
	default:
	}
}

func (r *Room) PingPlayers() {
	select {
	case r.pings <- struct{}{}:
	default:
	}
}

func (r *Room) CloseAndRelease() {
	close(r.done)
}

// RaidLoop drains the room's channels until the room is closed. It is the
// only goroutine allowed to touch the session or the player list.
func (r *Room) RaidLoop() {
	for {
		select {
		case env := <-r.inbox:
			r.handleAction(env)
		case jreq := <-r.joinRequests:
			r.handleJoinRequest(jreq)
		case p := <-r.removals:
			r.handleRemovePlayer(p)
		case res := <-r.gradeResults:
			r.handleGradeResult(res)
		case now := <-r.ticks:
			r.handleTick(now)
		case <-r.pings:
			for _, p := range r.players {
				p.Ping()
			}
		case <-r.done:
			for _, p := range r.players {
				p.CancelAndRelease()
			}
			r.players = nil
			return
		}
	}
}

func (r *Room) handleJoinRequest(jreq joinRequest) {
	username := jreq.player.Username()
	for i, existing := range r.players {
		if existing.Username() == username {
			// Reconnect: the fresh connection silently supersedes the old one.
			r.players = append(r.players[:i], r.players[i+1:]...)
			existing.CancelAndRelease()
			break
		}
	}

	r.players = append(r.players, jreq.player)
	jreq.player.SetRoom(r)
	if r.session.AddMember(username) {
		r.log.Info().Str("username", username).Msg("member joined raid roster")
	}
	jreq.errChan <- nil

	r.broadcastState()
}

func (r *Room) handleRemovePlayer(p Player) {
	for i, existing := range r.players {
		if existing == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			p.CancelAndRelease()
			r.log.Info().Str("username", p.Username()).Msg("connection removed")
			return
		}
	}
}

func (r *Room) handleAction(env actionEnvelope) {
	switch env.action.Type {
	case ActionStartRaid:
		r.handleStartRaid(env.from)
	case ActionSubmitPart:
		r.handleSubmitPart(env.from, env.action.Content)
	}
}

func (r *Room) handleStartRaid(from Player) {
	prompt := raidPrompts[(r.promptIndex+1)%len(raidPrompts)]
	if err := r.session.Start(prompt); err != nil {
		r.notify(from, "A raid cannot be started right now.")
		return
	}
	r.promptIndex++
	r.log.Info().Str("started_by", from.Username()).Int("round", r.session.Round()).Msg("raid round started")
	r.armTurnDeadline()
	r.broadcastState()
}

func (r *Room) handleSubmitPart(from Player, content string) {
	roundDone, err := r.session.Submit(from.Username(), content)
	switch {
	case errors.Is(err, ErrWrongPhase):
		r.notify(from, "There is no active turn to submit to.")
		return
	case errors.Is(err, ErrNotYourTurn):
		r.notify(from, "It is not your turn.")
		return
	case err != nil:
		return
	}

	if roundDone {
		r.broadcastNotification("All parts submitted! Assessing damage...")
		r.startGrading()
	} else {
		r.armTurnDeadline()
	}
	r.broadcastState()
}

// startGrading hands the completed round to the scorer off the actor
// goroutine; the result comes back through gradeResults so the commit is
// serialized like every other mutation.
func (r *Room) startGrading() {
	round := r.session.Round()
	text := r.session.RoundText()
	go func() {
		damage := r.scorer.Score(context.Background(), text)
		select {
		case r.gradeResults <- gradeResult{round: round, damage: damage}:
		case <-r.done:
		}
	}()
}

func (r *Room) handleGradeResult(res gradeResult) {
	if r.session.Phase() != PhaseGrading || res.round != r.session.Round() {
		return
	}

	finished := r.session.ApplyDamage(res.damage)
	r.log.Info().Int("damage", res.damage).Int("boss_hp", r.session.BossHP()).Msg("round graded")

	r.broadcastNotification(fmt.Sprintf("CRITICAL HIT! %d Damage Dealt.", res.damage))
	r.broadcastState()

	if finished {
		r.saveResult()
	}
}

func (r *Room) saveResult() {
	result := domain.RaidResult{
		ClanId:       r.clanID,
		Rounds:       r.session.Round(),
		DamageDealt:  r.session.DamageDealt(),
		BossDefeated: true,
	}
	log := r.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := r.results.SaveRaidResult(ctx, result); err != nil {
			log.Error().Err(err).Msg("failed to record raid outcome")
		}
	}()
}

func (r *Room) armTurnDeadline() {
	if r.turnTimeout > 0 {
		r.turnDeadline = time.Now().Add(r.turnTimeout)
	}
}

// handleTick auto-submits an empty part for a stalled turn when a turn
// timeout is configured. With the timeout disabled the round simply waits for
// the absent member to reconnect.
func (r *Room) handleTick(now time.Time) {
	if r.turnTimeout <= 0 || r.session.Phase() != PhaseActive || now.Before(r.turnDeadline) {
		return
	}
	active, ok := r.session.ActivePlayer()
	if !ok {
		return
	}

	r.log.Warn().Str("username", active).Msg("turn timed out, skipping")
	roundDone, err := r.session.Submit(active, "")
	if err != nil {
		return
	}
	r.broadcastNotification(fmt.Sprintf("%s took too long. Their part was skipped.", active))
	if roundDone {
		r.broadcastNotification("All parts submitted! Assessing damage...")
		r.startGrading()
	} else {
		r.armTurnDeadline()
	}
	r.broadcastState()
}

func (r *Room) broadcastState() {
	r.broadcast(marshalStateUpdate(r.session.Snapshot()))
}

func (r *Room) broadcastNotification(text string) {
	r.broadcast(marshalNotification(text))
}

// broadcast delivers data to every connection, dropping the ones that fail.
// A dead participant never blocks delivery to the rest of the clan.
func (r *Room) broadcast(data []byte) {
	var dropped []Player
	for _, p := range r.players {
		if err := p.Send(data); err != nil {
			dropped = append(dropped, p)
		}
	}
	for _, p := range dropped {
		r.log.Warn().Str("username", p.Username()).Msg("dropping unresponsive connection")
		r.handleRemovePlayer(p)
	}
}

func (r *Room) notify(p Player, text string) {
	if err := p.Send(marshalNotification(text)); err != nil {
		r.handleRemovePlayer(p)
	}
}
