package raid

import "strings"

type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseActive
	PhaseGrading
	PhaseFinished
)

var phaseNames = [...]string{
	PhaseWaiting:  "waiting",
	PhaseActive:   "active",
	PhaseGrading:  "grading",
	PhaseFinished: "finished",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// PartsPerRound is how many contributions make up one scored round.
const PartsPerRound = 3

// Session is the turn-based raid state for one clan room. It is owned by the
// room actor and must never be touched from any other goroutine.
type Session struct {
	phase       Phase
	turnIndex   int
	roster      []string
	responses   []string
	bossHP      int
	maxBossHP   int
	prompt      string
	round       int
	damageDealt int
}

func NewSession(bossHP int) *Session {
	return &Session{
		phase:     PhaseWaiting,
		responses: make([]string, PartsPerRound),
		bossHP:    bossHP,
		maxBossHP: bossHP,
		prompt:    raidPrompts[0],
	}
}

// AddMember appends the handle to the roster unless it is already there.
// Join order is turn order, and members who disconnect keep their slot so
// the order stays stable across rejoins.
func (s *Session) AddMember(username string) bool {
	for _, member := range s.roster {
		if member == username {
			return false
		}
	}
	s.roster = append(s.roster, username)
	return true
}

// ActivePlayer returns the handle whose turn it is. There is no active player
// outside the active phase or while the roster is empty.
func (s *Session) ActivePlayer() (string, bool) {
	if s.phase != PhaseActive || len(s.roster) == 0 {
		return "", false
	}
	return s.roster[s.turnIndex%len(s.roster)], true
}

// Start begins a new round. From waiting it keeps the boss HP carried over
// from previous rounds; from finished it reopens the session as a fresh
// lifecycle, so responses, turn index and boss HP reset together.
func (s *Session) Start(prompt string) error {
	switch s.phase {
	case PhaseWaiting:
	case PhaseFinished:
		s.bossHP = s.maxBossHP
		s.damageDealt = 0
		s.round = 0
	default:
		return ErrWrongPhase
	}
	s.phase = PhaseActive
	s.prompt = prompt
	s.turnIndex = 0
	s.responses = make([]string, PartsPerRound)
	s.round++
	return nil
}

// Submit records the active player's contribution and advances the turn.
// Filling the last slot moves the session to grading and reports the round as
// complete.
func (s *Session) Submit(from, content string) (bool, error) {
	active, ok := s.ActivePlayer()
	if !ok {
		return false, ErrWrongPhase
	}
	if active != from {
		return false, ErrNotYourTurn
	}
	s.responses[s.turnIndex] = content
	s.turnIndex++
	if s.turnIndex >= PartsPerRound {
		s.phase = PhaseGrading
		return true, nil
	}
	return false, nil
}

// ApplyDamage commits a grading result. The session finishes when the boss
// HP reaches zero, otherwise it goes back to waiting for the next round.
func (s *Session) ApplyDamage(damage int) bool {
	if s.phase != PhaseGrading {
		return false
	}
	s.bossHP -= damage
	s.damageDealt += damage
	if s.bossHP <= 0 {
		s.phase = PhaseFinished
		return true
	}
	s.phase = PhaseWaiting
	return false
}

// RoundText concatenates the three contributions for the scoring gateway.
func (s *Session) RoundText() string {
	return strings.Join(s.responses, " ")
}

func (s *Session) Phase() Phase     { return s.phase }
func (s *Session) Round() int       { return s.round }
func (s *Session) BossHP() int      { return s.bossHP }
func (s *Session) DamageDealt() int { return s.damageDealt }

func (s *Session) Snapshot() StateData {
	members := make([]string, len(s.roster))
	copy(members, s.roster)

	data := StateData{
		Status:    s.phase.String(),
		Responses: append([]string(nil), s.responses...),
		BossHP:    s.bossHP,
		Question:  s.prompt,
		Members:   members,
	}
	if active, ok := s.ActivePlayer(); ok {
		data.ActivePlayer = &active
	}
	return data
}
