package domain

// User is a participant record. ClanId is 0 when the user has not joined a
// clan yet.
type User struct {
	Id       string
	Username string
	ClanId   int64
	XP       int
}

type Clan struct {
	Id     int64
	Name   string
	Region string
}

// RaidResult is the final outcome of one raid session lifecycle, written to
// storage when the boss goes down. Leaderboards and other subsystems read it
// from there.
type RaidResult struct {
	ClanId       int64
	Rounds       int
	DamageDealt  int
	BossDefeated bool
}
