package model

import (
	"sync"
	"time"
)

// RoundKind selects the answer shape and canonicalization for a round
type RoundKind string

const (
	RoundTimeGuess   RoundKind = "time_guess"   // clock-literal guesses compared in seconds
	RoundFixedChoice RoundKind = "fixed_choice" // one of an enumerated option list
)

// RoundState represents the lifecycle phase of a round
type RoundState string

const (
	RoundOpen     RoundState = "open"     // waiting for a qualifying answer
	RoundAnswered RoundState = "answered" // a qualifying answer was accepted
	RoundExpired  RoundState = "expired"  // the deadline elapsed first
)

// ToleranceBand is one scoring tier: any difference up to MaxDifference
// (inclusive) earns Points
type ToleranceBand struct {
	MaxDifference int64
	Points        int64
}

// BandTable is an ordered list of tolerance bands, ascending by
// MaxDifference. Differences beyond the last band score zero.
type BandTable []ToleranceBand

// Score returns the points for an absolute difference: the points of the
// first band whose MaxDifference covers it
func (t BandTable) Score(difference int64) int64 {
	for _, b := range t {
		if difference <= b.MaxDifference {
			return b.Points
		}
	}
	return 0
}

// MaxPoints returns the points awarded for an exact answer
func (t BandTable) MaxPoints() int64 {
	return t.Score(0)
}

// RoundScope limits which messages a round will consider
type RoundScope struct {
	UserID    UserID
	ChannelID ChannelID
}

// Matches reports whether a message falls inside the scope
func (s RoundScope) Matches(msg TextMessage) bool {
	return msg.AuthorID == s.UserID && msg.ChannelID == s.ChannelID
}

// Round is one transient challenge: a prompt, a canonical answer, scoring
// bands, and a single-use state machine. Rounds are never persisted.
type Round struct {
	Kind         RoundKind
	Prompt       string
	Answer       string   // canonical correct answer
	Options      []string // fixed-choice only
	Bands        BandTable
	Scope        RoundScope
	Deadline     time.Time
	ReferenceURL string // optional link announced with the outcome

	mu    sync.Mutex
	state RoundState
}

// State returns the round's current state
func (r *Round) State() RoundState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == "" {
		return RoundOpen
	}
	return r.state
}

// Resolve commits the round's single Open->Answered or Open->Expired
// transition. It reports false if the round was already resolved, so a
// racing answer and expiry can only produce one winner.
func (r *Round) Resolve(to RoundState) bool {
	if to != RoundAnswered && to != RoundExpired {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != "" && r.state != RoundOpen {
		return false
	}
	r.state = to
	return true
}
