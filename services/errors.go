package services

import "errors"

// Service-level sentinel errors. Handlers map these onto HTTP responses;
// anything else surfaces as an internal error.
var (
	// Input unavailable: retry later once the feed publishes the data.
	ErrResultsNotAvailable = errors.New("official race results are not available yet")

	// Configuration missing: the operation cannot proceed for this league.
	ErrLeagueNotFound  = errors.New("league not found")
	ErrNoLeagueMembers = errors.New("league has no members eligible for scoring")
	ErrNoStandings     = errors.New("league has no season standings to run the chase on")
	ErrUserNotFound    = errors.New("user not found")
	ErrNotLeagueMember = errors.New("user is not a member of this league")
	ErrRaceNotFound    = errors.New("race not found in the season schedule")
	ErrInvalidAvatar   = errors.New("avatar must be a png, jpeg or webp image")
	ErrStorageDisabled = errors.New("file storage is not configured")

	// State violations: the request conflicts with the current season state.
	ErrScoringInProgress    = errors.New("scoring for this race is already in progress")
	ErrChaseInProgress      = errors.New("a chase transition for this league is already in progress")
	ErrChaseAlreadyStarted  = errors.New("the chase has already started for this league and season")
	ErrChaseNotStarted      = errors.New("the chase has not started for this league and season")
	ErrRoundNotActive       = errors.New("the requested round is not the active chase round")
	ErrInvalidRound         = errors.New("round number must be between 1 and 3")
	ErrChampionshipNotReady = errors.New("the championship round is not active yet")
	ErrRaceLocked           = errors.New("picks are locked once the race has run")
)
