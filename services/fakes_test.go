package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/racefan-dev/fantasy-chase/models"
	"github.com/racefan-dev/fantasy-chase/nascar"
	"github.com/racefan-dev/fantasy-chase/repositories"
)

// In-memory fakes shared by the service tests. They honor the same contracts
// as the postgres implementations (sentinel errors, exec passthrough) so the
// services under test cannot tell the difference.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTxRunner runs the unit of work directly; repositories tolerate a nil
// executor by falling back to their own handle, which for fakes is memory.
type fakeTxRunner struct {
	beginErr error
	runs     int
}

func (r *fakeTxRunner) RunInTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if r.beginErr != nil {
		return r.beginErr
	}
	r.runs++
	return fn(nil)
}

type fakeLeagueRepo struct {
	leagues  map[int]*models.League
	settings map[int]*models.LeagueSettings
	members  map[int][]*models.LeagueMember
}

func newFakeLeagueRepo() *fakeLeagueRepo {
	return &fakeLeagueRepo{
		leagues:  make(map[int]*models.League),
		settings: make(map[int]*models.LeagueSettings),
		members:  make(map[int][]*models.LeagueMember),
	}
}

func (r *fakeLeagueRepo) GetByID(_ context.Context, id int) (*models.League, error) {
	league, ok := r.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	return league, nil
}

func (r *fakeLeagueRepo) List(_ context.Context) ([]*models.League, error) {
	out := make([]*models.League, 0, len(r.leagues))
	for _, l := range r.leagues {
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeLeagueRepo) GetSettings(_ context.Context, leagueID int) (*models.LeagueSettings, error) {
	s, ok := r.settings[leagueID]
	if !ok {
		return nil, repositories.ErrLeagueSettingsNotFound
	}
	return s, nil
}

func (r *fakeLeagueRepo) ListMembers(_ context.Context, leagueID int) ([]*models.LeagueMember, error) {
	return r.members[leagueID], nil
}

func (r *fakeLeagueRepo) IsMember(_ context.Context, leagueID int, userID string) (bool, error) {
	for _, m := range r.members[leagueID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLeagueRepo) CreateDemoLeague(_ context.Context, _ repositories.SQLExecutor, league *models.League) error {
	league.ID = len(r.leagues) + 1
	league.IsDemo = true
	r.leagues[league.ID] = league
	return nil
}

func (r *fakeLeagueRepo) AddDemoMember(_ context.Context, _ repositories.SQLExecutor, member *models.LeagueMember) error {
	r.members[member.LeagueID] = append(r.members[member.LeagueID], member)
	return nil
}

func (r *fakeLeagueRepo) addMembers(leagueID int, status models.PaymentStatus, userIDs ...string) {
	for _, id := range userIDs {
		r.members[leagueID] = append(r.members[leagueID], &models.LeagueMember{
			LeagueID:      leagueID,
			UserID:        id,
			PaymentStatus: status,
		})
	}
}

type fakePickRepo struct {
	picks []*models.DriverPick
}

func (r *fakePickRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, pick *models.DriverPick) error {
	for i, p := range r.picks {
		if p.LeagueID == pick.LeagueID && p.UserID == pick.UserID && p.RaceID == pick.RaceID && p.Season == pick.Season {
			pick.ID = p.ID
			r.picks[i] = pick
			return nil
		}
	}
	pick.ID = len(r.picks) + 1
	r.picks = append(r.picks, pick)
	return nil
}

func (r *fakePickRepo) ListByRace(_ context.Context, leagueID, raceID, season int) ([]*models.DriverPick, error) {
	out := make([]*models.DriverPick, 0)
	for _, p := range r.picks {
		if p.LeagueID == leagueID && p.RaceID == raceID && p.Season == season {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePickRepo) ListByUser(_ context.Context, leagueID int, userID string, season int) ([]*models.DriverPick, error) {
	out := make([]*models.DriverPick, 0)
	for _, p := range r.picks {
		if p.LeagueID == leagueID && p.UserID == userID && p.Season == season {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePickRepo) DriverUsage(_ context.Context, leagueID, season int) (map[string]map[int]int, error) {
	usage := make(map[string]map[int]int)
	for _, p := range r.picks {
		if p.LeagueID != leagueID || p.Season != season || p.IsFreePick {
			continue
		}
		if usage[p.UserID] == nil {
			usage[p.UserID] = make(map[int]int)
		}
		usage[p.UserID][p.DriverID]++
	}
	return usage, nil
}

type fakeScoreRepo struct {
	rows   []*models.UserRaceScore
	nextID int
}

func (r *fakeScoreRepo) ListByRace(_ context.Context, _ repositories.SQLExecutor, leagueID, raceID, season int) ([]*models.UserRaceScore, error) {
	out := make([]*models.UserRaceScore, 0)
	for _, row := range r.rows {
		if row.LeagueID == leagueID && row.RaceID == raceID && row.Season == season {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeScoreRepo) DeleteByRace(_ context.Context, _ repositories.SQLExecutor, leagueID, raceID, season int) error {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if !(row.LeagueID == leagueID && row.RaceID == raceID && row.Season == season) {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *fakeScoreRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, scores []*models.UserRaceScore) error {
	for _, s := range scores {
		r.nextID++
		s.ID = r.nextID
		r.rows = append(r.rows, s)
	}
	return nil
}

func (r *fakeScoreRepo) ListByUser(_ context.Context, leagueID int, userID string, season int) ([]*models.UserRaceScore, error) {
	out := make([]*models.UserRaceScore, 0)
	for _, row := range r.rows {
		if row.LeagueID == leagueID && row.UserID == userID && row.Season == season {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeScoreRepo) ScoredRaceIDs(_ context.Context, leagueID, season int) (map[int]bool, error) {
	scored := make(map[int]bool)
	for _, row := range r.rows {
		if row.LeagueID == leagueID && row.Season == season {
			scored[row.RaceID] = true
		}
	}
	return scored, nil
}

type fakeStandingRepo struct {
	standings map[string]*models.SeasonStanding
	nextID    int
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{standings: make(map[string]*models.SeasonStanding)}
}

func (r *fakeStandingRepo) key(leagueID int, userID string, season int) string {
	return fmt.Sprintf("%d:%s:%d", leagueID, userID, season)
}

func (r *fakeStandingRepo) GetOrCreate(_ context.Context, _ repositories.SQLExecutor, leagueID int, userID string, season int) (*models.SeasonStanding, error) {
	k := r.key(leagueID, userID, season)
	if s, ok := r.standings[k]; ok {
		return s, nil
	}
	r.nextID++
	s := &models.SeasonStanding{
		ID:       r.nextID,
		LeagueID: leagueID,
		UserID:   userID,
		Season:   season,
	}
	r.standings[k] = s
	return s, nil
}

func (r *fakeStandingRepo) Update(_ context.Context, _ repositories.SQLExecutor, standing *models.SeasonStanding) error {
	k := r.key(standing.LeagueID, standing.UserID, standing.Season)
	if _, ok := r.standings[k]; !ok {
		return repositories.ErrStandingNotFound
	}
	r.standings[k] = standing
	return nil
}

func (r *fakeStandingRepo) ListByLeagueSeason(_ context.Context, _ repositories.SQLExecutor, leagueID, season int) ([]*models.SeasonStanding, error) {
	out := make([]*models.SeasonStanding, 0)
	for _, s := range r.standings {
		if s.LeagueID == leagueID && s.Season == season {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStandingRepo) get(leagueID int, userID string, season int) *models.SeasonStanding {
	return r.standings[r.key(leagueID, userID, season)]
}

func (r *fakeStandingRepo) seed(s *models.SeasonStanding) {
	r.nextID++
	s.ID = r.nextID
	r.standings[r.key(s.LeagueID, s.UserID, s.Season)] = s
}

type fakeRoundRepo struct {
	rounds []*models.ChaseRound
}

func (r *fakeRoundRepo) Create(_ context.Context, _ repositories.SQLExecutor, round *models.ChaseRound) error {
	round.ID = len(r.rounds) + 1
	now := time.Now()
	round.StartedAt = &now
	round.CreatedAt = now
	r.rounds = append(r.rounds, round)
	return nil
}

func (r *fakeRoundRepo) GetActive(_ context.Context, _ repositories.SQLExecutor, leagueID, season int) (*models.ChaseRound, error) {
	for _, round := range r.rounds {
		if round.LeagueID == leagueID && round.Season == season && round.IsActive {
			return round, nil
		}
	}
	return nil, repositories.ErrChaseRoundNotFound
}

func (r *fakeRoundRepo) AnyExists(_ context.Context, _ repositories.SQLExecutor, leagueID, season int) (bool, error) {
	for _, round := range r.rounds {
		if round.LeagueID == leagueID && round.Season == season {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRoundRepo) Close(_ context.Context, _ repositories.SQLExecutor, roundID int) error {
	for _, round := range r.rounds {
		if round.ID == roundID {
			round.IsActive = false
			now := time.Now()
			round.CompletedAt = &now
			return nil
		}
	}
	return repositories.ErrChaseRoundNotFound
}

func (r *fakeRoundRepo) ListBySeason(_ context.Context, leagueID, season int) ([]*models.ChaseRound, error) {
	out := make([]*models.ChaseRound, 0)
	for _, round := range r.rounds {
		if round.LeagueID == leagueID && round.Season == season {
			out = append(out, round)
		}
	}
	return out, nil
}

func (r *fakeRoundRepo) byNumber(number int) *models.ChaseRound {
	for _, round := range r.rounds {
		if round.RoundNumber == number {
			return round
		}
	}
	return nil
}

type fakeElimRepo struct {
	records map[string]*models.ChaseElimination
}

func newFakeElimRepo() *fakeElimRepo {
	return &fakeElimRepo{records: make(map[string]*models.ChaseElimination)}
}

func (r *fakeElimRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, elim *models.ChaseElimination) error {
	key := fmt.Sprintf("%d:%s:%d", elim.LeagueID, elim.UserID, elim.Season)
	if prev, ok := r.records[key]; ok {
		elim.ID = prev.ID
	} else {
		elim.ID = len(r.records) + 1
	}
	r.records[key] = elim
	return nil
}

func (r *fakeElimRepo) ListBySeason(_ context.Context, _ repositories.SQLExecutor, leagueID, season int) ([]*models.ChaseElimination, error) {
	out := make([]*models.ChaseElimination, 0)
	for _, e := range r.records {
		if e.LeagueID == leagueID && e.Season == season {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeElimRepo) get(leagueID int, userID string, season int) *models.ChaseElimination {
	return r.records[fmt.Sprintf("%d:%s:%d", leagueID, userID, season)]
}

type fakeFreePickRepo struct {
	designated map[int]bool
	rows       []*models.FreePickRace
}

func (r *fakeFreePickRepo) Exists(_ context.Context, _, raceID, _ int) (bool, error) {
	return r.designated[raceID], nil
}

func (r *fakeFreePickRepo) ListBySeason(_ context.Context, leagueID, season int) ([]*models.FreePickRace, error) {
	out := make([]*models.FreePickRace, 0)
	for _, fp := range r.rows {
		if fp.LeagueID == leagueID && fp.Season == season {
			out = append(out, fp)
		}
	}
	return out, nil
}

func (r *fakeFreePickRepo) designate(fp *models.FreePickRace) {
	r.designated[fp.RaceID] = true
	r.rows = append(r.rows, fp)
}

type fakeResultCacheRepo struct {
	entries map[int][]*models.RaceResultEntry
}

func newFakeResultCacheRepo() *fakeResultCacheRepo {
	return &fakeResultCacheRepo{entries: make(map[int][]*models.RaceResultEntry)}
}

func (r *fakeResultCacheRepo) ReplaceForRace(_ context.Context, _ repositories.SQLExecutor, raceID, _ int, _ models.SeriesType, entries []*models.RaceResultEntry) error {
	r.entries[raceID] = entries
	return nil
}

func (r *fakeResultCacheRepo) ListByRace(_ context.Context, raceID, _ int, _ models.SeriesType) ([]*models.RaceResultEntry, error) {
	return r.entries[raceID], nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.DisplayName = displayName
	return nil
}

func (r *fakeUserRepo) UpdateAvatarKey(_ context.Context, id, avatarKey string) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.AvatarKey = &avatarKey
	return nil
}

func (r *fakeUserRepo) Create(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

// fakeFeedClient serves canned race lists and weekend feeds.
type fakeFeedClient struct {
	raceLists map[string][]nascar.RaceListEntry
	feeds     map[int]*nascar.WeekendFeed
	feedErr   error
}

func newFakeFeedClient() *fakeFeedClient {
	return &fakeFeedClient{
		raceLists: make(map[string][]nascar.RaceListEntry),
		feeds:     make(map[int]*nascar.WeekendFeed),
	}
}

func (c *fakeFeedClient) RaceList(_ context.Context, season int, series models.SeriesType) ([]nascar.RaceListEntry, error) {
	return c.raceLists[fmt.Sprintf("%d:%s", season, series)], nil
}

func (c *fakeFeedClient) WeekendFeed(_ context.Context, _ int, _ models.SeriesType, raceID int) (*nascar.WeekendFeed, error) {
	if c.feedErr != nil {
		return nil, c.feedErr
	}
	feed, ok := c.feeds[raceID]
	if !ok {
		return nil, nascar.ErrNotAvailable
	}
	return feed, nil
}

func (c *fakeFeedClient) setRaceList(season int, series models.SeriesType, races []nascar.RaceListEntry) {
	c.raceLists[fmt.Sprintf("%d:%s", season, series)] = races
}
