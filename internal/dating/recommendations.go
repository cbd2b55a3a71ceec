// internal/dating/recommendations.go

package dating

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

const (
	defaultScore         = 0.5
	limitedProfileReason = "Limited profile data available"
	recommendedReason    = "Recommended for you"
	maxReasons           = 3
)

// VectorProvider returns a user's vector, building it when none is stored
type VectorProvider interface {
	Vector(ctx context.Context, userID int64) (*matching.FeatureVector, error)
}

// VectorLookup reads stored vectors without building missing ones
type VectorLookup interface {
	GetVectors(ctx context.Context, userIDs []int64) (map[int64]*matching.FeatureVector, error)
}

type RankerConfig struct {
	Limit     int
	PoolSize  int
	ScanLimit int
	// Seed fixes the tie-break shuffle. Zero reseeds from the clock per request.
	Seed int64
}

// Ranker produces the discovery list for a user
type Ranker struct {
	repo    Repository
	vectors VectorProvider
	stored  VectorLookup
	matcher *matching.Matcher
	cfg     RankerConfig
	logger  logger.Logger
	now     func() time.Time
}

func NewRanker(repo Repository, vectors VectorProvider, stored VectorLookup, cfg RankerConfig, log logger.Logger) *Ranker {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 50
	}
	if cfg.ScanLimit < cfg.PoolSize {
		cfg.ScanLimit = cfg.PoolSize * 10
	}
	return &Ranker{
		repo:    repo,
		vectors: vectors,
		stored:  stored,
		matcher: matching.NewMatcher(),
		cfg:     cfg,
		logger:  log,
		now:     time.Now,
	}
}

// Recommend ranks candidates for userID. A user without a profile gets an empty list.
func (r *Ranker) Recommend(ctx context.Context, userID int64, opts RecommendOptions) ([]*RankedCandidate, error) {
	start := time.Now()
	limit := opts.Limit
	if limit <= 0 {
		limit = r.cfg.Limit
	}

	requester, err := r.repo.GetRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return []*RankedCandidate{}, nil
	}

	pool, err := r.candidatePool(ctx, requester, opts.Filters)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(r.seed()))
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > r.cfg.PoolSize {
		pool = pool[:r.cfg.PoolSize]
	}

	now := r.now()
	path := "cosine"
	var ranked []*RankedCandidate

	vector, err := r.vectors.Vector(ctx, userID)
	switch {
	case err != nil:
		r.logger.Warn("requester vector unavailable, using fallback ranking", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		fallthrough
	case vector == nil || vector.IsTrivial():
		path = "fallback"
		ranked = r.fallback(requester, pool, now)
	default:
		if opts.Explain {
			path = "explain"
		}
		ranked = r.score(ctx, vector, pool, opts.Explain, now)
		sortRanked(ranked)
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	recordRecommendation(path, len(ranked), time.Since(start))
	return ranked, nil
}

func (r *Ranker) seed() int64 {
	if r.cfg.Seed != 0 {
		return r.cfg.Seed
	}
	return time.Now().UnixNano()
}

// candidatePool applies hard, geographic and swipe filters
func (r *Ranker) candidatePool(ctx context.Context, requester *matching.Profile, filters Filters) ([]*Candidate, error) {
	minAge, maxAge := requester.MinAge, requester.MaxAge
	if minAge <= 0 {
		minAge = matching.DefaultMinAge
	}
	if maxAge <= 0 {
		maxAge = matching.DefaultMaxAge
	}

	box, country := locationScope(requester)
	q := CandidateQuery{
		UserID:        requester.UserID,
		MinAge:        minAge,
		MaxAge:        maxAge,
		Gender:        filters.Gender,
		LookingFor:    filters.LookingFor,
		Language:      filters.Language,
		Box:           box,
		Country:       country,
		ExcludeSwiped: true,
		Limit:         r.cfg.ScanLimit,
	}
	profiles, err := r.repo.FindCandidates(ctx, q)
	if err != nil {
		return nil, err
	}
	candidates := make([]*Candidate, 0, len(profiles))
	for _, p := range profiles {
		candidates = append(candidates, &Candidate{Profile: p})
	}
	if candidates = filterByDistance(requester, candidates); len(candidates) > 0 {
		return candidates, nil
	}

	// Everyone nearby was already swiped on; show them again rather than nothing.
	q.ExcludeSwiped = false
	if profiles, err = r.repo.FindCandidates(ctx, q); err != nil {
		return nil, err
	}
	swiped, err := r.repo.SwipedUserIDs(ctx, requester.UserID)
	if err != nil {
		return nil, err
	}
	candidates = candidates[:0]
	for _, p := range profiles {
		candidates = append(candidates, &Candidate{Profile: p, Swiped: swiped[p.UserID]})
	}
	return filterByDistance(requester, candidates), nil
}

func (r *Ranker) score(ctx context.Context, requester *matching.FeatureVector, pool []*Candidate, explain bool, now time.Time) []*RankedCandidate {
	ids := make([]int64, len(pool))
	for i, c := range pool {
		ids[i] = c.Profile.UserID
	}

	stored, err := r.stored.GetVectors(ctx, ids)
	if err != nil {
		r.logger.Warn("candidate vectors unavailable", map[string]interface{}{"error": err.Error()})
		stored = map[int64]*matching.FeatureVector{}
	}

	catalog := interestCatalog(requester, stored)
	requesterEncoding := matching.Encode(requester, catalog)

	ranked := make([]*RankedCandidate, 0, len(pool))
	for _, c := range pool {
		entry := &RankedCandidate{
			CandidateID: c.Profile.UserID,
			Boosted:     boosted(c.Profile, now),
			DistanceKM:  c.DistanceKM,
		}

		candidate, ok := stored[c.Profile.UserID]
		if !ok || candidate == nil {
			entry.Score, entry.Reasons = defaultScore, []string{limitedProfileReason}
			ranked = append(ranked, entry)
			continue
		}
		if err := candidate.Validate(); err != nil {
			r.logger.Warn("candidate vector invalid", map[string]interface{}{
				"candidate_id": c.Profile.UserID,
				"error":        err.Error(),
			})
			recordCandidateDefaulted()
			entry.Score, entry.Reasons = defaultScore, []string{limitedProfileReason}
			ranked = append(ranked, entry)
			continue
		}

		if explain {
			match := r.matcher.Score(requester, candidate)
			entry.Score = match.Score
			entry.Reasons = match.TopReasons(maxReasons)
			entry.Match = match
		} else {
			entry.Score = clamp01(matching.CosineSimilarity(requesterEncoding, matching.Encode(candidate, catalog)))
			entry.Reasons = interestReasons(requester.Interests, candidate.Interests)
		}
		ranked = append(ranked, entry)
	}
	return ranked
}

// fallback ranks without vectors: boosted first, then most shared interests
func (r *Ranker) fallback(requester *matching.Profile, pool []*Candidate, now time.Time) []*RankedCandidate {
	recordFallback()
	interests := lowerAll(requester.Interests)

	type scored struct {
		entry  *RankedCandidate
		shared int
	}
	entries := make([]scored, 0, len(pool))
	for _, c := range pool {
		theirs := lowerAll(c.Profile.Interests)
		entries = append(entries, scored{
			entry: &RankedCandidate{
				CandidateID: c.Profile.UserID,
				Score:       matching.JaccardIndex(interests, theirs),
				Boosted:     boosted(c.Profile, now),
				Reasons:     interestReasons(interests, theirs),
				DistanceKM:  c.DistanceKM,
			},
			shared: len(matching.SharedItems(interests, theirs)),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].entry.Boosted != entries[j].entry.Boosted {
			return entries[i].entry.Boosted
		}
		return entries[i].shared > entries[j].shared
	})

	ranked := make([]*RankedCandidate, len(entries))
	for i, e := range entries {
		ranked[i] = e.entry
	}
	return ranked
}

// sortRanked orders by score, then boosted first. Earlier positions win remaining ties.
func sortRanked(ranked []*RankedCandidate) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Boosted && !ranked[j].Boosted
	})
}

func interestReasons(mine, theirs []string) []string {
	shared := matching.SharedItems(mine, theirs)
	if len(shared) == 0 {
		return []string{recommendedReason}
	}
	if len(shared) > maxReasons {
		shared = shared[:maxReasons]
	}
	return []string{"Shared interests: " + joinComma(shared)}
}

func interestCatalog(requester *matching.FeatureVector, stored map[int64]*matching.FeatureVector) []string {
	seen := make(map[string]bool)
	catalog := make([]string, 0)
	add := func(items []string) {
		for _, item := range items {
			if !seen[item] {
				seen[item] = true
				catalog = append(catalog, item)
			}
		}
	}
	add(requester.Interests)
	for _, v := range stored {
		if v != nil {
			add(v.Interests)
		}
	}
	sort.Strings(catalog)
	return catalog
}

// IsNotFound reports errors that map to 404
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, matching.ErrUserNotFound)
}

// Helper functions
func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func lowerAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.ToLower(strings.TrimSpace(item)))
	}
	return out
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}
