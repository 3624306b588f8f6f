package match

import (
	"sort"

	"github.com/khoahotran/usermatch/internal/domain/user"
)

// TopMatches caps the scored result. It is independent of Config.MatchLimit,
// which only sizes the unscored fallback.
const TopMatches = 3

const (
	DefaultMatchLimit = 3
	DefaultAgeLimit   = 10
)

type Config struct {
	MatchLimit int
	AgeLimit   int
}

func DefaultConfig() Config {
	return Config{MatchLimit: DefaultMatchLimit, AgeLimit: DefaultAgeLimit}
}

// InAgeWindow reports whether age lies in [subjectAge-limit, subjectAge+limit].
func InAgeWindow(subjectAge, age, limit int) bool {
	return age >= subjectAge-limit && age <= subjectAge+limit
}

// Score counts the distinct interests two profiles share.
func Score(subject, candidate []string) int {
	if len(subject) == 0 || len(candidate) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(subject))
	for _, s := range subject {
		set[s] = struct{}{}
	}
	score := 0
	for _, c := range candidate {
		if _, ok := set[c]; ok {
			score++
			delete(set, c)
		}
	}
	return score
}

type scored struct {
	profile *user.UserProfile
	score   int
}

// Rank orders pool by descending Score against subject and keeps the first
// TopMatches. Equal scores keep their pool order. Zero scores are not dropped.
func Rank(subject *user.UserProfile, pool []*user.UserProfile) []*user.UserProfile {
	candidates := make([]scored, len(pool))
	for i, p := range pool {
		candidates[i] = scored{profile: p, score: Score(subject.Interests, p.Interests)}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > TopMatches {
		candidates = candidates[:TopMatches]
	}
	out := make([]*user.UserProfile, len(candidates))
	for i, c := range candidates {
		out[i] = c.profile
	}
	return out
}
