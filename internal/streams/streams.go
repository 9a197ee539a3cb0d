// Package streams assigns updates to relevance tiers and rebalances each
// tier so no single authority dominates the top of the list.
package streams

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/timeutil"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/updates"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

// Tier boundaries: high >= 70, medium in [40, 70), low < 40.
const (
	HighTierFloor   = 70.0
	MediumTierFloor = 40.0
)

// DefaultLimitPerAuthority caps one authority's admissions into a tier's
// interleaved head.
const DefaultLimitPerAuthority = 3

// Scorer is the external relevance-scoring collaborator.
type Scorer interface {
	Score(ctx context.Context, update models.RegulatoryUpdate, profile *models.Profile) (float64, error)
}

// Options tunes stream construction.
type Options struct {
	LimitPerAuthority int
	ReferenceDate     time.Time
}

// Build projects each update into a DigestEntry and buckets it by relevance
// tier, then rebalances each tier for authority fairness. Scoring failures
// degrade the update's score to zero rather than dropping it.
func Build(ctx context.Context, pool []models.RegulatoryUpdate, profile *models.Profile, pinned map[string]bool, scorer Scorer, opts Options) models.StreamBuckets {
	limit := opts.LimitPerAuthority
	if limit <= 0 {
		limit = DefaultLimitPerAuthority
	}

	var buckets models.StreamBuckets
	for _, u := range pool {
		score := 0.0
		if scorer != nil {
			if s, err := scorer.Score(ctx, u, profile); err == nil && !math.IsNaN(s) {
				score = math.Min(100, math.Max(0, s))
			}
		}

		entry := models.DigestEntry{
			Update:           u,
			RelevanceScore:   score,
			Personas:         updates.DerivePersonas(u),
			NextStep:         updates.DeriveNextStep(u, opts.ReferenceDate),
			Pinned:           pinned[u.ID],
			ProfileRelevance: profileRelevance(score, profile),
		}

		switch {
		case score >= HighTierFloor:
			buckets.High = append(buckets.High, entry)
		case score >= MediumTierFloor:
			buckets.Medium = append(buckets.Medium, entry)
		default:
			buckets.Low = append(buckets.Low, entry)
		}
	}

	buckets.High = rebalanceTier(sortByRecency(buckets.High), limit)
	buckets.Medium = rebalanceTier(sortByRecency(buckets.Medium), limit)
	buckets.Low = rebalanceTier(sortByRecency(buckets.Low), limit)
	return buckets
}

func profileRelevance(score float64, profile *models.Profile) string {
	if profile == nil {
		return models.RelevanceGeneral
	}
	switch {
	case score >= HighTierFloor:
		return models.RelevanceCore
	case score >= MediumTierFloor:
		return models.RelevanceRelated
	default:
		return models.RelevanceBroader
	}
}

func sortByRecency(entries []models.DigestEntry) []models.DigestEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return timeutil.UpdateTimestamp(entries[i].Update) > timeutil.UpdateTimestamp(entries[j].Update)
	})
	return entries
}

// rebalanceTier interleaves authority groups round-robin so every authority
// reaches the top slice, deferring items beyond limitPerAuthority to an
// overflow tail in original order. A tier with a single authority is left
// untouched.
func rebalanceTier(entries []models.DigestEntry, limitPerAuthority int) []models.DigestEntry {
	if len(entries) < 2 {
		return entries
	}

	groups := make(map[string][]models.DigestEntry)
	var order []string
	for _, e := range entries {
		key := updates.AuthorityKey(e.Update.Authority)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], e)
	}
	if len(groups) <= 1 {
		return entries
	}

	head := make([]models.DigestEntry, 0, len(entries))
	overflow := make(map[string]bool)
	admitted := make(map[string]int)
	for round := 0; ; round++ {
		took := false
		for _, key := range order {
			group := groups[key]
			if round >= len(group) {
				continue
			}
			took = true
			if admitted[key] >= limitPerAuthority {
				overflow[group[round].Update.ID] = true
				continue
			}
			admitted[key]++
			head = append(head, group[round])
		}
		if !took {
			break
		}
	}

	for _, e := range entries {
		if overflow[e.Update.ID] {
			head = append(head, e)
		}
	}
	return head
}
