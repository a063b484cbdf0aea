/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: ranker.go
Description: Candidate ranking. Orders resolved traces by how likely their terminal image is the
icon a user actually sees and groups terminal paths of equal rank.
*/

package resources

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Rank tiers, lower is preferred
const (
	TierDirect = iota
	TierButtonTarget
	TierButton
	TierFirst
	TierLater
	TierChosen
	TierCandidate
	TierUnknown
)

// Bucket is the rank of a label. Order breaks ties inside a tier and is only used
// for button states, where it holds the attribute count.
type Bucket struct {
	Tier  int
	Order int
}

// Less reports whether b ranks before other
func (b Bucket) Less(other Bucket) bool {
	if b.Tier != other.Tier {
		return b.Tier < other.Tier
	}
	return b.Order < other.Order
}

func (b Bucket) String() string {
	switch b.Tier {
	case TierDirect:
		return LabelDirect
	case TierButtonTarget:
		return "button-target"
	case TierButton:
		return fmt.Sprintf("button-%d", b.Order)
	case TierFirst:
		return LabelFirst
	case TierLater:
		return LabelLater
	case TierChosen:
		return LabelChosen
	case TierCandidate:
		return LabelCandidate
	default:
		return "unknown"
	}
}

// BucketOf maps a terminal label to its rank
func BucketOf(label string) Bucket {
	switch label {
	case LabelDirect:
		return Bucket{Tier: TierDirect}
	case LabelFirst:
		return Bucket{Tier: TierFirst}
	case LabelLater, LabelSecond:
		return Bucket{Tier: TierLater}
	case LabelChosen:
		return Bucket{Tier: TierChosen}
	case LabelCandidate:
		return Bucket{Tier: TierCandidate}
	}
	if !strings.HasPrefix(label, buttonPrefix) {
		return Bucket{Tier: TierUnknown}
	}
	if strings.HasSuffix(label, targetSuffix) {
		return Bucket{Tier: TierButtonTarget}
	}
	n, err := strconv.Atoi(strings.TrimPrefix(label, buttonPrefix))
	if err != nil {
		return Bucket{Tier: TierUnknown}
	}
	return Bucket{Tier: TierButton, Order: n}
}

// ParseBucket is the inverse of Bucket.String
func ParseBucket(name string) Bucket {
	if name == "button-target" {
		return Bucket{Tier: TierButtonTarget}
	}
	if rest, ok := strings.CutPrefix(name, "button-"); ok {
		if n, err := strconv.Atoi(rest); err == nil {
			return Bucket{Tier: TierButton, Order: n}
		}
		return Bucket{Tier: TierUnknown}
	}
	return BucketOf(name)
}

// RankedGroup holds the terminal paths that share one bucket
type RankedGroup struct {
	Bucket Bucket
	Paths  []string
}

// RankAndGroup groups terminal paths by bucket, best bucket first. Paths keep their
// discovery order inside a group.
func RankAndGroup(traces []LookupTrace) []RankedGroup {
	index := make(map[Bucket]int)
	var groups []RankedGroup
	for _, trace := range traces {
		if len(trace) == 0 {
			continue
		}
		leaf := trace.Leaf()
		bucket := BucketOf(leaf.Label)
		i, ok := index[bucket]
		if !ok {
			i = len(groups)
			index[bucket] = i
			groups = append(groups, RankedGroup{Bucket: bucket})
		}
		groups[i].Paths = append(groups[i].Paths, leaf.RelativePath)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Bucket.Less(groups[j].Bucket)
	})
	return groups
}

// PathGroups strips the buckets from ranked groups
func PathGroups(groups []RankedGroup) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		out[i] = g.Paths
	}
	return out
}
