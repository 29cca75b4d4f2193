// Package sequence spreads same-category cards apart in an already-scored
// deck. The reordering is greedy and deterministic: it minimizes adjacent
// same-category pairs without guaranteeing a global optimum; when one
// category dominates, unavoidable adjacency clusters toward the tail.
package sequence

import "github.com/circleup/ideas-engine/pkg/card"

// AntiRepeat returns a permutation of cards with adjacent same-category
// pairs minimized. Input order (descending score) is preserved within each
// category; nothing is added, removed, or duplicated.
func AntiRepeat(cards []card.IdeaCard) []card.IdeaCard {
	if len(cards) < 2 {
		out := make([]card.IdeaCard, len(cards))
		copy(out, cards)
		return out
	}

	// Partition into per-category buckets, keeping relative order and the
	// order buckets were first encountered in (the tie-break order).
	buckets := make(map[card.Category][]card.IdeaCard)
	var discovered []card.Category
	for _, c := range cards {
		if _, ok := buckets[c.Category]; !ok {
			discovered = append(discovered, c.Category)
		}
		buckets[c.Category] = append(buckets[c.Category], c)
	}

	out := make([]card.IdeaCard, 0, len(cards))
	var prev card.Category
	havePrev := false

	for len(out) < len(cards) {
		// Pick the bucket with the most remaining items among those whose
		// category differs from the previous selection; ties go to the
		// first-encountered bucket.
		pick := card.Category("")
		best := 0
		for _, cat := range discovered {
			n := len(buckets[cat])
			if n == 0 {
				continue
			}
			if havePrev && cat == prev {
				continue
			}
			if n > best {
				pick, best = cat, n
			}
		}

		// Every remaining card matches the previous category: adjacency is
		// unavoidable, take from the only bucket left.
		if pick == "" {
			pick = prev
		}

		next := buckets[pick][0]
		buckets[pick] = buckets[pick][1:]
		out = append(out, next)
		prev, havePrev = pick, true
	}

	return out
}
