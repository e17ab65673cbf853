// Package selection picks the candidates to publish this run.
package selection

import (
	"github.com/AoiRen-jpg/reiwa-kawaraban-bot/internal/collect"
)

// Select filters candidates against the seen set and caps the result at
// budget, preserving input order. Scanning stops as soon as the budget is
// met; candidates left unscanned stay eligible for the next run because
// nothing marks them seen here. The same article surfacing from two feeds in
// one run is picked once.
func Select(candidates []collect.Candidate, seenSet map[string]struct{}, budget int) []collect.Candidate {
	if budget <= 0 {
		return nil
	}

	picked := make([]collect.Candidate, 0, budget)
	pickedFPs := make(map[string]struct{}, budget)

	for _, c := range candidates {
		if _, ok := seenSet[c.Fingerprint]; ok {
			continue
		}
		if _, ok := pickedFPs[c.Fingerprint]; ok {
			continue
		}
		picked = append(picked, c)
		pickedFPs[c.Fingerprint] = struct{}{}
		if len(picked) >= budget {
			break
		}
	}

	return picked
}
