package processor

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"fleet-crm/internal/matching"
	"fleet-crm/internal/models"
)

// MatchParallel scores contacts in partitions and merges with matching.Rank, so the output is
// identical to m.MatchAll for the same input. partitions <= 0 uses GOMAXPROCS.
func MatchParallel(ctx context.Context, m *matching.Matcher, contacts []models.Contact, companies []models.Company, partitions int) ([]models.MatchResult, error) {
	contacts, companies = matching.WithIDs(contacts, companies)
	if partitions <= 0 {
		partitions = runtime.GOMAXPROCS(0)
	}
	if partitions > len(contacts) {
		partitions = len(contacts)
	}
	if partitions <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return m.MatchAll(contacts, companies), nil
	}

	chunk := (len(contacts) + partitions - 1) / partitions
	parts := make([][]models.MatchResult, partitions)

	g, gctx := errgroup.WithContext(ctx)
	for p := 0; p < partitions; p++ {
		lo := p * chunk
		hi := min(lo+chunk, len(contacts))
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			var out []models.MatchResult
			for _, c := range contacts[lo:hi] {
				if err := gctx.Err(); err != nil {
					return err
				}
				out = append(out, m.ScoreContact(c, companies)...)
			}
			parts[p] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.MatchResult
	for _, part := range parts {
		all = append(all, part...)
	}
	return matching.Rank(all, m.Config().MinScore), nil
}
