package repository

import (
	"context"

	"kronus_crm_backend/internal/auth"

	"golang.org/x/sync/errgroup"
)

// Stats aggregates the scoped lead book for the dashboard.
type Stats struct {
	TotalLeads int64
	TotalValue float64
	ByStatus   map[string]int64
	ByPriority map[string]int64
	BySource   map[string]int64
}

// GetStats runs the grouped counts concurrently; every query carries the
// caller's scope so a restricted caller only aggregates its own leads.
func (r *Repository) GetStats(ctx context.Context, scope auth.LeadScope) (Stats, error) {
	where, args := statsWhere(scope)

	stats := Stats{
		ByStatus:   make(map[string]int64),
		ByPriority: make(map[string]int64),
		BySource:   make(map[string]int64),
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return r.pool.QueryRow(groupCtx,
			"SELECT count(*), COALESCE(sum(value), 0) FROM leads "+where, args...,
		).Scan(&stats.TotalLeads, &stats.TotalValue)
	})
	group.Go(func() error {
		return r.groupCount(groupCtx, "status", where, args, stats.ByStatus)
	})
	group.Go(func() error {
		return r.groupCount(groupCtx, "priority", where, args, stats.ByPriority)
	})
	group.Go(func() error {
		return r.groupCount(groupCtx, "source", where, args, stats.BySource)
	})

	if err := group.Wait(); err != nil {
		return Stats{}, err
	}

	return stats, nil
}

func statsWhere(scope auth.LeadScope) (string, []any) {
	argIdx := 1
	cond, args := scopeCondition(scope, &argIdx)
	if cond == "" {
		return "", nil
	}
	return "WHERE " + cond, args
}

func (r *Repository) groupCount(ctx context.Context, column, where string, args []any, out map[string]int64) error {
	rows, err := r.pool.Query(ctx,
		"SELECT "+column+", count(*) FROM leads "+where+" GROUP BY "+column, args...,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		out[key] = count
	}
	return rows.Err()
}
