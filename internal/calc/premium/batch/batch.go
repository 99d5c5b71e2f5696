// Package batch plans many parts concurrently. Each part is planned on its
// own; one failing part never stops the others.
package batch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ScanMaster/internal/calc/premium/autoplan"
	"ScanMaster/internal/calc/ringblock"
)

const (
	DefaultWorkers = 4
	MaxItems       = 500
)

var ErrNoItems = errors.New("no items")

type Input struct {
	Items []autoplan.Part `json:"items"`
}

type Item struct {
	Index int            `json:"index"`
	Plan  *autoplan.Plan `json:"plan,omitempty"`
	Error string         `json:"error,omitempty"`
}

type Result struct {
	Items     []Item `json:"items"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// Run plans every part with at most workers in flight. Items come back in
// input order. Only context cancellation fails the whole batch.
func Run(ctx context.Context, parts []autoplan.Part, policy ringblock.Policy, workers int) (Result, error) {
	if len(parts) == 0 {
		return Result{}, ErrNoItems
	}
	if len(parts) > MaxItems {
		return Result{}, fmt.Errorf("batch of %d parts exceeds the limit of %d", len(parts), MaxItems)
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	items := make([]Item, len(parts))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, p := range parts {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			items[i] = Item{Index: i}
			plan, err := autoplan.Build(p, policy)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Plan = &plan
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Items: items}
	for _, it := range items {
		if it.Error != "" {
			res.Failed++
		} else {
			res.Succeeded++
		}
	}
	return res, nil
}
