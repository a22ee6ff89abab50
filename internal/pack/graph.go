package pack

import (
	"fmt"
	"io"

	mapset "github.com/deckarep/golang-set"
	"github.com/vercel/turbopack/cli/internal/asset"
	"github.com/vercel/turbopack/cli/internal/tasks"
)

// aggregatedChildren is the fan-out of the aggregated tree. Whole-graph
// queries recurse over the tree and share the per-leaf work.
const aggregatedChildren = 8

// AggregatedGraph is the reachable module graph reduced to a balanced
// tree whose leaves are single assets. It exists so that whole-graph
// queries (emit into a directory, back-reference counts) can be
// parallelized and structurally shared.
type AggregatedGraph struct {
	leaf     asset.Asset
	children []*AggregatedGraph
}

// aggregate collects the reachable asset set from `a` and folds it
// into a balanced tree. The walk is breadth-first, so the leaf order
// is deterministic for a given graph.
func aggregate(ctx *tasks.Context, a asset.Asset) (*AggregatedGraph, error) {
	visited := mapset.NewSet()
	var ordered []asset.Asset

	queue := []asset.Asset{a}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if !visited.Add(current.TaskKey()) {
			continue
		}
		ordered = append(ordered, current)
		referenced, err := asset.AllReferencedAssets(ctx, current)
		if err != nil {
			return nil, err
		}
		queue = append(queue, referenced...)
	}

	level := make([]*AggregatedGraph, len(ordered))
	for index, leaf := range ordered {
		level[index] = &AggregatedGraph{leaf: leaf}
	}
	for len(level) > 1 {
		var next []*AggregatedGraph
		for start := 0; start < len(level); start += aggregatedChildren {
			end := start + aggregatedChildren
			if end > len(level) {
				end = len(level)
			}
			next = append(next, &AggregatedGraph{children: level[start:end]})
		}
		level = next
	}
	if len(level) == 0 {
		return &AggregatedGraph{}, nil
	}
	return level[0], nil
}

// referencesList maps each asset to the set of assets referencing it.
type referencesList struct {
	referencedBy map[asset.Asset]mapset.Set
}

func computeBackReferences(ctx *tasks.Context, aggregated *AggregatedGraph) (*referencesList, error) {
	if aggregated.leaf != nil {
		referencedBy := map[asset.Asset]mapset.Set{}
		referenced, err := asset.AllReferencedAssets(ctx, aggregated.leaf)
		if err != nil {
			return nil, err
		}
		for _, reference := range referenced {
			referencedBy[reference] = mapset.NewSet(aggregated.leaf)
		}
		return &referencesList{referencedBy: referencedBy}, nil
	}

	referencedBy := map[asset.Asset]mapset.Set{}
	for _, child := range aggregated.children {
		list, err := computeBackReferences(ctx, child)
		if err != nil {
			return nil, err
		}
		for key, values := range list.referencedBy {
			if existing, ok := referencedBy[key]; ok {
				for value := range values.Iter() {
					existing.Add(value)
				}
			} else {
				referencedBy[key] = values
			}
		}
	}
	return &referencesList{referencedBy: referencedBy}, nil
}

// topReferencesCount is how many entries PrintMostReferenced reports.
const topReferencesCount = 5

// topReferences keeps the N most referenced assets, insertion-sorting
// each candidate against the current top list. Ties keep whichever
// entry got there first.
func topReferences(list *referencesList) *referencesList {
	type entry struct {
		asset      asset.Asset
		references mapset.Set
	}
	var top []entry
	for key, values := range list.referencedBy {
		current := entry{asset: key, references: values}
		for index := range top {
			if top[index].references.Cardinality() < current.references.Cardinality() {
				top[index], current = current, top[index]
			}
		}
		if len(top) < topReferencesCount {
			top = append(top, current)
		}
	}
	referencedBy := map[asset.Asset]mapset.Set{}
	for _, item := range top {
		referencedBy[item.asset] = item.references
	}
	return &referencesList{referencedBy: referencedBy}
}

// PrintMostReferenced writes the N most referenced assets of the graph
// reachable from `a`, with their in-degree.
func PrintMostReferenced(ctx *tasks.Context, a asset.Asset, w io.Writer) error {
	aggregated, err := aggregate(ctx, a)
	if err != nil {
		return err
	}
	backReferences, err := computeBackReferences(ctx, aggregated)
	if err != nil {
		return err
	}
	top := topReferences(backReferences)

	fmt.Fprintln(w, "TOP REFERENCES:")
	for referenced, references := range top.referencedBy {
		fmt.Fprintf(w, "%s -> %d times referenced\n", referenced.Path().ToString(), references.Cardinality())
	}
	return nil
}
