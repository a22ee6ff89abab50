package pack

import (
	"github.com/hashicorp/go-multierror"
	"github.com/vercel/turbopack/cli/internal/asset"
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/tasks"
	"golang.org/x/sync/errgroup"
)

// Emit walks the graph from `a` and writes every reachable asset's
// content to its own path. Task memoization provides the visited set:
// revisiting a node, including on a cycle, is a no-op.
func Emit(ctx *tasks.Context, a asset.Asset) error {
	_, err := emitAssetsRecursive(ctx, a).Get(ctx)
	return err
}

func emitAssetsRecursive(ctx *tasks.Context, a asset.Asset) *tasks.Value {
	return ctx.SpawnWithCycle("emitAssetsRecursive", func(ctx *tasks.Context, args []interface{}) (interface{}, error) {
		current := args[0].(asset.Asset)
		referenced, err := asset.AllReferencedAssets(ctx, current)
		if err != nil {
			return nil, err
		}
		if err := emitAsset(ctx, current); err != nil {
			return nil, err
		}
		var result *multierror.Error
		for _, child := range referenced {
			if _, err := emitAssetsRecursive(ctx, child).Get(ctx); err != nil {
				result = multierror.Append(result, err)
			}
		}
		return nil, result.ErrorOrNil()
	}, a)
}

func emitAsset(ctx *tasks.Context, a asset.Asset) error {
	content, err := a.Content(ctx)
	if err != nil {
		return err
	}
	return a.Path().Write(content)
}

// EmitWithCompletion aggregates the reachable graph and writes only
// the assets whose paths lie strictly inside `outputDir`. Assets
// outside the directory are skipped.
func EmitWithCompletion(ctx *tasks.Context, a asset.Asset, outputDir fs.Path) error {
	aggregated, err := aggregate(ctx, a)
	if err != nil {
		return err
	}
	return emitAggregatedAssets(ctx, aggregated, outputDir)
}

func emitAggregatedAssets(ctx *tasks.Context, aggregated *AggregatedGraph, outputDir fs.Path) error {
	if aggregated.leaf != nil {
		return emitAssetIntoDir(ctx, aggregated.leaf, outputDir)
	}
	var group errgroup.Group
	for _, child := range aggregated.children {
		child := child
		group.Go(func() error {
			return emitAggregatedAssets(ctx, child, outputDir)
		})
	}
	return group.Wait()
}

func emitAssetIntoDir(ctx *tasks.Context, a asset.Asset, outputDir fs.Path) error {
	if !a.Path().IsInside(outputDir) {
		return nil
	}
	return emitAsset(ctx, a)
}
