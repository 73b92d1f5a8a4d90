// Package normalize sequences wrapper decode, hint-resolved GVAS parse,
// and planner extraction for one Level normalization run, emitting
// timed progress events and a final metrics document (spec §4.9). The
// phase-sequencing-plus-progress-logging shape is grounded on the
// teacher's BuildBaseline orchestration (internal/assets/baseline.go),
// generalized from building Quake3 baseline pk3s to normalizing a save.
package normalize

import (
	"context"
	"fmt"
	"time"

	"github.com/discjenny/paldesigner/internal/collab"
	"github.com/discjenny/paldesigner/internal/gvas"
	"github.com/discjenny/paldesigner/internal/hints"
	"github.com/discjenny/paldesigner/internal/planner"
	"github.com/discjenny/paldesigner/internal/rawcodec"
	"github.com/discjenny/paldesigner/internal/wrapper"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	wrapperInspectTimeout = 20 * time.Second
	normalizeTimeout      = 300 * time.Second
	maxHintPasses         = 64
)

// ErrTimeout is the distinct Timeout error kind from spec §7.
var ErrTimeout = fmt.Errorf("normalize: deadline exceeded")

// Driver sequences the core pipeline for one Level file.
type Driver struct {
	Codecs *rawcodec.Registry
	Hints  *hints.Registry
	Log    zerolog.Logger
}

// NewDriver constructs a Driver with the default raw codec registry.
func NewDriver(hintRegistry *hints.Registry, log zerolog.Logger) *Driver {
	return &Driver{
		Codecs: rawcodec.NewDefaultRegistry(),
		Hints:  hintRegistry,
		Log:    log,
	}
}

// NormalizeLevel runs the full pipeline, wrapper decode included, over
// one Level.sav file's wrapped bytes, reporting progress to sink and returning the extracted
// planner rows plus a metrics document. Any error here is fatal for
// the import (spec §7): the caller must discard any rows already
// produced and report phase="failed".
func (d *Driver) NormalizeLevel(ctx context.Context, levelBytes []byte, rawFileRef string, sink collab.ProgressSink) (planner.Result, collab.ParseMetrics, error) {
	ctx, cancel := context.WithTimeout(ctx, normalizeTimeout)
	defer cancel()

	var metrics collab.ParseMetrics
	send := func(ev collab.ImportProgress) {
		if sink == nil {
			return
		}
		if err := sink.Send(ctx, ev); err != nil {
			d.Log.Warn().Err(err).Msg("progress delivery failed")
		}
	}

	send(collab.ImportProgress{Phase: "wrapper_decode", Pct: 76, Message: "wrapper decode start"})

	descriptor := wrapper.Detect(levelBytes)
	wrapperStart := time.Now()
	wrapperCtx, wrapperCancel := context.WithTimeout(ctx, wrapperInspectTimeout)
	gvasBytes, err := runBlocking(wrapperCtx, func() ([]byte, error) {
		return wrapper.Decode(levelBytes, descriptor)
	})
	wrapperCancel()
	if err != nil {
		return d.fail(send, metrics, err)
	}
	metrics.WrapperDecodeMillis = time.Since(wrapperStart).Milliseconds()

	send(collab.ImportProgress{Phase: "gvas_parse", Pct: 77, Message: "gvas parse start, hint seeding"})

	gvasStart := time.Now()
	resolveResult, err := runBlocking(ctx, func() (*hints.ResolveResult, error) {
		return hints.Resolve(gvasBytes, d.Hints, maxHintPasses, func(pass, hintCount int, path string) {
			pct := 78 + pass*11/maxHintPasses
			if pct > 89 {
				pct = 89
			}
			if pct < 78 {
				pct = 78
			}
			send(collab.ImportProgress{
				Phase:     "hint_resolution",
				Pct:       pct,
				Message:   fmt.Sprintf("learned hint for %s", path),
				Processed: hintCount,
			})
		})
	})
	if err != nil {
		return d.fail(send, metrics, err)
	}
	metrics.GvasParseMillis = time.Since(gvasStart).Milliseconds()
	metrics.HintPassCount = resolveResult.PassCount
	metrics.HintCountStart = resolveResult.HintCountFrom
	metrics.HintCountEnd = resolveResult.HintCountTo

	send(collab.ImportProgress{Phase: "raw_domain_decode", Pct: 89, Message: "base/container walk"})

	result, stats, err := d.extract(ctx, resolveResult.Tree, resolveResult.Hints, rawFileRef, send)
	if err != nil {
		return d.fail(send, metrics, err)
	}

	metrics.CharacterMapTotal = stats.CharacterMapTotal
	metrics.CharacterMapSelected = stats.CharacterMapSelected
	metrics.CharacterMapDecoded = stats.CharacterMapDecoded
	metrics.BaseCampCount = stats.BaseCampCount
	metrics.ContainerCount = stats.ContainerCount

	send(collab.ImportProgress{
		Phase:       "complete",
		Pct:         100,
		Message:     "normalization complete",
		PlayerCount: len(result.Players),
		PalCount:    len(result.Pals),
	})

	return result, metrics, nil
}

func (d *Driver) extract(ctx context.Context, tree *gvas.Tree, resolvedHints map[string]string, rawFileRef string, send func(collab.ImportProgress)) (planner.Result, planner.Stats, error) {
	return runBlockingTriple(ctx, func() (planner.Result, planner.Stats, error) {
		return planner.Extract(tree, d.Codecs, resolvedHints, rawFileRef, func(processed, selected, total int) {
			pct := 90
			if total > 0 {
				pct = 90 + processed*8/total
			}
			if pct > 98 {
				pct = 98
			}
			send(collab.ImportProgress{
				Phase:     "character_walk",
				Pct:       pct,
				Processed: processed,
				Selected:  selected,
				Total:     total,
			})
		})
	})
}

func (d *Driver) fail(send func(collab.ImportProgress), metrics collab.ParseMetrics, err error) (planner.Result, collab.ParseMetrics, error) {
	send(collab.ImportProgress{Phase: "failed", Error: err.Error()})
	return planner.Result{}, metrics, err
}

// runBlocking offloads a CPU-bound call to an errgroup worker so the
// caller's context deadline is enforced even though the call itself
// has no internal suspension points -- the blocking-worker pattern
// from spec §5, generalized from the teacher's synchronous
// asset-parsing calls into something cancelable. ctx.Done() races
// g.Wait() so a timeout is reported immediately rather than waiting
// for the (now-abandoned) worker goroutine to unwind.
func runBlocking[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var out T
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := fn()
		out = v
		return err
	})

	waited := make(chan error, 1)
	go func() { waited <- g.Wait() }()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ErrTimeout
	case err := <-waited:
		return out, err
	}
}

func runBlockingTriple[A, B any](ctx context.Context, fn func() (A, B, error)) (A, B, error) {
	var outA A
	var outB B
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, b, err := fn()
		outA, outB = a, b
		return err
	})

	waited := make(chan error, 1)
	go func() { waited <- g.Wait() }()

	select {
	case <-ctx.Done():
		var za A
		var zb B
		return za, zb, ErrTimeout
	case err := <-waited:
		return outA, outB, err
	}
}
