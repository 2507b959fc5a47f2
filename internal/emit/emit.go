// Package emit writes generated files to a Target.
package emit

import (
	"context"

	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/logger"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

// File is one generated artifact.
type File struct {
	Name string
	Data []byte
}

// Emitter writes batches of files to a target.
type Emitter struct {
	target  Target
	log     *logger.Logger
	workers int
}

// New creates an Emitter. A nil log discards output.
func New(target Target, log *logger.Logger) *Emitter {
	if log == nil {
		log = logger.Nop()
	}
	return &Emitter{target: target, log: log, workers: defaultWorkers}
}

// Write prepares the target and then writes all files in parallel. The
// first failure cancels the writes that have not started yet and is
// returned; files already written stay in place.
func (e *Emitter) Write(ctx context.Context, files []File) error {
	if err := e.target.Prepare(ctx); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "prepare output", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.workers)

	for _, f := range files {
		f := f
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := e.target.WriteFile(ctx, f.Name, f.Data); err != nil {
				return err
			}
			e.log.With().Str("file", f.Name).Int("bytes", len(f.Data)).Logger().Debug("wrote file")
			return nil
		})
	}

	return eg.Wait()
}
