package filter

import (
	"context"
	"image"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-restore/ace"
)

// Job is one image queued for equalization.
type Job struct {
	// Name identifies the job in results and errors, usually the source path.
	Name  string
	Image image.Image
}

// Result is the outcome of one Job.
type Result struct {
	Image *image.NRGBA
	Stats ace.Stats
}

// Batch equalizes jobs with at most concurrency images in flight.
//
// fn receives every successful result and may be called from several goroutines at
// once. The first error, from ACE or from fn, cancels the jobs that have not started
// and is returned. Each image still uses opt.Threads workers internally.
//
// Arguments:
//   - parent: Cancels jobs that have not started yet.
//   - jobs: The images to process.
//   - concurrency: Maximum images in flight. Zero or less means one.
//   - opt: Options applied to every job.
//   - fn: Consumer of the results.
//
// Returns:
//   - error: The first failure, or ctx.Err() if cancelled.
func Batch(parent context.Context, jobs []Job, concurrency int, opt ACEOptions, fn func(Job, Result) error) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(concurrency)

	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, stats, err := ACE(job.Image, opt)
			if err != nil {
				return errors.Wrap(err, job.Name)
			}
			if err := fn(job, Result{Image: out, Stats: stats}); err != nil {
				return errors.Wrap(err, job.Name)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return parent.Err()
}
