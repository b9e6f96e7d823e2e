package editor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jefftt/s3edit/internal/config"
	"github.com/jefftt/s3edit/internal/domain/s3url"
	"github.com/jefftt/s3edit/internal/jsonedit"
	"github.com/jefftt/s3edit/internal/logger"
	"github.com/jefftt/s3edit/internal/repository/objects"
)

// RenameOptions are the inputs of a json-field-rename run.
type RenameOptions struct {
	// URL is the s3://bucket/prefix the edit applies to recursively.
	URL string
	// Source is the field to rename: a plain key or a JSON pointer.
	Source string
	// Target is the new key, placed in the same parent object.
	Target string
	// Concurrency is the maximum number of objects processed at any given time.
	Concurrency int
	// DryRun logs the rewritten content instead of writing it back.
	DryRun bool
}

// Report summarises a run.
type Report struct {
	// Listed is the number of keys found under the prefix.
	Listed int
	// Changed is the number of objects that had the field.
	Changed int
	// Skipped is the number of objects left as they were.
	Skipped int
}

var (
	errSourceRequired = errors.New("source field must be provided")
	errTargetRequired = errors.New("target field must be provided")
)

// RenameField renames a JSON field in every JSON-lines object under opts.URL.
// The first failing object cancels the remaining work and its error is returned.
func RenameField(ctx context.Context, store objects.Store, opts *RenameOptions) (*Report, error) {
	location, err := s3url.Parse(opts.URL)
	if err != nil {
		return nil, err
	}

	if opts.Source == "" {
		return nil, errSourceRequired
	}

	if opts.Target == "" {
		return nil, errTargetRequired
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = config.DefaultConcurrency
	}

	ctx = logger.WithName(ctx, "json-field-rename")
	ctx = logger.WithKV(ctx, "run_id", uuid.NewString(), "bucket", location.Bucket)

	logger.InfoKV(ctx, "Renaming field",
		"source", opts.Source, "target", opts.Target, "prefix", location.Prefix, "dry_run", opts.DryRun)

	keys, err := store.ListKeys(ctx, location.Bucket, location.Prefix)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Listed objects", "count", len(keys))

	r := &renamer{
		store:   store,
		bucket:  location.Bucket,
		pointer: jsonedit.ParsePointer(opts.Source),
		target:  opts.Target,
		dryRun:  opts.DryRun,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for _, key := range keys {
		key := key
		group.Go(func() error {
			return r.process(groupCtx, key)
		})
	}

	err = group.Wait()

	report := &Report{
		Listed:  len(keys),
		Changed: int(r.changed.Load()),
		Skipped: int(r.skipped.Load()),
	}

	if err != nil {
		return report, err
	}

	logger.InfoKV(ctx, "Rename finished", "changed", report.Changed, "skipped", report.Skipped)

	return report, nil
}

// renamer holds what every per-object task shares.
type renamer struct {
	store   objects.Store
	bucket  string
	pointer []string
	target  string
	dryRun  bool

	changed atomic.Int64
	skipped atomic.Int64
}

// process rewrites one object.
func (r *renamer) process(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := r.store.Get(ctx, r.bucket, key)
	if err != nil {
		return err
	}

	rewritten, changed, err := jsonedit.RewriteStream(body, r.pointer, r.target)
	if err != nil {
		return fmt.Errorf("s3://%s/%s: %w", r.bucket, key, err)
	}

	if !changed {
		r.skipped.Add(1)
		logger.DebugKV(ctx, "Nothing to change", "key", key)

		return nil
	}

	r.changed.Add(1)

	if r.dryRun {
		logger.Infof(ctx, "Overwriting %s %s to:\n%s", r.bucket, key, rewritten)
		return nil
	}

	if err = r.store.Put(ctx, r.bucket, key, rewritten); err != nil {
		return err
	}

	logger.DebugKV(ctx, "Rewrote object", "key", key, "bytes", len(rewritten))

	return nil
}
