package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"hugo-directus/pkg/config"
	"hugo-directus/pkg/directus"
	"hugo-directus/pkg/logger"
	"hugo-directus/pkg/models"
)

// ErrPathCollision is returned when two items of one run resolve to the
// same file. The first one wins.
var ErrPathCollision = errors.New("target already written by another item")

// Backend is the part of a CMS session the importers need.
type Backend interface {
	Collections(ctx context.Context) ([]models.Collection, error)
	Items(ctx context.Context, collection string) (*directus.ItemsPayload, error)
	Asset(ctx context.Context, id string) (*directus.Asset, error)
}

// ItemTask is a pending item import. Running it never panics on item
// errors; failures are reported in the result.
type ItemTask func(ctx context.Context) models.ItemResult

// Option customizes an Importer.
type Option func(*Importer)

// WithPathBuilder replaces the default home/branch/page/leaf layout.
func WithPathBuilder(b PathBuilder) Option {
	return func(imp *Importer) {
		if b != nil {
			imp.buildPath = b
		}
	}
}

// WithAssetPredicate replaces the UUID heuristic used to spot asset fields.
func WithAssetPredicate(p AssetPredicate) Option {
	return func(imp *Importer) {
		if p != nil {
			imp.isAsset = p
		}
	}
}

// Importer writes items into the content tree. One Importer spans one sync
// run: it remembers which files were claimed so colliding items are caught.
type Importer struct {
	cfg       *config.Config
	log       logger.Logger
	buildPath PathBuilder
	isAsset   AssetPredicate

	mu     sync.Mutex
	claims map[string]string
}

func NewImporter(cfg *config.Config, log logger.Logger, opts ...Option) *Importer {
	imp := &Importer{
		cfg:       cfg,
		log:       log.WithComponent("importer"),
		buildPath: ResolvePath,
		isAsset:   IsAssetReference,
		claims:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// ImportCollection reads the items of col and returns one pending task per
// item. Only the first page returned by the CMS is processed.
func (imp *Importer) ImportCollection(ctx context.Context, backend Backend, col models.Collection) ([]ItemTask, error) {
	payload, err := backend.Items(ctx, col.Name)
	if err != nil {
		return nil, err
	}
	items, err := payload.List(col.Singleton)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", col.Name, err)
	}
	imp.log.WithFields(map[string]interface{}{"collection": col.Name}).
		Debugf("Listed %d items (first page only)", len(items))

	tasks := make([]ItemTask, 0, len(items))
	for _, item := range items {
		tasks = append(tasks, func(ctx context.Context) models.ItemResult {
			return imp.ImportItem(ctx, backend, item, col)
		})
	}
	return tasks, nil
}

// ImportItem filters, resolves, downloads assets and writes one item.
func (imp *Importer) ImportItem(ctx context.Context, backend Backend, origin models.Item, col models.Collection) models.ItemResult {
	res := models.ItemResult{Collection: col.Name, ItemID: origin.ID()}
	log := imp.log.WithFields(map[string]interface{}{"collection": col.Name, "item": res.ItemID})

	if reason, skip := imp.skipReason(origin); skip {
		log.Debugf("Skipping item: %s", reason)
		res.Outcome = models.OutcomeSkipped
		res.Reason = reason
		return res
	}

	fail := func(err error) models.ItemResult {
		log.Errorf("Import failed: %v", err)
		res.Outcome = models.OutcomeFailed
		res.Err = err
		return res
	}

	target, err := imp.buildPath(origin, col, imp.cfg)
	if err != nil {
		return fail(err)
	}
	res.Path = target.File()

	if owner, ok := imp.claim(res.Path, col.Name+"/"+res.ItemID); !ok {
		return fail(fmt.Errorf("%w: %s (claimed by %s)", ErrPathCollision, res.Path, owner))
	}
	if err := ensureDir(target.Dir); err != nil {
		return fail(err)
	}

	item := origin.Clone()
	res.FieldFailures = imp.materializeAssets(ctx, backend, item, col, target.Dir, log)

	doc, err := ComposeDocument(item, imp.cfg.FrontMatter)
	if err != nil {
		return fail(err)
	}
	if err := writeFileAtomic(res.Path, []byte(doc), 0644); err != nil {
		return fail(err)
	}

	log.Infof("Wrote %s", res.Path)
	res.Outcome = models.OutcomeImported
	return res
}

func (imp *Importer) skipReason(item models.Item) (string, bool) {
	switch item.Status() {
	case models.StatusArchived:
		return "archived", true
	case models.StatusDraft:
		if !imp.cfg.BuildDrafts {
			return "draft", true
		}
	}
	return "", false
}

// claim reserves path for owner. It returns the current owner and false when
// the path was already taken in this run.
func (imp *Importer) claim(path, owner string) (string, bool) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	if prev, taken := imp.claims[path]; taken {
		return prev, false
	}
	imp.claims[path] = owner
	return owner, true
}

type assetRef struct {
	field string
	id    string
}

type assetOutcome struct {
	filename string
	err      error
}

// materializeAssets downloads every asset referenced by item concurrently and
// rewrites the fields that succeeded. It waits for all downloads; one failure
// never cancels the others.
func (imp *Importer) materializeAssets(ctx context.Context, backend Backend, item models.Item,
	col models.Collection, dir string, log logger.Logger) []models.FieldFailure {

	refs := imp.assetRefs(item)
	if len(refs) == 0 {
		return nil
	}

	outcomes := make([]assetOutcome, len(refs))
	var g errgroup.Group
	for i, ref := range refs {
		g.Go(func() error {
			name, err := FetchAsset(ctx, backend, ref.id, dir)
			outcomes[i] = assetOutcome{filename: name, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var failures []models.FieldFailure
	for i, ref := range refs {
		out := outcomes[i]
		flog := log.WithFields(map[string]interface{}{"field": ref.field, "asset": ref.id})
		switch {
		case out.err == nil:
			item[ref.field] = out.filename
			flog.Debugf("Downloaded %s", out.filename)
		case errors.Is(out.err, directus.ErrAccessDenied):
			flog.Info("Asset access denied, keeping reference")
		default:
			flog.Errorf("Asset download failed: %v", out.err)
			failures = append(failures, models.FieldFailure{
				Collection: col.Name,
				ItemID:     item.ID(),
				Field:      ref.field,
				AssetID:    ref.id,
				Err:        out.err,
			})
		}
	}
	return failures
}

func (imp *Importer) assetRefs(item models.Item) []assetRef {
	var refs []assetRef
	for field, value := range item {
		// the primary key may be a UUID too, it never points at a file
		if field == models.FieldID {
			continue
		}
		s, ok := value.(string)
		if !ok || !imp.isAsset(s) {
			continue
		}
		refs = append(refs, assetRef{field: field, id: s})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].field < refs[j].field })
	return refs
}
