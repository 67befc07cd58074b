package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hugo-directus/pkg/config"
	"hugo-directus/pkg/directus"
	"hugo-directus/pkg/logger"
	"hugo-directus/pkg/models"
)

// SiteBuilder rebuilds the static site once content was exported.
type SiteBuilder func(ctx context.Context, source string) (string, error)

// Syncer exports the whole CMS into the content tree.
type Syncer struct {
	cfg      *config.Config
	log      logger.Logger
	sessions *SessionCache
	build    SiteBuilder
	opts     []Option
}

// NewSyncer wires a Syncer against the CMS configured in cfg.
func NewSyncer(cfg *config.Config, log logger.Logger, opts ...Option) *Syncer {
	client := directus.NewClient(cfg.CMS.URL, &http.Client{Timeout: cfg.CMS.Timeout})
	return NewSyncerWithAuth(cfg, log, client, opts...)
}

// NewSyncerWithAuth is NewSyncer with an explicit authenticator.
func NewSyncerWithAuth(cfg *config.Config, log logger.Logger, auth Authenticator, opts ...Option) *Syncer {
	log = log.WithComponent("sync")
	return &Syncer{
		cfg:      cfg,
		log:      log,
		sessions: NewSessionCache(auth, cfg.CMS.Email, cfg.CMS.Password, log),
		build:    BuildSite,
		opts:     opts,
	}
}

// Run performs one full import. Item and collection level failures are
// collected in the report; only authentication and collection discovery
// errors abort the run.
func (s *Syncer) Run(ctx context.Context) (*models.RunReport, error) {
	report := models.NewRunReport(time.Now())
	s.log.Infof("Importing from %s into %s", s.cfg.CMS.URL, s.cfg.Content.Path)

	session, err := s.sessions.EnsureAuthenticated(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	all, err := session.Collections(ctx)
	if err != nil {
		var se *directus.StatusError
		if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
			s.sessions.Invalidate()
		}
		return nil, fmt.Errorf("discover collections: %w", err)
	}
	cols := make([]models.Collection, 0, len(all))
	for _, col := range all {
		if !col.System {
			cols = append(cols, col)
		}
	}
	report.Collections = len(cols)

	s.importAll(ctx, session, cols, report)
	report.FinishedAt = time.Now()
	s.log.Infof("Import finished in %s: %s", report.Duration().Round(time.Millisecond), report)

	if s.cfg.Hugo.Build {
		out, err := s.build(ctx, s.cfg.Hugo.Source)
		if err != nil {
			s.log.Errorf("Site build failed: %v\n%s", err, out)
		} else {
			s.log.Info("Site rebuilt")
			s.log.Debug(out)
		}
	}
	return report, nil
}

// importAll lists collections concurrently and runs every item on a bounded
// group. Listing goroutines must never hold an item slot.
func (s *Syncer) importAll(ctx context.Context, backend Backend, cols []models.Collection, report *models.RunReport) {
	imp := NewImporter(s.cfg, s.log, s.opts...)

	var mu sync.Mutex
	var lists, items errgroup.Group
	items.SetLimit(s.cfg.Sync.Concurrency)

	for _, col := range cols {
		lists.Go(func() error {
			tasks, err := imp.ImportCollection(ctx, backend, col)
			if err != nil {
				s.log.WithFields(map[string]interface{}{"collection": col.Name}).
					Errorf("Listing items failed: %v", err)
				mu.Lock()
				report.AddCollectionFailure(col.Name, err)
				mu.Unlock()
				return nil
			}
			for _, task := range tasks {
				items.Go(func() error {
					res := task(ctx)
					mu.Lock()
					report.Add(res)
					mu.Unlock()
					return nil
				})
			}
			return nil
		})
	}

	_ = lists.Wait()
	_ = items.Wait()
}

// RunFullSync is the zero-argument trigger used by the webhook. It blocks
// until the run is over; callers wanting fire-and-forget start it in a
// goroutine.
func (s *Syncer) RunFullSync() {
	if _, err := s.Run(context.Background()); err != nil {
		s.log.Errorf("Import aborted: %v", err)
	}
}
