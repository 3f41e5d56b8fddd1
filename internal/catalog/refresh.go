// Package catalog refreshes the local course catalog from the bulletin API.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chengus/nyu-course-scraper/internal/bulletin"
	"github.com/chengus/nyu-course-scraper/internal/config"
	applog "github.com/chengus/nyu-course-scraper/internal/log"
	"github.com/chengus/nyu-course-scraper/internal/store"
)

// Refresher scrapes each configured campus group and reloads its sections.
type Refresher struct {
	client *bulletin.Client
	db     *store.Store
	cfg    *config.Config
}

// NewRefresher wires a refresher over the given client, store, and config.
func NewRefresher(client *bulletin.Client, db *store.Store, cfg *config.Config) *Refresher {
	return &Refresher{client: client, db: db, cfg: cfg}
}

// CampusResult reports one campus group's outcome within a refresh run.
type CampusResult struct {
	Group    string `json:"group"`
	Sections int    `json:"sections"`
	Error    string `json:"error,omitempty"`
}

// Result summarizes a whole refresh run.
type Result struct {
	JobID    string         `json:"job_id"`
	Term     string         `json:"term"`
	Campuses []CampusResult `json:"campuses"`
	Total    int            `json:"records_processed"`
}

// RefreshAll fetches and reloads every configured campus group. A failing
// campus is reported in its CampusResult and does not stop the others; the
// last-update stamp is only written when at least one campus loaded.
func (r *Refresher) RefreshAll(ctx context.Context) Result {
	res := Result{
		JobID: uuid.NewString(),
		Term:  r.cfg.Term,
	}

	applog.Info("catalog refresh start", "job_id", res.JobID,
		"term", r.cfg.Term, "career", r.cfg.Career, "campuses", len(r.cfg.Campuses))

	anyLoaded := false
	for _, campus := range r.cfg.Campuses {
		cr := CampusResult{Group: campus.Group}

		sections, err := r.client.Search(ctx, r.cfg.Term, r.cfg.Career, campus.Camp)
		if err != nil {
			applog.Error("catalog refresh: search failed", err,
				"job_id", res.JobID, "campus", campus.Group)
			cr.Error = err.Error()
			res.Campuses = append(res.Campuses, cr)
			continue
		}

		if err := r.db.ReplaceSections(ctx, campus.Group, r.cfg.Term, sections); err != nil {
			applog.Error("catalog refresh: load failed", err,
				"job_id", res.JobID, "campus", campus.Group)
			cr.Error = err.Error()
			res.Campuses = append(res.Campuses, cr)
			continue
		}

		cr.Sections = len(sections)
		res.Total += len(sections)
		res.Campuses = append(res.Campuses, cr)
		anyLoaded = true

		applog.Info("catalog refresh: campus loaded", "job_id", res.JobID,
			"campus", campus.Group, "sections", len(sections))
	}

	if anyLoaded {
		if err := r.db.SetLastUpdate(ctx, time.Now()); err != nil {
			applog.Error("catalog refresh: stamp failed", err, "job_id", res.JobID)
		}
	}

	applog.Info("catalog refresh done", "job_id", res.JobID, "records", res.Total)
	return res
}
