// workers/profile_sync_worker.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"achievement-engine/models"
	"achievement-engine/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfilesEndpoint is the profile service's change feed.
const ProfilesEndpoint = "/api/v1/public/profiles"

// RemoteProfile matches one entry of the profile service's change feed.
type RemoteProfile struct {
	ExternalID        string    `json:"external_id"`
	BasicInfoComplete bool      `json:"basic_info_complete"`
	CompletionPercent int       `json:"profile_completion_percent"`
	SkillsCount       int       `json:"skills_count"`
	LanguagesCount    int       `json:"languages_count"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type profileChangesResponse struct {
	Profiles []RemoteProfile `json:"profiles"`
}

type SyncResult struct {
	Fetched  int `json:"fetched"`
	Upserted int `json:"upserted"`
	Failed   int `json:"failed"`
	Awarded  int `json:"awarded"`
}

// ProfileSyncWorker mirrors profile completion data into profile_snapshots and
// re-evaluates every user whose profile changed.
type ProfileSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	serviceToken string
	httpClient   *http.Client
	checker      AwardChecker
	logger       *slog.Logger
	now          func() time.Time
}

func NewProfileSyncWorker(db *gorm.DB, baseURL, serviceToken string, interval time.Duration, checker AwardChecker, logger *slog.Logger) *ProfileSyncWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ProfileSyncWorker{
		db:           db,
		interval:     interval,
		baseURL:      baseURL,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
		checker:      checker,
		logger:       logger,
		now:          time.Now,
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	w.logger.Info("[SYNC] starting profile sync worker", "interval", w.interval)
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	if _, err := w.SyncOnce(ctx); err != nil {
		w.logger.Warn("[SYNC] initial sync failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.SyncOnce(ctx); err != nil {
				w.logger.Error("[SYNC] sync batch failed", "error", err)
			}
		case <-ctx.Done():
			w.logger.Info("[SYNC] profile sync worker stopped")
			return
		}
	}
}

// lastSyncTime is the newest mirrored updated_at, or the epoch when nothing
// has been mirrored yet.
func (w *ProfileSyncWorker) lastSyncTime(ctx context.Context) time.Time {
	var latest models.ProfileSnapshot
	err := w.db.WithContext(ctx).Order("updated_at DESC").First(&latest).Error
	if err != nil || latest.UpdatedAt.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return latest.UpdatedAt.UTC()
}

// SyncOnce pulls changes since the last mirrored update and applies them.
func (w *ProfileSyncWorker) SyncOnce(ctx context.Context) (SyncResult, error) {
	var result SyncResult
	since := w.lastSyncTime(ctx)

	endpoint, err := utils.ServiceURL(w.baseURL, ProfilesEndpoint, url.Values{
		"since": {since.Format(time.RFC3339)},
	})
	if err != nil {
		return result, err
	}

	w.logger.Debug("[SYNC] fetching profile changes", "url", endpoint)
	var resp profileChangesResponse
	if err := utils.GetJSON(ctx, w.httpClient, endpoint, w.serviceToken, &resp); err != nil {
		return result, fmt.Errorf("fetch profile changes: %w", err)
	}

	result.Fetched = len(resp.Profiles)
	if result.Fetched == 0 {
		w.logger.Debug("[SYNC] no profile changes", "since", since)
		return result, nil
	}

	for _, remote := range resp.Profiles {
		if remote.ExternalID == "" {
			result.Failed++
			continue
		}
		if err := w.apply(ctx, remote); err != nil {
			result.Failed++
			w.logger.Warn("[SYNC] failed to upsert profile snapshot", "user_id", remote.ExternalID, "error", err)
			continue
		}
		result.Upserted++
		result.Awarded += len(w.checker.CheckAndAward(ctx, remote.ExternalID))
	}

	w.logger.Info("[SYNC] synced profiles",
		"fetched", result.Fetched, "upserted", result.Upserted, "failed", result.Failed, "awarded", result.Awarded)
	return result, nil
}

// apply upserts one snapshot. CompleteSince is kept while the profile stays at
// 100% and cleared as soon as it drops.
func (w *ProfileSyncWorker) apply(ctx context.Context, remote RemoteProfile) error {
	db := w.db.WithContext(ctx)

	var existing models.ProfileSnapshot
	err := db.Where("user_id = ?", remote.ExternalID).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	updatedAt := remote.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = w.now().UTC()
	}

	var completeSince *time.Time
	if remote.CompletionPercent >= 100 {
		if existing.CompleteSince != nil {
			completeSince = existing.CompleteSince
		} else {
			completeSince = &updatedAt
		}
	}

	snap := models.ProfileSnapshot{
		ID:                uuid.NewString(),
		UserID:            remote.ExternalID,
		BasicInfoComplete: remote.BasicInfoComplete,
		CompletionPercent: remote.CompletionPercent,
		SkillsCount:       remote.SkillsCount,
		LanguagesCount:    remote.LanguagesCount,
		CompleteSince:     completeSince,
		Timestamps:        models.Timestamps{UpdatedAt: updatedAt},
	}

	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"basic_info_complete", "completion_percent", "skills_count",
			"languages_count", "complete_since", "updated_at",
		}),
	}).Create(&snap).Error
}
