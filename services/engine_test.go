package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"achievement-engine/catalog"
	"achievement-engine/models"
	"achievement-engine/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var engineNow = time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC) // Wednesday

func newTestEngine(st store.Store, snap *MetricsSnapshot, opts ...EngineOption) (*Engine, *staticProvider) {
	cat := catalog.Default()
	provider := &staticProvider{snap: snap}
	opts = append([]EngineOption{WithClock(fixedClock(engineNow))}, opts...)
	return NewEngine(cat, st, NewPointsLedger(cat, st), provider, opts...), provider
}

func TestCheckAndAward_AwardsQualifyingAchievements(t *testing.T) {
	st := store.NewMemoryStore()
	notifier := &recordingNotifier{}
	e, _ := newTestEngine(st, &MetricsSnapshot{CVGenerated: 1, JobApplications: 1}, WithNotifier(notifier))

	got := e.CheckAndAward(context.Background(), "u1")
	assert.ElementsMatch(t, []string{"cv-first", "job-hunter"}, achievementIDs(got))

	rows, err := st.ListUserAchievements(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, ua := range rows {
		assert.True(t, ua.EarnedAt.Equal(engineNow))
		assert.Equal(t, 1.0, ua.Progress)
		assert.Equal(t, catalog.DefaultVersion, ua.Metadata["catalog_version"])
	}

	assert.ElementsMatch(t, []sentNotification{
		{"u1", "CV Creator", 100},
		{"u1", "Job Hunter", 100},
	}, notifier.sent)

	events, err := st.ListPointEvents(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestCheckAndAward_NoDoubleAward(t *testing.T) {
	st := store.NewMemoryStore()
	notifier := &recordingNotifier{}
	e, _ := newTestEngine(st, &MetricsSnapshot{CVGenerated: 5, InterviewsCompleted: 1}, WithNotifier(notifier))

	first := e.CheckAndAward(context.Background(), "u1")
	require.NotEmpty(t, first)

	second := e.CheckAndAward(context.Background(), "u1")
	assert.Empty(t, second)
	assert.NotNil(t, second, "an empty pass returns an empty list, not nil")

	rows, err := st.ListUserAchievements(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, rows, len(first))
	assert.Len(t, notifier.sent, len(first))
}

func TestCheckAndAward_ConcurrentPassesAwardOnce(t *testing.T) {
	st := store.NewMemoryStore()
	notifier := &recordingNotifier{}
	e, _ := newTestEngine(st, &MetricsSnapshot{CVGenerated: 1}, WithNotifier(notifier))

	var wg sync.WaitGroup
	results := make([][]models.Achievement, 6)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.CheckAndAward(context.Background(), "u1")
		}(i)
	}
	wg.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	assert.Equal(t, 1, total, "exactly one pass reports the award")
	assert.Len(t, notifier.sent, 1)
}

// raceStore simulates another pass inserting between our read and our insert.
type raceStore struct {
	store.Store
}

func (r *raceStore) InsertUserAchievement(ctx context.Context, ua *models.UserAchievement) (bool, error) {
	rival := *ua
	rival.ID = ""
	if _, err := r.Store.InsertUserAchievement(ctx, &rival); err != nil {
		return false, err
	}
	return r.Store.InsertUserAchievement(ctx, ua)
}

func TestCheckAndAward_LostRaceIsNotAnError(t *testing.T) {
	mem := store.NewMemoryStore()
	notifier := &recordingNotifier{}
	reg := NewEngineMetrics(nil)
	e, _ := newTestEngine(&raceStore{Store: mem}, &MetricsSnapshot{CVGenerated: 1},
		WithNotifier(notifier), WithEngineMetrics(reg))

	got := e.CheckAndAward(context.Background(), "u1")
	assert.Empty(t, got)
	assert.Empty(t, notifier.sent)
	assert.Zero(t, testutil.ToFloat64(reg.Failures.WithLabelValues(StagePersist)))

	rows, err := mem.ListUserAchievements(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCheckAndAward_ContinuesPastPersistenceFailure(t *testing.T) {
	st := &flakyStore{Store: store.NewMemoryStore(), failInsert: map[string]bool{"cv-first": true}}
	reg := NewEngineMetrics(nil)
	e, _ := newTestEngine(st, &MetricsSnapshot{CVGenerated: 1, JobApplications: 1}, WithEngineMetrics(reg))

	got := e.CheckAndAward(context.Background(), "u1")
	assert.Equal(t, []string{"job-hunter"}, achievementIDs(got))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Failures.WithLabelValues(StagePersist)))

	// The failed award is picked up by the next successful pass.
	delete(st.failInsert, "cv-first")
	got = e.CheckAndAward(context.Background(), "u1")
	assert.Equal(t, []string{"cv-first"}, achievementIDs(got))
}

func TestCheckAndAward_SideEffectFailuresDoNotBlockAward(t *testing.T) {
	st := &flakyStore{Store: store.NewMemoryStore(), failPoints: true}
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	reg := NewEngineMetrics(nil)
	e, _ := newTestEngine(st, &MetricsSnapshot{CVGenerated: 1, JobApplications: 1},
		WithNotifier(notifier), WithEngineMetrics(reg))

	got := e.CheckAndAward(context.Background(), "u1")
	assert.Len(t, got, 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.Failures.WithLabelValues(StagePoints)))
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.Failures.WithLabelValues(StageNotify)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Awarded.WithLabelValues(string(models.CategoryCV))))

	total, err := e.Ledger().TotalPoints(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 200, total, "points derive from the award rows")
}

func TestCheckAndAward_LoadFailuresYieldEmptyResult(t *testing.T) {
	t.Run("awards", func(t *testing.T) {
		st := &flakyStore{Store: store.NewMemoryStore(), failList: true}
		e, provider := newTestEngine(st, &MetricsSnapshot{CVGenerated: 1})
		got := e.CheckAndAward(context.Background(), "u1")
		assert.Empty(t, got)
		assert.Zero(t, provider.calls)
	})
	t.Run("metrics", func(t *testing.T) {
		st := store.NewMemoryStore()
		e, provider := newTestEngine(st, nil)
		provider.err = errors.New("timeout")
		got := e.CheckAndAward(context.Background(), "u1")
		assert.Empty(t, got)

		rows, err := st.ListUserAchievements(context.Background(), "u1")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestCheckAndAward_SingleSnapshotPerPass(t *testing.T) {
	e, provider := newTestEngine(store.NewMemoryStore(), &MetricsSnapshot{CVGenerated: 10, InterviewsCompleted: 10})
	e.CheckAndAward(context.Background(), "u1")
	assert.Equal(t, 1, provider.calls)
}

func TestCheckAndAward_HiddenAchievementsAreEarnable(t *testing.T) {
	late := time.Date(2025, 6, 17, 23, 15, 0, 0, time.UTC)
	e, _ := newTestEngine(store.NewMemoryStore(), &MetricsSnapshot{TakenAt: engineNow, EventTimes: []time.Time{late}})

	got := e.CheckAndAward(context.Background(), "u1")
	assert.Equal(t, []string{"night-owl"}, achievementIDs(got))
	assert.True(t, got[0].Hidden)
}

func TestCheckAndAward_InterviewLegendNotAwardedBelowAverage(t *testing.T) {
	e, _ := newTestEngine(store.NewMemoryStore(), &MetricsSnapshot{
		InterviewsCompleted: 60, AverageInterviewScore: 80, BestInterviewScore: 88,
	})
	got := achievementIDs(e.CheckAndAward(context.Background(), "u1"))
	assert.ElementsMatch(t, []string{"interview-rookie", "interview-ready"}, got)
	assert.NotContains(t, got, "interview-legend")
}

func TestCheckAndAward_PointsAreMonotonic(t *testing.T) {
	st := store.NewMemoryStore()
	e, provider := newTestEngine(st, &MetricsSnapshot{})
	ctx := context.Background()

	steps := []*MetricsSnapshot{
		{CVGenerated: 1},
		{CVGenerated: 1, JobApplications: 3},
		// Metrics may drift down; awards stay.
		{CVGenerated: 0},
		{CVGenerated: 5, JobApplications: 10, InterviewsCompleted: 12, BestInterviewScore: 95},
	}
	last := 0
	for i, snap := range steps {
		provider.set(snap)
		e.CheckAndAward(ctx, "u1")
		total, err := e.Ledger().TotalPoints(ctx, "u1")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, total, last, "step %d", i)
		last = total
	}
	// cv-first 100, job-hunter 100, cv-master 300, job-seeker 300,
	// interview-rookie 75, interview-ready 400, interview-ace 300
	assert.Equal(t, 1575, last)
}

func TestCheckAndAward_TotalPointsUnlocksOnNextPass(t *testing.T) {
	st := store.NewMemoryStore()
	cat := catalog.Default()
	ledger := NewPointsLedger(cat, st)
	provider := &ledgerProvider{ledger: ledger, base: MetricsSnapshot{InterviewsCompleted: 50, AverageInterviewScore: 90}}
	e := NewEngine(cat, st, ledger, provider, WithClock(fixedClock(engineNow)))

	first := achievementIDs(e.CheckAndAward(context.Background(), "u1"))
	assert.Contains(t, first, "interview-legend")
	assert.NotContains(t, first, "career-champion")

	second := achievementIDs(e.CheckAndAward(context.Background(), "u1"))
	assert.Equal(t, []string{"career-champion"}, second)
}

// ledgerProvider reads total_points live, like the gorm provider does.
type ledgerProvider struct {
	ledger *PointsLedger
	base   MetricsSnapshot
}

func (p *ledgerProvider) Snapshot(ctx context.Context, userID string) (*MetricsSnapshot, error) {
	total, err := p.ledger.TotalPoints(ctx, userID)
	if err != nil {
		return nil, err
	}
	s := p.base
	s.UserID = userID
	s.TotalPoints = total
	return &s, nil
}

func TestCheckAndAward_StopsOnCancelledContext(t *testing.T) {
	st := store.NewMemoryStore()
	e, _ := newTestEngine(st, &MetricsSnapshot{CVGenerated: 5})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := e.CheckAndAward(ctx, "u1")
	assert.Empty(t, got)
}

func TestEarnedAchievements(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	_, err := st.InsertUserAchievement(ctx, &models.UserAchievement{UserID: "u1", AchievementID: "cv-first", EarnedAt: engineNow})
	require.NoError(t, err)
	_, err = st.InsertUserAchievement(ctx, &models.UserAchievement{UserID: "u1", AchievementID: "retired-badge", EarnedAt: engineNow})
	require.NoError(t, err)

	e, _ := newTestEngine(st, &MetricsSnapshot{})
	earned, err := e.EarnedAchievements(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, "cv-first", earned[0].Achievement.ID)
}
