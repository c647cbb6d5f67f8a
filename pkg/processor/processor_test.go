package processor

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/internal/repositories/activity"
	"github.com/Ramsey-B/clover/internal/repositories/prospect"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/schema"
	"github.com/Ramsey-B/clover/pkg/scoring"
)

func newTestService(cfg Config) *Service {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewService(cfg, nil, nil, scoring.NewEngine(), nil, nil, nil, nil, nil, nil, nil, logger)
}

func record(ref string, fields map[string]string) models.CanonicalRecord {
	return models.CanonicalRecord{
		RecordRef: ref,
		Fields:    fields,
	}
}

func TestScoreBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("scores every record with defaults when no rules exist", func(t *testing.T) {
		svc := newTestService(Config{BatchSize: 2})

		records := make([]models.CanonicalRecord, 0, 5)
		for i := 0; i < 5; i++ {
			records = append(records, record(fmt.Sprintf("REC-%d", i), map[string]string{
				models.FieldIndustry:         "Metal Fabrication",
				models.FieldDaysSinceContact: "10",
			}))
		}

		result := svc.ScoreBatch(ctx, "tenant-1", records, false)

		assert.Equal(t, 5, result.Processed)
		assert.Equal(t, 5, result.Succeeded)
		assert.Equal(t, 0, result.Failed)
		require.Len(t, result.Results, 5)
		for _, score := range result.Results {
			assert.Equal(t, scoring.DefaultIndustryScore, score.IndustryScore)
			assert.Equal(t, scoring.DefaultUrgencyScore, score.UrgencyScore)
			assert.Equal(t, 38, score.TotalScore)
		}
	})

	t.Run("persist requires a company id and a failure does not abort the batch", func(t *testing.T) {
		svc := newTestService(Config{BatchSize: 10})

		records := []models.CanonicalRecord{
			record("REC-0", map[string]string{
				models.FieldDaysSinceContact: "3",
			}),
		}

		result := svc.ScoreBatch(ctx, "tenant-1", records, true)

		assert.Equal(t, 1, result.Processed)
		assert.Equal(t, 0, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "REC-0")
	})

	t.Run("empty batch", func(t *testing.T) {
		svc := newTestService(Config{})

		result := svc.ScoreBatch(ctx, "tenant-1", nil, false)

		assert.Equal(t, 0, result.Processed)
		assert.Equal(t, 0, result.Succeeded)
		assert.Equal(t, 0, result.Failed)
	})
}

func TestSnapshotWithoutSettingsSource(t *testing.T) {
	svc := newTestService(Config{})

	snapshot := svc.Snapshot(context.Background(), "tenant-1")

	assert.Empty(t, snapshot.IndustryScores)
	assert.Empty(t, snapshot.UrgencyBands)
}

type fakeResult struct{}

func (fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (fakeResult) RowsAffected() (int64, error) { return 1, nil }

type execCall struct {
	query string
	args  []any
}

// fakeDB backs the repositories in-memory and fails any exec whose query
// contains failWhen.
type fakeDB struct {
	masters  []models.Prospect
	execs    []execCall
	failWhen string
}

func (f *fakeDB) Close() error { return nil }

func (f *fakeDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.execs = append(f.execs, execCall{query: query, args: args})
	if f.failWhen != "" && strings.Contains(query, f.failWhen) {
		return nil, fmt.Errorf("connection reset")
	}
	return fakeResult{}, nil
}

func (f *fakeDB) GetContext(_ context.Context, _ any, _ string, _ ...any) error {
	return sql.ErrNoRows
}

func (f *fakeDB) NamedExecContext(_ context.Context, _ string, _ any) (sql.Result, error) {
	return fakeResult{}, nil
}

func (f *fakeDB) PingContext(_ context.Context) error { return nil }

func (f *fakeDB) QueryxContext(_ context.Context, _ string, _ ...any) (*sqlx.Rows, error) {
	return nil, nil
}

func (f *fakeDB) Rebind(query string) string { return query }

func (f *fakeDB) SelectContext(_ context.Context, dest any, _ string, _ ...any) error {
	if prospects, ok := dest.(*[]models.Prospect); ok {
		*prospects = append(*prospects, f.masters...)
	}
	return nil
}

func (f *fakeDB) Unsafe() *sqlx.DB { return nil }

func TestProcessActivityWriteBackFailure(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	db := &fakeDB{
		masters:  []models.Prospect{{CompanyID: "CID-1", CompanyName: "Acme Recycling", Industry: "Recycling"}},
		failWhen: "UPDATE prospects",
	}

	aliases := []models.FieldAlias{
		{EntityType: models.EntityTypeActivity, CanonicalName: models.FieldCompanyID, DisplayHeader: "Company ID"},
		{EntityType: models.EntityTypeActivity, CanonicalName: models.FieldCompanyName, DisplayHeader: "Company Name"},
	}
	schemaSvc := schema.NewService(schema.NewResolver(aliases, 0, nil, logger), 0, logger)

	svc := NewService(
		Config{},
		schemaSvc,
		matching.NewMatcher(0, logger),
		scoring.NewEngine(),
		nil,
		nil,
		prospect.NewRepository(db, logger),
		activity.NewRepository(db, logger),
		nil, nil, nil,
		logger,
	)

	msg := &kafka.ActivityMessage{
		TenantID:  "tenant-1",
		RecordRef: "ACT-1",
		Cells:     map[string]string{"Company ID": "CID-1", "Company Name": "Acme Recycling"},
	}

	err := svc.ProcessActivity(context.Background(), "tenant-1", msg)
	require.Error(t, err)

	markedFailed := false
	for _, call := range db.execs {
		if !strings.Contains(call.query, "UPDATE activities") {
			continue
		}
		for _, arg := range call.args {
			if arg == models.ActivityStatusFailed {
				markedFailed = true
			}
		}
	}
	assert.True(t, markedFailed, "activity status should move to failed when score write-back fails")
}
