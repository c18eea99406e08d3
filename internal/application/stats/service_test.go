package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstats "github.com/realscan/realscan/internal/application/stats"
	codesdomain "github.com/realscan/realscan/internal/domain/codes"
	scansdomain "github.com/realscan/realscan/internal/domain/scans"
	"github.com/realscan/realscan/internal/infra/db/memory"
)

func TestCompute(t *testing.T) {
	ctx := context.Background()
	codeRepo := memory.NewCodeRepository()
	scanRepo := memory.NewScanRepository()
	svc := &appstats.Service{Codes: codeRepo, Scans: scanRepo}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, codeRepo.Save(ctx, &codesdomain.AccessCode{
			ID:        codesdomain.CodeID(string(rune('a' + i))),
			Code:      string(rune('A' + i)),
			SubjectID: "M001",
			CreatedAt: base,
			ExpiresAt: base.Add(time.Hour),
			Active:    i != 0, // one revoked
		}))
	}
	for i := 0; i < 7; i++ {
		require.NoError(t, scanRepo.Save(ctx, &scansdomain.ScanResult{
			ID:        scansdomain.ScanID(string(rune('a' + i))),
			SubjectID: "M001",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	stats, err := svc.Compute(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalCodes)
	assert.Equal(t, int64(2), stats.ActiveCodes)
	assert.Equal(t, int64(7), stats.TotalScans)
	require.Len(t, stats.RecentScans, 5)
	// Newest first.
	assert.Equal(t, base.Add(6*time.Minute), stats.RecentScans[0].Timestamp)

	assert.GreaterOrEqual(t, stats.TotalCodes, stats.ActiveCodes)
}

func TestCompute_Empty(t *testing.T) {
	svc := &appstats.Service{
		Codes: memory.NewCodeRepository(),
		Scans: memory.NewScanRepository(),
	}
	stats, err := svc.Compute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalCodes)
	assert.Zero(t, stats.ActiveCodes)
	assert.Zero(t, stats.TotalScans)
	assert.Empty(t, stats.RecentScans)
}
