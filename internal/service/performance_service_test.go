package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository/memory"
)

func TestRankingsShareRankOnTies(t *testing.T) {
	svc := NewPerformanceService(memory.NewPerformanceRepository(testStore(t)))

	rankings, err := svc.Rankings(context.Background(), principal, models.PerformanceFilter{})
	require.NoError(t, err)
	require.Len(t, rankings, 4)

	got := make([][2]interface{}, 0, len(rankings))
	for _, r := range rankings {
		got = append(got, [2]interface{}{r.Rank, r.ID})
	}
	assert.Equal(t, [][2]interface{}{{1, "T3"}, {1, "T1"}, {3, "T2"}, {4, "T4"}}, got)

	maths, err := svc.Rankings(context.Background(), principal, models.PerformanceFilter{Subject: "math"})
	require.NoError(t, err)
	require.Len(t, maths, 2)
	assert.Equal(t, 1, maths[0].Rank)
	assert.Equal(t, "T1", maths[0].ID)
}

func TestCompareTeachers(t *testing.T) {
	svc := NewPerformanceService(memory.NewPerformanceRepository(testStore(t)))
	ctx := context.Background()

	rows, err := svc.Compare(ctx, principal, []string{"T4", "T1"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "T4", rows[0].ID)

	_, err = svc.Compare(ctx, principal, []string{"T1"})
	requireAppError(t, err, "VALIDATION_ERROR")

	_, err = svc.Compare(ctx, principal, []string{"T1", "T7", "T8"})
	appErr := requireAppError(t, err, "NOT_FOUND")
	assert.Contains(t, appErr.Message, "T7, T8")
}

func TestComparisonDatasetUsesIDsFilter(t *testing.T) {
	svc := NewPerformanceService(memory.NewPerformanceRepository(testStore(t)))

	named, err := svc.ComparisonDataset(context.Background(), principal, url.Values{"ids": {"T2,T3"}})
	require.NoError(t, err)
	assert.Equal(t, "teacher_comparison_T2-T3.pdf", named.Filename(models.ReportFormatPDF))
	require.Len(t, named.Data.Rows, 2)
	assert.Equal(t, "Mr. Khan", named.Data.Rows[0]["teacherName"])
}

func TestGrowthDatasetSortsByRequestedKey(t *testing.T) {
	svc := NewPerformanceService(memory.NewPerformanceRepository(testStore(t)))

	named, err := svc.GrowthDataset(context.Background(), principal, url.Values{"sort": {"name"}})
	require.NoError(t, err)
	assert.Equal(t, "teacher_growth_all.csv", named.Filename(models.ReportFormatCSV))
	require.Len(t, named.Data.Rows, 4)
	assert.Equal(t, "Mr. Das", named.Data.Rows[0]["teacherName"])

	_, err = svc.GrowthDataset(context.Background(), principal, url.Values{"sort": {"shoeSize"}})
	requireAppError(t, err, "VALIDATION_ERROR")
}
