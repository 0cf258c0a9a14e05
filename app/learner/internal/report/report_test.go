package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/lk2023060901/kidlingo/app/learner/internal/testkit"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWeekly(t *testing.T) {
	env := testkit.New(t)
	env.Login(t, "bin@kid.vn")
	ctx := context.Background()
	require.NoError(t, env.Client.Post(ctx, kidapi.PathMarkComplete, kidapi.ProgressUpdate{LessonID: 1, Score: 2, TotalQuestions: 2}, nil))

	r, err := NewService(env.Client).Weekly(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, r.LessonsCompleted)
	assert.Equal(t, 4, r.TotalMinutes)
	assert.Equal(t, []string{"cat"}, r.LearnedWords)
	assert.Empty(t, r.WeakWords)
	assert.Len(t, r.DailyChart, 7)
}

func TestExport(t *testing.T) {
	r := &kidapi.WeeklyReport{
		TotalMinutes:     9,
		LessonsCompleted: 2,
		LearnedWords:     []string{"cat", "red"},
		WeakWords:        []string{"dog"},
		DailyChart: []kidapi.DailyMinutes{
			{Date: "2026-03-01", Minutes: 4},
			{Date: "2026-03-02", Minutes: 5},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, DailySheet}, f.GetSheetList())

	v, err := f.GetCellValue(SummarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "9", v)
	v, err = f.GetCellValue(SummarySheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "cat, red", v)

	rows, err := f.GetRows(DailySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2026-03-02", "5"}, rows[2])
}

func TestExportNil(t *testing.T) {
	assert.Error(t, Export(&bytes.Buffer{}, nil))
}
