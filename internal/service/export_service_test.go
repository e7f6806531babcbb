package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
)

func TestExportReviewsCSV(t *testing.T) {
	env := newTestEnv(t, testState())
	file, err := NewExportService(env.study, nil).Export(context.Background(), "reviews", "csv")
	require.NoError(t, err)

	assert.Equal(t, "mornoningo-reviews-2024-05-10.csv", file.Filename)
	assert.Contains(t, file.ContentType, "text/csv")

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Due Date", "Stage", "Priority", "Document", "Status"}, records[0])
	assert.Equal(t, []string{"2024-05-08", "1", "1", "Algorithms.pdf", "due"}, records[1])
	assert.Equal(t, "upcoming", records[3][4])
}

func TestExportDocumentsPDF(t *testing.T) {
	env := newTestEnv(t, NewSampleState(testToday))
	file, err := NewExportService(env.study, nil).Export(context.Background(), "documents", "pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportRejectsUnknownInput(t *testing.T) {
	env := newTestEnv(t, testState())
	svc := NewExportService(env.study, nil)

	_, err := svc.Export(context.Background(), "grades", "csv")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = svc.Export(context.Background(), "history", "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
