package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
	"github.com/noah-isme/colegio-api/pkg/export"
	"github.com/noah-isme/colegio-api/pkg/storage"
)

func newExportService(t *testing.T) *ExportService {
	t.Helper()
	st := seededStore(t)
	return NewExportService(NewGradeService(st, nil, Dependencies{}), st, nil, nil)
}

func TestExportServiceReportCardCSV(t *testing.T) {
	file, err := newExportService(t).ReportCard(context.Background(), carlosActor, "4", "")
	require.NoError(t, err)
	assert.Equal(t, "boletin_4.csv", file.Name)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Materia,1er Trimestre,2do Trimestre,3er Trimestre,Promedio", lines[0])
	assert.Equal(t, "Matemáticas,85,88,,86.5", lines[1])
	assert.Equal(t, "Ciencias,78,82,,80", lines[2])
	assert.Equal(t, "Historia,92,90,,91", lines[3])
}

func TestExportServiceBinaryFormats(t *testing.T) {
	svc := newExportService(t)

	pdf, err := svc.ReportCard(context.Background(), adminActor, "5", export.FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf.Body, []byte("%PDF-")))

	xlsx, err := svc.ReportCard(context.Background(), adminActor, "5", export.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "boletin_5.xlsx", xlsx.Name)
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(xlsx.Body, []byte("PK")))
}

func TestExportServiceErrors(t *testing.T) {
	svc := newExportService(t)
	ctx := context.Background()

	_, err := svc.ReportCard(ctx, adminActor, "4", "docx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.ReportCard(ctx, adminActor, "2", export.FormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.ReportCard(ctx, anaActor, "4", export.FormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestReportCardDatasetOrdersSubjectsNumerically(t *testing.T) {
	v := 70
	data := reportCardDataset(models.ReportCard{
		"10": {SubjectName: "Artes", Periods: map[string]*int{models.PeriodFirst: &v}, Average: 70},
		"2":  {SubjectName: "Ciencias", Periods: map[string]*int{}, Average: 0},
	})
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Ciencias", data.Rows[0][0])
	assert.Equal(t, []string{"Artes", "70", "", "", "70"}, data.Rows[1])
}

func newLinkedExportService(t *testing.T) *ExportService {
	t.Helper()
	st := seededStore(t)
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("link-secret", time.Hour)
	links := &ExportLinks{Files: files, Signer: signer, BasePath: "/api/v1/exports/"}
	return NewExportService(NewGradeService(st, nil, Dependencies{}), st, links, nil)
}

func TestExportServicePublishAndOpen(t *testing.T) {
	svc := newLinkedExportService(t)
	ctx := context.Background()

	link, err := svc.Publish(ctx, carlosActor, "4", export.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/exports/"+link.Token, link.URL)
	assert.Equal(t, "boletin_4.xlsx", link.Name)
	assert.Equal(t, export.FormatXLSX, link.Format)

	file, err := svc.Open(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, "boletin_4.xlsx", file.Name)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("PK")))

	removed, err := svc.Cleanup()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestExportServiceOpenRejectsBadTokens(t *testing.T) {
	svc := newLinkedExportService(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, "not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	// correctly signed but nothing stored under the path
	token, _, err := storage.NewSignedURLSigner("link-secret", time.Hour).Generate("x", "reportcards/x/boletin_4.csv")
	require.NoError(t, err)
	_, err = svc.Open(ctx, token)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Publish(ctx, anaActor, "4", export.FormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestExportServiceWithoutLinks(t *testing.T) {
	svc := newExportService(t)

	_, err := svc.Publish(context.Background(), adminActor, "4", export.FormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	_, err = svc.Open(context.Background(), "x.1.y.z")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	n, err := svc.Cleanup()
	assert.NoError(t, err)
	assert.Zero(t, n)
}
