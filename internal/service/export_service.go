package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/colegio-api/internal/models"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
	"github.com/noah-isme/colegio-api/pkg/export"
	"github.com/noah-isme/colegio-api/pkg/storage"
)

type reportCardSource interface {
	ReportCard(ctx context.Context, actor Actor, studentID string) (models.ReportCard, bool, error)
}

type studentLookup interface {
	GetUser(id string) (models.User, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

type fileStore interface {
	Save(name string, data []byte) (string, error)
	Read(name string) ([]byte, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportLinks enables shareable download links backed by stored files.
type ExportLinks struct {
	Files  fileStore
	Signer *storage.SignedURLSigner
	// BasePath prefixes generated URLs, e.g. /api/v1/exports.
	BasePath string
}

// ExportLink points at a stored export.
type ExportLink struct {
	URL       string        `json:"url"`
	Token     string        `json:"token"`
	Name      string        `json:"name"`
	Format    export.Format `json:"format"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// ExportService renders report cards as downloadable documents.
type ExportService struct {
	reports reportCardSource
	users   studentLookup
	links   *ExportLinks
	logger  *zap.Logger
}

// NewExportService constructs an ExportService. links may be nil, which
// disables Publish and Open.
func NewExportService(reports reportCardSource, users studentLookup, links *ExportLinks, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if links != nil && (links.Files == nil || links.Signer == nil) {
		links = nil
	}
	return &ExportService{reports: reports, users: users, links: links, logger: logger}
}

// ReportCard renders the student's report card in format (csv, pdf or xlsx).
func (s *ExportService) ReportCard(ctx context.Context, actor Actor, studentID string, format export.Format) (*ExportFile, error) {
	if format == "" {
		format = export.FormatCSV
	}
	renderer, err := export.RendererFor(format)
	if err != nil {
		return nil, appErrors.Validation("format must be one of csv, pdf, xlsx")
	}

	student, err := s.users.GetUser(studentID)
	if err != nil {
		return nil, err
	}
	profile, ok := student.Student()
	if !ok {
		return nil, appErrors.NotFound("student not found")
	}

	card, _, err := s.reports.ReportCard(ctx, actor, studentID)
	if err != nil {
		return nil, err
	}

	data := reportCardDataset(card)
	data.Title = "Boletín de calificaciones - " + student.Name
	if pdf, ok := renderer.(*export.PDFExporter); ok {
		pdf.Subtitle = fmt.Sprintf("Grado %s - Grupo %s", profile.GradeLevel, profile.Group)
	}

	body, err := renderer.Render(data)
	if err != nil {
		s.logger.Error("report card render failed", zap.String("student_id", studentID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card")
	}
	s.logger.Info("report card exported", zap.String("student_id", studentID), zap.String("format", string(format)), zap.Int("bytes", len(body)))

	return &ExportFile{
		Name:        fmt.Sprintf("boletin_%s.%s", studentID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

// Publish renders the report card, stores it and returns a signed link that
// works without a session until it expires.
func (s *ExportService) Publish(ctx context.Context, actor Actor, studentID string, format export.Format) (*ExportLink, error) {
	if s.links == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export links are not configured")
	}
	file, err := s.ReportCard(ctx, actor, studentID, format)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	relPath, err := s.links.Files.Save(path.Join("reportcards", id, file.Name), file.Body)
	if err != nil {
		s.logger.Error("export store failed", zap.String("student_id", studentID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.links.Signer.Generate(id, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}
	s.logger.Info("export link issued", zap.String("student_id", studentID), zap.String("export_id", id), zap.Time("expires_at", expiresAt))

	return &ExportLink{
		URL:       strings.TrimRight(s.links.BasePath, "/") + "/" + token,
		Token:     token,
		Name:      file.Name,
		Format:    export.Format(path.Ext(file.Name)[1:]),
		ExpiresAt: expiresAt,
	}, nil
}

// Open resolves a signed token to the stored file.
func (s *ExportService) Open(ctx context.Context, token string) (*ExportFile, error) {
	if s.links == nil {
		return nil, appErrors.NotFound("export not found")
	}
	_, relPath, _, err := s.links.Signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	body, err := s.links.Files.Read(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.NotFound("export not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export")
	}
	name := path.Base(relPath)
	contentType := "application/octet-stream"
	if renderer, err := export.RendererFor(export.Format(strings.TrimPrefix(path.Ext(name), "."))); err == nil {
		contentType = renderer.ContentType()
	}
	return &ExportFile{Name: name, ContentType: contentType, Body: body}, nil
}

// Cleanup deletes stored exports whose links can no longer be valid.
func (s *ExportService) Cleanup() (int, error) {
	if s.links == nil {
		return 0, nil
	}
	deleted, err := s.links.Files.CleanupOlderThan(s.links.Signer.TTL())
	if err != nil {
		return 0, err
	}
	if len(deleted) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
	}
	return len(deleted), nil
}

// reportCardDataset lays out one row per subject, ordered by subject id, with
// a column per period and the average last. Missing periods are blank.
func reportCardDataset(card models.ReportCard) export.Dataset {
	headers := append([]string{"Materia"}, models.Periods...)
	headers = append(headers, "Promedio")

	ids := make([]string, 0, len(card))
	for id := range card {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return lessID(ids[i], ids[j]) })

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		scores := card[id]
		row := []string{scores.SubjectName}
		for _, period := range models.Periods {
			if v := scores.Periods[period]; v != nil {
				row = append(row, strconv.Itoa(*v))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, strings.TrimSuffix(strconv.FormatFloat(scores.Average, 'f', 1, 64), ".0"))
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// lessID orders numeric ids numerically and anything else lexically.
func lessID(a, b string) bool {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return x < y
	}
	return a < b
}
