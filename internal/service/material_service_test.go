package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-resources-api/internal/dto"
	"github.com/noah-isme/student-resources-api/internal/models"
	appErrors "github.com/noah-isme/student-resources-api/pkg/errors"
)

type materialRepoFake struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]models.Material
	failAll error
}

func newMaterialRepoFake() *materialRepoFake {
	return &materialRepoFake{rows: make(map[int64]models.Material)}
}

func (f *materialRepoFake) Create(ctx context.Context, material *models.Material) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.nextID++
	material.ID = f.nextID
	material.CreatedAt = time.Now().UTC()
	f.rows[material.ID] = *material
	return nil
}

func (f *materialRepoFake) FindByID(ctx context.Context, id int64) (*models.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

func (f *materialRepoFake) MarkApproved(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	row, ok := f.rows[id]
	if ok {
		row.Approved = true
		f.rows[id] = row
	}
	return nil
}

func (f *materialRepoFake) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	delete(f.rows, id)
	return nil
}

func (f *materialRepoFake) ListByApproval(ctx context.Context, approved bool) ([]models.Material, error) {
	return f.collect(func(m models.Material) bool { return m.Approved == approved })
}

func (f *materialRepoFake) ListByUploader(ctx context.Context, name string) ([]models.Material, error) {
	return f.collect(func(m models.Material) bool { return models.StringValue(m.UploaderName) == name })
}

func (f *materialRepoFake) SearchApproved(ctx context.Context, term string) ([]models.Material, error) {
	term = strings.ToLower(term)
	return f.collect(func(m models.Material) bool {
		if !m.Approved {
			return false
		}
		for _, field := range []string{m.Title, models.StringValue(m.Subject), models.StringValue(m.Description)} {
			if strings.Contains(strings.ToLower(field), term) {
				return true
			}
		}
		return false
	})
}

func (f *materialRepoFake) collect(keep func(models.Material) bool) ([]models.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	out := make([]models.Material, 0)
	for _, row := range f.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type auditStoreFake struct {
	mu      sync.Mutex
	entries []models.MaterialAuditLog
	err     error
}

func (f *auditStoreFake) Create(ctx context.Context, log *models.MaterialAuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *log)
	return nil
}

func (f *auditStoreFake) List(ctx context.Context, filter models.MaterialAuditFilter) ([]models.MaterialAuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.MaterialAuditLog, 0, len(f.entries))
	for i := len(f.entries) - 1; i >= 0; i-- {
		if filter.MaterialID > 0 && f.entries[i].MaterialID != filter.MaterialID {
			continue
		}
		out = append(out, f.entries[i])
	}
	return out, nil
}

func (f *auditStoreFake) actions() []models.MaterialAuditAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.MaterialAuditAction, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type eventPublisherFake struct {
	mu     sync.Mutex
	events []models.MaterialEvent
}

func (f *eventPublisherFake) Publish(ctx context.Context, event models.MaterialEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

type fileRemoverFake struct {
	removed []string
	err     error
}

func (f *fileRemoverFake) Delete(filename string) error {
	f.removed = append(f.removed, filename)
	return f.err
}

type moderationCounterFake struct {
	counts map[string]int
}

func (f *moderationCounterFake) ObserveModeration(action string) {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[action]++
}

type materialServiceFixture struct {
	svc     *MaterialService
	repo    *materialRepoFake
	audit   *auditStoreFake
	events  *eventPublisherFake
	files   *fileRemoverFake
	metrics *moderationCounterFake
}

func newMaterialServiceFixture() materialServiceFixture {
	f := materialServiceFixture{
		repo:    newMaterialRepoFake(),
		audit:   &auditStoreFake{},
		events:  &eventPublisherFake{},
		files:   &fileRemoverFake{},
		metrics: &moderationCounterFake{},
	}
	f.svc = NewMaterialService(f.repo, f.audit, f.events, f.files, f.metrics, zap.NewNop(), MaterialServiceConfig{APIPrefix: "/api/"})
	return f
}

func (f materialServiceFixture) submit(t *testing.T, m models.Material) *models.Material {
	t.Helper()
	material := m
	require.NoError(t, f.svc.Submit(context.Background(), &material))
	return &material
}

func TestMaterialServiceSubmitStartsPending(t *testing.T) {
	f := newMaterialServiceFixture()
	material := f.submit(t, models.Material{Title: "Vectors", Approved: true, FilePath: sp("materials/a.pdf"), UploaderName: sp("rina")})

	assert.False(t, material.Approved)
	assert.Equal(t, "/api/files/1", material.FileURL)
	assert.Equal(t, []models.MaterialAuditAction{models.AuditActionUpload}, f.audit.actions())
	require.Len(t, f.events.events, 1)
	assert.Equal(t, models.AuditActionUpload, f.events.events[0].Type)
	assert.Equal(t, "rina", f.events.events[0].UploaderName)

	pending, err := f.svc.ListPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, idsOf(pending))

	approved, err := f.svc.ListApproved(context.Background())
	require.NoError(t, err)
	assert.Empty(t, approved)
}

func TestMaterialServiceApproveIsIdempotent(t *testing.T) {
	f := newMaterialServiceFixture()
	f.submit(t, models.Material{Title: "Vectors"})

	require.NoError(t, f.svc.Approve(context.Background(), 1))
	require.NoError(t, f.svc.Approve(context.Background(), 1))

	state, err := f.svc.GetStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MaterialStateApproved, state)
	assert.Equal(t, []models.MaterialAuditAction{models.AuditActionUpload, models.AuditActionApprove}, f.audit.actions())
	assert.Equal(t, 1, f.metrics.counts[string(models.AuditActionApprove)])
}

func TestMaterialServiceApproveMissing(t *testing.T) {
	f := newMaterialServiceFixture()

	err := f.svc.Approve(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
	assert.Equal(t, "Not Found", appErrors.FromError(err).Message)
}

func TestMaterialServiceDeleteMissingIsNoop(t *testing.T) {
	f := newMaterialServiceFixture()

	require.NoError(t, f.svc.Delete(context.Background(), 42))
	require.NoError(t, f.svc.Reject(context.Background(), 42))
	assert.Empty(t, f.audit.actions())
	assert.Empty(t, f.files.removed)
}

func TestMaterialServiceRejectRemovesRowAndFile(t *testing.T) {
	f := newMaterialServiceFixture()
	f.submit(t, models.Material{Title: "Draft", FilePath: sp("materials/draft.pdf")})

	require.NoError(t, f.svc.Reject(context.Background(), 1))

	state, err := f.svc.GetStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MaterialStateNotFound, state)
	assert.Equal(t, []string{"materials/draft.pdf"}, f.files.removed)
	assert.Equal(t, []models.MaterialAuditAction{models.AuditActionUpload, models.AuditActionReject}, f.audit.actions())
}

func TestMaterialServiceDeleteSurvivesFileRemovalFailure(t *testing.T) {
	f := newMaterialServiceFixture()
	f.files.err = errors.New("disk gone")
	f.submit(t, models.Material{Title: "Old", FilePath: sp("materials/old.pdf")})
	require.NoError(t, f.svc.Approve(context.Background(), 1))

	require.NoError(t, f.svc.Delete(context.Background(), 1))

	state, err := f.svc.GetStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MaterialStateNotFound, state)
	assert.Contains(t, f.audit.actions(), models.AuditActionDelete)
}

func TestMaterialServiceAuditFailureDoesNotFailTransition(t *testing.T) {
	f := newMaterialServiceFixture()
	f.submit(t, models.Material{Title: "Vectors"})
	f.audit.err = errors.New("audit table locked")

	require.NoError(t, f.svc.Approve(context.Background(), 1))
	state, err := f.svc.GetStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MaterialStateApproved, state)
}

func TestMaterialServiceStatusStates(t *testing.T) {
	f := newMaterialServiceFixture()
	f.submit(t, models.Material{Title: "Vectors"})

	state, err := f.svc.GetStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MaterialStatePending, state)

	state, err = f.svc.GetStatus(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.MaterialStateNotFound, state)
}

func seedCatalog(t *testing.T, f materialServiceFixture) {
	t.Helper()
	f.submit(t, models.Material{Title: "Kinematics", Subject: sp("Physics"), Semester: sp("1"), GroupName: sp("A"), UploadYear: sp("2024"), Type: sp("Notes")})
	f.submit(t, models.Material{Title: "Derivatives", Subject: sp("Math"), Semester: sp("2"), GroupName: sp("B"), UploadYear: sp("2023"), Type: sp("Exam")})
	f.submit(t, models.Material{Title: "Untagged"})
	f.submit(t, models.Material{Title: "Hidden physics", Subject: sp("physics")})
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, f.svc.Approve(context.Background(), id))
	}
}

func TestMaterialServiceWildcardFilterEqualsApproved(t *testing.T) {
	f := newMaterialServiceFixture()
	seedCatalog(t, f)

	approved, err := f.svc.ListApproved(context.Background())
	require.NoError(t, err)
	filtered, err := f.svc.ListApprovedFiltered(context.Background(), dto.MaterialFilter{Semester: "All", Subject: "", Group: "All", Year: "all", Type: "ALL"})
	require.NoError(t, err)

	assert.Equal(t, idsOf(approved), idsOf(filtered))
	assert.Equal(t, []int64{3, 2, 1}, idsOf(filtered))
}

func TestMaterialServiceFilteredListingPolicies(t *testing.T) {
	f := newMaterialServiceFixture()
	seedCatalog(t, f)

	filtered, err := f.svc.ListApprovedFiltered(context.Background(), dto.MaterialFilter{Subject: "physics"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, idsOf(filtered))

	legacy, err := f.svc.ListLegacy(context.Background(), dto.MaterialFilter{Subject: "physics"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, idsOf(legacy.Items))
	assert.Equal(t, 1, legacy.Total)
}

func TestMaterialServiceSearch(t *testing.T) {
	f := newMaterialServiceFixture()
	seedCatalog(t, f)

	found, err := f.svc.Search(context.Background(), "  PHYS ")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, idsOf(found))

	all, err := f.svc.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, idsOf(all))
}

func TestMaterialServiceUploadsByUser(t *testing.T) {
	f := newMaterialServiceFixture()
	f.submit(t, models.Material{Title: "A", UploaderName: sp("rina")})
	f.submit(t, models.Material{Title: "B", UploaderName: sp("budi")})
	f.submit(t, models.Material{Title: "C", UploaderName: sp("rina")})
	require.NoError(t, f.svc.Approve(context.Background(), 3))

	items, err := f.svc.ListUploadsByUser(context.Background(), "rina")
	require.NoError(t, err)
	require.Equal(t, []int64{3, 1}, idsOf(items))
	assert.True(t, items[0].Approved)
	assert.False(t, items[1].Approved)

	none, err := f.svc.ListUploadsByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = f.svc.ListUploadsByUser(context.Background(), "  ")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestMaterialServiceStorageFailures(t *testing.T) {
	f := newMaterialServiceFixture()
	f.repo.failAll = errors.New("connection refused")

	_, err := f.svc.ListApproved(context.Background())
	assert.Equal(t, http.StatusServiceUnavailable, appErrors.FromError(err).Status)

	_, err = f.svc.GetStatus(context.Background(), 1)
	assert.True(t, errors.Is(err, appErrors.ErrStorageUnavailable))

	err = f.svc.Delete(context.Background(), 1)
	assert.True(t, errors.Is(err, appErrors.ErrStorageUnavailable))

	err = f.svc.Submit(context.Background(), &models.Material{Title: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrStorageUnavailable))
	assert.Empty(t, f.audit.actions())
}

func TestMaterialServiceAuditTrail(t *testing.T) {
	f := newMaterialServiceFixture()
	f.submit(t, models.Material{Title: "A"})
	f.submit(t, models.Material{Title: "B"})
	require.NoError(t, f.svc.Approve(context.Background(), 2))

	logs, err := f.svc.AuditTrail(context.Background(), models.MaterialAuditFilter{MaterialID: 2})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.AuditActionApprove, logs[0].Action)
	assert.Equal(t, models.AuditActionUpload, logs[1].Action)

	noAudit := NewMaterialService(newMaterialRepoFake(), nil, nil, nil, nil, nil, MaterialServiceConfig{})
	empty, err := noAudit.AuditTrail(context.Background(), models.MaterialAuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
