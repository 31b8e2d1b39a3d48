package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shikshalabs/qpaper/constants"
	"github.com/shikshalabs/qpaper/internal/async"
	"github.com/shikshalabs/qpaper/internal/common"
	"github.com/shikshalabs/qpaper/internal/entity"
	"github.com/shikshalabs/qpaper/internal/export"
)

type fakeDocumentRepo struct {
	docs map[uuid.UUID]*entity.Document
}

func (f *fakeDocumentRepo) Create(_ context.Context, name string, pageCount int) (*entity.Document, error) {
	doc := &entity.Document{ID: uuid.New(), Name: name, PageCount: pageCount, UploadedAt: time.Now()}
	f.docs[doc.ID] = doc
	return doc, nil
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return doc, nil
}

type fakeJobRepo struct {
	jobs map[uuid.UUID]*entity.ExtractJob
}

func (f *fakeJobRepo) Create(_ context.Context, documentID uuid.UUID, strategy string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID: uuid.New(), DocumentID: documentID, Strategy: strategy,
		Status: constants.JobStatusQueued, StartedAt: time.Now(),
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.ExtractJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobRepo) LatestCompletedForDocument(_ context.Context, documentID uuid.UUID) (*entity.ExtractJob, error) {
	for _, job := range f.jobs {
		if job.DocumentID == documentID && job.Status == constants.JobStatusCompleted {
			return job, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeJobRepo) MarkRunning(_ context.Context, jobID uuid.UUID) error {
	f.jobs[jobID].Status = constants.JobStatusRunning
	return nil
}

func (f *fakeJobRepo) FinishSuccess(_ context.Context, jobID uuid.UUID, questionCount int) error {
	f.jobs[jobID].Status = constants.JobStatusCompleted
	f.jobs[jobID].QuestionCount = questionCount
	return nil
}

func (f *fakeJobRepo) FinishFailure(_ context.Context, jobID uuid.UUID, message string) error {
	f.jobs[jobID].Status = constants.JobStatusFailed
	f.jobs[jobID].ErrorMessage = &message
	return nil
}

func (f *fakeJobRepo) MarkCancelled(_ context.Context, jobID uuid.UUID) error {
	f.jobs[jobID].Status = constants.JobStatusCancelled
	return nil
}

type fakeQuestionRepo struct {
	byJob map[uuid.UUID][]entity.Question
}

func (f *fakeQuestionRepo) ReplaceForJob(_ context.Context, jobID uuid.UUID, questions []entity.Question) error {
	f.byJob[jobID] = questions
	return nil
}

func (f *fakeQuestionRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]entity.Question, error) {
	return f.byJob[jobID], nil
}

type fakeQueue struct {
	jobs []async.Job
}

func (f *fakeQueue) Enqueue(_ context.Context, job async.Job) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeQueue) Shutdown(context.Context) {}

type fixture struct {
	handler   *Handler
	docs      *fakeDocumentRepo
	jobs      *fakeJobRepo
	questions *fakeQuestionRepo
	queue     *fakeQueue
}

func newFixture() *fixture {
	docs := &fakeDocumentRepo{docs: map[uuid.UUID]*entity.Document{}}
	jobs := &fakeJobRepo{jobs: map[uuid.UUID]*entity.ExtractJob{}}
	questions := &fakeQuestionRepo{byJob: map[uuid.UUID][]entity.Question{}}
	queue := &fakeQueue{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(docs, jobs, questions, export.NewService(questions, logger), queue, "HEURISTIC", logger)
	return &fixture{handler: handler, docs: docs, jobs: jobs, questions: questions, queue: queue}
}

func submitBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body := map[string]any{
		"name": "physics-2024",
		"shards": []map[string]any{{
			"text":  "1. Define inertia.",
			"pages": []map[string]any{{}},
		}},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(body))
	return buf
}

func TestSubmitDocumentQueuesJob(t *testing.T) {
	f := newFixture()
	srv := httptest.NewServer(f.handler.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/documents", "application/json", submitBody(t))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var out struct {
		Document entity.Document   `json:"document"`
		Job      entity.ExtractJob `json:"job"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "physics-2024", out.Document.Name)
	assert.Equal(t, 1, out.Document.PageCount)
	assert.Equal(t, constants.JobStatusQueued, out.Job.Status)
	assert.Equal(t, "HEURISTIC", out.Job.Strategy, "server default strategy applied")

	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, out.Job.ID, f.queue.jobs[0].JobID)
	require.Len(t, f.queue.jobs[0].Shards, 1)
}

func TestSubmitDocumentRejectsMissingFields(t *testing.T) {
	f := newFixture()
	srv := httptest.NewServer(f.handler.Router())
	defer srv.Close()

	for name, body := range map[string]string{
		"empty name":   `{"name": "", "shards": [{"text": "x", "pages": [{}]}]}`,
		"no shards":    `{"name": "doc"}`,
		"bad strategy": `{"name": "doc", "strategy": "MAGIC", "shards": [{"text": "x", "pages": [{}]}]}`,
		"malformed":    `{"name": `,
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/documents", "application/json", bytes.NewBufferString(body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	assert.Empty(t, f.queue.jobs)
}

func TestGetJobNotFound(t *testing.T) {
	f := newFixture()
	srv := httptest.NewServer(f.handler.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/jobs/" + uuid.NewString())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetJobInvalidID(t *testing.T) {
	f := newFixture()
	srv := httptest.NewServer(f.handler.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/jobs/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListQuestionsForCompletedJob(t *testing.T) {
	f := newFixture()
	srv := httptest.NewServer(f.handler.Router())
	defer srv.Close()

	doc, _ := f.docs.Create(context.Background(), "doc", 1)
	job, _ := f.jobs.Create(context.Background(), doc.ID, "HEURISTIC")
	require.NoError(t, f.jobs.FinishSuccess(context.Background(), job.ID, 1))
	marks := 2
	f.questions.byJob[job.ID] = []entity.Question{{
		QuestionNumber: 1,
		QuestionText:   "What is air pressure?",
		Answer:         "Force per unit area.",
		Marks:          &marks,
		Type:           constants.TypeVeryShort,
		Difficulty:     constants.DifficultyEasy,
		Page:           1,
	}}

	resp, err := http.Get(srv.URL + "/v1/jobs/" + job.ID.String() + "/questions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Job       entity.ExtractJob `json:"job"`
		Questions []entity.Question `json:"questions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, constants.JobStatusCompleted, out.Job.Status)
	require.Len(t, out.Questions, 1)
	assert.Equal(t, "What is air pressure?", out.Questions[0].QuestionText)
}

func TestExportQuestionsXLSX(t *testing.T) {
	f := newFixture()
	srv := httptest.NewServer(f.handler.Router())
	defer srv.Close()

	doc, _ := f.docs.Create(context.Background(), "chem-2023", 2)
	job, _ := f.jobs.Create(context.Background(), doc.ID, "HEURISTIC")
	require.NoError(t, f.jobs.FinishSuccess(context.Background(), job.ID, 1))
	f.questions.byJob[job.ID] = []entity.Question{{
		QuestionNumber: 1, QuestionText: "Balance the equation.", Page: 1,
		Type: constants.TypeShort, Difficulty: constants.DifficultyMedium,
	}}

	resp, err := http.Get(srv.URL + "/v1/documents/" + doc.ID.String() + "/questions.xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "chem-2023")
}

func TestExportWithoutCompletedJobIs404(t *testing.T) {
	f := newFixture()
	srv := httptest.NewServer(f.handler.Router())
	defer srv.Close()

	doc, _ := f.docs.Create(context.Background(), "doc", 1)

	resp, err := http.Get(srv.URL + "/v1/documents/" + doc.ID.String() + "/questions.xlsx")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	f := newFixture()
	srv := httptest.NewServer(f.handler.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
