package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexanderramin/fundplan/internal/service"
	"github.com/alexanderramin/fundplan/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	reg := prometheus.NewRegistry()
	metrics, err := service.NewMetricsUseCaseObserver(reg)
	require.NoError(t, err)

	return NewRouter(Deps{
		Projects:       service.NewProjectService(database, uow, metrics),
		Budget:         service.NewBudgetService(database, uow, metrics),
		Activities:     service.NewActivityService(database, uow, metrics),
		Acquisitions:   service.NewAcquisitionService(database, uow, metrics),
		Templates:      service.NewTemplateService(database, uow, metrics),
		Reimbursements: service.NewReimbursementService(database, uow, metrics),
		Purchases:      service.NewPurchaseService(database, uow, metrics),
		DB:             database,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Gatherer:       reg,
		Version:        "test",
	})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type envelope map[string]any

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var out envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e envelope) obj(key string) envelope {
	m, _ := e[key].(map[string]any)
	return envelope(m)
}

func (e envelope) list(key string) []envelope {
	raw, _ := e[key].([]any)
	out := make([]envelope, 0, len(raw))
	for _, it := range raw {
		m, _ := it.(map[string]any)
		out = append(out, envelope(m))
	}
	return out
}

func byCode(items []envelope, code string) envelope {
	for _, it := range items {
		if it["code"] == code {
			return it
		}
	}
	return nil
}

func createProject(t *testing.T, r http.Handler, body map[string]any) envelope {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/api/v1/projects", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "fundplan", resp.Service)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, "up", resp.DB)
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestProjects_SeedCreateAndReschedule(t *testing.T) {
	r := newTestRouter(t)

	seed := decode(t, do(t, r, http.MethodPost, "/api/v1/templates/seed", nil))
	assert.EqualValues(t, 8, seed.obj("activities")["created"])
	assert.EqualValues(t, 5, seed.obj("acquisitions")["created"])

	again := decode(t, do(t, r, http.MethodPost, "/api/v1/templates/seed", nil))
	assert.EqualValues(t, 0, again.obj("activities")["created"])
	assert.Contains(t, again.obj("activities")["notice"], "Nothing was seeded")

	created := createProject(t, r, map[string]any{
		"code": "P1", "name": "Școala gimnazială",
		"signing_date": "2025-03-01", "completion_date": "2026-12-31",
	})
	assert.Equal(t, "P1", created.obj("project")["code"])
	assert.EqualValues(t, 8, created.obj("activities")["created"])

	rec := do(t, r, http.MethodGet, "/api/v1/projects/p1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-03-01", decode(t, rec).obj("project")["signing_date"])

	found := decode(t, do(t, r, http.MethodGet, "/api/v1/projects?q=gimnaz", nil))
	assert.Len(t, found.list("projects"), 1)

	acts := decode(t, do(t, r, http.MethodGet, "/api/v1/projects/P1/activities", nil)).list("activities")
	require.Len(t, acts, 8)
	assert.Equal(t, "2025-03-01", byCode(acts, "POST1")["date_start"])

	rec = do(t, r, http.MethodPatch, "/api/v1/projects/P1", map[string]any{"signing_date": "2025-04-01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	acts = decode(t, do(t, r, http.MethodGet, "/api/v1/projects/P1/activities", nil)).list("activities")
	assert.Equal(t, "2025-04-01", byCode(acts, "POST1")["date_start"])
	assert.Equal(t, "2025-04-02", byCode(acts, "POST2")["date_start"])

	gen := decode(t, do(t, r, http.MethodPost, "/api/v1/projects/P1/acquisitions/generate", nil))
	assert.EqualValues(t, 5, gen.obj("result")["created"])
	gen = decode(t, do(t, r, http.MethodPost, "/api/v1/projects/P1/acquisitions/generate", nil))
	assert.EqualValues(t, 5, gen.obj("result")["deleted"])

	acqs := decode(t, do(t, r, http.MethodGet, "/api/v1/projects/P1/acquisitions", nil)).list("acquisitions")
	assert.Len(t, acqs, 5)
}

func TestProjects_ErrorMapping(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/projects", map[string]any{"name": "fără cod"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, false, decode(t, rec)["ok"])

	rec = do(t, r, http.MethodPost, "/api/v1/projects", map[string]any{"code": "P1", "signing_date": "01.03.2025"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "signing_date")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/projects/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/projects/NOPE/budget-lines", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBudget_AportTotalsExportImport(t *testing.T) {
	r := newTestRouter(t)
	createProject(t, r, map[string]any{"code": "P1", "name": "Buget"})
	createProject(t, r, map[string]any{"code": "P2", "name": "Copie"})

	rec := do(t, r, http.MethodPost, "/api/v1/projects/P1/budget-lines", map[string]any{
		"chapter": "1", "subchapter": "1", "name": "Studii",
		"eligible_base": "4000", "eligible_vat": 760,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	line := decode(t, rec).obj("line")
	assert.Equal(t, "1.1", line["sequence_number"])
	assert.Equal(t, "4760.00", line["total"])

	rec = do(t, r, http.MethodPost, "/api/v1/projects/P1/budget-lines", map[string]any{
		"chapter": "1", "subchapter": "1", "name": "Dublură",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/projects/P1/aport", map[string]any{"amount": 476})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dist := decode(t, rec).obj("distribution")
	assert.Equal(t, "0.1000", dist["coefficient"])
	allocs := dist.list("allocations")
	require.Len(t, allocs, 1)
	assert.Equal(t, "476.00", allocs[0]["cofinanced"])
	assert.Equal(t, "4284.00", allocs[0]["reimbursable"])

	rec = do(t, r, http.MethodPost, "/api/v1/projects/P1/aport", map[string]any{"amount": 5000})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	totals := decode(t, do(t, r, http.MethodGet, "/api/v1/projects/P1/totals", nil)).obj("totals")
	assert.Equal(t, "4760.00", totals["eligible"])
	assert.Equal(t, "4760.00", totals["general"])

	rec = do(t, r, http.MethodGet, "/api/v1/projects/P1/budget-export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "deviz_P1.csv")
	assert.Equal(t, "1", rec.Header().Get("X-Line-Count"))
	sheet := rec.Body.Bytes()
	assert.Contains(t, string(sheet), "Studii")

	upload := func(overwrite string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", "deviz.csv")
		require.NoError(t, err)
		_, err = fw.Write(sheet)
		require.NoError(t, err)
		if overwrite != "" {
			require.NoError(t, mw.WriteField("overwrite", overwrite))
		}
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/P2/budget-import", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec = upload("")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, decode(t, rec)["created"])

	rec = upload("")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = upload("true")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode(t, rec)
	assert.EqualValues(t, 1, res["replaced"])
	assert.Equal(t, "4760.00", res.obj("totals")["eligible"])

	lineID, _ := line["id"].(string)
	rec = do(t, r, http.MethodDelete, "/api/v1/projects/P2/budget-lines/"+lineID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "a line is only reachable through its own project")

	rec = do(t, r, http.MethodPatch, "/api/v1/projects/P1/budget-lines/"+lineID, map[string]any{"non_eligible_base": "100"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "4860.00", decode(t, rec).obj("line")["total"])
}

func TestActivities_StateAndDelete(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/v1/templates/seed", nil)
	createProject(t, r, map[string]any{"code": "P1", "name": "Stări", "signing_date": "2025-03-01"})

	acts := decode(t, do(t, r, http.MethodGet, "/api/v1/projects/P1/activities", nil)).list("activities")
	post1, _ := byCode(acts, "POST1")["id"].(string)
	post5, _ := byCode(acts, "POST5")["id"].(string)

	rec := do(t, r, http.MethodPut, "/api/v1/projects/P1/activities/"+post1+"/state", map[string]any{"state": "done"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "done", decode(t, rec).obj("activity")["state"])

	rec = do(t, r, http.MethodPut, "/api/v1/projects/P1/activities/"+post1+"/state", map[string]any{"state": "bogus"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, http.MethodDelete, "/api/v1/projects/P1/activities/"+post1, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "POST2 reads its start from POST1")

	rec = do(t, r, http.MethodDelete, "/api/v1/projects/P1/activities/"+post5, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/api/v1/projects/P1/activities", map[string]any{
		"name": "Audit", "code": "AUD",
		"start_rule": map[string]any{"source": "entity", "ref_id": post1, "endpoint": "end", "offset_days": 1, "milestone": "signing"},
		"end_rule":   map[string]any{"source": "milestone", "milestone": "signing", "endpoint": "end", "offset_days": 30},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	aud := decode(t, rec).obj("activity")
	assert.Equal(t, "2025-03-02", aud["date_start"])
	assert.Equal(t, "2025-03-31", aud["date_end"])
}

func TestLedger_ReimbursementsAndPurchases(t *testing.T) {
	r := newTestRouter(t)
	createProject(t, r, map[string]any{"code": "P1", "name": "Registru"})

	rec := do(t, r, http.MethodPost, "/api/v1/projects/P1/reimbursements", map[string]any{"date": "2025-06-01", "amount": "1000"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rb := decode(t, rec).obj("reimbursement")
	assert.Equal(t, "planned", rb["status"])
	id, _ := rb["id"].(string)

	rec = do(t, r, http.MethodPost, "/api/v1/projects/P1/reimbursements/"+id+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "sent", decode(t, rec).obj("reimbursement")["status"])

	rec = do(t, r, http.MethodPost, "/api/v1/projects/P1/reimbursements", map[string]any{"date": "soon", "amount": "1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/projects/P1/purchases", map[string]any{"name": "Laptop", "value": 3500, "date": "2025-05-10"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pid, _ := decode(t, rec).obj("purchase")["id"].(string)

	rec = do(t, r, http.MethodPatch, "/api/v1/projects/P1/purchases/"+pid, map[string]any{"supplier": "ACME"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ACME", decode(t, rec).obj("purchase")["supplier"])

	items := decode(t, do(t, r, http.MethodGet, "/api/v1/projects/P1/purchases", nil)).list("purchases")
	require.Len(t, items, 1)
	assert.Equal(t, "3500.00", items[0]["value"])

	rec = do(t, r, http.MethodDelete, "/api/v1/projects/P1/purchases/"+pid, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	createProject(t, r, map[string]any{"code": "P1", "name": "Metrici"})

	rec := do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "fundplan_use_case_total")
	assert.Contains(t, body, `use_case="create-project"`)
}
