package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/fundplan/internal/cli/formatter"
	"github.com/alexanderramin/fundplan/internal/domain"
	"github.com/alexanderramin/fundplan/internal/service"
	"github.com/alexanderramin/fundplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)

	return &App{
		Projects:       service.NewProjectService(database, uow),
		Budget:         service.NewBudgetService(database, uow),
		Activities:     service.NewActivityService(database, uow),
		Acquisitions:   service.NewAcquisitionService(database, uow),
		Templates:      service.NewTemplateService(database, uow),
		Reimbursements: service.NewReimbursementService(database, uow),
		Purchases:      service.NewPurchaseService(database, uow),
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func mustExecute(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := executeCmd(t, app, args...)
	require.NoError(t, err, out)
	return out
}

// seededProject seeds the default templates and creates project P1
// signed on 2025-03-01.
func seededProject(t *testing.T, app *App) {
	t.Helper()
	mustExecute(t, app, "template", "seed")
	out := mustExecute(t, app, "project", "add",
		"--code", "P1", "--name", "Școala gimnazială",
		"--signing", "2025-03-01", "--completion", "2026-12-31")
	assert.Contains(t, out, "Created project [P1] Școala gimnazială")
	assert.Contains(t, out, "Generated 8 activities")
}

func TestProjectAdd_WithoutTemplatesPrintsNotice(t *testing.T) {
	app := testApp(t)

	out := mustExecute(t, app, "project", "add", "--code", "P9", "--name", "Fără șabloane")
	assert.Contains(t, out, "Created project [P9] Fără șabloane")
	assert.NotContains(t, out, "Generated")

	out = mustExecute(t, app, "project", "list")
	assert.Contains(t, out, "P9")
	assert.Contains(t, out, "Fără șabloane")
}

func TestProjectAdd_RequiresCode(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "project", "add", "--name", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code")
}

func TestProjectAdd_InvalidDate(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "project", "add", "--code", "P1", "--name", "x", "--signing", "01.03.2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--signing")
}

func TestProjectShowAndSearch(t *testing.T) {
	app := testApp(t)
	seededProject(t, app)

	out := mustExecute(t, app, "project", "show", "p1")
	assert.Contains(t, out, "2025-03-01")
	assert.Contains(t, out, "2026-12-31")

	out = mustExecute(t, app, "project", "search", "gimnaz")
	assert.Contains(t, out, "P1")

	out = mustExecute(t, app, "project", "search", "spital")
	assert.NotContains(t, out, "P1")

	_, err := executeCmd(t, app, "project", "show", "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectUpdate_MilestoneReschedulesActivities(t *testing.T) {
	app := testApp(t)
	seededProject(t, app)

	mustExecute(t, app, "project", "update", "P1", "--signing", "2025-04-01")

	out := mustExecute(t, app, "activity", "list", "P1")
	assert.Contains(t, out, "2025-04-02", "POST2 starts the day after POST1 ends")
	assert.Contains(t, out, "2025-06-30")
}

func TestActivityRules_FromCLI(t *testing.T) {
	app := testApp(t)
	seededProject(t, app)

	out := mustExecute(t, app, "activity", "add", "-p", "P1",
		"--name", "Audit", "--code", "AUD",
		"--start", "POST2.end+1", "--end", "POST2.end+30")
	assert.Contains(t, out, "Added activity AUD: 2025-05-31 to 2025-06-29")

	out = mustExecute(t, app, "activity", "update", "POST2", "-p", "P1", "--end", "signing+100")
	assert.Contains(t, out, "Updated activity POST2: 2025-03-02 to 2025-06-09")

	// AUD follows POST2.
	ctx := context.Background()
	p, err := app.Projects.Find(ctx, "P1")
	require.NoError(t, err)
	acts, err := app.Activities.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	aud, err := pickActivity(acts, "aud")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", domain.FormatOptionalDate(aud.DateStart))

	_, err = executeCmd(t, app, "activity", "add", "-p", "P1", "--name", "x", "--start", "NOPE.end")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActivityUpdate_CycleRejected(t *testing.T) {
	app := testApp(t)
	seededProject(t, app)

	// POST2 starts the day after POST1 ends; ending POST1 on POST2's start closes a loop.
	_, err := executeCmd(t, app, "activity", "update", "POST1", "-p", "P1", "--end", "POST2.start")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "cycle")
}

func TestActivityRemove_NeedsConfirmation(t *testing.T) {
	app := testApp(t)
	seededProject(t, app)

	_, err := executeCmd(t, app, "activity", "remove", "POST5", "-p", "P1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass --yes")

	out := mustExecute(t, app, "activity", "remove", "POST5", "-p", "P1", "--yes")
	assert.Contains(t, out, "Removed activity POST5")

	_, err = executeCmd(t, app, "activity", "remove", "POST1", "-p", "P1", "--yes")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err), "POST2 reads POST1")
}

func TestAcquisitions_GenerateAndList(t *testing.T) {
	app := testApp(t)
	seededProject(t, app)

	out := mustExecute(t, app, "project", "generate-acquisitions", "P1")
	assert.Contains(t, out, "Generated 5 acquisitions")

	// Regenerating replaces and so asks first.
	_, err := executeCmd(t, app, "project", "generate-acquisitions", "P1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass --yes")

	out = mustExecute(t, app, "project", "generate-acquisitions", "P1", "--yes")
	assert.Contains(t, out, "(replaced 5)")

	out = mustExecute(t, app, "acquisition", "list", "P1")
	assert.Contains(t, out, "ACH1")
	assert.Contains(t, out, "POST2.start")

	out = mustExecute(t, app, "acquisition", "add", "-p", "P1",
		"--name", "Dotări", "--code", "ACH6", "--start", "POST3.start", "--end", "completion", "--after", "ACH5")
	assert.Contains(t, out, "Added acquisition ACH6: 2025-08-29 to 2026-12-31")

	_, err = executeCmd(t, app, "acquisition", "add", "-p", "P1", "--name", "x", "--after", "ACH99")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out = mustExecute(t, app, "acquisition", "remove", "ACH6", "-p", "P1", "-y")
	assert.Contains(t, out, "Removed acquisition ACH6")
}

func TestBudget_AddAportAndTotals(t *testing.T) {
	app := testApp(t)
	mustExecute(t, app, "project", "add", "--code", "P1", "--name", "Buget")

	out := mustExecute(t, app, "budget", "add", "-p", "P1",
		"--chapter", "1", "--subchapter", "1", "--name", "Studii",
		"--eligible-base", "4000", "--eligible-vat", "760")
	assert.Contains(t, out, "Added budget line 1.1 - Studii (total 4,760.00)")

	_, err := executeCmd(t, app, "budget", "add", "-p", "P1", "--chapter", "1", "--subchapter", "1", "--name", "Dublură")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	out = mustExecute(t, app, "project", "aport", "P1", "--amount", "476")
	assert.Contains(t, out, "0.1000")
	assert.Contains(t, out, "4,284.00")

	out = mustExecute(t, app, "project", "totals", "P1")
	assert.Contains(t, out, "4,760.00")

	out = mustExecute(t, app, "budget", "update", "1.1", "-p", "P1", "--non-eligible-base", "100")
	assert.Contains(t, out, "(total 4,860.00)")

	_, err = executeCmd(t, app, "project", "aport", "P1", "--amount", "5000")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = executeCmd(t, app, "project", "remove", "P1", "--yes")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	mustExecute(t, app, "budget", "remove", "1.1", "-p", "P1", "--yes")
	out = mustExecute(t, app, "project", "remove", "P1", "--yes")
	assert.Contains(t, out, "Removed project [P1] Buget")
}

func TestBudget_ExportImportRoundTrip(t *testing.T) {
	app := testApp(t)
	dir := t.TempDir()
	mustExecute(t, app, "project", "add", "--code", "P1", "--name", "Sursă")
	mustExecute(t, app, "project", "add", "--code", "P2", "--name", "Destinație")
	mustExecute(t, app, "budget", "add", "-p", "P1", "--chapter", "2", "--name", "Proiectare", "--eligible-base", "1000,50")
	mustExecute(t, app, "budget", "add", "-p", "P1", "--chapter", "4", "--subchapter", "1", "--name", "Construcții", "--non-eligible-base", "200")

	for _, ext := range []string{"csv", "xlsx"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "deviz."+ext)
			out := mustExecute(t, app, "budget", "export", "P1", "-o", path)
			assert.Contains(t, out, "Exported 2 budget lines")
			_, err := os.Stat(path)
			require.NoError(t, err)

			out = mustExecute(t, app, "budget", "import", "P2", path, "--overwrite")
			assert.Contains(t, out, "Imported 2 budget lines")
			assert.Contains(t, out, "1,200.50")
		})
	}

	_, err := executeCmd(t, app, "budget", "import", "P2", filepath.Join(dir, "deviz.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass --yes")

	out := mustExecute(t, app, "budget", "export", "P2", "-o", "-", "--format", "csv")
	assert.Contains(t, out, "Proiectare")
}

func TestReimbursementsAndPurchases(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()
	mustExecute(t, app, "project", "add", "--code", "P1", "--name", "Registru")

	out := mustExecute(t, app, "reimbursement", "add", "-p", "P1", "--date", "2025-06-01", "--amount", "1000")
	assert.Contains(t, out, "of 1,000.00 on 2025-06-01")

	p, err := app.Projects.Find(ctx, "P1")
	require.NoError(t, err)
	items, err := app.Reimbursements.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	short := formatter.ShortID(items[0].ID)

	out = mustExecute(t, app, "reimbursement", "advance", short, "-p", "P1")
	assert.Contains(t, out, "is now sent")

	out = mustExecute(t, app, "reimbursement", "list", "P1")
	assert.Contains(t, out, "sent")

	mustExecute(t, app, "reimbursement", "remove", short, "-p", "P1", "--yes")

	out = mustExecute(t, app, "purchase", "add", "-p", "P1", "--name", "Laptop", "--supplier", "ACME", "--value", "3500")
	assert.Contains(t, out, "Recorded purchase Laptop (3,500.00)")
	out = mustExecute(t, app, "purchase", "list", "P1")
	assert.Contains(t, out, "ACME")
	out = mustExecute(t, app, "purchase", "remove", "laptop", "-p", "P1", "--yes")
	assert.Contains(t, out, "Removed purchase Laptop")
}

func TestTemplateSeed_Idempotent(t *testing.T) {
	app := testApp(t)

	out := mustExecute(t, app, "template", "seed")
	assert.Contains(t, out, "Seeded 8 activity templates")
	assert.Contains(t, out, "Seeded 5 acquisition templates")

	out = mustExecute(t, app, "template", "seed")
	assert.NotContains(t, out, "Seeded")

	out = mustExecute(t, app, "template", "list", "--kind", "acquisition")
	assert.Contains(t, out, "ACH3")
	assert.NotContains(t, out, "POST5")

	_, err := executeCmd(t, app, "template", "list", "--kind", "bogus")
	assert.Error(t, err)
}

func TestServe_NotWired(t *testing.T) {
	app := testApp(t)
	_, err := executeCmd(t, app, "serve")
	assert.Error(t, err)
}
