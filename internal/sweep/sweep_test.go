package sweep

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/procspectre/internal/discovery"
	"github.com/ppiankov/procspectre/internal/procedures"
	"github.com/ppiankov/procspectre/internal/scanner"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type staticSource []string

func (s staticSource) Names(context.Context) ([]string, error) { return s, nil }

type staticFiles []string

func (f staticFiles) Discover(string) ([]string, error) { return f, nil }

func newRunner(t *testing.T, procRoot string, opts discovery.Options, workers int) *Runner {
	t.Helper()
	src, err := procedures.NewDirSource(procRoot, "")
	require.NoError(t, err)
	files, err := discovery.New(opts)
	require.NoError(t, err)
	return NewRunner(files, src, scanner.NewCoordinator(scanner.NewLineMatcher(), workers))
}

func fixture(t *testing.T) (codeRoot, procRoot string) {
	t.Helper()
	root := t.TempDir()
	codeRoot = filepath.Join(root, "code")
	procRoot = filepath.Join(root, "procs")

	writeFile(t, procRoot, "usp_GetOrders.sql", "CREATE PROCEDURE usp_GetOrders AS SELECT * FROM Orders")
	writeFile(t, procRoot, "usp_SaveOrder.sql", "CREATE PROCEDURE usp_SaveOrder AS EXEC usp_Audit")
	writeFile(t, procRoot, "usp_Audit.sql", "CREATE PROCEDURE usp_Audit AS SELECT 1")
	writeFile(t, procRoot, "usp_Legacy.sql", "CREATE PROCEDURE usp_Legacy AS SELECT 1")

	writeFile(t, codeRoot, "Orders/OrderRepository.cs", `class OrderRepository {
	Load() => db.Exec("USP_GETORDERS");
	Save() => db.Exec("usp_SaveOrder");
	Dyn(string n) => db.ExecDynamic(n);
	Dyn2() => db.ExecDynamic("usp_GetOrders");
	Dyn3() => db.ExecDynamic("usp_Ghost");
}`)
	writeFile(t, codeRoot, "Db/usp_Audit.sql", "-- copy of usp_Audit, must not count as a use")
	return codeRoot, procRoot
}

func TestRunner_Unused(t *testing.T) {
	codeRoot, procRoot := fixture(t)

	res, err := newRunner(t, procRoot, discovery.Options{}, 2).Unused(context.Background(), codeRoot)
	require.NoError(t, err)
	assert.Equal(t, []string{"usp_Audit", "usp_Legacy"}, res.Unused)
	assert.Equal(t, 4, res.Stats.Procedures)
	assert.Equal(t, 2, res.Stats.FilesScanned)
}

func TestRunner_Unused_ExclusionsHideReferences(t *testing.T) {
	codeRoot, procRoot := fixture(t)
	writeFile(t, codeRoot, "bin/Legacy.dll", "usp_Legacy")
	writeFile(t, codeRoot, "obj/Generated.cs", "usp_Legacy")

	res, err := newRunner(t, procRoot, discovery.Options{
		Extensions: []string{".DLL"},
		Paths:      []string{"/obj/"},
	}, 0).Unused(context.Background(), codeRoot)
	require.NoError(t, err)
	assert.Contains(t, res.Unused, "usp_Legacy")
}

func TestRunner_Unused_DuplicatesCountOnce(t *testing.T) {
	root := t.TempDir()
	codeRoot := filepath.Join(root, "code")
	procRoot := filepath.Join(root, "procs")
	writeFile(t, procRoot, "proc_a.sql", "x")
	writeFile(t, codeRoot, "v1/app.cs", "call proc_a")
	writeFile(t, codeRoot, "v2/app.cs", "call proc_a")

	src, err := procedures.NewDirSource(procRoot, "")
	require.NoError(t, err)
	discoverer, err := discovery.New(discovery.Options{})
	require.NoError(t, err)
	files, err := discoverer.Discover(codeRoot)
	require.NoError(t, err)
	require.Len(t, files, 1)

	res, err := scanner.NewCoordinator(scanner.NewLineMatcher(), 4).Scan(context.Background(), files, scanner.NewPatternSet([]string{"proc_a"}))
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)

	unused, err := NewRunner(discoverer, src, scanner.NewCoordinator(scanner.NewLineMatcher(), 4)).Unused(context.Background(), codeRoot)
	require.NoError(t, err)
	assert.Empty(t, unused.Unused)
	assert.Equal(t, 1, unused.Stats.Matches)
}

func TestRunner_Unused_SameResultAnyWorkerCount(t *testing.T) {
	codeRoot, procRoot := fixture(t)

	one, err := newRunner(t, procRoot, discovery.Options{}, 1).Unused(context.Background(), codeRoot)
	require.NoError(t, err)
	four, err := newRunner(t, procRoot, discovery.Options{}, 4).Unused(context.Background(), codeRoot)
	require.NoError(t, err)

	assert.Equal(t, one.Unused, four.Unused)
	assert.Equal(t, one.Stats.Matches, four.Stats.Matches)
}

func TestRunner_NotImplemented(t *testing.T) {
	codeRoot, procRoot := fixture(t)

	res, err := newRunner(t, procRoot, discovery.Options{}, 2).NotImplemented(context.Background(), codeRoot, "ExecDynamic")
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 3, res.Records[0].Line)
	assert.Equal(t, "\tDyn(string n) => db.ExecDynamic(n);", res.Records[0].SourceLine)
	assert.Contains(t, res.Records[1].SourceLine, "usp_Ghost")
	assert.Equal(t, 3, res.Stats.Matches)
}

func TestRunner_NotImplemented_EmptyIndication(t *testing.T) {
	r := NewRunner(staticFiles{}, staticSource{}, scanner.NewCoordinator(scanner.NewLineMatcher(), 1))
	_, err := r.NotImplemented(context.Background(), "unused", "")
	assert.Error(t, err)
}

func TestRunner_MissingRootsAreFatal(t *testing.T) {
	codeRoot, procRoot := fixture(t)
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := newRunner(t, missing, discovery.Options{}, 1).Unused(context.Background(), codeRoot)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), missing)

	_, err = newRunner(t, procRoot, discovery.Options{}, 1).Unused(context.Background(), missing)
	require.Error(t, err)
	var nf *discovery.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestRunner_InjectedCollaborators(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "svc.cs", "EXEC A")
	vanished := filepath.Join(dir, "vanished.cs")

	r := NewRunner(
		staticFiles{filepath.Join(dir, "svc.cs"), vanished},
		staticSource{"A", "B"},
		scanner.NewCoordinator(scanner.NewLineMatcher(), 2),
	)
	res, err := r.Unused(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, res.Unused)
	assert.Equal(t, 1, res.Stats.FilesSkipped)
}
