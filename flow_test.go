package relflow

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/albertocavalcante/go-relflow/coord"
	"github.com/albertocavalcante/go-relflow/project"
	"github.com/albertocavalcante/go-relflow/rewrite"
	"github.com/albertocavalcante/go-relflow/state"
	"github.com/albertocavalcante/go-relflow/versionmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parentPOM = `<project xmlns="http://maven.apache.org/POM/4.0.0">
  <groupId>com.example</groupId>
  <artifactId>parent</artifactId>
  <version>1.0-SNAPSHOT</version>
  <packaging>pom</packaging>
  <scm>
    <tag>HEAD</tag>
  </scm>
  <modules>
    <module>core</module>
    <module>app</module>
  </modules>
</project>
`

const corePOM = `<project xmlns="http://maven.apache.org/POM/4.0.0">
  <parent>
    <groupId>com.example</groupId>
    <artifactId>parent</artifactId>
    <version>1.0-SNAPSHOT</version>
  </parent>
  <artifactId>core</artifactId>
</project>
`

const appPOM = `<project xmlns="http://maven.apache.org/POM/4.0.0">
  <parent>
    <groupId>com.example</groupId>
    <artifactId>parent</artifactId>
    <version>1.0-SNAPSHOT</version>
  </parent>
  <artifactId>app</artifactId>
  <version>3.1-SNAPSHOT</version>
  <dependencies>
    <dependency>
      <groupId>com.example</groupId>
      <artifactId>core</artifactId>
      <version>1.0-SNAPSHOT</version>
    </dependency>
  </dependencies>
</project>
`

const (
	parentKey = "com.example:parent"
	coreKey   = "com.example:core"
	appKey    = "com.example:app"
)

func writeReactor(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range map[string]string{
		"pom.xml":      parentPOM,
		"core/pom.xml": corePOM,
		"app/pom.xml":  appPOM,
	} {
		full := filepath.Join(dir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func loadReactor(t *testing.T, dir string) *project.Reactor {
	t.Helper()
	r, err := project.Load(dir)
	require.NoError(t, err)
	return r
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newFlow(t *testing.T, opts ...Option) *Flow {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 1)))}, opts...)
	f, err := New(opts...)
	require.NoError(t, err)
	return f
}

func TestReleaseWorkflow(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)
	f := newFlow(t)
	st := state.New()

	start, err := f.ReleaseStart(r)
	require.NoError(t, err)
	assert.Equal(t, "1.0", start.Label)
	assert.Equal(t, []string{parentKey, coreKey, appKey}, start.Saved)

	parent := readFile(t, filepath.Join(dir, "pom.xml"))
	assert.Contains(t, parent, "<version>1.0-release-SNAPSHOT</version>")
	assert.Contains(t, parent, "<tag>HEAD</tag>")

	core := readFile(t, filepath.Join(dir, "core", "pom.xml"))
	assert.Contains(t, core, "<version>1.0-release-SNAPSHOT</version>")
	assert.NotContains(t, core, "</artifactId>\n  <version>", "inherited version stays inherited")

	app := readFile(t, filepath.Join(dir, "app", "pom.xml"))
	assert.Contains(t, app, "<version>3.1</version>", "modules off the label get their release version")
	assert.Contains(t, app, "<artifactId>core</artifactId>\n      <version>1.0-release-SNAPSHOT</version>")

	finish, err := f.ReleaseFinish(r, "", st)
	require.NoError(t, err)
	assert.Equal(t, "1.0", finish.Label)

	parent = readFile(t, filepath.Join(dir, "pom.xml"))
	assert.Contains(t, parent, "<version>1.0</version>")
	assert.Contains(t, parent, "<tag>parent-1.0</tag>")

	app = readFile(t, filepath.Join(dir, "app", "pom.xml"))
	assert.Contains(t, app, "<artifactId>core</artifactId>\n      <version>1.0</version>")

	assert.Equal(t, map[string]string{parentKey: "1.0", coreKey: "1.0", appKey: "3.1"}, st.LastReleaseVersions)

	// The loaded reactor agrees with the rewritten descriptors.
	reloaded := loadReactor(t, dir)
	assert.Equal(t, reloaded.Versions(), r.Versions())
}

func TestHotfixWorkflow(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)
	f := newFlow(t)
	st := state.New()

	_, err := f.UpdateWithReleaseVersion("release", r)
	require.NoError(t, err)
	st.RecordRelease(map[string]string{parentKey: "1.0", coreKey: "1.0.3", appKey: "3.1"})

	develop := loadReactor(t, writeReactor(t))
	f.RecordPreHotfix(develop, st)
	assert.Equal(t, "1.0-SNAPSHOT", st.PreHotfixVersions[parentKey])

	start, err := f.HotfixStart(r, st)
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", start.Label)
	hotfix := start.Versions.ToMap()
	assert.Equal(t, "1.0.1-SNAPSHOT", hotfix[parentKey])
	assert.Equal(t, "1.0.4", hotfix[coreKey], "core's last release is newer than its current version")
	assert.Equal(t, "3.1.1", hotfix[appKey])

	core := readFile(t, filepath.Join(dir, "core", "pom.xml"))
	assert.Contains(t, core, "<artifactId>core</artifactId>\n  <version>1.0.4</version>", "core now differs from its parent")

	finish, err := f.HotfixFinish(r, "", st)
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", finish.Label)
	assert.Contains(t, readFile(t, filepath.Join(dir, "pom.xml")), "<tag>parent-1.0.1</tag>")
	assert.Equal(t, "1.0.1", st.LastReleaseVersions[parentKey])
	assert.Equal(t, "1.0.4", st.LastReleaseVersions[coreKey])

	restored, err := f.Restore(r, st)
	require.NoError(t, err)
	assert.Equal(t, "1.0-SNAPSHOT", restored.Label)
	assert.Empty(t, st.PreHotfixVersions)
	assert.Contains(t, readFile(t, filepath.Join(dir, "pom.xml")), "<version>1.0-SNAPSHOT</version>")
}

func TestReleaseWithGroupPropertyDependency(t *testing.T) {
	dir := writeReactor(t)
	appPath := filepath.Join(dir, "app", "pom.xml")
	app := strings.Replace(appPOM, "<groupId>com.example</groupId>\n      <artifactId>core</artifactId>",
		"<groupId>${project.groupId}</groupId>\n      <artifactId>core</artifactId>", 1)
	require.NoError(t, os.WriteFile(appPath, []byte(app), 0o644))

	r := loadReactor(t, dir)
	f := newFlow(t)

	_, err := f.ReleaseStart(r)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, appPath),
		"<groupId>${project.groupId}</groupId>\n      <artifactId>core</artifactId>\n      <version>1.0-release-SNAPSHOT</version>")

	_, err = f.ReleaseFinish(r, "", state.New())
	require.NoError(t, err)
	assert.Contains(t, readFile(t, appPath), "<artifactId>core</artifactId>\n      <version>1.0</version>")
	assert.NotContains(t, readFile(t, appPath), "SNAPSHOT")
}

func TestReleaseStartRequiresSnapshot(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)
	_, err := newFlow(t).UpdateWithReleaseVersion("release", r)
	require.NoError(t, err)

	_, err = newFlow(t).ReleaseStart(r)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestReleaseFinishRejectsRemainingSnapshots(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)
	before := readFile(t, filepath.Join(dir, "pom.xml"))

	_, err := newFlow(t).ReleaseFinish(r, "1.0", state.New())
	assert.ErrorIs(t, err, ErrSnapshotInRelease)
	assert.ErrorContains(t, err, "com.example:parent@1.0-SNAPSHOT")
	assert.Equal(t, before, readFile(t, filepath.Join(dir, "pom.xml")), "nothing is written")
}

func TestReleaseFinishLabelFromRoot(t *testing.T) {
	r := loadReactor(t, writeReactor(t))
	_, err := newFlow(t).ReleaseFinish(r, "", state.New())
	assert.ErrorContains(t, err, `does not end in "-release-SNAPSHOT"`)
}

func TestHotfixStartRequiresRelease(t *testing.T) {
	r := loadReactor(t, writeReactor(t))
	_, err := newFlow(t).HotfixStart(r, state.New())
	assert.ErrorIs(t, err, ErrSnapshotInRelease)
}

func TestDevelop(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)
	f := newFlow(t)

	step, err := f.Develop(r)
	require.NoError(t, err)
	assert.Equal(t, "1.1-SNAPSHOT", step.Label)
	assert.Equal(t, "3.2-SNAPSHOT", step.Versions.ToMap()[appKey])
	assert.Contains(t, readFile(t, filepath.Join(dir, "app", "pom.xml")),
		"<artifactId>core</artifactId>\n      <version>1.1-SNAPSHOT</version>")
}

func TestConsistentVersions(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)
	f := newFlow(t, WithConsistent(true))

	res, err := f.UpdateWithReleaseVersion("release", r)
	require.NoError(t, err)
	assert.True(t, res.Versions.Consistent())
	assert.Equal(t, "1.0", res.Versions.ToMap()[appKey], "every module follows the root")
	assert.Contains(t, readFile(t, filepath.Join(dir, "app", "pom.xml")), "<version>1.0</version>")
}

func TestUpdateWithoutDependencies(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)

	_, err := newFlow(t, WithUpdateDependencies(false)).UpdateWithReleaseVersion("release", r)
	require.NoError(t, err)
	assert.Contains(t, readFile(t, filepath.Join(dir, "app", "pom.xml")),
		"<artifactId>core</artifactId>\n      <version>1.0-SNAPSHOT</version>")
}

func TestUpdateWithPreviousVersionsFallsBackToDevelopment(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	res, err := newFlow(t, WithLogger(logger)).UpdateWithPreviousVersions("restore", r, nil)
	require.NoError(t, err)
	assert.Equal(t, "1.1-SNAPSHOT", res.Versions.ToMap()[parentKey])
	assert.Contains(t, logs.String(), "no pre-hotfix versions recorded")
	assert.Contains(t, readFile(t, filepath.Join(dir, "pom.xml")), "<tag>HEAD</tag>")
}

func TestUpdateWithVersionCopy(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)
	source, err := project.NewReactor(
		&project.Module{Key: coord.MustKey("com.example", "parent"), Version: "2.0"},
		&project.Module{Key: coord.MustKey("com.example", "core"), Version: "2.0"},
		&project.Module{Key: coord.MustKey("com.example", "app"), Version: "4.0"},
	)
	require.NoError(t, err)

	res, err := newFlow(t).UpdateWithVersionCopy(r, source)
	require.NoError(t, err)
	assert.True(t, res.Modified())
	assert.Equal(t, map[string]string{parentKey: "2.0", coreKey: "2.0", appKey: "4.0"}, r.Versions())
}

// partialSource lacks the app module, so rewriting app fails.
func partialSource(t *testing.T) *project.Reactor {
	t.Helper()
	source, err := project.NewReactor(
		&project.Module{Key: coord.MustKey("com.example", "parent"), Version: "2.0"},
		&project.Module{Key: coord.MustKey("com.example", "core"), Version: "2.0"},
	)
	require.NoError(t, err)
	return source
}

func TestUpdatePersistsPerModule(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)

	res, err := newFlow(t).UpdateWithVersionCopy(r, partialSource(t))
	var rwErr *rewrite.RewriteError
	require.True(t, errors.As(err, &rwErr))
	assert.Equal(t, appKey, rwErr.Module)

	assert.Equal(t, []string{parentKey, coreKey}, res.Saved)
	assert.Contains(t, readFile(t, filepath.Join(dir, "pom.xml")), "<version>2.0</version>")
	assert.Equal(t, appPOM, readFile(t, filepath.Join(dir, "app", "pom.xml")))
}

func TestUpdateWithStaging(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)

	res, err := newFlow(t, WithStaging(true)).UpdateWithVersionCopy(r, partialSource(t))
	require.Error(t, err)
	assert.Empty(t, res.Saved)
	assert.Equal(t, parentPOM, readFile(t, filepath.Join(dir, "pom.xml")), "staged batch is not persisted")
	assert.Equal(t, corePOM, readFile(t, filepath.Join(dir, "core", "pom.xml")))
}

func TestUpdateDryRun(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)

	step, err := newFlow(t, WithDryRun(true)).ReleaseStart(r)
	require.NoError(t, err)
	assert.True(t, step.Modified())
	assert.Empty(t, step.Saved)
	assert.Equal(t, parentPOM, readFile(t, filepath.Join(dir, "pom.xml")))
	assert.Len(t, step.Reports, 3)
}

func TestUpdateLogsChanges(t *testing.T) {
	dir := writeReactor(t)
	r := loadReactor(t, dir)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := newFlow(t, WithLogger(logger)).UpdateWithReleaseVersion("release", r)
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, "updating descriptors for all modules...")
	assert.Contains(t, out, "updating descriptor for core...")
	assert.Contains(t, out, "Update Project Version")
	assert.NotContains(t, out, "enable debug logging")
}

func TestLabels(t *testing.T) {
	r := loadReactor(t, writeReactor(t))
	f := newFlow(t)

	release, err := f.ReleaseLabel("labels", r)
	require.NoError(t, err)
	assert.Equal(t, "1.0", release)

	development, err := f.DevelopmentLabel("labels", r)
	require.NoError(t, err)
	assert.Equal(t, "1.1-SNAPSHOT", development)

	hotfix, err := f.HotfixLabel("labels", r, map[string]string{parentKey: "1.0.7"})
	require.NoError(t, err)
	assert.Equal(t, "1.0.8", hotfix)
}

func TestLabelResolutionError(t *testing.T) {
	r := loadReactor(t, writeReactor(t))
	resolver := versionmap.ResolverFunc(func(req versionmap.Request) (string, error) {
		return "", errors.New("no answer")
	})

	_, err := newFlow(t, WithResolver(resolver)).ReleaseLabel("labels", r)
	var resErr *versionmap.ResolutionError
	assert.True(t, errors.As(err, &resErr))
}

func TestChecks(t *testing.T) {
	f := newFlow(t)
	snapshot, err := project.NewReactor(&project.Module{Key: coord.MustKey("g", "a"), Version: "1.0-SNAPSHOT"})
	require.NoError(t, err)
	released, err := project.NewReactor(&project.Module{Key: coord.MustKey("g", "a"), Version: "1.0"})
	require.NoError(t, err)

	assert.NoError(t, f.CheckForSnapshot(snapshot))
	assert.ErrorIs(t, f.CheckForSnapshot(released), ErrNoSnapshot)
	assert.NoError(t, f.CheckForRelease(released))
	assert.ErrorIs(t, f.CheckForRelease(snapshot), ErrSnapshotInRelease)
}

func TestOpen(t *testing.T) {
	f, r, err := Open(writeReactor(t))
	require.NoError(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, 3, r.Len())

	_, _, err = Open(t.TempDir())
	assert.ErrorContains(t, err, "failed to load project")
}
