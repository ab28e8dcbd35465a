package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/progresstrack/internal/config"
	"github.com/abhisek/progresstrack/internal/course/coursetest"
	"github.com/abhisek/progresstrack/internal/logging"
	"github.com/abhisek/progresstrack/internal/progress"
)

// writeCourse copies the test course to a temp dir and returns its path.
func writeCourse(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, f := range coursetest.FS() {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, f.Data, 0o644))
	}
	return filepath.Join(dir, "course", "course.yaml")
}

func testConfig(t *testing.T) config.Config {
	cfg := config.DefaultConfig()
	cfg.CoursePath = writeCourse(t)
	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")
	return cfg
}

func TestOpenRecordsProgress(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, testConfig(t), logging.Nop())
	require.NoError(t, err)
	defer a.Close()

	alice := progress.Student{ID: "alice"}
	applied, err := a.Progress.RecordAssessmentCompleted(ctx, alice, "Pre")
	require.NoError(t, err)
	assert.True(t, applied)

	units, err := a.Progress.UnitProgress(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, progress.StateCompleted, units["Pre"])
	assert.Equal(t, progress.StateNotStarted, units["1"])

	src := a.Sources()
	assert.NotNil(t, src.Properties)
	assert.NotNil(t, src.Students)
	assert.NotNil(t, src.Events)
	assert.Equal(t, 500, a.StatsOptions().PageSize)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.PropertyBackend = "etcd"
	_, err := Open(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unknown property backend")
}

func TestOpenMissingCourse(t *testing.T) {
	cfg := testConfig(t)
	cfg.CoursePath = filepath.Join(t.TempDir(), "nope.yaml")
	_, err := Open(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "load course")
}

func TestCloseIsIdempotent(t *testing.T) {
	a, err := Open(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	require.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}

func TestTrackerLogsComponentOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logging.Logger{SugaredLogger: zap.New(core).Sugar()}

	ctx := context.Background()
	a, err := Open(ctx, testConfig(t), log)
	require.NoError(t, err)
	defer a.Close()

	applied, err := a.Progress.RecordHTMLCompleted(ctx, progress.Student{ID: "alice"}, "1", "99")
	require.NoError(t, err)
	assert.False(t, applied)

	ignored := logs.FilterMessage("event ignored").All()
	require.Len(t, ignored, 1)
	n := 0
	for _, f := range ignored[0].Context {
		if f.Key == "component" {
			n++
			assert.Equal(t, "tracker", f.String)
		}
	}
	assert.Equal(t, 1, n)
}
