package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vqa/internal/config"
)

func readLog(t *testing.T, dir string) string {
	t.Helper()
	Sync()
	matches, err := filepath.Glob(filepath.Join(dir, "logs", "*_vqa.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestInitialize_DisabledIsSilent(t *testing.T) {
	t.Cleanup(CloseAll)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, config.LoggingConfig{}))
	assert.False(t, IsDebugMode())

	Get(CategorySubmission).Info("should not be written")

	_, err := os.Stat(filepath.Join(dir, "logs"))
	assert.True(t, os.IsNotExist(err), "logs dir must not be created outside debug mode")
}

func TestInitialize_RequiresDir(t *testing.T) {
	assert.Error(t, Initialize("", config.LoggingConfig{DebugMode: true}))
}

func TestAllCategoriesLog(t *testing.T) {
	t.Cleanup(CloseAll)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, config.LoggingConfig{DebugMode: true, Level: "debug"}))
	assert.True(t, IsDebugMode())

	categories := []Category{
		CategoryBoot,
		CategoryConfig,
		CategorySubmission,
		CategorySpeech,
		CategoryServer,
		CategoryUI,
	}
	for _, cat := range categories {
		require.True(t, IsCategoryEnabled(cat), "category %s should be enabled", cat)
		Get(cat).Info("hello", zap.String("from", string(cat)))
	}

	content := readLog(t, dir)
	for _, cat := range categories {
		assert.Contains(t, content, string(cat)+"\t", "missing entries for %s", cat)
	}
	assert.Contains(t, content, "logging initialized")
}

func TestCategoryFilter(t *testing.T) {
	t.Cleanup(CloseAll)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, config.LoggingConfig{
		DebugMode:  true,
		Categories: map[string]bool{"speech": false},
	}))

	assert.False(t, IsCategoryEnabled(CategorySpeech))
	assert.True(t, IsCategoryEnabled(CategoryServer))

	Get(CategorySpeech).Info("muted line")
	Get(CategoryServer).Info("audible line")

	content := readLog(t, dir)
	assert.NotContains(t, content, "muted line")
	assert.Contains(t, content, "audible line")
}

func TestLevelAndJSONFormat(t *testing.T) {
	t.Cleanup(CloseAll)
	dir := t.TempDir()

	require.NoError(t, Initialize(dir, config.LoggingConfig{
		DebugMode:  true,
		Level:      "warn",
		JSONFormat: true,
	}))

	l := Get(CategoryServer).With(zap.String("request_id", "req-1"))
	l.Info("below threshold")
	l.Warn("kept")

	content := readLog(t, dir)
	assert.NotContains(t, content, "below threshold")
	assert.Contains(t, content, `"msg":"kept"`)
	assert.Contains(t, content, `"request_id":"req-1"`)
	assert.Contains(t, content, `"logger":"server"`)
}

func TestGetCachesPerCategory(t *testing.T) {
	t.Cleanup(CloseAll)
	require.NoError(t, Initialize(t.TempDir(), config.LoggingConfig{DebugMode: true}))

	assert.Same(t, Get(CategoryUI), Get(CategoryUI))
}

func TestCloseAllResetsToNop(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, config.LoggingConfig{DebugMode: true}))
	CloseAll()

	assert.False(t, IsDebugMode())
	// Must not panic on a closed file.
	Get(CategoryBoot).Info("after close")
	assert.NotContains(t, readLog(t, dir), "after close")
}

func TestTimer(t *testing.T) {
	t.Cleanup(CloseAll)
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, config.LoggingConfig{DebugMode: true, Level: "debug"}))

	timer := StartTimer(CategorySubmission, "submit")
	time.Sleep(2 * time.Millisecond)
	assert.Greater(t, timer.StopWithThreshold(time.Nanosecond), time.Duration(0))

	fast := StartTimer(CategorySubmission, "noop")
	fast.StopWithThreshold(time.Hour)

	content := readLog(t, dir)
	assert.Contains(t, content, "slow operation")
	assert.Contains(t, content, "operation finished")
	assert.True(t, strings.Contains(content, "noop"))
}
