package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jim/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	t.Setenv("JIM_DIR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("JIM_CONFIG", "")
	base := t.TempDir()
	svc, err := New(Options{
		ConfigPath: filepath.Join(base, "config.toml"),
		StoreRoot:  filepath.Join(base, "store"),
	})
	require.NoError(t, err)
	return svc
}

func TestNewDoesNotCreateStoreRoot(t *testing.T) {
	svc := newTestService(t)
	_, err := os.Stat(svc.StoreRoot)
	require.True(t, os.IsNotExist(err), "store root must be created lazily")

	report := svc.DoctorRun(context.Background())
	assert.False(t, report.Healthy)
}

func TestServiceAddSetGetList(t *testing.T) {
	svc := newTestService(t)
	src := filepath.Join(t.TempDir(), "jdk-21.0.1")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "bin"), 0o755))

	results, err := svc.Add(context.Background(), []string{src})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "jdk-21.0.1", results[0].Name)

	names, err := svc.List(SortByName)
	require.NoError(t, err)
	assert.Equal(t, []string{"jdk-21.0.1"}, names)

	require.NoError(t, svc.Set("jdk-21.0.1"))
	name, ok, err := svc.Get()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "jdk-21.0.1", name)

	report := svc.DoctorRun(context.Background())
	assert.True(t, report.Healthy, "%+v", report.Findings)
	assert.Equal(t, "jdk-21.0.1", report.Selected)
}

func TestServiceSetMissingInstance(t *testing.T) {
	svc := newTestService(t)
	require.ErrorIs(t, svc.Set("nope"), store.ErrInstanceNotFound)
}

func TestStoreRootFromEnvironment(t *testing.T) {
	base := t.TempDir()
	t.Setenv("JIM_DIR", filepath.Join(base, "from-env"))
	t.Setenv("LOG_LEVEL", "")
	svc, err := New(Options{ConfigPath: filepath.Join(base, "config.toml")})
	require.NoError(t, err)
	assert.Equal(t, "from-env", filepath.Base(svc.StoreRoot))

	svc, err = New(Options{ConfigPath: filepath.Join(base, "config.toml"), StoreRoot: filepath.Join(base, "flag")})
	require.NoError(t, err)
	assert.Equal(t, "flag", filepath.Base(svc.StoreRoot), "--dir wins over JIM_DIR")
}

func TestConfigInitAndShow(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ConfigInit(false)
	require.NoError(t, err)
	_, err = os.Stat(svc.ConfigPath)
	require.NoError(t, err)

	_, err = svc.ConfigInit(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CFG_EXISTS")
	_, err = svc.ConfigInit(true)
	require.NoError(t, err)

	blob, err := svc.ConfigShow()
	require.NoError(t, err)
	assert.Contains(t, string(blob), "version = 1")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"loud\"\n"), 0o644))
	t.Setenv("LOG_LEVEL", "")
	_, err := New(Options{ConfigPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CFG_LOGGING")
}
