package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mentor/internal/config"
	"github.com/aretw0/mentor/internal/logging"
	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/observability"
)

const triageYAML = `id: triage
name: Triage
cases:
  - id: intake
    question: A patient arrives with chest pain.
    mentor_answer: Check vital signs first.
  - id: secret-notes
    question: Anything to add?
    mentor_answer: Nothing.
`

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func noEnv(string) (string, bool) { return "", false }

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeSection(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(triageYAML), 0644))
	return path
}

func testSettings(t *testing.T, driver string) config.Settings {
	t.Helper()
	s := config.Default()
	s.SessionsPath = filepath.Join(t.TempDir(), "sessions")
	s.Store.Driver = driver
	return s
}

func TestOpenBackend_Drivers(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, driver := range []string{config.DriverMemory, config.DriverFile, config.DriverSQLite, config.DriverRedis} {
		t.Run(driver, func(t *testing.T) {
			settings := testSettings(t, driver)
			settings.Store.RedisAddr = mr.Addr()

			backend, err := OpenBackend(settings, noEnv)
			require.NoError(t, err)
			defer backend.Close()

			assert.Equal(t, driver == config.DriverRedis, backend.Locker != nil)

			ctx := context.Background()
			snap := domain.NewSnapshot("s1", "triage")
			require.NoError(t, backend.Store.Save(ctx, "s1", snap))
			loaded, err := backend.Store.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, "triage", loaded.SectionID)
		})
	}
}

func TestOpenBackend_UnknownDriver(t *testing.T) {
	_, err := OpenBackend(testSettings(t, "tape"), noEnv)
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestOpenBackend_Middleware(t *testing.T) {
	settings := testSettings(t, config.DriverFile)
	settings.Redact = []string{"^secret-"}

	backend, err := OpenBackend(settings, env(map[string]string{EnvEncryptionKey: testKey}))
	require.NoError(t, err)

	ctx := context.Background()
	snap := domain.NewSnapshot("s1", "triage")
	snap.Solution.Set("intake", "vitals")
	snap.Solution.Set("secret-notes", "private")
	require.NoError(t, backend.Store.Save(ctx, "s1", snap))

	raw, err := os.ReadFile(filepath.Join(settings.SessionsPath, "s1.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "vitals")

	loaded, err := backend.Store.Load(ctx, "s1")
	require.NoError(t, err)
	answer, _ := loaded.Solution.Get("intake")
	assert.Equal(t, "vitals", answer)
	secret, _ := loaded.Solution.Get("secret-notes")
	assert.Equal(t, "***", secret)
}

func TestOpenBackend_BadKey(t *testing.T) {
	_, err := OpenBackend(testSettings(t, config.DriverMemory), env(map[string]string{EnvEncryptionKey: "abc"}))
	assert.ErrorContains(t, err, EnvEncryptionKey)

	_, err = OpenBackend(testSettings(t, config.DriverMemory), env(map[string]string{
		EnvEncryptionKey:      testKey,
		EnvEncryptionFallback: "zz",
	}))
	assert.ErrorContains(t, err, EnvEncryptionFallback)
}

func TestRunTrain_Text(t *testing.T) {
	settings := testSettings(t, config.DriverMemory)
	backend, err := OpenBackend(settings, noEnv)
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	trainer, err := NewTrainer(settings, backend, logging.NewNop(), metrics)
	require.NoError(t, err)

	in := strings.NewReader("\nvitals\n:mentor\n:next\nnothing\n:mentor\n:next\n")
	var out bytes.Buffer
	err = RunTrain(context.Background(), trainer, TrainOptions{
		Path:      writeSection(t),
		SessionID: "learner-1",
		In:        in,
		Out:       &out,
	}, logging.NewNop())
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, ">>> Session 'learner-1' active.")
	assert.Contains(t, text, "Section finished.")
	assert.Contains(t, text, ">>> Answered 2 of 2 cases.")
	assert.Empty(t, trainer.Manager().Sessions())

	snap, err := backend.Store.Load(context.Background(), "learner-1")
	require.NoError(t, err)
	assert.True(t, snap.Finished)
}

func TestRunTrain_JSONAndFresh(t *testing.T) {
	settings := testSettings(t, config.DriverMemory)
	backend, err := OpenBackend(settings, noEnv)
	require.NoError(t, err)
	path := writeSection(t)

	run := func(input string, fresh bool) []map[string]any {
		trainer, err := NewTrainer(settings, backend, logging.NewNop(), nil)
		require.NoError(t, err)
		var out bytes.Buffer
		require.NoError(t, RunTrain(context.Background(), trainer, TrainOptions{
			Path:      path,
			SessionID: "json-1",
			JSON:      true,
			Fresh:     fresh,
			In:        strings.NewReader(input),
			Out:       &out,
		}, logging.NewNop()))

		var lines []map[string]any
		for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(line), &m), line)
			lines = append(lines, m)
		}
		return lines
	}

	lines := run("\nvitals\n", false)
	assert.Equal(t, "render", lines[0]["type"])
	assert.Equal(t, "instruction", lines[0]["node"].(map[string]any)["kind"])

	resumed := run("", false)
	require.Len(t, resumed, 1)
	assert.Equal(t, "answered", resumed[0]["state"], "resumes on the answered case")

	fresh := run("", true)
	require.Len(t, fresh, 1)
	assert.Equal(t, "instruction", fresh[0]["node"].(map[string]any)["kind"])
}

func TestRunExportImport(t *testing.T) {
	settings := testSettings(t, config.DriverMemory)
	backend, err := OpenBackend(settings, noEnv)
	require.NoError(t, err)
	path := writeSection(t)
	ctx := context.Background()

	trainer, err := NewTrainer(settings, backend, logging.NewNop(), nil)
	require.NoError(t, err)
	sess, err := trainer.Open(ctx, path, "origin")
	require.NoError(t, err)
	_, err = sess.Dispatch(ctx, domain.StartEvent())
	require.NoError(t, err)
	_, err = sess.Dispatch(ctx, domain.SubmitEvent("vitals"))
	require.NoError(t, err)
	require.NoError(t, trainer.Close(ctx))

	archive := filepath.Join(t.TempDir(), "solution.zip")
	var out bytes.Buffer
	trainer, err = NewTrainer(settings, backend, logging.NewNop(), nil)
	require.NoError(t, err)
	require.NoError(t, RunExport(ctx, trainer, TaskOptions{Path: path, SessionID: "origin", Archive: archive, Out: &out}))
	assert.Contains(t, out.String(), ">>> export succeeded: "+archive)
	assert.FileExists(t, archive)

	out.Reset()
	trainer, err = NewTrainer(settings, backend, logging.NewNop(), nil)
	require.NoError(t, err)
	require.NoError(t, RunImport(ctx, trainer, TaskOptions{Path: path, SessionID: "copy", Archive: archive, Out: &out}))
	assert.Contains(t, out.String(), ">>> Answered 1 of 2 cases.")

	snap, err := backend.Store.Load(ctx, "copy")
	require.NoError(t, err)
	answer, ok := snap.Solution.Get("intake")
	require.True(t, ok)
	assert.Equal(t, "vitals", answer)

	trainer, err = NewTrainer(settings, backend, logging.NewNop(), nil)
	require.NoError(t, err)
	err = RunImport(ctx, trainer, TaskOptions{Path: path, SessionID: "broken", Archive: filepath.Join(t.TempDir(), "none.zip"), Out: &out})
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	s := config.Default()
	assert.Equal(t, ".", ResolvePath(s, ""))
	assert.Equal(t, "triage", ResolvePath(s, "triage"))

	s.SectionsPath = "/srv/sections"
	assert.Equal(t, filepath.Join("/srv/sections", "triage-missing"), ResolvePath(s, "triage-missing"))
	assert.Equal(t, "/abs/path", ResolvePath(s, "/abs/path"))
}

func TestNewLogger(t *testing.T) {
	assert.True(t, NewLogger("debug").Enabled(context.Background(), -4))
	assert.False(t, NewLogger("warn").Enabled(context.Background(), 0))
}
