package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings domain.Settings
	err      error
	setErr   error
	set      map[string]string
}

func newMockSettings() *mockSettingsService {
	s := domain.DefaultSettings()
	s.Firestore.Project = "golf-test"
	s.Sync.Concurrency = 3
	return &mockSettingsService{settings: s, set: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"overpass.url", "store.backend"}
}

func (m *mockSettingsService) Path() string {
	return "/tmp/golf-loader/config.toml"
}

// mockEngine implements driving.SyncEngine for testing.
type mockEngine struct {
	opts    []driving.RunOptions
	summary *domain.RunSummary
	err     error
}

func (m *mockEngine) Run(_ context.Context, opts driving.RunOptions) (*domain.RunSummary, error) {
	m.opts = append(m.opts, opts)
	return m.summary, m.err
}

func (m *mockEngine) Partitions() domain.PartitionSet {
	return domain.USStates()
}

type closeRecorder struct {
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

// cliFixture installs mock factories and captures their inputs.
type cliFixture struct {
	settings   *mockSettingsService
	engine     *mockEngine
	closer     *closeRecorder
	engineErr  error
	configPath string
	engineOpts EngineOptions
	built      *domain.Settings
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	f := &cliFixture{
		settings: newMockSettings(),
		engine: &mockEngine{summary: &domain.RunSummary{
			RunID:  "run-1",
			Status: domain.RunOK,
			Partitions: []domain.PartitionSummary{
				{Code: "CA", Status: domain.PartitionOK, Fetched: 3, Accepted: 2, Rejected: 1, Written: 2},
			},
		}},
		closer: &closeRecorder{},
	}

	oldSettings, oldEngine, oldService := newSettings, newEngine, settingsService
	t.Cleanup(func() {
		newSettings, newEngine, settingsService = oldSettings, oldEngine, oldService
	})

	SetFactories(
		func(path string) (driving.SettingsService, error) {
			f.configPath = path
			return f.settings, nil
		},
		func(_ context.Context, s *domain.Settings, opts EngineOptions) (driving.SyncEngine, io.Closer, error) {
			f.built = s
			f.engineOpts = opts
			if f.engineErr != nil {
				return nil, nil, f.engineErr
			}
			return f.engine, f.closer, nil
		},
	)
	return f
}

func resetFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				if sv, ok := f.Value.(pflag.SliceValue); ok {
					_ = sv.Replace(nil)
				} else {
					_ = f.Value.Set(f.DefValue)
				}
				f.Changed = false
			})
		}
	}
}

// execute runs the CLI with args and returns combined output and exit code.
func execute(t *testing.T, args ...string) (string, int) {
	t.Helper()
	resetFlags(rootCmd, syncCmd, settingsCmd, settingsSetCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	code := Execute(context.Background())
	return buf.String(), code
}

var errBoom = errors.New("boom")
