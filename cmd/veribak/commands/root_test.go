package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/veribak/internal/errors"
	"github.com/thoreinstein/veribak/internal/logging"
)

// saveLogFlags restores the logging flag variables after the test.
func saveLogFlags(t *testing.T) {
	t.Helper()
	origVerbosity, origQuiet, origFormat, origFile := verbosity, quiet, logFormat, logFile
	t.Cleanup(func() {
		verbosity, quiet, logFormat, logFile = origVerbosity, origQuiet, origFormat, origFile
		slog.SetDefault(slog.New(slog.DiscardHandler))
	})
}

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	saveLogFlags(t)

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = tt.verbosity
			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > logging.LevelTrace {
				shouldBeDisabled := tt.wantLevel - 4
				if logger.Enabled(t.Context(), shouldBeDisabled) {
					t.Errorf("expected level %v to be disabled", shouldBeDisabled)
				}
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	saveLogFlags(t)

	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"VERIBAK_DEBUG=1", "1", slog.LevelDebug},
		{"VERIBAK_DEBUG=true", "true", slog.LevelDebug},
		{"VERIBAK_DEBUG=2", "2", logging.LevelTrace},
		{"VERIBAK_DEBUG=0", "0", slog.LevelWarn},
		{"VERIBAK_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = 0
			t.Setenv("VERIBAK_DEBUG", tt.envVal)

			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}

			if tt.wantLevel == slog.LevelDebug {
				if logger.Enabled(t.Context(), logging.LevelTrace) {
					t.Error("expected Trace level to be disabled when VERIBAK_DEBUG=1")
				}
			}
		})
	}
}

func TestSetupLogging_FlagPrecedence(t *testing.T) {
	saveLogFlags(t)

	t.Setenv("VERIBAK_DEBUG", "2")
	verbosity = 1

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}

	logger := slog.Default()
	if !logger.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("expected Info level to be enabled")
	}
	if logger.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("expected Debug level to be disabled (flag should override env var)")
	}
}

func TestSetupLogging_Quiet(t *testing.T) {
	saveLogFlags(t)

	quiet = true
	verbosity = 0

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger := slog.Default()
	if !logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("expected Error level to be enabled")
	}
	if logger.Enabled(t.Context(), slog.LevelWarn) {
		t.Error("expected Warn level to be disabled")
	}
}

func TestSetupLogging_QuietMutualExclusion(t *testing.T) {
	saveLogFlags(t)

	verbosity = 1
	quiet = true

	err := setupLogging(rootCmd)
	if err == nil {
		t.Fatal("expected error when both quiet and verbose are set")
	}
	if code := errors.Classify(err).Code; code != errors.ExitUser {
		t.Errorf("exit code = %d, want %d", code, errors.ExitUser)
	}
}

func TestSetupLogging_LogFile(t *testing.T) {
	saveLogFlags(t)

	logFile = filepath.Join(t.TempDir(), "veribak.log")
	verbosity = 1

	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	slog.Info("written to file", "key", "value")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"written to file"`) {
		t.Errorf("log file missing JSON record: %s", data)
	}
}

func TestSetupLogging_ContextLogger(t *testing.T) {
	saveLogFlags(t)

	cmd := &cobra.Command{Use: "test"}
	if err := setupLogging(cmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	if logging.FromContext(cmd.Context()) != slog.Default() {
		t.Error("expected the command context to carry the default logger")
	}
}

func TestCheckConfig(t *testing.T) {
	origErr := configLoadErr
	defer func() { configLoadErr = origErr }()

	configLoadErr = errors.Mark(errors.New("bad yaml"), errors.ErrInvalidConfig)

	if err := checkConfig(versionCmd, nil); err != nil {
		t.Errorf("version should ignore config errors, got %v", err)
	}
	if err := checkConfig(configInitCmd, nil); err != nil {
		t.Errorf("config init should ignore config errors, got %v", err)
	}

	err := checkConfig(backupCmd, nil)
	if err == nil {
		t.Fatal("expected config error for backup")
	}
	if code := errors.Classify(err).Code; code != errors.ExitUser {
		t.Errorf("exit code = %d, want %d", code, errors.ExitUser)
	}
}
