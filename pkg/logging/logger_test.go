package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/draftsync/draftsync/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	// Capture output through a replaced default logger
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	logging.SetDefault(logger)

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")
	logging.Error().Msg("error message")
	logging.Err(nil).Msg("no error")

	output := buf.String()
	for _, want := range []string{"debug message", "info message", "warning message", "error message"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got: %s", want, output)
		}
	}
}

func TestConfiguration(t *testing.T) {
	configs := []struct {
		name   string
		config *logging.Config
		check  func(t *testing.T, output string)
	}{
		{
			name: "debug level",
			config: &logging.Config{
				Level:  "debug",
				Format: "json",
			},
			check: func(t *testing.T, output string) {
				if !strings.Contains(output, `"level":"debug"`) {
					t.Errorf("Expected debug level in output: %s", output)
				}
			},
		},
		{
			name: "error level filters info",
			config: &logging.Config{
				Level:  "error",
				Format: "json",
			},
			check: func(t *testing.T, output string) {
				if strings.Contains(output, `"level":"info"`) {
					t.Errorf("Should not contain info level when set to error: %s", output)
				}
			},
		},
	}

	for _, tc := range configs {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.NewLoggerFromConfig(tc.config)
			logger = logger.Output(buf)

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			tc.check(t, buf.String())
		})
	}
}

func TestConfigureUpdatesDefault(t *testing.T) {
	logging.Configure(&logging.Config{Level: "warn", Format: "json", Output: "discard"})

	if logging.Default().GetLevel() != zerolog.WarnLevel {
		t.Errorf("Default level = %s, want warn", logging.Default().GetLevel())
	}

	// Restore a permissive default for other tests.
	logging.Configure(&logging.Config{Level: "info", Format: "json", Output: "discard"})
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)

	tl.Logger.Info().Msg("message 1")
	tl.Logger.Error().Msg("message 2")

	tl.AssertContains(t, "message 1")
	tl.AssertContains(t, "message 2")
	tl.AssertNotContains(t, "message 3")

	if len(tl.Lines()) != 2 {
		t.Errorf("Lines = %d, want 2", len(tl.Lines()))
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNopLogger()
	logger.Error().Msg("dropped")

	if logger.GetLevel() != zerolog.Disabled {
		t.Errorf("Nop logger level = %s, want disabled", logger.GetLevel())
	}
}
