package stdlogger_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GoAgora/go-agora/internal/logger"
	"github.com/GoAgora/go-agora/internal/logger/adapter/stdlogger"
)

func TestAdapter(t *testing.T) {
	type testCase struct {
		name             string
		cfg              logger.Log
		shouldHaveOutPut bool
		contains         []string
		notContains      []string
	}

	testCases := []testCase{
		{
			name: "no logger enabled log level not set",
			cfg: logger.Log{
				LogLevel:    "",
				ServiceName: "test",
				AppName:     "test",
			},
			shouldHaveOutPut: false,
		},
		{
			name: "console enabled log level info hides debug",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true},
			},
			shouldHaveOutPut: true,
			contains:         []string{"test info", "test warning", "test error", `"component":"db"`},
			notContains:      []string{"test debug"},
		},
		{
			name: "console enabled log level debug",
			cfg: logger.Log{
				LogLevel:    "debug",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true},
			},
			shouldHaveOutPut: true,
			contains:         []string{"test debug", "gorm statement"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := testLoggerConfig(t, tc.cfg)
			t.Logf("out: %s", out)

			if tc.shouldHaveOutPut {
				assert.NotEmpty(t, out)
			}

			for _, c := range tc.contains {
				assert.Contains(t, out, c)
			}

			for _, c := range tc.notContains {
				assert.NotContains(t, out, c)
			}
		})
	}
}

func TestGormWriter(t *testing.T) {
	// compile time check that the adapter satisfies gorm's writer
	var w gormlogger.Writer = stdlogger.New()

	assert.NotNil(t, gormlogger.New(w, gormlogger.Config{LogLevel: gormlogger.Warn}))
}

func testLoggerConfig(t *testing.T, cfg logger.Log) string {
	t.Helper()
	// keep default std out
	stdout := os.Stdout
	stderr := os.Stderr

	// capture stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	err := logger.Init(cfg)
	if err != nil {
		t.Error(err)
	}

	testLogger := stdlogger.NewComponent("db")

	testLogger.Debugf("stdlogger %s", "test debug")
	testLogger.Infof("stdlogger %s", "test info")
	testLogger.Warningf("stdlogger %s", "test warning")
	testLogger.Errorf("stdlogger %s", "test error")
	testLogger.Printf("\n%s", "gorm statement")

	outC := make(chan string)
	// copy the output in a separate goroutine so printing can't block indefinitely
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	// back to normal state
	_ = w.Close()
	os.Stdout = stdout // restoring the real stdout
	os.Stderr = stderr // restoring the real stderr

	return <-outC
}
