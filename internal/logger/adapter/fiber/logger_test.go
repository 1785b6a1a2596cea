package fiber_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAgora/go-agora/internal/logger"
	adapter "github.com/GoAgora/go-agora/internal/logger/adapter/fiber"
)

// accessLine is the json format of one access log line.
type accessLine struct {
	IP           net.IP  `json:"IP"`
	Status       int     `json:"status"`
	XPerformance float32 `json:"X-Performance"`
	URI          string  `json:"URI"`
	Method       string  `json:"method"`
	Host         string  `json:"host"`
	Tenant       string  `json:"tenant"`
	Error        string  `json:"error"`
}

func consoleConfig() adapter.Config {
	return adapter.Config{
		Config: logger.Log{
			EnableAccessLogToConsole: true,
			DisableCheckAlive:        true,
			Console:                  logger.Console{Enabled: true},
		},
		CheckAliveURI: "/checkalive",
		Locals:        []string{"tenant"},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		config     adapter.Config
		targetPath string
		want       *accessLine
	}{
		{
			name:       "no writer no output",
			targetPath: "/",
		},
		{
			name:       "get / logs json",
			config:     consoleConfig(),
			targetPath: "/",
			want: &accessLine{
				IP:     net.ParseIP("0.0.0.0"),
				Status: fiber.StatusOK,
				URI:    "/",
				Method: fiber.MethodGet,
				Host:   "example.com",
				Tenant: "optimism",
			},
		},
		{
			name:       "multi slash keeps raw path",
			config:     consoleConfig(),
			targetPath: "//api/v1/proposals",
			want: &accessLine{
				IP:     net.ParseIP("0.0.0.0"),
				Status: fiber.StatusNotFound,
				URI:    "//api/v1/proposals",
				Method: fiber.MethodGet,
				Host:   "example.com",
				Error:  "Cannot GET //api/v1/proposals",
			},
		},
		{
			name:       "query string is logged",
			config:     consoleConfig(),
			targetPath: "/?limit=10&offset=20",
			want: &accessLine{
				IP:     net.ParseIP("0.0.0.0"),
				Status: fiber.StatusOK,
				URI:    "/?limit=10&offset=20",
				Method: fiber.MethodGet,
				Host:   "example.com",
				Tenant: "optimism",
			},
		},
		{
			name:       "handler error is logged",
			config:     consoleConfig(),
			targetPath: "/fail",
			want: &accessLine{
				IP:     net.ParseIP("0.0.0.0"),
				Status: fiber.StatusBadRequest,
				URI:    "/fail",
				Method: fiber.MethodGet,
				Host:   "example.com",
				Error:  "bad limit",
			},
		},
		{
			name:       "checkalive is not logged",
			config:     consoleConfig(),
			targetPath: "/checkalive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := testMiddlewareHelper(t, tt.targetPath, tt.config)
			require.NoError(t, err)

			if tt.want == nil {
				assert.Empty(t, output)
				return
			}

			require.NotEmpty(t, output)

			var line accessLine
			require.NoError(t, json.Unmarshal([]byte(output), &line))

			assert.Equal(t, tt.want.Host, line.Host)
			assert.Equal(t, tt.want.Method, line.Method)
			assert.Equal(t, tt.want.Status, line.Status)
			assert.Equal(t, tt.want.IP, line.IP)
			assert.Equal(t, tt.want.URI, line.URI)
			assert.Equal(t, tt.want.Tenant, line.Tenant)
			assert.Equal(t, tt.want.Error, line.Error)
		})
	}
}

func testMiddlewareHelper(t *testing.T, targetPath string, adapterConfig adapter.Config) (string, error) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	// capture stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		Immutable:     true,
	})

	app.Use(adapter.New(adapterConfig))

	app.Get("/", func(ctx *fiber.Ctx) error {
		ctx.Locals("tenant", "optimism")
		return ctx.SendString("hello test")
	})

	app.Get("/fail", func(_ *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad limit")
	})

	app.Get("/checkalive", func(ctx *fiber.Ctx) error {
		return ctx.SendString("OK")
	})

	_, err := app.Test(httptest.NewRequest(fiber.MethodGet, targetPath, nil), 100000)

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

	return <-outC, err
}
