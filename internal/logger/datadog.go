package logger

import (
	"context"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

const (
	defaultDataDogBuffer  = 1024
	defaultDataDogTimeout = 5 * time.Second
	dataDogBatchSize      = 100
	dataDogFlushInterval  = time.Second
	dataDogSource         = "go"
)

// LogSubmitter is the part of datadogV2.LogsApi used by DataDogWriter.
type LogSubmitter interface {
	SubmitLog(
		ctx context.Context,
		body []datadogV2.HTTPLogItem,
		o ...datadogV2.SubmitLogOptionalParameters,
	) (interface{}, *http.Response, error)
}

// DataDogWriter ships log lines asynchronously to the datadog logs intake.
// Lines are queued and dropped when the queue is full, so logging never blocks on the network.
type DataDogWriter struct {
	api      LogSubmitter
	ctx      context.Context //nolint:containedctx // carries the datadog api keys
	cfg      DataDog
	hostname string
	entries  chan []byte
	wg       sync.WaitGroup
	// mu guards entries against a send after close.
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// NewDataDogWriter creates a writer using the datadog api client.
func NewDataDogWriter(cfg DataDog) *DataDogWriter {
	configuration := datadog.NewConfiguration()
	if len(cfg.Servers) > 0 {
		configuration.Servers = cfg.Servers
	}

	ctx := context.WithValue(
		context.Background(),
		datadog.ContextAPIKeys,
		map[string]datadog.APIKey{
			"apiKeyAuth": {Key: cfg.APIKey},
		},
	)

	if cfg.Site != "" {
		ctx = context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{"site": cfg.Site})
	}

	return NewDataDogWriterWithAPI(ctx, cfg, datadogV2.NewLogsApi(datadog.NewAPIClient(configuration)))
}

// NewDataDogWriterWithAPI creates a writer on top of the given submitter and starts its worker.
func NewDataDogWriterWithAPI(ctx context.Context, cfg DataDog, api LogSubmitter) *DataDogWriter {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultDataDogBuffer
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultDataDogTimeout
	}

	hostname, _ := os.Hostname()

	w := &DataDogWriter{
		api:      api,
		ctx:      ctx,
		cfg:      cfg,
		hostname: hostname,
		entries:  make(chan []byte, cfg.BufferSize),
	}

	w.wg.Add(1)

	go w.run()

	return w
}

// Write queues one log line. It never blocks.
func (w *DataDogWriter) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return len(p), nil
	}

	select {
	case w.entries <- line:
	default:
		w.dropped.Add(1)
	}

	return len(p), nil
}

// Dropped returns how many lines were discarded because the queue was full.
func (w *DataDogWriter) Dropped() uint64 {
	return w.dropped.Load()
}

// Close flushes the queue and stops the worker.
func (w *DataDogWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.entries)
	}
	w.mu.Unlock()

	w.wg.Wait()

	return nil
}

func (w *DataDogWriter) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(dataDogFlushInterval)
	defer ticker.Stop()

	batch := make([]datadogV2.HTTPLogItem, 0, dataDogBatchSize)

	for {
		select {
		case line, ok := <-w.entries:
			if !ok {
				w.submit(batch)
				return
			}

			batch = append(batch, w.item(line))
			if len(batch) >= dataDogBatchSize {
				w.submit(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			w.submit(batch)
			batch = batch[:0]
		}
	}
}

func (w *DataDogWriter) item(line []byte) datadogV2.HTTPLogItem {
	item := datadogV2.HTTPLogItem{
		Message:  string(line),
		Ddsource: datadog.PtrString(dataDogSource),
		Hostname: datadog.PtrString(w.hostname),
		Service:  datadog.PtrString(w.cfg.ServiceName),
	}

	if w.cfg.Tags != "" {
		item.Ddtags = datadog.PtrString(w.cfg.Tags)
	}

	return item
}

func (w *DataDogWriter) submit(batch []datadogV2.HTTPLogItem) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(w.ctx, w.cfg.Timeout)
	defer cancel()

	// the slice is reused by the caller
	body := make([]datadogV2.HTTPLogItem, len(batch))
	copy(body, batch)

	if _, r, err := w.api.SubmitLog(ctx, body, *datadogV2.NewSubmitLogOptionalParameters()); err != nil {
		// logging through zerolog here would feed the error back into this writer
		ErrorHandler(err)
	} else if r != nil && r.Body != nil {
		_ = r.Body.Close()
	}
}
