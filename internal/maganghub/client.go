package maganghub

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://maganghub.kemnaker.go.id/be/v1/api"
	userAgent = "maganghub-tools/mh-finder"

	VacanciesPath = "/list/vacancies-aktif"

	// Max value accepted by the API for page size.
	defaultPageSize = 100

	defaultMaxRetries = 3
	defaultBackoff    = 300 * time.Millisecond
)

// Client talks to the MagangHub API and saves raw page snapshots.
type Client struct {
	// ctx is used only for http requests right now
	ctx        context.Context
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	MaxRetries int
	Backoff    time.Duration
}

func New(ctx context.Context, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		ctx:    ctx,
		logger: logger,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		UserAgent:  userAgent,
		MaxRetries: defaultMaxRetries,
		Backoff:    defaultBackoff,
	}
}

// Page is a raw page payload as returned by the API.
type Page map[string]any

// Records returns the elements of the page's data list. A page without a
// list-valued data field yields no records.
func (p Page) Records() []Record {
	list, ok := p["data"].([]any)
	if !ok {
		return nil
	}
	records := make([]Record, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			records = append(records, Record(m))
		}
	}
	return records
}
