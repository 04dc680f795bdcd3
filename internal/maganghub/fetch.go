package maganghub

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/maganghub-tools/mh-finder/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip, deflate, br"
)

// Statuses worth another attempt; everything else fails the request.
var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// FetchPage requests a single page of active vacancies. Extra query
// parameters are merged over the defaults.
func (c *Client) FetchPage(page, pageSize, kodeProvinsi int, extra url.Values) (Page, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	q := url.Values{}
	q.Set("order_by", "jumlah_kuota")
	q.Set("order_direction", "DESC")
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(pageSize))
	if kodeProvinsi > 0 {
		q.Set("kode_provinsi", strconv.Itoa(kodeProvinsi))
	}
	for key, values := range extra {
		for _, v := range values {
			q.Add(key, v)
		}
	}

	var payload Page
	if err := c.getJSON(c.APIURL+VacanciesPath, q, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ScrapeOptions controls a full pagination run.
type ScrapeOptions struct {
	Dir          string
	StartPage    int
	PageSize     int
	KodeProvinsi int
	// MaxPages caps the number of saved pages. 0 means no cap.
	MaxPages int
	// Delay is the pause between page requests.
	Delay time.Duration
}

// ScrapeAll paginates until the API returns an empty data list, saving every
// raw page (the stopping page included) under <dir>/<page>.json. Returns the
// number of pages saved.
func (c *Client) ScrapeAll(opts ScrapeOptions) (int, error) {
	page := opts.StartPage
	if page < 1 {
		page = 1
	}

	saved := 0
	for {
		if opts.MaxPages > 0 && saved >= opts.MaxPages {
			c.logger.Debug("reached max pages", zap.Int("max_pages", opts.MaxPages))
			break
		}

		payload, err := c.FetchPage(page, opts.PageSize, opts.KodeProvinsi, nil)
		if err != nil {
			return saved, fmt.Errorf("fetch page %d: %w", page, err)
		}

		path, err := SavePage(payload, opts.Dir, page)
		if err != nil {
			return saved, fmt.Errorf("save page %d: %w", page, err)
		}
		saved++

		records := payload.Records()
		c.logger.Info("saved page",
			zap.Int("page", page),
			zap.Int("records", len(records)),
			zap.String("path", path),
		)

		if len(records) == 0 {
			c.logger.Info("no data on page, stopping", zap.Int("page", page))
			break
		}

		page++
		if opts.Delay > 0 {
			if err := utils.WaitFor(c.ctx, opts.Delay); err != nil {
				return saved, err
			}
		}
	}

	return saved, nil
}

// SavePage writes the payload to <dir>/<page>.json, pretty-printed, with a
// _scraped_at UTC timestamp injected.
func SavePage(payload Page, dir string, page int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	out["_scraped_at"] = time.Now().UTC().Format(time.RFC3339)

	path := filepath.Join(dir, fmt.Sprintf("%d.json", page))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return "", err
	}
	return path, nil
}

// getJSON makes a GET request, retrying retryable failures with exponential
// backoff, and decodes the response body into target.
func (c *Client) getJSON(rawURL string, q url.Values, target any) error {
	attempts := c.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := c.Backoff
			for i := 2; i < attempt; i++ {
				delay *= 2
			}
			c.logger.Debug("retrying request",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := utils.WaitFor(c.ctx, delay); err != nil {
				return err
			}
		}

		retry, err := c.tryGetJSON(rawURL, q, target)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
	}

	return lastErr
}

func (c *Client) tryGetJSON(rawURL string, q url.Values, target any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, err
	}

	c.setHeaders(req)
	req.URL.RawQuery = q.Encode()

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return retryableStatuses[resp.StatusCode], fmt.Errorf("bad status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return false, err
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return true, err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return false, err
	}
	return false, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Content-Type", contentType)
}
