package dashboard

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ukcovid/covidwatch/internal/constants"
	"github.com/ukcovid/covidwatch/pkg/rolling"
	"go.uber.org/zap"
)

// RetrievalError reports a failed series request for one filter. Series
// requests fail independently, so callers usually record one of these and
// move on to the next area rather than aborting the run.
type RetrievalError struct {
	Filter Filter
	Status int
	Err    error
}

func (e *RetrievalError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("retrieving series for %s: status %d: %v", e.Filter.Label(), e.Status, e.Err)
	}
	return fmt.Sprintf("retrieving series for %s: %v", e.Filter.Label(), e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Client fetches series from the dashboard API.
type Client struct {
	endpoint string
	client   http.Client
	logger   *zap.SugaredLogger
}

// NewClient creates a dashboard API client. The timeout bounds each
// request end to end.
func NewClient(endpoint string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		endpoint: endpoint,
		client: http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchSeries retrieves the series selected by filter with the given field
// structure, requested in CSV form so that unpublished counts stay
// distinguishable as blank cells. Rows are returned newest-first, the
// order the dashboard delivers them in, with the header row removed. A
// header-only payload yields an empty series, not an error; anything but a
// 200 response yields a *RetrievalError.
func (c *Client) FetchSeries(ctx context.Context, filter Filter, structure Structure) (rolling.Series, error) {
	metrics := make(map[string]string, len(structure))
	for field, metric := range structure {
		metrics[string(field)] = metric
	}
	structureJSON, err := json.Marshal(metrics)
	if err != nil {
		return nil, &RetrievalError{Filter: filter, Err: err}
	}

	v := url.Values{}
	v.Set("filters", filter.encode())
	v.Set("structure", string(structureJSON))
	v.Set("format", "csv")

	requestURL := c.endpoint + "?" + v.Encode()
	req, err := http.NewRequest("GET", requestURL, nil)
	if err != nil {
		return nil, &RetrievalError{Filter: filter, Err: fmt.Errorf("error creating dashboard API HTTP request: %w", err)}
	}
	req.Header.Set("User-Agent", fmt.Sprintf("covidwatch %v", constants.Version))

	c.logger.Debugf("Making request to dashboard API: %v", requestURL)
	req = req.WithContext(ctx)
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debugf("HTTP request failed: %v", err)
		return nil, &RetrievalError{Filter: filter, Err: fmt.Errorf("error making request to dashboard API: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RetrievalError{Filter: filter, Status: resp.StatusCode, Err: fmt.Errorf("unexpected response status %s", resp.Status)}
	}

	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		return nil, &RetrievalError{Filter: filter, Err: fmt.Errorf("error parsing dashboard CSV payload: %w", err)}
	}
	if len(records) == 0 {
		return nil, &RetrievalError{Filter: filter, Err: fmt.Errorf("empty dashboard payload")}
	}

	series, err := buildSeries(records, structure)
	if err != nil {
		return nil, &RetrievalError{Filter: filter, Err: err}
	}
	c.logger.Debugf("Fetched %d rows for %s", len(series), filter.Label())
	return series, nil
}

// buildSeries converts CSV records into a series, resolving each requested
// field to its column position once from the header row.
func buildSeries(records [][]string, structure Structure) (rolling.Series, error) {
	header := records[0]
	columns := make(map[rolling.Field]int, len(structure))
	for i, name := range header {
		columns[rolling.Field(name)] = i
	}
	for _, field := range structure.fields() {
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("response header %v is missing requested field %s", header, field)
		}
	}

	series := make(rolling.Series, 0, len(records)-1)
	for _, record := range records[1:] {
		date, err := time.Parse("2006-01-02", record[columns[rolling.FieldDate]])
		if err != nil {
			return nil, fmt.Errorf("error parsing row date: %w", err)
		}
		values := make(map[rolling.Field]string, len(structure)-1)
		for field := range structure {
			if field == rolling.FieldDate {
				continue
			}
			values[field] = record[columns[field]]
		}
		series = append(series, rolling.Row{Date: date, Values: values})
	}
	return series, nil
}
