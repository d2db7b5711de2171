package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go-poll-scheduler/core/config"
	"go-poll-scheduler/core/interval"
	"go-poll-scheduler/core/logger"
	"go-poll-scheduler/core/metrics"
	"go-poll-scheduler/modules/availability/dto"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// ErrUnavailable marks transport failures and non-2xx answers.
var ErrUnavailable = errors.New("availability source unavailable")

type SourceClientInterface interface {
	// FetchEvents returns the raw records of partyID between from and to
	// (epoch ms). An empty answer yields a nil slice and no error.
	FetchEvents(ctx context.Context, partyID string, from, to int64) ([]dto.EventRecord, error)
}

type SourceClient struct {
	client *resty.Client
}

func NewSourceClient(cfg config.SourceConfig) *SourceClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	client.AddRetryCondition(retryCondition)
	return &SourceClient{client: client}
}

func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
}

func (c *SourceClient) FetchEvents(ctx context.Context, partyID string, from, to int64) ([]dto.EventRecord, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("party", partyID).
		SetQueryParams(map[string]string{
			"from": strconv.FormatInt(from, 10),
			"to":   strconv.FormatInt(to, 10),
		}).
		Get("/events/{party}")
	if err != nil {
		metrics.IncSourceRequest("error")
		logger.Error("SourceClient:FetchEvents:RequestError", "party_id", partyID, "error", err)
		return nil, errors.Wrapf(ErrUnavailable, "fetch events of %s: %v", partyID, err)
	}
	if resp.IsError() {
		metrics.IncSourceRequest("error")
		logger.Error("SourceClient:FetchEvents:BadStatus",
			"party_id", partyID,
			"status", resp.StatusCode(),
			"body", truncate(resp.String(), 256),
		)
		return nil, errors.Wrapf(ErrUnavailable, "fetch events of %s: status %d", partyID, resp.StatusCode())
	}

	records, err := DecodeEvents(resp.Body())
	if err != nil {
		metrics.IncSourceRequest("error")
		logger.Error("SourceClient:FetchEvents:DecodeError", "party_id", partyID, "error", err)
		return nil, errors.Wrapf(err, "decode events of %s", partyID)
	}
	if len(records) == 0 {
		metrics.IncSourceRequest("empty")
	} else {
		metrics.IncSourceRequest("ok")
	}
	return records, nil
}

// DecodeEvents parses a source response body. An empty body, "null", "" and
// [] all mean no data. Anything that is not an array of objects is a shape
// error.
func DecodeEvents(body []byte) ([]dto.EventRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) || bytes.Equal(body, []byte(`""`)) {
		return nil, nil
	}
	var records []dto.EventRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, errors.Wrap(interval.ErrShape, err.Error())
	}
	return records, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
