package webhook

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/logger"
)

// BulkRunSummary is posted after every wallet analysis run.
type BulkRunSummary struct {
	RunID          string    `json:"run_id"`
	UserID         string    `json:"user_id,omitempty"`
	Address        string    `json:"address"`
	Transactions   int       `json:"transactions"`
	EntriesCreated int       `json:"entries_created"`
	Failed         int       `json:"failed"`
	Saved          bool      `json:"saved"`
	TimedOut       bool      `json:"timed_out"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Client posts run notifications. Delivery is best effort.
type Client struct {
	http   *resty.Client
	logger *logger.Logger
}

func New(logger *logger.Logger) *Client {
	return &Client{
		http:   resty.New().SetTimeout(10 * time.Second),
		logger: logger,
	}
}

// NotifyBulkRun posts summary to webhookURL. An empty URL disables the call.
func (c *Client) NotifyBulkRun(ctx context.Context, webhookURL string, summary BulkRunSummary) {
	if webhookURL == "" {
		return
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(summary).
		Post(webhookURL)
	if err != nil {
		c.logger.Error("[webhook][NotifyBulkRun] request failed", map[string]string{
			"url":   webhookURL,
			"error": err.Error(),
		})
		return
	}

	if resp.IsError() {
		c.logger.Error("[webhook][NotifyBulkRun] non-2xx response", map[string]string{
			"url":         webhookURL,
			"status_code": strconv.Itoa(resp.StatusCode()),
		})
		return
	}

	c.logger.Info("[webhook][NotifyBulkRun] delivered", map[string]string{
		"url":    webhookURL,
		"run_id": summary.RunID,
	})
}
