package topology

import (
	"context"
	"fmt"
	"time"

	"smart-building-os/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Fetcher トポロジ取得の抽象（Store から利用）
type Fetcher interface {
	FetchTopology(ctx context.Context) ([]models.TopologyItem, error)
}

// Client digital-twin/search API クライアント
type Client struct {
	httpClient *resty.Client
	depth      string
	logger     *zap.Logger
}

// NewClient トポロジ API クライアントを生成する
func NewClient(baseURL string, timeout time.Duration, depth string, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		depth:      depth,
		logger:     logger,
	}
}

// FetchTopology 建物トポロジを取得する
func (c *Client) FetchTopology(ctx context.Context) ([]models.TopologyItem, error) {
	query := models.TopologyQuery{
		QueryType: "topology",
		Depth:     c.depth,
	}

	var response models.TopologyResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(query).
		SetResult(&response).
		Post("/digital-twin/search")

	if err != nil {
		return nil, fmt.Errorf("failed to call topology API: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("topology API returned status %d", resp.StatusCode())
	}

	c.logger.Debug("Fetched topology",
		zap.Int("item_count", len(response.Items)),
	)

	return response.Items, nil
}
