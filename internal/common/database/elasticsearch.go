package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"loan-assessment-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// DecisionIndexMapping pins the types of the fields dashboards aggregate on.
const DecisionIndexMapping = `{
  "mappings": {
    "properties": {
      "applicationId":   {"type": "keyword"},
      "userId":          {"type": "keyword"},
      "decision":        {"type": "keyword"},
      "source":          {"type": "keyword"},
      "employment":      {"type": "keyword"},
      "currency":        {"type": "keyword"},
      "creditScore":     {"type": "integer"},
      "amount":          {"type": "double"},
      "score":           {"type": "double"},
      "riskScore":       {"type": "double"},
      "confidence":      {"type": "double"},
      "reasoning":       {"type": "text"},
      "factors":         {"type": "object", "enabled": false},
      "ratios":          {"type": "object"},
      "timestamp":       {"type": "date"}
    }
  }
}`

// ElasticsearchClient wraps the Elasticsearch client
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

// NewElasticsearch creates a new Elasticsearch client
func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}

	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Client.Ping(
		c.Client.Ping.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}

	return nil
}

// EnsureIndex creates the index with DecisionIndexMapping unless it exists.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, index string) error {
	res, err := c.Client.Indices.Exists(
		[]string{index},
		c.Client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index lookup failed: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.Client.Indices.Create(
		index,
		c.Client.Indices.Create.WithBody(strings.NewReader(DecisionIndexMapping)),
		c.Client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index create failed: %w", err)
	}
	defer res.Body.Close()

	// a concurrent worker may have won the race
	if res.IsError() && res.StatusCode != 400 {
		return fmt.Errorf("elasticsearch index create error: %s", res.Status())
	}
	return nil
}
