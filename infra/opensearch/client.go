package opensearch

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mstgnz/funnelpay/infra/config"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

const (
	SystemLogIndex   = "funnelpay-system-logs"
	CheckoutLogIndex = "funnelpay-checkout-logs"
)

// Client wraps the OpenSearch client
type Client struct {
	client *opensearch.Client
	config *config.AppConfig
}

// NewClient creates a new OpenSearch client and makes sure the log indices exist
func NewClient(cfg *config.AppConfig) (*Client, error) {
	opensearchConfig := opensearch.Config{
		Addresses: []string{cfg.OpenSearchURL},
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: !cfg.IsProduction(),
			},
		},
		MaxRetries:    3,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
	}

	if cfg.OpenSearchUser != "" && cfg.OpenSearchPass != "" {
		opensearchConfig.Username = cfg.OpenSearchUser
		opensearchConfig.Password = cfg.OpenSearchPass
	}

	client, err := opensearch.NewClient(opensearchConfig)
	if err != nil {
		return nil, err
	}

	osClient := &Client{
		client: client,
		config: cfg,
	}

	if cfg.EnableLogging {
		if err := osClient.setupIndices(context.Background()); err != nil {
			log.Printf("Warning: Failed to setup OpenSearch indices: %v", err)
		}
	}

	return osClient, nil
}

// GetClient returns the underlying OpenSearch client
func (c *Client) GetClient() *opensearch.Client {
	return c.client
}

// IsEnabled returns whether OpenSearch logging is enabled
func (c *Client) IsEnabled() bool {
	return c.config.EnableLogging
}

func (c *Client) setupIndices(ctx context.Context) error {
	indices := map[string]string{
		SystemLogIndex:   systemLogMapping,
		CheckoutLogIndex: checkoutLogMapping,
	}

	var failed []string
	for name, mapping := range indices {
		exists, err := c.indexExists(ctx, name)
		if err != nil {
			failed = append(failed, name)
			continue
		}
		if exists {
			continue
		}
		if err := c.createIndex(ctx, name, mapping); err != nil {
			failed = append(failed, name)
			continue
		}
		log.Printf("Created OpenSearch index: %s", name)
	}

	if len(failed) > 0 {
		return fmt.Errorf("indices not ready: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (c *Client) indexExists(ctx context.Context, indexName string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{
		Index: []string{indexName},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK, nil
}

func (c *Client) createIndex(ctx context.Context, indexName, mapping string) error {
	req := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(mapping),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index creation error: %s", res.String())
	}

	return nil
}

const systemLogMapping = `{
	"mappings": {
		"properties": {
			"timestamp":   {"type": "date"},
			"level":       {"type": "keyword"},
			"message":     {"type": "text"},
			"component":   {"type": "keyword"},
			"tenant_id":   {"type": "keyword"},
			"gateway":     {"type": "keyword"},
			"request_id":  {"type": "keyword"},
			"error":       {"type": "text"},
			"environment": {"type": "keyword"},
			"service":     {"type": "keyword"}
		}
	},
	"settings": {"number_of_shards": 1, "number_of_replicas": 0}
}`

const checkoutLogMapping = `{
	"mappings": {
		"properties": {
			"timestamp":  {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
			"tenant_id":  {"type": "keyword"},
			"gateway":    {"type": "keyword"},
			"method":     {"type": "keyword"},
			"endpoint":   {"type": "keyword"},
			"request_id": {"type": "keyword"},
			"user_agent": {"type": "text"},
			"client_ip":  {"type": "ip"},
			"request": {
				"type": "object",
				"properties": {
					"body":     {"type": "text"},
					"page_url": {"type": "keyword"}
				}
			},
			"response": {
				"type": "object",
				"properties": {
					"status_code":        {"type": "integer"},
					"body":               {"type": "text"},
					"processing_time_ms": {"type": "integer"}
				}
			},
			"order": {
				"type": "object",
				"properties": {
					"order_id":     {"type": "keyword"},
					"product_name": {"type": "keyword"}
				}
			},
			"error": {
				"type": "object",
				"properties": {
					"code":    {"type": "keyword"},
					"message": {"type": "text"}
				}
			}
		}
	},
	"settings": {"number_of_shards": 1, "number_of_replicas": 0}
}`
