package es

import (
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"
)

// NewClient connects to Elasticsearch and pings it once so a bad address
// or bad credentials fail at startup, not on the first security event.
func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: create client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es: info request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("es: info request: %s", res.Status())
	}
	return client, nil
}
