// Package blockfrost implements the chain-source port against a
// Blockfrost-compatible REST API. Only the endpoints the connector needs are
// covered; the rest of the provider surface is out of scope.
package blockfrost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/cardanoconnect/connectd/internal/core/ports"
	"github.com/cardanoconnect/connectd/pkg/circuitbreaker"
)

const (
	defaultRequestTimeout    = 15 * time.Second
	defaultRequestsPerSecond = 10
)

type utxoResponse struct {
	TxHash      string `json:"tx_hash"`
	OutputIndex uint32 `json:"output_index"`
	Address     string `json:"address"`
	Amount      []struct {
		Unit     string `json:"unit"`
		Quantity string `json:"quantity"`
	} `json:"amount"`
	DataHash            string `json:"data_hash"`
	InlineDatum         string `json:"inline_datum"`
	ReferenceScriptHash string `json:"reference_script_hash"`
}

type service struct {
	apiURL    string
	projectID string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	limiter   ratelimit.Limiter
}

// NewService returns a chain source talking to the given Blockfrost-style
// endpoint, rate limited and guarded by a circuit breaker.
func NewService(apiURL, projectID string) (ports.ChainSource, error) {
	if len(apiURL) <= 0 {
		return nil, fmt.Errorf("chain source api url must not be null")
	}
	return &service{
		apiURL:    apiURL,
		projectID: projectID,
		client:    &http.Client{Timeout: defaultRequestTimeout},
		breaker:   circuitbreaker.NewCircuitBreaker("chainsource"),
		limiter:   ratelimit.New(defaultRequestsPerSecond),
	}, nil
}

func (s *service) GetUtxos(ctx context.Context, address string) ([]ports.Utxo, error) {
	s.limiter.Take()

	res, err := s.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/addresses/%s/utxos", s.apiURL, address)
		return s.get(ctx, url)
	})
	if err != nil {
		return nil, err
	}

	var payload []utxoResponse
	if err := json.Unmarshal(res.([]byte), &payload); err != nil {
		return nil, fmt.Errorf("parsing utxos: %w", err)
	}

	utxos := make([]ports.Utxo, 0, len(payload))
	for _, u := range payload {
		assets := make([]ports.UtxoAsset, 0, len(u.Amount))
		for _, amount := range u.Amount {
			assets = append(assets, ports.UtxoAsset{
				Unit:     amount.Unit,
				Quantity: amount.Quantity,
			})
		}
		utxos = append(utxos, ports.Utxo{
			TxHash:              u.TxHash,
			OutputIndex:         u.OutputIndex,
			Address:             u.Address,
			Assets:              assets,
			DatumHash:           u.DataHash,
			InlineDatum:         u.InlineDatum,
			ReferenceScriptHash: u.ReferenceScriptHash,
		})
	}
	return utxos, nil
}

func (s *service) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if len(s.projectID) > 0 {
		req.Header.Set("project_id", s.projectID)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode == http.StatusNotFound {
		// a never-used address has no utxos, the provider answers 404
		return []byte("[]"), nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chain source replied with status %d", res.StatusCode)
	}
	return body, nil
}
