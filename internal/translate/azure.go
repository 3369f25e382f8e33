package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	azureEndpoint      = "https://api.cognitive.microsofttranslator.com"
	defaultTargetLang  = "en"
	defaultChunkSize   = 25
	defaultChunkDelay  = 500 * time.Millisecond
	azureClientTimeout = 60 * time.Second
)

// Azure translates through the Azure AI Translator REST API.
type Azure struct {
	apiKey     string
	region     string
	endpoint   string
	targetLang string
	chunkSize  int
	delay      time.Duration
	client     *http.Client
}

// NewAzure creates an Azure translator from the given configuration.
func NewAzure(cfg Config) *Azure {
	a := &Azure{
		apiKey:     cfg.APIKey,
		region:     cfg.Region,
		endpoint:   cfg.Endpoint,
		targetLang: cfg.TargetLang,
		chunkSize:  cfg.ChunkSize,
		delay:      cfg.Delay,
		client:     &http.Client{Timeout: azureClientTimeout},
	}
	if a.endpoint == "" {
		a.endpoint = azureEndpoint
	}
	if a.targetLang == "" {
		a.targetLang = defaultTargetLang
	}
	if a.chunkSize <= 0 {
		a.chunkSize = defaultChunkSize
	}
	if a.delay == 0 {
		// Pacing defaults on; pass a negative Delay to disable it.
		a.delay = defaultChunkDelay
	}
	return a
}

// Name returns the provider identifier.
func (a *Azure) Name() string { return "azure" }

type azureRequestItem struct {
	Text string `json:"Text"`
}

type azureResponseItem struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

type azureError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// TranslateBatch translates texts in chunks, pausing between chunks so long
// batches stay under the service rate limits. The result always has the same
// length and order as the input.
func (a *Azure) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	copy(out, texts)

	for start := 0; start < len(texts); start += a.chunkSize {
		end := start + a.chunkSize
		if end > len(texts) {
			end = len(texts)
		}

		if start > 0 && a.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.delay):
			}
		}

		translated, err := a.translateChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		copy(out[start:end], translated)
	}

	return out, nil
}

func (a *Azure) translateChunk(ctx context.Context, texts []string) ([]string, error) {
	items := make([]azureRequestItem, len(texts))
	for i, t := range texts {
		items[i] = azureRequestItem{Text: t}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	endpoint := a.endpoint + "/translate?api-version=3.0&to=" + url.QueryEscape(a.targetLang)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", a.apiKey)
	if a.region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", a.region)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var apiErr azureError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("translation API returned %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("translation API returned %d: %s", resp.StatusCode, string(body))
	}

	var result []azureResponseItem
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not parse translation response: %w", err)
	}
	if len(result) != len(texts) {
		return nil, fmt.Errorf("translation API returned %d results for %d inputs", len(result), len(texts))
	}

	translated := make([]string, len(texts))
	for i, item := range result {
		if len(item.Translations) > 0 {
			translated[i] = item.Translations[0].Text
		} else {
			// Service declined this item; keep the original.
			translated[i] = texts[i]
		}
	}
	return translated, nil
}
