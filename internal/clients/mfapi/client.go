// Package mfapi provides a client for the api.mfapi.in mutual fund data
// service, with persistent caching of responses.
package mfapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fundscope/internal/clientdata"

	"github.com/rs/zerolog"
)

const (
	tableSchemeList   = "mfapi_scheme_list"
	tableSchemeDetail = "mfapi_scheme_detail"

	schemeListKey = "all"
)

// Client for api.mfapi.in
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new mfapi.in client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "mfapi").Logger(),
		cacheRepo: cacheRepo,
	}
}

// GetSchemeList fetches the full scheme directory with cache.
// If the API fails, returns stale cached data if available (stale data > no data).
func (c *Client) GetSchemeList() ([]SchemeListEntry, error) {
	if c.cacheRepo != nil {
		var cached []SchemeListEntry
		found, err := c.cacheRepo.GetIfFresh(tableSchemeList, schemeListKey, &cached)
		if err == nil && found {
			c.log.Debug().Int("schemes", len(cached)).Msg("Cache hit")
			return cached, nil
		}
	}

	url := c.baseURL + "/mf"
	c.log.Debug().Str("url", url).Msg("Fetching scheme list")

	var list []SchemeListEntry
	if err := c.getJSON(url, &list); err != nil {
		var stale []SchemeListEntry
		if c.staleFromCache(tableSchemeList, schemeListKey, &stale) {
			c.log.Warn().Err(err).Int("schemes", len(stale)).
				Msg("API failed, using stale cached scheme list")
			return stale, nil
		}
		return nil, err
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("provider returned empty scheme list")
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(tableSchemeList, schemeListKey, list, clientdata.TTLSchemeList); err != nil {
			c.log.Warn().Err(err).Msg("Failed to cache scheme list")
		}
	}

	return list, nil
}

// GetScheme fetches metadata and full NAV history for one scheme with cache.
func (c *Client) GetScheme(schemeCode int) (*SchemeDetail, error) {
	cacheKey := strconv.Itoa(schemeCode)

	if c.cacheRepo != nil {
		var cached SchemeDetail
		found, err := c.cacheRepo.GetIfFresh(tableSchemeDetail, cacheKey, &cached)
		if err == nil && found {
			c.log.Debug().Int("scheme_code", schemeCode).Msg("Cache hit")
			return &cached, nil
		}
	}

	url := fmt.Sprintf("%s/mf/%d", c.baseURL, schemeCode)
	c.log.Debug().Str("url", url).Msg("Fetching scheme")

	var detail SchemeDetail
	if err := c.getJSON(url, &detail); err != nil {
		var stale SchemeDetail
		if c.staleFromCache(tableSchemeDetail, cacheKey, &stale) {
			c.log.Warn().Err(err).Int("scheme_code", schemeCode).
				Msg("API failed, using stale cached scheme")
			return &stale, nil
		}
		return nil, err
	}

	// The provider answers unknown codes with 200 and an empty body
	// rather than a 404.
	if len(detail.Data) == 0 {
		return nil, fmt.Errorf("no NAV data for scheme %d", schemeCode)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(tableSchemeDetail, cacheKey, detail, clientdata.TTLSchemeDetail); err != nil {
			c.log.Warn().Err(err).Int("scheme_code", schemeCode).Msg("Failed to cache scheme")
		}
	}

	return &detail, nil
}

func (c *Client) getJSON(url string, out interface{}) error {
	resp, err := c.client.Get(url)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) staleFromCache(table, key string, out interface{}) bool {
	if c.cacheRepo == nil {
		return false
	}
	found, err := c.cacheRepo.Get(table, key, out)
	return err == nil && found
}
