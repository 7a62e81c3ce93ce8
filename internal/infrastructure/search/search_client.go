package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resty.dev/v3"

	"betline-server/services/support-api/internal/config"
	"betline-server/services/support-api/internal/utils/httpclients"
	"betline-server/services/support-api/internal/utils/platformerrors"
)

const serperSearchURL = "https://google.serper.dev/search"

// Client performs web searches through the Serper API.
type Client struct {
	client *resty.Client
	apiKey string
}

func NewClient(cfg *config.Config) *Client {
	client := httpclients.NewClient("serper")
	client.SetTimeout(cfg.ExtractionTimeout)
	return &Client{client: client, apiKey: cfg.SerperAPIKey}
}

func (c *Client) hasAPIKey() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

type searchRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Snippet is one search hit used as answer grounding.
type Snippet struct {
	Title string
	Link  string
	Text  string
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]Snippet, error) {
	if !c.hasAPIKey() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"serper api key not configured", nil, "4e7b2d9f-8c1a-4653-b0e5-2f9d6a3c8e17")
	}

	var result searchResponse
	resp, err := c.client.R().SetContext(ctx).
		SetHeader("X-API-KEY", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(searchRequest{Query: query, Num: limit}).
		SetResult(&result).
		Post(serperSearchURL)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "serper search request failed")
	}
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("serper search failed with status %d", resp.StatusCode()), nil, "a3f8c1e6-5d2b-4970-8e4a-1c7f9b0d5e32")
	}

	snippets := make([]Snippet, 0, len(result.Organic))
	for _, hit := range result.Organic {
		snippets = append(snippets, Snippet{Title: hit.Title, Link: hit.Link, Text: hit.Snippet})
	}
	return snippets, nil
}

// Generator answers ticket follow-ups with web search results folded into
// the grounding before delegating to the text model. It errors when no API
// key is configured so the capability chain falls through to the plain
// model-only generator.
type Generator struct {
	searcher *Client
	model    TextCompleter
}

// TextCompleter is the model-backed generation the search results are fed into.
type TextCompleter interface {
	GenerateGroundedAnswer(ctx context.Context, question string, grounding json.RawMessage) (string, error)
}

func NewGenerator(searcher *Client, model TextCompleter) *Generator {
	return &Generator{searcher: searcher, model: model}
}

func (g *Generator) GenerateGroundedAnswer(ctx context.Context, question string, grounding json.RawMessage) (string, error) {
	snippets, err := g.searcher.Search(ctx, question, 3)
	if err != nil {
		return "", err
	}
	if len(snippets) == 0 {
		return g.model.GenerateGroundedAnswer(ctx, question, grounding)
	}

	var sb strings.Builder
	for _, s := range snippets {
		fmt.Fprintf(&sb, "- %s: %s\n", s.Title, s.Text)
	}

	enriched, err := json.Marshal(struct {
		Ticket     json.RawMessage `json:"ticket"`
		WebResults string          `json:"web_results"`
	}{Ticket: grounding, WebResults: sb.String()})
	if err != nil {
		return "", err
	}
	return g.model.GenerateGroundedAnswer(ctx, question, enriched)
}
