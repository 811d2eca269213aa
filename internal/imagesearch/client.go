// Package imagesearch fetches representative dish photos through the
// Google Custom Search image API.
package imagesearch

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"menureader/internal/menu"
	"menureader/internal/request"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

type Client struct {
	rc       *request.Client
	apiKey   string
	cx       string
	endpoint string
	numHits  int
}

func NewClient(rc *request.Client, apiKey, cx string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing search API key")
	}
	if cx == "" {
		return nil, errors.New("missing search engine id")
	}
	return &Client{
		rc:       rc,
		apiKey:   apiKey,
		cx:       cx,
		endpoint: defaultEndpoint,
		numHits:  4,
	}, nil
}

// SetEndpoint points the client at a different base URL (tests).
func (c *Client) SetEndpoint(endpoint string) { c.endpoint = endpoint }

type searchResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		DisplayLink string `json:"displayLink"`
		Image       struct {
			Width         int    `json:"width"`
			Height        int    `json:"height"`
			ThumbnailLink string `json:"thumbnailLink"`
		} `json:"image"`
	} `json:"items"`
}

// Search returns converted hits for one dish query. An empty result is not
// an error; the dish simply has no images.
func (c *Client) Search(ctx context.Context, dishName, query string) ([]menu.DishImage, error) {
	if query == "" {
		query = dishName
	}

	var resp searchResponse
	err := c.rc.Do(ctx, request.Request{
		Method: "GET",
		URL:    c.endpoint,
		Query: url.Values{
			"key":        {c.apiKey},
			"cx":         {c.cx},
			"q":          {query},
			"searchType": {"image"},
			"num":        {strconv.Itoa(c.numHits)},
			"safe":       {"active"},
			"imgType":    {"photo"},
			"imgSize":    {"medium"},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	images := make([]menu.DishImage, 0, len(resp.Items))
	for _, hit := range resp.Items {
		if hit.Link == "" {
			continue
		}
		images = append(images, menu.DishImage{
			ID:           uuid.New().String(),
			Title:        hit.Title,
			ImageURL:     hit.Link,
			ThumbnailURL: hit.Image.ThumbnailLink,
			SourceURL:    hit.DisplayLink,
			Width:        hit.Image.Width,
			Height:       hit.Image.Height,
			DishName:     dishName,
			IsLoaded:     true,
		})
	}

	log.Printf("IMAGE_SEARCH_DONE dish=%q hits=%d", dishName, len(images))
	return images, nil
}
