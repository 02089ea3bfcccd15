// Package randomuser fetches synthetic user records from the randomuser.me API
// and flattens them into models.User.
package randomuser

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/patric-chuzhbe/usersite/internal/logger"
	"github.com/patric-chuzhbe/usersite/internal/models"
)

const apiPath = "/api/"

// Client issues exactly one request per FetchUsers call. Failures are not retried.
type Client struct {
	client      *resty.Client
	count       int
	nationality string
}

// New creates a client for the API rooted at baseURL (e.g. "https://randomuser.me").
func New(baseURL string, timeout time.Duration, count int, nationality string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(logger.LogRestyRequest).
		OnAfterResponse(logger.LogRestyResponse)

	return &Client{
		client:      httpClient,
		count:       count,
		nationality: nationality,
	}
}

// FetchUsers requests the configured number of users and maps every record.
// The whole batch fails if any record is unusable.
func (c *Client) FetchUsers(ctx context.Context) ([]models.User, error) {
	var body models.APIResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"results": strconv.Itoa(c.count),
			"nat":     c.nationality,
		}).
		SetResult(&body).
		ForceContentType("application/json").
		Get(apiPath)
	if err != nil {
		if resp != nil && resp.IsSuccess() {
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
		}
		return nil, fmt.Errorf("in internal/randomuser/randomuser.go/FetchUsers(): error while requesting users: %w", err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s", models.ErrUnexpectedStatus, resp.Status())
	}

	if body.Results == nil {
		return nil, fmt.Errorf("%w: no results array", models.ErrMalformedResponse)
	}

	users := make([]models.User, 0, len(body.Results))
	for i, record := range body.Results {
		usr := record.ToUser()
		if err := usr.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", models.ErrMalformedResponse, i, err)
		}
		users = append(users, usr)
	}

	return users, nil
}
