package cms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// Client talks GraphQL to the Strapi CMS. One instance is shared across
// services; it is safe for concurrent use.
type Client struct {
	URL    string
	HTTP   *http.Client
	Logger *logrus.Logger
}

// GraphQLError is a single error entry from a GraphQL response body.
// Strapi reports auth failures ("Invalid identifier or password",
// "Email or Username are already taken") this way with a 200 status.
type GraphQLError struct {
	Message string `json:"message"`
}

func (e *GraphQLError) Error() string {
	if e == nil || e.Message == "" {
		return "cms error"
	}
	return e.Message
}

var ErrConnectivity = errors.New("unable to reach the cms")

func NewClient(cfg PortalConfig, logger *logrus.Logger) *Client {
	timeout := time.Duration(cfg.CMSTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		URL:    cfg.CMSURL,
		HTTP:   &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// Do posts one GraphQL operation and decodes the data payload into out.
// A non-empty errors array wins over data: the first entry is returned as
// *GraphQLError. Transport failures come back as ErrConnectivity.
func (c *Client) Do(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	start := time.Now()
	result := "ok"
	defer func() {
		observeCMSRequest(operation, result, time.Since(start))
	}()

	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		result = "marshal_error"
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewBuffer(payload))
	if err != nil {
		result = "request_error"
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		result = "connectivity"
		c.Logger.WithFields(logrus.Fields{
			"operation": operation,
			"error":     err.Error(),
		}).Error("cms request failed")
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result = "read_error"
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		result = "content_type"
		c.Logger.WithFields(logrus.Fields{
			"operation":    operation,
			"content_type": resp.Header.Get("Content-Type"),
			"status":       resp.StatusCode,
		}).Error("cms response is not json")
		return ErrConnectivity
	}

	var parsed graphqlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		result = "parse_error"
		return err
	}
	if len(parsed.Errors) > 0 {
		result = "graphql_error"
		return &parsed.Errors[0]
	}
	if resp.StatusCode != http.StatusOK {
		result = "http_error"
		return fmt.Errorf("cms returned status %d", resp.StatusCode)
	}
	if out != nil && len(parsed.Data) > 0 {
		if err := json.Unmarshal(parsed.Data, out); err != nil {
			result = "decode_error"
			return err
		}
	}
	return nil
}
