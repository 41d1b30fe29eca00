// Package backend is the HTTP client for the recommendation backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wichananm65/slopeselector/internal/domain/entity"
	"github.com/wichananm65/slopeselector/internal/domain/repository"
)

const (
	maxBodyBytes = 8 << 20

	opSubmit  = "submit prompt"
	opHistory = "list history"
	opGet     = "get recommendation set"

	msgSubmitFailed  = repository.MsgSubmitFailed
	msgHistoryFailed = repository.MsgHistoryFailed
	msgGetFailed     = repository.MsgSelectFailed
)

// Client implements repository.RecommendationRepository over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

var _ repository.RecommendationRepository = (*Client)(nil)

// NewClient builds a client rooted at baseURL (e.g. http://localhost:8000).
// A zero timeout leaves requests bounded only by their context.
func NewClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

type submitRequest struct {
	Prompt string `json:"prompt"`
	UserID string `json:"userId"`
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func (c *Client) SubmitPrompt(ctx context.Context, prompt, userID string) (*entity.RecommendationSet, error) {
	body, err := json.Marshal(submitRequest{Prompt: prompt, UserID: userID})
	if err != nil {
		return nil, &repository.RequestError{Kind: repository.TransportError, Op: opSubmit, Message: msgSubmitFailed, Err: errors.Wrap(err, "encode request")}
	}
	var set entity.RecommendationSet
	if err := c.do(ctx, http.MethodPost, "/api/recommendations", bytes.NewReader(body), opSubmit, msgSubmitFailed, true, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

func (c *Client) ListHistory(ctx context.Context, userID string) ([]entity.HistoryItem, error) {
	var items []entity.HistoryItem
	if err := c.do(ctx, http.MethodGet, "/api/history/"+url.PathEscape(userID), nil, opHistory, msgHistoryFailed, false, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []entity.HistoryItem{}
	}
	return items, nil
}

func (c *Client) GetRecommendationSet(ctx context.Context, id string) (*entity.RecommendationSet, error) {
	var set entity.RecommendationSet
	if err := c.do(ctx, http.MethodGet, "/api/recommendations/"+url.PathEscape(id), nil, opGet, msgGetFailed, false, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// do performs one request/response cycle. useDetail makes a non-2xx response carry
// the server's detail string as the error message.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, op, genericMsg string, useDetail bool, out interface{}) error {
	log := c.log.WithFields(logrus.Fields{"op": op, "method": method, "path": path})

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &repository.RequestError{Kind: repository.TransportError, Op: op, Message: genericMsg, Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("backend unreachable")
		return &repository.RequestError{Kind: repository.TransportError, Op: op, Message: genericMsg, Err: errors.Wrap(err, "send request")}
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes+1))
	if err != nil {
		return &repository.RequestError{Kind: repository.TransportError, Op: op, StatusCode: res.StatusCode, Message: genericMsg, Err: errors.Wrap(err, "read response")}
	}
	log = log.WithFields(logrus.Fields{"status": res.StatusCode, "elapsed": time.Since(start)})

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := genericMsg
		if useDetail {
			if detail := detailMessage(payload); detail != "" {
				msg = detail
			}
		}
		log.WithField("detail", msg).Warn("backend returned error status")
		return &repository.RequestError{Kind: repository.ServerError, Op: op, StatusCode: res.StatusCode, Message: msg}
	}

	if len(payload) > maxBodyBytes {
		return &repository.RequestError{Kind: repository.DecodeError, Op: op, StatusCode: res.StatusCode, Message: genericMsg, Err: errors.New("response body too large")}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		log.WithError(err).Warn("malformed backend response")
		return &repository.RequestError{Kind: repository.DecodeError, Op: op, StatusCode: res.StatusCode, Message: genericMsg, Err: errors.Wrap(err, "decode response")}
	}
	log.Debug("backend call complete")
	return nil
}

// detailMessage returns the string "detail" of an error body, or "" when the body is
// not JSON or detail is not a string (FastAPI validation errors send an array).
func detailMessage(payload []byte) string {
	var eb errorBody
	if err := json.Unmarshal(payload, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}
