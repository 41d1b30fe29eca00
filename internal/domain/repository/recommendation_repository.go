package repository

import (
	"context"
	"fmt"

	"github.com/wichananm65/slopeselector/internal/domain/entity"
)

// RecommendationRepository is the backend contract the controller talks to.
type RecommendationRepository interface {
	SubmitPrompt(ctx context.Context, prompt, userID string) (*entity.RecommendationSet, error)
	ListHistory(ctx context.Context, userID string) ([]entity.HistoryItem, error)
	GetRecommendationSet(ctx context.Context, id string) (*entity.RecommendationSet, error)
}

// Generic user-facing messages for failed calls. Only a submit ServerError may replace
// its message with the backend's detail.
const (
	MsgSubmitFailed  = "Failed to get recommendations"
	MsgHistoryFailed = "Failed to load history"
	MsgSelectFailed  = "Failed to load recommendation details"
)

type ErrorKind int

const (
	TransportError ErrorKind = iota + 1
	ServerError
	DecodeError
)

func (k ErrorKind) String() string {
	switch k {
	case TransportError:
		return "transport"
	case ServerError:
		return "server"
	case DecodeError:
		return "decode"
	default:
		return "unknown"
	}
}

// RequestError is returned by every RecommendationRepository call that fails.
// Message is safe to show to the user.
type RequestError struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s error: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s error (status %d): %s", e.Op, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
