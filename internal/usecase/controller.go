package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wichananm65/slopeselector/internal/domain/entity"
	"github.com/wichananm65/slopeselector/internal/domain/repository"
)

// User-facing messages for failed calls. Submit failures from the server use the
// server's detail instead.
const (
	MsgSubmitFailed  = repository.MsgSubmitFailed
	MsgHistoryFailed = repository.MsgHistoryFailed
	MsgSelectFailed  = repository.MsgSelectFailed
)

const defaultRefreshTimeout = 30 * time.Second

// Controller owns the view state of one browser and performs the network calls its
// transitions need. The lock is never held across a call.
type Controller struct {
	mu    sync.Mutex
	state State

	userID         string
	repo           repository.RecommendationRepository
	log            logrus.FieldLogger
	refreshTimeout time.Duration
	background     sync.WaitGroup
}

func NewController(userID string, repo repository.RecommendationRepository, log logrus.FieldLogger, refreshTimeout time.Duration) *Controller {
	if refreshTimeout <= 0 {
		refreshTimeout = defaultRefreshTimeout
	}
	return &Controller{
		state:          InitialState(),
		userID:         userID,
		repo:           repo,
		log:            log.WithField("user_id", userID),
		refreshTimeout: refreshTimeout,
	}
}

func (c *Controller) UserID() string {
	return c.userID
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) dispatch(a Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, a)
	return c.state
}

// begin applies a starting action and reports whether it was accepted along with the
// sequence numbers the matching completion must carry.
func (c *Controller) begin(a Action) (accepted bool, seq, historySeq uint64, s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.state
	c.state = Reduce(prev, a)
	accepted = c.state.seq != prev.seq || c.state.historySeq != prev.historySeq
	return accepted, c.state.seq, c.state.historySeq, c.state
}

func (c *Controller) SetPrompt(text string) State {
	return c.dispatch(PromptChanged{Text: text})
}

// Submit sends prompt to the backend. An empty prompt, or one sent while another
// call is in flight, leaves the state untouched and makes no call.
func (c *Controller) Submit(ctx context.Context, prompt string) State {
	accepted, seq, _, s := c.begin(SubmitStarted{Prompt: prompt})
	if !accepted {
		return s
	}

	set, err := c.repo.SubmitPrompt(ctx, prompt, c.userID)
	if err != nil {
		c.log.WithError(err).Warn("submit prompt failed")
		return c.dispatch(SubmitFailed{Seq: seq, Message: submitErrorMessage(err)})
	}
	c.log.WithFields(logrus.Fields{
		"categories": len(set.Categories),
		"products":   set.ProductCount(),
	}).Info("recommendations received")

	s = c.dispatch(SubmitSucceeded{Seq: seq, Set: set})
	if s.HistoryLoaded {
		c.refreshHistory(ctx)
	}
	return s
}

// NavigateHistory shows the history page, loading the list on first entry.
func (c *Controller) NavigateHistory(ctx context.Context) State {
	c.mu.Lock()
	c.state = Reduce(c.state, NavigatedHistory{})
	if c.state.HistoryLoaded || c.state.Loading {
		s := c.state
		c.mu.Unlock()
		return s
	}
	c.state = Reduce(c.state, HistoryLoadStarted{})
	seq, historySeq := c.state.seq, c.state.historySeq
	c.mu.Unlock()

	items, err := c.repo.ListHistory(ctx, c.userID)
	if err != nil {
		c.log.WithError(err).Warn("list history failed")
		return c.dispatch(HistoryLoadFailed{Seq: seq, HistorySeq: historySeq, Message: MsgHistoryFailed})
	}
	return c.dispatch(HistoryLoadSucceeded{Seq: seq, HistorySeq: historySeq, Items: items})
}

// refreshHistory reloads the history list without blocking the caller. Failures are
// logged and keep the previous list.
func (c *Controller) refreshHistory(ctx context.Context) {
	_, seq, historySeq, _ := c.begin(HistoryLoadStarted{Background: true})
	ctx = context.WithoutCancel(ctx)

	c.background.Add(1)
	go func() {
		defer c.background.Done()
		ctx, cancel := context.WithTimeout(ctx, c.refreshTimeout)
		defer cancel()

		items, err := c.repo.ListHistory(ctx, c.userID)
		if err != nil {
			c.log.WithError(err).Warn("history refresh failed")
			c.dispatch(HistoryLoadFailed{Seq: seq, HistorySeq: historySeq, Background: true, Message: MsgHistoryFailed})
			return
		}
		c.dispatch(HistoryLoadSucceeded{Seq: seq, HistorySeq: historySeq, Background: true, Items: items})
	}()
}

// SelectItem reopens the stored recommendation set with the given history id.
func (c *Controller) SelectItem(ctx context.Context, id string) State {
	accepted, seq, _, s := c.begin(SelectStarted{ID: id})
	if !accepted {
		return s
	}

	set, err := c.repo.GetRecommendationSet(ctx, id)
	if err != nil {
		c.log.WithError(err).WithField("set_id", id).Warn("get recommendation set failed")
		return c.dispatch(SelectFailed{Seq: seq, Message: MsgSelectFailed})
	}
	return c.dispatch(SelectSucceeded{Seq: seq, Set: set})
}

// HistoryItemAt returns the n-th (zero based) row of the loaded history.
func (c *Controller) HistoryItemAt(n int) (entity.HistoryItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 0 || n >= len(c.state.History) {
		return entity.HistoryItem{}, false
	}
	return c.state.History[n], true
}

func (c *Controller) Back() State {
	return c.dispatch(WentBack{})
}

func (c *Controller) NavigateHome() State {
	return c.dispatch(NavigatedHome{})
}

// Wait blocks until background refreshes have finished.
func (c *Controller) Wait() {
	c.background.Wait()
}

func submitErrorMessage(err error) string {
	var reqErr *repository.RequestError
	if errors.As(err, &reqErr) && reqErr.Kind == repository.ServerError && reqErr.Message != "" {
		return reqErr.Message
	}
	return MsgSubmitFailed
}
