package usecase

import (
	"strings"

	"github.com/wichananm65/slopeselector/internal/domain/entity"
)

// Page is the view currently shown to the user.
type Page string

const (
	PageHome    Page = "home"
	PageResults Page = "results"
	PageHistory Page = "history"
)

// State is everything a presenter needs to draw one page. It is only ever replaced
// through Reduce.
type State struct {
	Page          Page                      `json:"page"`
	Prompt        string                    `json:"prompt"`
	Results       *entity.RecommendationSet `json:"results,omitempty"`
	History       []entity.HistoryItem      `json:"history"`
	HistoryLoaded bool                      `json:"historyLoaded"`
	Loading       bool                      `json:"loading"`
	Error         string                    `json:"error,omitempty"`

	// seq counts user transitions; historySeq counts history loads. Completions that
	// started under an older value are stale and leave Loading alone, since navigating
	// already released it.
	seq        uint64
	historySeq uint64
}

func InitialState() State {
	return State{Page: PageHome}
}

// CanSubmit reports whether the submit control is live.
func (s State) CanSubmit() bool {
	return !s.Loading && strings.TrimSpace(s.Prompt) != ""
}

// Action is an input to Reduce.
type Action interface {
	isAction()
}

type (
	PromptChanged struct {
		Text string
	}
	SubmitStarted struct {
		Prompt string
	}
	SubmitSucceeded struct {
		Seq uint64
		Set *entity.RecommendationSet
	}
	SubmitFailed struct {
		Seq     uint64
		Message string
	}
	NavigatedHome    struct{}
	NavigatedHistory struct{}
	WentBack         struct{}
	// HistoryLoadStarted with Background set is the post-submit refresh; it neither
	// needs nor takes the loading flag.
	HistoryLoadStarted struct {
		Background bool
	}
	HistoryLoadSucceeded struct {
		Seq        uint64
		HistorySeq uint64
		Background bool
		Items      []entity.HistoryItem
	}
	HistoryLoadFailed struct {
		Seq        uint64
		HistorySeq uint64
		Background bool
		Message    string
	}
	SelectStarted struct {
		ID string
	}
	SelectSucceeded struct {
		Seq uint64
		Set *entity.RecommendationSet
	}
	SelectFailed struct {
		Seq     uint64
		Message string
	}
)

func (PromptChanged) isAction()        {}
func (SubmitStarted) isAction()        {}
func (SubmitSucceeded) isAction()      {}
func (SubmitFailed) isAction()         {}
func (NavigatedHome) isAction()        {}
func (NavigatedHistory) isAction()     {}
func (WentBack) isAction()             {}
func (HistoryLoadStarted) isAction()   {}
func (HistoryLoadSucceeded) isAction() {}
func (HistoryLoadFailed) isAction()    {}
func (SelectStarted) isAction()        {}
func (SelectSucceeded) isAction()      {}
func (SelectFailed) isAction()         {}

// Reduce returns the state that follows s after a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case PromptChanged:
		s.Prompt = a.Text

	case SubmitStarted:
		if s.Loading || strings.TrimSpace(a.Prompt) == "" {
			return s
		}
		s.seq++
		s.Prompt = a.Prompt
		s.Loading = true
		s.Error = ""

	case SubmitSucceeded:
		if a.Seq != s.seq {
			return s
		}
		s.Loading = false
		s.Results = a.Set
		s.Page = PageResults
		s.Error = ""

	case SubmitFailed:
		if a.Seq != s.seq {
			return s
		}
		s.Loading = false
		s.Error = a.Message

	case NavigatedHome:
		s.seq++
		s.Loading = false
		if s.Page == PageHome {
			s.Prompt = ""
		}
		s.Page = PageHome
		s.Error = ""

	case NavigatedHistory:
		s.seq++
		s.Loading = false
		s.Page = PageHistory
		s.Error = ""

	case WentBack:
		s.seq++
		s.Loading = false
		s.Page = PageHome
		s.Prompt = ""
		s.Error = ""

	case HistoryLoadStarted:
		if !a.Background {
			if s.Loading {
				return s
			}
			s.Loading = true
		}
		s.historySeq++

	case HistoryLoadSucceeded:
		if !a.Background && a.Seq == s.seq {
			s.Loading = false
		}
		if a.HistorySeq != s.historySeq {
			return s
		}
		s.History = a.Items
		s.HistoryLoaded = true
		if !a.Background && a.Seq == s.seq {
			s.Error = ""
		}

	case HistoryLoadFailed:
		if !a.Background && a.Seq == s.seq {
			s.Loading = false
		}
		if a.HistorySeq != s.historySeq {
			return s
		}
		if !a.Background && a.Seq == s.seq {
			s.Error = a.Message
		}

	case SelectStarted:
		if s.Loading || a.ID == "" {
			return s
		}
		s.seq++
		s.Loading = true
		s.Error = ""

	case SelectSucceeded:
		if a.Seq != s.seq {
			return s
		}
		s.Loading = false
		s.Results = a.Set
		s.Page = PageResults
		s.Error = ""

	case SelectFailed:
		if a.Seq != s.seq {
			return s
		}
		s.Loading = false
		s.Error = a.Message
	}
	return s
}
