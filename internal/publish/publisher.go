// Package publish delivers a review to the hosting API, degrading from a full
// review with inline comments down to a plain conversation comment when the
// API rejects the stronger forms.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/sevigo/review-warden/internal/core"
	"github.com/sevigo/review-warden/internal/diff"
)

const (
	DefaultMaxInlineComments = 50
	DefaultOverflowInterval  = time.Second

	// DropReasonInlineRejected is reported when the review was recorded but its
	// inline comments were not.
	DropReasonInlineRejected = "inline comments rejected"
)

// ReviewAPI is the review-publishing collaborator, bound to one pull request.
// Rejections are reported as *APIError.
//
//go:generate mockgen -destination=../../mocks/mock_review_api.go -package=mocks . ReviewAPI
type ReviewAPI interface {
	CreateReview(ctx context.Context, sub Submission) (int64, error)
	CreateSingleComment(ctx context.Context, commitID string, c Comment) (int64, error)
	CreateThreadComment(ctx context.Context, body string) (int64, error)
}

// Submission is one review creation request.
type Submission struct {
	CommitID string
	Body     string
	Verdict  core.Verdict
	Comments []Comment
}

// Draft is everything the publisher needs for one review attempt.
type Draft struct {
	CommitID string
	Verdict  core.Verdict
	Comments []core.ProposedComment
	Index    diff.Index
	// Render builds the review body once comments have been resolved. When
	// nil, Body is used as is.
	Render func(Resolution) string
	Body   string
}

// Config tunes a Publisher.
type Config struct {
	MaxInlineComments int
	MaxDistance       int
	FallbackFactor    int
	OverflowInterval  time.Duration
}

// State is a step of the publish protocol.
type State int

const (
	StateBuild State = iota
	StateSubmitWithComments
	StatePostOverflow
	StateSubmitNoComments
	StateFallbackComment
	StateDone
)

func (s State) String() string {
	switch s {
	case StateBuild:
		return "build"
	case StateSubmitWithComments:
		return "submit_with_comments"
	case StatePostOverflow:
		return "post_overflow"
	case StateSubmitNoComments:
		return "submit_no_comments"
	case StateFallbackComment:
		return "fallback_comment"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the terminal result of a publish attempt.
type Outcome string

const (
	OutcomeReviewWithComments    Outcome = "review_with_inline_comments"
	OutcomeReviewWithoutComments Outcome = "review_without_inline_comments"
	OutcomeFallbackComment       Outcome = "fallback_comment"
	OutcomeFailure               Outcome = "failure"
)

// Result describes how a review was delivered. Publish always returns one.
type Result struct {
	Outcome  Outcome
	Success  bool
	ReviewID *int64
	Verdict  core.Verdict
	Body     string
	Message  string
	Errors   []string

	Dropped        []Dropped
	Corrected      int
	InlineComments int
	OverflowPosted int
	OverflowFailed int
	DropReason     string

	// Trace lists the states visited, in order.
	Trace []State
}

// Publisher runs the publish protocol against a ReviewAPI.
type Publisher struct {
	api      ReviewAPI
	cfg      Config
	resolver Resolver
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewPublisher creates a Publisher. Non-positive limits fall back to defaults;
// a zero overflow interval disables pacing.
func NewPublisher(api ReviewAPI, cfg Config, logger *slog.Logger) *Publisher {
	if cfg.MaxInlineComments <= 0 {
		cfg.MaxInlineComments = DefaultMaxInlineComments
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.OverflowInterval > 0 {
		limit = rate.Every(cfg.OverflowInterval)
	}

	return &Publisher{
		api: api,
		cfg: cfg,
		resolver: Resolver{Locator: diff.Locator{
			MaxDistance:    cfg.MaxDistance,
			FallbackFactor: cfg.FallbackFactor,
		}},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// attempt is the mutable state of one Publish call.
type attempt struct {
	draft Draft
	sub   Submission
	tail  []Comment

	downgraded  bool // verdict already lowered after a self-review rejection
	noCommRetry bool // the no-comments submission was retried with the neutral verdict
	submitErr   error

	res *Result
}

// Publish delivers draft and reports how far it got. It never returns an error.
func (p *Publisher) Publish(ctx context.Context, draft Draft) *Result {
	a := &attempt{
		draft: draft,
		res:   &Result{Verdict: draft.Verdict},
	}

	state := StateBuild
	for state != StateDone {
		a.res.Trace = append(a.res.Trace, state)
		next := p.step(ctx, a, state)
		p.logger.Debug("publish transition", "from", state, "to", next, "verdict", a.sub.Verdict)
		state = next
	}
	a.res.Trace = append(a.res.Trace, StateDone)
	return a.res
}

func (p *Publisher) step(ctx context.Context, a *attempt, s State) State {
	switch s {
	case StateBuild:
		return p.build(a)
	case StateSubmitWithComments:
		return p.submitWithComments(ctx, a)
	case StatePostOverflow:
		return p.postOverflow(ctx, a)
	case StateSubmitNoComments:
		return p.submitNoComments(ctx, a)
	case StateFallbackComment:
		return p.fallbackComment(ctx, a)
	default:
		a.fail(fmt.Sprintf("publisher reached unknown state %s", s))
		return StateDone
	}
}

func (p *Publisher) build(a *attempt) State {
	res := p.resolver.Resolve(a.draft.Index, a.draft.Comments)
	a.res.Dropped = res.Dropped
	a.res.Corrected = res.Corrected
	for _, d := range res.Dropped {
		a.res.Errors = append(a.res.Errors, "dropped comment: "+d.Reason)
	}
	if len(res.Dropped) > 0 {
		p.logger.Warn("dropped comments outside the diff", "count", len(res.Dropped))
	}

	body := a.draft.Body
	if a.draft.Render != nil {
		body = a.draft.Render(res)
	}
	a.res.Body = body

	verdict := a.draft.Verdict
	if verdict == "" {
		verdict = core.NeutralVerdict
	}

	head, tail := Split(res.Comments, p.cfg.MaxInlineComments)
	a.sub = Submission{
		CommitID: a.draft.CommitID,
		Body:     body,
		Verdict:  verdict,
		Comments: head,
	}
	a.tail = tail
	return StateSubmitWithComments
}

func (p *Publisher) submitWithComments(ctx context.Context, a *attempt) State {
	id, err := p.api.CreateReview(ctx, a.sub)
	if err == nil {
		a.recordReview(id)
		a.res.InlineComments = len(a.sub.Comments)
		a.res.Outcome = OutcomeReviewWithComments
		a.res.Success = true
		a.res.Message = fmt.Sprintf("Review posted with %d inline comments", len(a.sub.Comments))
		if len(a.tail) > 0 {
			return StatePostOverflow
		}
		return StateDone
	}

	switch Classify(err) {
	case RejectionSelfReview:
		if a.downgraded || a.sub.Verdict == core.NeutralVerdict {
			a.fail("review rejected on own pull request with neutral verdict", err)
			return StateDone
		}
		p.logger.Warn("verdict not allowed on own pull request, downgrading",
			"verdict", a.sub.Verdict, "to", core.NeutralVerdict)
		a.downgrade()
		return StateSubmitWithComments

	case RejectionInvalidLine:
		a.submitErr = err
		// Dropping comments would resend the identical request.
		if len(a.sub.Comments) == 0 {
			p.logger.Warn("review without comments rejected, falling back to a thread comment", "error", err)
			return StateFallbackComment
		}
		p.logger.Warn("inline comments rejected, retrying without them",
			"comments", len(a.sub.Comments), "error", err)
		a.sub.Comments = nil
		a.tail = nil
		return StateSubmitNoComments

	default:
		a.fail("failed to submit review", err)
		return StateDone
	}
}

func (p *Publisher) postOverflow(ctx context.Context, a *attempt) State {
	for i, c := range a.tail {
		if err := p.limiter.Wait(ctx); err != nil {
			remaining := len(a.tail) - i
			a.res.OverflowFailed += remaining
			a.res.Errors = append(a.res.Errors,
				fmt.Sprintf("%d overflow comments not posted: %v", remaining, err))
			p.logger.Warn("overflow posting interrupted", "remaining", remaining, "error", err)
			break
		}
		if _, err := p.api.CreateSingleComment(ctx, a.sub.CommitID, c); err != nil {
			a.res.OverflowFailed++
			a.res.Errors = append(a.res.Errors,
				fmt.Sprintf("overflow comment %s: %v", c.Location(), err))
			p.logger.Warn("failed to post overflow comment", "location", c.Location(), "error", err)
			continue
		}
		a.res.OverflowPosted++
	}
	if a.res.OverflowFailed > 0 {
		a.res.Message = fmt.Sprintf("Review posted; %d of %d overflow comments failed",
			a.res.OverflowFailed, len(a.tail))
	}
	return StateDone
}

func (p *Publisher) submitNoComments(ctx context.Context, a *attempt) State {
	id, err := p.api.CreateReview(ctx, a.sub)
	if err == nil {
		a.recordReview(id)
		a.res.Outcome = OutcomeReviewWithoutComments
		a.res.Success = true
		a.res.DropReason = DropReasonInlineRejected
		a.res.Message = "Review posted without inline comments"
		a.res.Errors = append(a.res.Errors, DropReasonInlineRejected+": "+a.submitErr.Error())
		return StateDone
	}

	if a.noCommRetry {
		a.fail("failed to submit review with neutral verdict", a.submitErr, err)
		return StateDone
	}

	if Classify(err) == RejectionSelfReview {
		if a.sub.Verdict == core.NeutralVerdict {
			a.fail("review rejected on own pull request with neutral verdict", a.submitErr, err)
			return StateDone
		}
		p.logger.Warn("verdict not allowed on own pull request, retrying once as neutral",
			"verdict", a.sub.Verdict)
		a.downgrade()
		a.noCommRetry = true
		return StateSubmitNoComments
	}

	p.logger.Warn("review without comments rejected, falling back to a thread comment", "error", err)
	a.submitErr = err
	return StateFallbackComment
}

func (p *Publisher) fallbackComment(ctx context.Context, a *attempt) State {
	_, err := p.api.CreateThreadComment(ctx, a.sub.Body)
	if err != nil {
		a.fail("failed to post review and fallback comment", a.submitErr, err)
		return StateDone
	}
	a.res.Outcome = OutcomeFallbackComment
	a.res.Success = true
	a.res.ReviewID = nil
	a.res.Message = "Review posted as a conversation comment"
	a.res.Errors = append(a.res.Errors, "review submission rejected: "+a.submitErr.Error())
	return StateDone
}

func (a *attempt) recordReview(id int64) {
	a.res.ReviewID = &id
	a.res.Verdict = a.sub.Verdict
}

// downgrade lowers the submitted verdict; Result.Verdict follows only once a
// review is accepted.
func (a *attempt) downgrade() {
	a.sub.Verdict = core.NeutralVerdict
	a.downgraded = true
}

func (a *attempt) fail(msg string, errs ...error) {
	a.res.Outcome = OutcomeFailure
	a.res.Success = false
	a.res.ReviewID = nil
	a.res.Message = msg
	for _, err := range errs {
		if err != nil {
			a.res.Errors = append(a.res.Errors, err.Error())
		}
	}
	if len(errs) > 0 && errs[len(errs)-1] != nil {
		a.res.Message = msg + ": " + errs[len(errs)-1].Error()
	}
}
