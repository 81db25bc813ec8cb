package triage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sumire/triage/internal/domain"
	"github.com/sumire/triage/internal/logger"
)

// Messages surfaced to the user when a remote call fails. The underlying
// error is logged only.
const (
	MsgPredictionFailed   = "Prediction failed. Please check if the API server is running."
	MsgCreationFailed     = "Issue creation failed."
	MsgUnknownCreationErr = "Unknown error occurred"
)

// Predictor produces a triage for an issue.
type Predictor interface {
	Predict(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error)
}

// IssueCreator materializes a triage as an issue in an external tracker.
type IssueCreator interface {
	CreateIssue(ctx context.Context, req domain.CreationRequest) (*domain.CreationResult, error)
}

// Controller drives one triage session. It owns the WorkflowState, runs the
// remote calls requested by transitions in the background and feeds their
// outcome back as completion events. At most one call is in flight at a time.
type Controller struct {
	predictor Predictor
	creator   IssueCreator
	timeout   time.Duration

	mu      sync.Mutex
	state   WorkflowState
	pending chan struct{}
	touched time.Time
}

// NewController creates a Controller in the idle phase. A zero timeout
// leaves remote calls unbounded.
func NewController(predictor Predictor, creator IssueCreator, defaultProject string, timeout time.Duration) *Controller {
	return &Controller{
		predictor: predictor,
		creator:   creator,
		timeout:   timeout,
		state:     NewWorkflowState(defaultProject),
		touched:   time.Now(),
	}
}

// State returns a snapshot of the workflow state.
func (c *Controller) State() WorkflowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns the projection of the current state.
func (c *Controller) View() View {
	return Project(c.State())
}

// LastActivity returns the time of the last accepted event.
func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

// EditField updates one draft field. It reports false for unknown fields.
func (c *Controller) EditField(field domain.DraftField, value string) bool {
	return c.dispatch(context.Background(), EditField{Field: field, Value: value})
}

// SubmitPrediction starts a prediction for the current draft. It reports
// false, without side effects, when the action is disabled.
func (c *Controller) SubmitPrediction(ctx context.Context) bool {
	return c.dispatch(ctx, SubmitPrediction{})
}

// SubmitCreation starts issue creation for the current prediction. It
// reports false, without side effects, when the action is disabled.
func (c *Controller) SubmitCreation(ctx context.Context) bool {
	return c.dispatch(ctx, SubmitCreation{})
}

// Wait blocks until no remote call is in flight or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.pending
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) dispatch(ctx context.Context, ev Event) bool {
	c.mu.Lock()
	next, eff, ok := Transition(c.state, ev)
	if !ok {
		c.mu.Unlock()
		return false
	}
	c.state = next
	c.touched = time.Now()

	var done chan struct{}
	if eff != nil {
		done = make(chan struct{})
		c.pending = done
	}
	c.mu.Unlock()

	if eff != nil {
		// The call outlives the caller's context: user actions never cancel it.
		go c.run(context.WithoutCancel(ctx), eff, done)
	}
	return true
}

func (c *Controller) run(ctx context.Context, eff Effect, done chan struct{}) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var ev Event
	switch eff := eff.(type) {
	case PredictEffect:
		ev = c.predict(ctx, eff.Request)
	case CreateEffect:
		ev = c.create(ctx, eff.Request)
	}

	c.mu.Lock()
	if next, _, ok := Transition(c.state, ev); ok {
		c.state = next
		c.touched = time.Now()
	}
	if c.pending == done {
		c.pending = nil
	}
	c.mu.Unlock()
	close(done)
}

func (c *Controller) predict(ctx context.Context, req domain.PredictionRequest) (ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "prediction panicked", fmt.Errorf("%v", r))
			ev = PredictionFailed{Message: MsgPredictionFailed}
		}
	}()

	start := time.Now()
	result, err := c.predictor.Predict(ctx, req)
	if err == nil && result == nil {
		err = fmt.Errorf("empty prediction response")
	}
	if err != nil {
		logger.Error(ctx, "prediction failed", err,
			"project", req.Project,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return PredictionFailed{Message: MsgPredictionFailed}
	}

	logger.Info(ctx, "prediction completed",
		"project", req.Project,
		"category", result.Category,
		"severity", result.Severity,
		"model_version", result.ModelVersion,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return PredictionSucceeded{Result: result}
}

func (c *Controller) create(ctx context.Context, req domain.CreationRequest) (ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "issue creation panicked", fmt.Errorf("%v", r))
			ev = CreationFailed{Message: MsgCreationFailed}
		}
	}()

	start := time.Now()
	result, err := c.creator.CreateIssue(ctx, req)
	if err == nil && result == nil {
		err = fmt.Errorf("empty creation response")
	}
	if err != nil {
		logger.Error(ctx, "issue creation failed", err,
			"project", req.Project,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return CreationFailed{Message: MsgCreationFailed}
	}

	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = MsgUnknownCreationErr
		}
		logger.Warn(ctx, "issue creation rejected", "project", req.Project, "reason", msg)
		return CreationFailed{Message: msg}
	}

	logger.Info(ctx, "issue created",
		"project", req.Project,
		"issue_key", result.IssueKey,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return CreationSucceeded{Result: result}
}
