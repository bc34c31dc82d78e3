package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apierrors "github.com/diogo/aichat/internal/errors"
	"github.com/diogo/aichat/internal/models"
)

// Generator produces a reply for a single prompt
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Reply is the outcome of one dispatch
type Reply struct {
	Message models.Message
	// Err is set when Message is the error fallback
	Err       error
	RequestID string
	Latency   time.Duration
}

// Dispatcher turns a prompt into exactly one assistant message
type Dispatcher struct {
	gen     Generator
	logger  zerolog.Logger
	timeout time.Duration
	model   string
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithLogger sets the diagnostic logger
func WithLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithTimeout bounds each request; zero means no bound
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithModelName tags log entries with the model in use
func WithModelName(name string) DispatcherOption {
	return func(d *Dispatcher) {
		d.model = name
	}
}

// NewDispatcher creates a Dispatcher around gen
func NewDispatcher(gen Generator, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		gen:    gen,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends prompt and maps the outcome onto an assistant message.
// It always returns a Reply, even if the generator panics, so the caller can
// always settle its busy state.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string) (reply Reply) {
	reply.RequestID = uuid.NewString()
	start := time.Now()
	log := d.logger.With().
		Str("request_id", reply.RequestID).
		Str("model", d.model).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			reply.Err = fmt.Errorf("generator panicked: %v", r)
			reply.Message = models.AssistantMessage(models.ErrorReply)
			log.Error().Err(reply.Err).Msg("dispatch failed")
		}
		reply.Latency = time.Since(start)
	}()

	if d.gen == nil {
		reply.Err = errors.New("no generator configured")
		reply.Message = models.AssistantMessage(models.ErrorReply)
		log.Error().Err(reply.Err).Msg("dispatch failed")
		return reply
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	log.Debug().Int("prompt_len", len(prompt)).Msg("dispatching")

	text, err := d.gen.GenerateContent(ctx, prompt)
	switch {
	case errors.Is(err, apierrors.ErrNoContent):
		log.Debug().Msg("response carried no text")
		reply.Message = models.AssistantMessage(models.NoResponseReply)
	case err != nil:
		reply.Err = err
		reply.Message = models.AssistantMessage(models.ErrorReply)
		log.Error().
			Err(err).
			Int("status", apierrors.GetHTTPStatus(err)).
			Dur("latency", time.Since(start)).
			Msg("error fetching response")
	case text == "":
		reply.Message = models.AssistantMessage(models.NoResponseReply)
	default:
		reply.Message = models.AssistantMessage(text)
		log.Info().Dur("latency", time.Since(start)).Msg("response received")
	}

	return reply
}

// Exchange runs one full submission cycle synchronously: submit the input,
// dispatch it and settle the reply. Rejected submissions return s unchanged.
func (d *Dispatcher) Exchange(ctx context.Context, s State) (State, Reply, error) {
	next, prompt, err := s.Submit()
	if err != nil {
		return s, Reply{}, err
	}

	reply := d.Dispatch(ctx, prompt)
	return next.Settle(reply.Message), reply, nil
}
