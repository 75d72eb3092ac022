package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/quizcraft/internal/store"
)

// LoggingProvider is a decorator that logs every LLM request and, when an
// event repository is configured, records it as an event row.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	logger    zerolog.Logger
}

// WithLogging wraps a Provider with structured logging and event recording.
// repo may be nil to disable event persistence.
func WithLogging(p Provider, repo store.EventRepo, logger zerolog.Logger) Provider {
	return &LoggingProvider{inner: p, eventRepo: repo, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latency := time.Since(start)

	evt := l.logger.Debug().
		Str("purpose", purpose).
		Str("model", l.inner.ModelID()).
		Dur("latency", latency)
	if err != nil {
		evt = l.logger.Warn().
			Str("purpose", purpose).
			Str("model", l.inner.ModelID()).
			Dur("latency", latency).
			Err(err)
	}
	if resp != nil {
		evt = evt.Int("input_tokens", resp.Usage.InputTokens).
			Int("output_tokens", resp.Usage.OutputTokens)
	}
	evt.Msg("llm request")

	if l.eventRepo != nil {
		data := store.LLMRequestEventData{
			Provider:    l.inner.ModelID(),
			Model:       l.inner.ModelID(),
			Purpose:     purpose,
			LatencyMs:   latency.Milliseconds(),
			Success:     err == nil,
			RequestBody: serializeRequest(req),
		}
		if resp != nil {
			data.InputTokens = resp.Usage.InputTokens
			data.OutputTokens = resp.Usage.OutputTokens
			data.Model = resp.Model
			data.ResponseBody = string(resp.Content)
		}
		if err != nil {
			data.ErrorMessage = err.Error()
		}

		// Record the event but don't fail the request if recording fails.
		if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
			l.logger.Warn().Err(logErr).Msg("failed to record LLM request event")
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
