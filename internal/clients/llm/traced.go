package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Traced struct {
	next     Client
	provider string
}

func NewTraced(next Client, provider string) *Traced {
	if provider == "" {
		provider = ProviderDummy
	}
	return &Traced{next: next, provider: provider}
}

func (t *Traced) Generate(ctx context.Context, req Request) (string, error) {
	ctx, span := otel.Tracer("prompt-battle/llm").Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", t.provider),
		attribute.String("llm.model", req.Model),
		attribute.Int("llm.prompt_chars", len(req.System)+len(req.User)),
	)
	out, err := t.next.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.output_chars", len(out)))
	return out, nil
}
