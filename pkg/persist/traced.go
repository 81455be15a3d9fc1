package persist

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/storectx/pkg/telemetry"
)

// TracedStorage wraps a Storage and records a span per call.
type TracedStorage struct {
	next   Storage
	tracer trace.Tracer
}

// Traced wraps s with OpenTelemetry spans. A nil tracer uses the global
// provider.
func Traced(s Storage, tracer trace.Tracer) *TracedStorage {
	if tracer == nil {
		tracer = telemetry.Tracer()
	}
	return &TracedStorage{next: s, tracer: tracer}
}

// Unwrap returns the wrapped storage.
func (t *TracedStorage) Unwrap() Storage {
	return t.next
}

func (t *TracedStorage) start(op, key string) trace.Span {
	_, span := t.tracer.Start(context.Background(), "persist."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("storectx.key", key)),
	)
	return span
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// GetItem implements Storage.
func (t *TracedStorage) GetItem(key string) (string, bool, error) {
	span := t.start("get", key)
	v, ok, err := t.next.GetItem(key)
	span.SetAttributes(attribute.Bool("storectx.found", ok))
	finish(span, err)
	return v, ok, err
}

// SetItem implements Storage.
func (t *TracedStorage) SetItem(key, value string) error {
	span := t.start("set", key)
	span.SetAttributes(attribute.Int("storectx.size", len(value)))
	err := t.next.SetItem(key, value)
	finish(span, err)
	return err
}

// RemoveItem implements Storage.
func (t *TracedStorage) RemoveItem(key string) error {
	span := t.start("remove", key)
	err := t.next.RemoveItem(key)
	finish(span, err)
	return err
}

// Keys implements Lister. It returns ErrNotListable when the wrapped
// storage is not a Lister.
func (t *TracedStorage) Keys() ([]string, error) {
	l, ok := t.next.(Lister)
	if !ok {
		return nil, ErrNotListable
	}
	span := t.start("keys", "")
	keys, err := l.Keys()
	finish(span, err)
	return keys, err
}
