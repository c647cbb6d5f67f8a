package events

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	appctx "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Emitter publishes diagnostic and outcome events. Diagnostic emission is
// fire-and-forget: a publish failure is logged and never fails the caller.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

func (e *Emitter) base(ctx context.Context, eventType EventType) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		TenantID:      appctx.GetTenantID(ctx),
		Timestamp:     time.Now().UTC(),
		CorrelationID: appctx.GetRequestID(ctx),
	}
}

func (e *Emitter) headers(event BaseEvent) map[string]string {
	return map[string]string{
		"event_type":     string(event.EventType),
		"tenant_id":      event.TenantID,
		"schema_version": event.SchemaVersion,
	}
}

func (e *Emitter) publish(ctx context.Context, key string, event BaseEvent, payload any) {
	if e.producer == nil {
		return
	}
	if err := e.producer.Publish(ctx, key, payload, e.headers(event)); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": event.EventType,
		}).Warn("Failed to emit event")
	}
}

// HeaderFuzzyResolved emits a diagnostic for a fuzzy alias match
func (e *Emitter) HeaderFuzzyResolved(ctx context.Context, entityType, rawHeader, canonicalName string, score float64) {
	event := HeaderResolutionEvent{
		BaseEvent:     e.base(ctx, EventTypeHeaderFuzzyResolved),
		EntityType:    entityType,
		RawHeader:     rawHeader,
		CanonicalName: canonicalName,
		Score:         score,
	}
	e.publish(ctx, entityType+":"+rawHeader, event.BaseEvent, event)
}

// HeaderUnresolved emits a diagnostic for a header no alias could claim
func (e *Emitter) HeaderUnresolved(ctx context.Context, entityType, rawHeader string) {
	event := HeaderResolutionEvent{
		BaseEvent:  e.base(ctx, EventTypeHeaderUnresolved),
		EntityType: entityType,
		RawHeader:  rawHeader,
	}
	e.publish(ctx, entityType+":"+rawHeader, event.BaseEvent, event)
}

// SettingsRowSkipped emits a diagnostic for a row the compiler skipped
func (e *Emitter) SettingsRowSkipped(ctx context.Context, row models.SettingsRow, reason string) {
	event := SettingsRowSkippedEvent{
		BaseEvent: e.base(ctx, EventTypeSettingsRowSkipped),
		RowIndex:  row.RowIndex,
		Category:  row.Category,
		Key:       row.Key,
		Reason:    reason,
	}
	e.publish(ctx, row.Category+":"+row.Key, event.BaseEvent, event)
}

// EmitProspectMatched emits the resolution outcome for an activity record
func (e *Emitter) EmitProspectMatched(ctx context.Context, recordRef string, result models.MatchResult) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitProspectMatched")
	defer span.End()

	event := ProspectMatchedEvent{
		BaseEvent:        e.base(ctx, EventTypeProspectMatched),
		RecordRef:        recordRef,
		MatchedRecordRef: result.MatchedRecordRef,
		MatchType:        string(result.MatchType),
		Confidence:       result.Confidence,
	}

	if e.producer == nil {
		return nil
	}
	if err := e.producer.Publish(ctx, recordRef, event, e.headers(event.BaseEvent)); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit prospect.matched event")
		return err
	}
	return nil
}

// EmitProspectScored emits the scoring outcome after write-back
func (e *Emitter) EmitProspectScored(ctx context.Context, recordRef string, result models.ScoreResult) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitProspectScored")
	defer span.End()

	event := ProspectScoredEvent{
		BaseEvent:     e.base(ctx, EventTypeProspectScored),
		RecordRef:     recordRef,
		IndustryScore: result.IndustryScore,
		UrgencyScore:  result.UrgencyScore,
		UrgencyBand:   result.UrgencyBand,
		PriorityScore: result.PriorityScore,
		TotalScore:    result.TotalScore,
		IsStale:       result.IsStale,
		Stage:         result.Stage,
		Status:        result.Status,
		NextActionAt:  result.NextActionAt,
	}

	if e.producer == nil {
		return nil
	}
	if err := e.producer.Publish(ctx, recordRef, event, e.headers(event.BaseEvent)); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit prospect.scored event")
		return err
	}
	return nil
}
