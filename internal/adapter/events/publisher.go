// Package events publishes area lifecycle events to NATS for downstream
// consumers (push notifications, analytics). Publishes are best-effort.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"waypost/internal/domain/area"
)

// Publisher emits area lifecycle events on the event bus.
type Publisher struct {
	conn    *nats.Conn
	subject string
	log     *zap.Logger
}

// NewPublisher creates a new lifecycle event publisher
func NewPublisher(conn *nats.Conn, subject string, log *zap.Logger) *Publisher {
	return &Publisher{
		conn:    conn,
		subject: subject,
		log:     log,
	}
}

type lifecycleEvent struct {
	Event      string    `json:"event"`
	AreaType   area.Type `json:"areaType"`
	AreaID     string    `json:"areaId"`
	FromUserID string    `json:"fromUserId"`
	Region     string    `json:"region"`
	IsPublic   bool      `json:"isPublic"`
}

// Publish emits one event on <subject>.<areaType>.<event>. Failures are
// logged and dropped; the bus is never allowed to fail a mutation.
func (p *Publisher) Publish(event string, a *area.Area) {
	payload := lifecycleEvent{
		Event:      event,
		AreaType:   a.Type,
		AreaID:     a.ID,
		FromUserID: a.FromUserID,
		Region:     a.Region,
		IsPublic:   a.IsPublic,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.log.Warn("failed to marshal lifecycle event", zap.Error(err))
		return
	}

	topic := fmt.Sprintf("%s.%s.%s", p.subject, a.Type, event)
	if err := p.conn.Publish(topic, data); err != nil {
		p.log.Warn("failed to publish lifecycle event",
			zap.String("topic", topic),
			zap.String("areaId", a.ID),
			zap.Error(err))
	}
}
