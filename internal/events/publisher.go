package events

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"mall-service/internal/models"
)

// Subjects for downstream consumers (notifications, analytics).
const (
	SubjectOrderCreated     = "mall.order.created"
	SubjectPromotionDecided = "mall.promotion.decided"
)

// OrderCreatedEvent is published once per order after a checkout commits.
type OrderCreatedEvent struct {
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	StoreID    string    `json:"store_id"`
	CustomerID string    `json:"customer_id"`
	Total      string    `json:"total"`
	Currency   string    `json:"currency"`
	Timestamp  time.Time `json:"timestamp"`
}

// PromotionDecidedEvent is published after an admin moderation decision.
type PromotionDecidedEvent struct {
	EventType   string    `json:"event_type"`
	PromotionID string    `json:"promotion_id"`
	StoreID     string    `json:"store_id"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher sends domain events over NATS. Publishing is fire-and-forget:
// checkout and moderation never fail because the broker is down.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Logger
}

// NewPublisher connects to NATS. An empty URL disables publishing.
func NewPublisher(url string, logger *logrus.Logger) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}

	conn, err := nats.Connect(url,
		nats.Name("mall-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, logger: logger}, nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}

// OrderCreated publishes an order.created event.
func (p *Publisher) OrderCreated(order *models.Order) {
	if p == nil {
		return
	}
	p.publish(SubjectOrderCreated, OrderCreatedEvent{
		EventType:  SubjectOrderCreated,
		OrderID:    formatID(order.ID),
		StoreID:    formatID(order.StoreID),
		CustomerID: formatID(order.CustomerID),
		Total:      order.Total.String(),
		Currency:   string(order.Currency),
		Timestamp:  time.Now(),
	})
}

// PromotionDecided publishes a promotion.decided event.
func (p *Publisher) PromotionDecided(promo *models.Promotion) {
	if p == nil {
		return
	}
	p.publish(SubjectPromotionDecided, PromotionDecidedEvent{
		EventType:   SubjectPromotionDecided,
		PromotionID: formatID(promo.ID),
		StoreID:     formatID(promo.StoreID),
		Status:      string(promo.Status),
		Timestamp:   time.Now(),
	})
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (p *Publisher) publish(subject string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithField("subject", subject).WithError(err).Warn("Event marshal failed")
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.WithField("subject", subject).WithError(err).Warn("Event publish failed")
	}
}
