package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/model"
)

// ShowingResolver looks up catalog details for the event payload.
type ShowingResolver interface {
	ResolveShowing(movieID, showtime string) (model.Showing, bool)
}

// Publisher publishes booking events to RabbitMQ.  Each publish dials its
// own connection; bookings are rare enough that pooling is not worth the
// reconnect handling.
type Publisher struct {
	url     string
	catalog ShowingResolver
	log     logrus.FieldLogger
	timeout time.Duration
}

// NewPublisher returns a publisher for the broker at url.
func NewPublisher(url string, catalog ShowingResolver, log logrus.FieldLogger) *Publisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Publisher{url: url, catalog: catalog, log: log, timeout: 5 * time.Second}
}

// NotifyBooking publishes b and logs any failure.  It never panics and
// never returns an error so it can run detached from the request.
func (p *Publisher) NotifyBooking(ctx context.Context, b model.Booking) {
	var showing model.Showing
	if p.catalog != nil {
		showing, _ = p.catalog.ResolveShowing(b.MovieID, b.Showtime)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.PublishBookingConfirmed(ctx, NewBookingConfirmedEvent(b, showing)); err != nil {
		p.log.WithError(err).WithField("booking", b.ID).Warn("rabbitmq: booking event not published")
	}
}

// PublishBookingConfirmed publishes event to the booking.confirmed queue.
// Messages are marked persistent.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		BookingQueueName, // name
		true,             // durable
		false,            // autoDelete
		false,            // exclusive
		false,            // noWait
		nil,              // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",               // default exchange
		BookingQueueName, // routing key = queue name
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			MessageId:    event.BookingID,
			Body:         body,
		},
	)
}
