package queue

// consumer.go contains the background consumer that listens to the
// auction.bid.placed queue and appends structured lines to logs/bids.log.
// It stands in for the browser-facing live feed in deployments without one
// and doubles as an audit trail of accepted bids.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const bidQueueName = "auction.bid.placed"

// StartBidConsumer connects to RabbitMQ, declares the auction.bid.placed
// queue (durable), and starts consuming.  It runs a reconnect loop with
// backoff and never returns under normal operation; processing errors are
// logged and the offending message rejected so the server keeps running.
func StartBidConsumer(brokerURL string, log *logrus.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL)
		if err != nil {
			log.WithError(err).Warnf("bid-consumer: dial failed; retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, log); err != nil {
			log.WithError(err).Warn("bid-consumer: consume loop ended; reconnecting")
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, log *logrus.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.WithError(err).Warn("bid-consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(bidQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(bidQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.WithError(err).Warn("bid-consumer: handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func handleMessage(body []byte) error {
	var ev BidPlacedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "bids.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open bids.log: %w", err)
	}
	defer func() { _ = f.Close() }()

	line := fmt.Sprintf("%s bid item=%s title=%q bidder=%s amount=%.2f\n",
		ev.PlacedAt, ev.ItemID, ev.ItemTitle, ev.BidderID, ev.BidAmount)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append to bids.log: %w", err)
	}
	return nil
}
