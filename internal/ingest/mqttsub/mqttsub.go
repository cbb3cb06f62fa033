// internal/ingest/mqttsub/mqttsub.go
package mqttsub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tamzrod/infohud/internal/flash"
	"github.com/tamzrod/infohud/internal/ingest"
)

// Config selects the broker and topic to subscribe to.
type Config struct {
	Broker   string // tcp://host:1883
	ClientID string
	Topic    string
	QoS      byte
	Username string
	Password string
	Timeout  time.Duration
}

// Subscriber enqueues every JSON payload published on the topic.
type Subscriber struct {
	cfg     Config
	queue   ingest.Enqueuer
	decoder ingest.Decoder
	log     *slog.Logger
}

func New(cfg Config, q ingest.Enqueuer, d ingest.Decoder, log *slog.Logger) (*Subscriber, error) {
	if cfg.Broker == "" || cfg.Topic == "" {
		return nil, errors.New("mqttsub: broker and topic required")
	}
	if q == nil {
		return nil, errors.New("mqttsub: queue required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Subscriber{cfg: cfg, queue: q, decoder: d, log: log}, nil
}

// Run connects, subscribes on every (re)connect and blocks until ctx is
// done. Only the initial connect error is returned.
func (s *Subscriber) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.cfg.Broker).
		SetClientID(s.cfg.ClientID).
		SetUsername(s.cfg.Username).
		SetPassword(s.cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(s.cfg.Timeout).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			s.log.Warn("mqttsub: connection lost", "error", err)
		})

	client := mqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(s.cfg.Timeout) {
		return fmt.Errorf("mqttsub: connect %s: timeout", s.cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqttsub: connect %s: %w", s.cfg.Broker, err)
	}

	<-ctx.Done()
	client.Disconnect(250)
	return nil
}

func (s *Subscriber) onConnect(c mqtt.Client) {
	tok := c.Subscribe(s.cfg.Topic, s.cfg.QoS, func(_ mqtt.Client, m mqtt.Message) {
		s.handle(m.Topic(), m.Payload())
	})
	if !tok.WaitTimeout(s.cfg.Timeout) || tok.Error() != nil {
		s.log.Error("mqttsub: subscribe failed", "topic", s.cfg.Topic, "error", tok.Error())
		return
	}
	s.log.Info("mqttsub: subscribed", "broker", s.cfg.Broker, "topic", s.cfg.Topic)
}

// handle decodes and enqueues one publish. Bad payloads are logged and dropped.
func (s *Subscriber) handle(topic string, payload []byte) {
	m, err := s.decoder.Decode(payload, flash.OriginMQTT)
	if err != nil {
		s.log.Warn("mqttsub: rejected payload", "topic", topic, "error", err)
		return
	}
	if err := s.queue.Enqueue(m); err != nil {
		s.log.Warn("mqttsub: enqueue failed", "flash_id", m.ID, "error", err)
		return
	}
	s.log.Info("mqttsub: flash accepted", "flash_id", m.ID, "priority", m.Priority, "topic", topic)
}
