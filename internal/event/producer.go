package event

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"
)

const EventGameFinished = "game_finished"

// GameFinished is published once per game, keyed by game id.
type GameFinished struct {
	Event           string  `json:"event"`
	GameID          string  `json:"gameId"`
	Difficulty      string  `json:"difficulty"`
	Winner          string  `json:"winner"` // "human", "bot" or "draw"
	Moves           int     `json:"moves"`
	DurationSeconds float64 `json:"durationSeconds"`
}

type ProducerConfig struct {
	Brokers  []string
	Topic    string
	User     string
	Password string
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	// SASL/SCRAM over TLS for hosted brokers
	if cfg.User != "" {
		config.Net.SASL.Enable = true
		config.Net.SASL.User = cfg.User
		config.Net.SASL.Password = cfg.Password
		config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		config.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &scramClient{HashGeneratorFcn: sha256Generator}
		}
		config.Net.TLS.Enable = true
		config.Net.TLS.Config = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	p, err := sarama.NewSyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "game-events"
	}
	return &Producer{producer: p, topic: topic}, nil
}

func (p *Producer) PublishGameFinished(ctx context.Context, e GameFinished) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Event == "" {
		e.Event = EventGameFinished
	}

	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.GameID),
		Value: sarama.ByteEncoder(val),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send event for game %s: %w", e.GameID, err)
	}

	log.Debug().
		Str("component", "kafka").
		Str("game_id", e.GameID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("game finished event sent")
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
