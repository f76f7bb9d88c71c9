package kafka

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// EventTypeHeader — заголовок сообщения с типом события.
const EventTypeHeader = "event_type"

const (
	writeTimeout = 10 * time.Second
	dialTimeout  = 5 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer синхронно пишет события категорий в один топик.
type Producer struct {
	writer messageWriter
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) (*Producer, error) {
	const op = "kafka.NewProducer"

	if len(cfg.Brokers) == 0 {
		return nil, e.Wrap(op+": KAFKA_BROKERS", e.ErrIncorrectEnvVariable)
	}
	if cfg.Topic == "" {
		return nil, e.Wrap(op+": KAFKA_TOPIC", e.ErrIncorrectEnvVariable)
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: false,
	}

	return newProducer(writer, logger, cfg), nil
}

func newProducer(writer messageWriter, logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}
}

// WriteRawMessage отправляет событие в топик. Ключом сообщения служит ID категории,
// поэтому события одной категории попадают в одну партицию и сохраняют порядок.
func (p *Producer) WriteRawMessage(ctx context.Context, req *usecase.WriteRawMessageReq) error {
	const op = "Producer.WriteRawMessage"

	if err := p.writer.WriteMessages(ctx, toKafkaMessage(req)); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// EnsureTopic создаёт топик, если его нет. Топики создаются только через брокер-контроллер.
func (p *Producer) EnsureTopic(ctx context.Context) error {
	const op = "Producer.EnsureTopic"

	dialer := &kafka.Dialer{Timeout: dialTimeout}

	conn, err := dialer.DialContext(ctx, p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(op, err)
	}
	defer conn.Close()
	setDeadline(ctx, conn)

	if partitions, err := conn.ReadPartitions(p.cfg.Topic); err == nil && len(partitions) > 0 {
		p.logger.Debugf("kafka topic %s exists with %d partitions", p.cfg.Topic, len(partitions))
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return e.Wrap(op, err)
	}

	controllerAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	controllerConn, err := dialer.DialContext(ctx, p.cfg.NetworkMode, controllerAddr)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer controllerConn.Close()
	setDeadline(ctx, controllerConn)

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             p.cfg.Topic,
		NumPartitions:     p.cfg.Partitions,
		ReplicationFactor: p.cfg.ReplicationFactor,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return e.Wrap(op+": "+p.cfg.Topic, err)
	}

	p.logger.Infof("kafka topic %s is ready", p.cfg.Topic)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func setDeadline(ctx context.Context, conn *kafka.Conn) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
}

func toKafkaMessage(req *usecase.WriteRawMessageReq) kafka.Message {
	msg := kafka.Message{
		Key:   []byte(req.Key),
		Value: req.Payload,
	}

	if req.EventType != "" {
		msg.Headers = []kafka.Header{{Key: EventTypeHeader, Value: []byte(req.EventType)}}
	}

	return msg
}
