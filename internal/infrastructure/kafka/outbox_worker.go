package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/internal/repository/pgdb"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/jitter"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	baseBackoff      = 500 * time.Millisecond
	waitNotifyPeriod = 30 * time.Second
	reconnectDelay   = 2 * time.Second
)

// OutboxWorker публикует события из outbox в Kafka.
// Очередь разбирается при старте, по NOTIFY pgdb.OutboxNotifyChannel и по таймеру PollInterval.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	cfg       *cfg.OutboxCfg
	dbConnStr string

	wake     chan struct{}
	stop     chan struct{}
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
	backoff  *jitter.Backoff
}

// NewOutboxWorker создаёт воркер. Пустой dbConnStr отключает LISTEN, остаётся только опрос по таймеру.
func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	cfg *cfg.OutboxCfg,
	dbConnStr string,
) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		cfg:       cfg,
		dbConnStr: dbConnStr,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		backoff:   jitter.NewBackoff(min(baseBackoff, cfg.MaxBackoff), cfg.MaxBackoff, jitter.DefaultJitter),
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	if w.dbConnStr == "" {
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(ctx)
	}()
}

// Stop останавливает воркер и ждёт завершения горутин. Повторный вызов безопасен.
func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		if w.cancel != nil {
			w.cancel()
		}
	})
	w.wg.Wait()
}

// Notify будит воркер вне расписания.
func (w *OutboxWorker) Notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *OutboxWorker) run(ctx context.Context) {
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Worker stopped by context cancellation")
			return
		case <-w.stop:
			w.logger.Infof("Worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		case <-w.wake:
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

// drain обрабатывает пачки, пока очередь не опустеет.
// После неудачной пачки воркер выжидает экспоненциальную паузу с джиттером.
func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		n, retry, err := w.processBatch(ctx)
		if err != nil || retry > 0 {
			if err != nil {
				w.logger.Warnf("Batch processing failed: %v", err)
			}
			w.sleep(ctx, w.backoff.Next())
			return
		}

		w.backoff.Reset()
		if n < w.cfg.BatchSize {
			return
		}
	}
}

// processBatch возвращает число взятых событий и число событий, отложенных до повтора.
// После неудачи остальные события того же агрегата в пачке возвращаются в очередь
// без публикации: порядок событий одной категории в партиции сохраняется.
func (w *OutboxWorker) processBatch(ctx context.Context) (int, int, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.cfg.BatchSize)
	if err != nil {
		return 0, 0, err
	}

	blocked := make(map[uuid.UUID]struct{})
	retry := 0
	for _, event := range events {
		if _, ok := blocked[event.AggregateID]; ok {
			if err := w.repo.ReturnToPending(ctx, event.ID); err != nil {
				w.logger.Warnf("return to pending failed: %v", err)
			}
			continue
		}

		err := w.processEvent(ctx, event)
		if err == nil {
			if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
				w.logger.Warnf("mark processed failed: %v", err)
			}
			continue
		}

		if w.exhausted(event, err) {
			w.logger.Errorf(err, "Outbox event %s moved to %s after %d attempts", event.EventID, usecase.Failed, event.Attempts+1)
			if err := w.repo.MarkAsDead(ctx, event.ID); err != nil {
				w.logger.Warnf("mark dead failed: %v", err)
			}
			continue
		}

		retry++
		blocked[event.AggregateID] = struct{}{}
		w.logger.Warnf("publish event %s failed: %v", event.EventID, err)
		if err := w.repo.MarkAsFailed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark failed failed: %v", err)
		}
	}

	return len(events), retry, nil
}

// exhausted сообщает, что событие больше не стоит публиковать.
func (w *OutboxWorker) exhausted(event *usecase.OutboxEvent, err error) bool {
	if errors.Is(err, e.ErrEmptyOutboxPayload) {
		return true
	}
	return w.cfg.MaxAttempts > 0 && event.Attempts+1 >= w.cfg.MaxAttempts
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	if len(event.Payload) == 0 {
		return e.ErrEmptyOutboxPayload
	}

	req := usecase.NewWriteRawMessageReq(event.AggregateID.String(), string(event.EventType), event.Payload)
	if err := w.producer.WriteRawMessage(ctx, req); err != nil {
		if isRetryableError(err) {
			return e.Wrap("Temporary Kafka failure, will retry", err)
		}
		return e.Wrap("Kafka failure", err)
	}

	return nil
}

func (w *OutboxWorker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-w.stop:
	case <-timer.C:
	}
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	for {
		if err := w.listen(ctx); err != nil {
			w.logger.Warnf("Outbox LISTEN failed: %v. Reconnecting...", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// listen держит соединение с LISTEN и пересылает уведомления в w.wake.
// Возвращает nil при остановке воркера.
func (w *OutboxWorker) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, w.dbConnStr)
	if err != nil {
		return e.Wrap("failed to connect for LISTEN", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgdb.OutboxNotifyChannel); err != nil {
		return e.Wrap("failed to LISTEN", err)
	}
	w.logger.Infof("Subscribed to '%s' channel", pgdb.OutboxNotifyChannel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stop:
			return nil
		default:
		}

		waitCtx, cancel := context.WithTimeout(ctx, waitNotifyPeriod)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}

		if notif != nil && notif.Channel == pgdb.OutboxNotifyChannel {
			w.Notify()
		}
	}
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
