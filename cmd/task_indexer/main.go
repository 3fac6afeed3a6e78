package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-api/config"
	app "github.com/oksasatya/todo-api/internal/application"
	"github.com/oksasatya/todo-api/internal/infrastructure/search"
	"github.com/oksasatya/todo-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-indexer", cfg.Env)

	if !cfg.TaskEventsEnabled || !cfg.SearchEnabled {
		logger.Info("TASK_EVENTS_ENABLED and SEARCH_ENABLED must both be true; task indexer disabled")
		return
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("elasticsearch client: %v", err)
	}
	index := search.NewTaskIndex(es, cfg.ESTasksIndex)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := index.EnsureIndex(ctx); err != nil {
		log.Fatalf("ensure index %s: %v", cfg.ESTasksIndex, err)
	}

	conn, ch, err := helpers.DialRabbit(cfg.RabbitMQURL, cfg.RabbitMQTaskQueue)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch between indexer replicas
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQTaskQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			handle(ctx, logger, index, msg)
		}
	}()

	logger.WithFields(logrus.Fields{"queue": cfg.RabbitMQTaskQueue, "index": cfg.ESTasksIndex}).Info("task indexer listening")
	<-ctx.Done()
	logger.Info("shutting down...")
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// handle acks applied events, drops undecodable or unknown ones and requeues
// events the index rejected.
func handle(ctx context.Context, logger *logrus.Logger, index app.TaskIndexer, msg amqp.Delivery) {
	var ev app.TaskEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		logger.WithError(err).Warn("bad task event")
		_ = msg.Nack(false, false)
		return
	}
	entry := logger.WithFields(logrus.Fields{"type": ev.Type, "task_id": ev.Task.ID})

	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	err := app.ApplyTaskEvent(c, index, ev)
	switch {
	case err == nil:
		entry.Debug("task event applied")
		_ = msg.Ack(false)
	case errors.Is(err, app.ErrUnknownEvent):
		entry.Warn("unknown task event dropped")
		_ = msg.Nack(false, false)
	default:
		entry.WithError(err).Warn("apply task event failed; requeueing")
		_ = msg.Nack(false, true)
	}
}
