package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

const (
	// ChangesExchange получает события об изменениях, ключ маршрутизации — тип сущности.
	ChangesExchange = "ledger.changes"
	// RemindersExchange получает напоминания о задолженности.
	RemindersExchange = "ledger.reminders"
	// ReminderRoutingKey — ключ маршрутизации напоминаний.
	ReminderRoutingKey = "reminder"
	// ChangesTailQueue читает cmd/ledger-events.
	ChangesTailQueue = "ledger.changes.tail"
)

// QueueConfig описывает очередь и её привязку к точке обмена.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// ExchangeConfig описывает точку обмена и привязанные к ней очереди.
type ExchangeConfig struct {
	Name   string
	Kind   string
	Queues []QueueConfig
}

// LedgerTopology возвращает топологию, которую объявляют все сервисы реестра.
func LedgerTopology() []ExchangeConfig {
	return []ExchangeConfig{
		{
			Name: ChangesExchange,
			Kind: amqp.ExchangeTopic,
			Queues: []QueueConfig{
				{QueueName: ChangesTailQueue, RoutingKey: "#"},
			},
		},
		{
			Name: RemindersExchange,
			Kind: amqp.ExchangeDirect,
			Queues: []QueueConfig{
				{QueueName: "ledger.reminders", RoutingKey: ReminderRoutingKey},
			},
		},
	}
}

// SetupChannel открывает канал и идемпотентно объявляет точки обмена и очереди.
func SetupChannel(conn *amqp.Connection, topology []ExchangeConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	for _, ex := range topology {
		if err := ch.ExchangeDeclare(ex.Name, ex.Kind, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: failed to declare exchange %s: %w", op, ex.Name, err)
		}
		for _, q := range ex.Queues {
			if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
				_ = ch.Close()
				return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
			}
			if err := ch.QueueBind(q.QueueName, q.RoutingKey, ex.Name, false, nil); err != nil {
				_ = ch.Close()
				return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w",
					op, q.QueueName, q.RoutingKey, err)
			}
		}
	}
	return ch, nil
}
