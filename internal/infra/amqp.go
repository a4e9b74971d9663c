// README: RabbitMQ connection + channel initialization for status notifications.
package infra

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

type AMQP struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewAMQP(url string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &AMQP{Conn: conn, Ch: ch}, nil
}

func (a *AMQP) Close() {
	if a == nil {
		return
	}
	if a.Ch != nil {
		_ = a.Ch.Close()
	}
	if a.Conn != nil {
		_ = a.Conn.Close()
	}
}
