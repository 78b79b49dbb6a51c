package shared

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQ struct {
	connectionString string
	connection       *amqp.Connection
	ctx              context.Context
}

func getRabbitConnectionString() string {
	rabbitHost := os.Getenv("RABBITMQ_HOST")
	rabbitPort := os.Getenv("RABBITMQ_PORT")

	return fmt.Sprintf("amqp://guest:guest@%v:%v/", rabbitHost, rabbitPort)
}

func NewRabbitMQ(connectionString string) *RabbitMQ {
	if connectionString == "" {
		connectionString = getRabbitConnectionString()
	}
	return &RabbitMQ{
		connectionString: connectionString,
		ctx:              context.Background(),
	}
}

// Connect dials the broker, retrying with the given delay between attempts
// so services can start before the broker is ready.
func (r *RabbitMQ) Connect(retryDelay time.Duration) error {
	var err error
	for attempt := 0; attempt < 10; attempt++ {
		var connection *amqp.Connection
		connection, err = amqp.Dial(r.connectionString)
		if err == nil {
			r.connection = connection
			return nil
		}
		time.Sleep(retryDelay)
	}
	return err
}

func (r *RabbitMQ) Close() error {
	if r.connection == nil {
		return nil
	}
	return r.connection.Close()
}

func (r *RabbitMQ) Publish(queue string, message interface{}) error {
	if r.connection == nil || r.connection.IsClosed() {
		if err := r.Connect(0); err != nil {
			return err
		}
	}

	channel, err := r.connection.Channel()
	if err != nil {
		return err
	}
	defer channel.Close()

	_, err = channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return channel.PublishWithContext(r.ctx, "", queue, true, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (r *RabbitMQ) Consume(queue string, callback func([]byte) error, numberOfWorker int) error {
	if r.connection == nil || r.connection.IsClosed() {
		if err := r.Connect(0); err != nil {
			return err
		}
	}

	channel, err := r.connection.Channel()
	if err != nil {
		return err
	}
	defer channel.Close()

	_, err = channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	msgs, err := channel.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	for i := 0; i < numberOfWorker; i++ {
		go func() {
			for d := range msgs {
				if err := callback(d.Body); err != nil {
					d.Nack(false, true)
					continue
				}
				d.Ack(false)
			}
			done <- struct{}{}
		}()
	}

	// Block until the delivery channel closes (connection loss or shutdown).
	for i := 0; i < numberOfWorker; i++ {
		<-done
	}
	return nil
}
