package archive

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the durable queue the Engine publishes completed matches
// to; a background Consumer drains it into the MySQL sink.
const QueueName = "mafia.archive.games"

// QueueSink publishes GameData onto a durable RabbitMQ queue and returns
// immediately — the actual MySQL write happens on Consumer, decoupling
// persistence latency from the Engine's release of the room to IDLE.
type QueueSink struct {
	ch     *amqp.Channel
	logger *slog.Logger
}

func DialQueueSink(url string, logger *slog.Logger) (*QueueSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &QueueSink{ch: ch, logger: logger}, nil
}

func (s *QueueSink) Archive(data GameData) {
	body, err := json.Marshal(wireGameData(data))
	if err != nil {
		s.logger.Error("archive: marshal game data", "room", data.RoomID, "err", err)
		return
	}
	err = s.ch.PublishWithContext(context.Background(), "", QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		// Archival failure runs in the background; logged, never delays
		// the Engine's release of the room to IDLE (§7).
		s.logger.Error("archive: publish failed", "room", data.RoomID, "err", err)
	}
}

// Consumer drains QueueName and writes each message into the MySQL
// sink's tables. Run it in its own goroutine from main.
func Consumer(url string, mysql *MySQLSink, logger *slog.Logger) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return err
	}
	msgs, err := ch.Consume(QueueName, "mafia-archiver", false, false, false, false, nil)
	if err != nil {
		return err
	}
	for msg := range msgs {
		var w wireGame
		if err := json.Unmarshal(msg.Body, &w); err != nil {
			logger.Error("archive: bad message, dropping", "err", err)
			msg.Nack(false, false)
			continue
		}
		if err := mysql.writeWire(w); err != nil {
			logger.Error("archive: mysql write failed", "err", err)
			msg.Nack(false, true)
			continue
		}
		msg.Ack(false)
	}
	return nil
}

type wireGame struct {
	RoomID     int               `json:"room_id"`
	Title      string            `json:"title"`
	Private    bool              `json:"private"`
	Transcript []json.RawMessage `json:"transcript"`
}

func wireGameData(data GameData) wireGame {
	rows := make([]json.RawMessage, 0, len(data.Transcript))
	for _, r := range data.Transcript {
		b, err := json.Marshal(r)
		if err != nil {
			continue
		}
		rows = append(rows, b)
	}
	return wireGame{RoomID: data.RoomID, Title: data.Title, Private: data.Private, Transcript: rows}
}
