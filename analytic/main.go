package main

import (
	"encoding/json"
	"time"

	"github.com/thgossler/MyAzUrlShortener/analytic/model"
	"github.com/thgossler/MyAzUrlShortener/analytic/repo"
	"github.com/thgossler/MyAzUrlShortener/shared"
	"go.uber.org/zap"
)

var logger *shared.Logger
var rabbitmq *shared.RabbitMQ
var clickRepo *repo.ClickEventRepo
var cfg *shared.Config

func init() {
	logger = shared.NewLogger("analytic.log", 3, 1024, "info", "analytic")
	logger.Init()

	cfg = shared.LoadConfig()
}

// clickSink receives decoded click events, normally the postgres-backed repo.
type clickSink interface {
	Add(event *model.ClickEvent) error
}

func newClickHandler(events clickSink) func([]byte) error {
	return func(msg []byte) error {
		var click shared.ClickMessage
		if err := json.Unmarshal(msg, &click); err != nil {
			// An undecodable payload never gets better. Requeueing it
			// would bounce it between workers forever, so ack and drop.
			logger.Error("Dropping undecodable click message", zap.Error(err))
			return nil
		}

		logger.Info("Click message", zap.String("id", click.Id), zap.String("code", click.Code), zap.String("clickedAt", click.ClickDatetime))

		return events.Add(&model.ClickEvent{
			ID:            click.Id,
			Code:          click.Code,
			ClickDatetime: click.ClickDatetime,
		})
	}
}

func main() {
	// Init rabbitmq
	rabbitmq = shared.NewRabbitMQ("")
	if err := rabbitmq.Connect(1 * time.Second); err != nil {
		logger.Error("Cannot connect to rabbitmq", zap.Error(err))
	}
	defer rabbitmq.Close()

	// Init repo
	clickRepo = repo.NewClickEventRepo("")
	clickRepo.DB.Migrate(&model.ClickEvent{})
	defer clickRepo.Close()

	logger.Info("Init done!!!")

	if err := rabbitmq.Consume(cfg.ClickQueue, newClickHandler(clickRepo), 9); err != nil {
		logger.Error("Consumer stopped", zap.Error(err))
	}
}
