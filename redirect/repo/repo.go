package repo

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/thgossler/MyAzUrlShortener/redirect/model"
	"github.com/thgossler/MyAzUrlShortener/shared"
)

// LinkRepo implements the resolver's LinkStore: link entities live in the
// table-style record store, click events go out through the queue.
type LinkRepo struct {
	table      *shared.TableClient
	queue      *shared.RabbitMQ
	clickQueue string
}

func NewLinkRepo(table *shared.TableClient, queue *shared.RabbitMQ, clickQueue string) *LinkRepo {
	return &LinkRepo{
		table:      table,
		queue:      queue,
		clickQueue: clickQueue,
	}
}

func (r *LinkRepo) FetchByCode(ctx context.Context, code string) (*model.Link, error) {
	fields, err := r.table.GetEntity(ctx, model.LinksTable, model.PartitionOf(code), strings.ToLower(code))
	if errors.Is(err, shared.ErrEntityNotFound) {
		return nil, model.ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return linkFromFields(fields)
}

func (r *LinkRepo) Upsert(ctx context.Context, link *model.Link) (*model.Link, error) {
	if link.RowKey == "" {
		link.RowKey = strings.ToLower(link.Vanity)
		link.PartitionKey = model.PartitionOf(link.Vanity)
	}

	etag, err := r.table.UpsertEntity(ctx, model.LinksTable, link.PartitionKey, link.RowKey, linkToFields(link), link.ETag)
	if errors.Is(err, shared.ErrPreconditionFailed) {
		return nil, model.ErrVersionConflict
	}
	if err != nil {
		return nil, err
	}

	saved := *link
	saved.ETag = etag
	return &saved, nil
}

// AppendClickEvent publishes one click to the analytic queue. Callers treat
// it as fire-and-forget; an error only means a lost click.
func (r *LinkRepo) AppendClickEvent(code string, clickedAt time.Time) error {
	return r.queue.Publish(r.clickQueue, shared.ClickMessage{
		Id:            shortuuid.New(),
		Code:          strings.ToLower(code),
		ClickDatetime: clickedAt.Format(shared.ClickTimeLayout),
	})
}

func linkToFields(link *model.Link) map[string]interface{} {
	return map[string]interface{}{
		"vanity":     link.Vanity,
		"url":        link.Url,
		"title":      link.Title,
		"clicks":     strconv.Itoa(link.Clicks),
		"isArchived": strconv.FormatBool(link.IsArchived),
		"ownerUpn":   link.OwnerUpn,
		"schedules":  link.SchedulesRaw,
	}
}

func linkFromFields(fields map[string]string) (*model.Link, error) {
	clicks, _ := strconv.Atoi(fields["clicks"])
	archived, _ := strconv.ParseBool(fields["isArchived"])

	link := &model.Link{
		Vanity:       fields["vanity"],
		RowKey:       strings.ToLower(fields["vanity"]),
		PartitionKey: model.PartitionOf(fields["vanity"]),
		Url:          fields["url"],
		Title:        fields["title"],
		Clicks:       clicks,
		IsArchived:   archived,
		OwnerUpn:     fields["ownerUpn"],
		SchedulesRaw: fields["schedules"],
		ETag:         fields["etag"],
	}

	// Decode once at record load, the resolver never touches the raw JSON.
	schedules, err := model.DecodeSchedules(link.SchedulesRaw)
	if err != nil {
		return nil, err
	}
	link.Schedules = schedules
	return link, nil
}
