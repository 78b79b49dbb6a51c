package repo

import (
	"github.com/thgossler/MyAzUrlShortener/analytic/model"
	"github.com/thgossler/MyAzUrlShortener/shared/db"
)

type ClickEventRepo struct {
	ConnectionString string
	DB               *db.PostgresDB
}

func NewClickEventRepo(connectionString string) *ClickEventRepo {
	pg := db.NewPostgresDB(connectionString)
	pg.Init()
	return &ClickEventRepo{
		ConnectionString: connectionString,
		DB:               pg,
	}
}

func (repo *ClickEventRepo) Close() error {
	return repo.DB.Close()
}

func (repo *ClickEventRepo) Add(event *model.ClickEvent) error {
	return repo.DB.Create(event)
}

// CountByCode reports how many clicks a code has accumulated, used by the
// stats side to derive per-day counts.
func (repo *ClickEventRepo) CountByCode(code string) (int64, error) {
	return repo.DB.Count(&model.ClickEvent{}, "code = ?", code)
}
