package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// LinksTable is the record store table holding all short link entities.
const LinksTable = "links"

var ErrLinkNotFound = errors.New("link not found")
var ErrVersionConflict = errors.New("link version conflict")

var vanityPattern = regexp.MustCompile(`^[0-9a-zA-Z-_]+$`)
var urlPattern = regexp.MustCompile(`(?i)^http[s]?://[0-9a-zA-Z]+.*`)

// Link is one short link record. PartitionKey and RowKey address it in the
// record store: the row key is the lowercase vanity, the partition key its
// first character. Schedules are decoded once when the record is loaded,
// SchedulesRaw keeps the stored JSON for round-tripping.
type Link struct {
	PartitionKey string     `json:"partitionKey"`
	RowKey       string     `json:"rowKey"`
	Vanity       string     `json:"vanity"`
	Url          string     `json:"url"`
	Title        string     `json:"title"`
	Clicks       int        `json:"clicks"`
	IsArchived   bool       `json:"isArchived"`
	OwnerUpn     string     `json:"ownerUpn"`
	SchedulesRaw string     `json:"schedulesRaw,omitempty"`
	Schedules    []Schedule `json:"schedules,omitempty"`
	ETag         string     `json:"etag,omitempty"`
	Timestamp    time.Time  `json:"timestamp,omitempty"`
}

func NewLink(longUrl string, vanity string, title string, schedules []Schedule, ownerUpn string) (*Link, error) {
	vanity = strings.TrimSpace(vanity)
	if vanity == "" {
		return nil, errors.New("vanity cannot be empty")
	}

	link := &Link{
		PartitionKey: PartitionOf(vanity),
		RowKey:       strings.ToLower(vanity),
		Vanity:       vanity,
		Url:          strings.TrimSpace(longUrl),
		Title:        strings.TrimSpace(title),
		OwnerUpn:     strings.ToLower(strings.TrimSpace(ownerUpn)),
		Schedules:    schedules,
	}

	if !link.Validate() {
		return nil, fmt.Errorf("invalid link: vanity %q url %q", vanity, longUrl)
	}

	if len(schedules) > 0 {
		raw, err := json.Marshal(schedules)
		if err != nil {
			return nil, err
		}
		link.SchedulesRaw = string(raw)
	}
	return link, nil
}

// PartitionOf returns the record store partition for a vanity code.
func PartitionOf(code string) string {
	code = strings.ToLower(code)
	if code == "" {
		return ""
	}
	return code[:1]
}

// Validate checks the invariants the management API enforces on creation:
// an absolute http(s) destination and a [0-9A-Za-z_-]+ vanity.
func (l *Link) Validate() bool {
	if strings.TrimSpace(l.Url) == "" || !urlPattern.MatchString(l.Url) {
		return false
	}
	if strings.TrimSpace(l.Vanity) == "" || !vanityPattern.MatchString(l.Vanity) {
		return false
	}
	return true
}

// DecodeSchedules parses the stored JSON array of schedule rules.
func DecodeSchedules(raw string) ([]Schedule, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var schedules []Schedule
	if err := json.Unmarshal([]byte(raw), &schedules); err != nil {
		return nil, fmt.Errorf("cannot decode schedules: %w", err)
	}
	return schedules, nil
}
