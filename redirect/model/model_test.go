package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLinkNormalizesKeys(t *testing.T) {
	link, err := NewLink("https://example.com/page", "MyVanity", "My title", nil, "Owner@Example.COM")
	require.NoError(t, err)

	assert.Equal(t, "m", link.PartitionKey)
	assert.Equal(t, "myvanity", link.RowKey)
	assert.Equal(t, "MyVanity", link.Vanity)
	assert.Equal(t, "owner@example.com", link.OwnerUpn)
	assert.Equal(t, 0, link.Clicks)
	assert.False(t, link.IsArchived)
}

func TestNewLinkRejectsBadInput(t *testing.T) {
	_, err := NewLink("https://example.com", "", "t", nil, "")
	assert.Error(t, err)

	_, err = NewLink("https://example.com", "has space", "t", nil, "")
	assert.Error(t, err)

	_, err = NewLink("ftp://example.com", "ok-vanity_1", "t", nil, "")
	assert.Error(t, err)

	_, err = NewLink("", "ok", "t", nil, "")
	assert.Error(t, err)
}

func TestNewLinkSerializesSchedules(t *testing.T) {
	sched := Schedule{
		Start:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:             time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Cron:            "* * * * *",
		DurationMinutes: 1,
		AlternativeUrl:  "https://alt.com",
	}
	link, err := NewLink("https://example.com", "abc", "t", []Schedule{sched}, "")
	require.NoError(t, err)
	require.NotEmpty(t, link.SchedulesRaw)

	decoded, err := DecodeSchedules(link.SchedulesRaw)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "https://alt.com", decoded[0].AlternativeUrl)
	assert.Equal(t, 1, decoded[0].DurationMinutes)
}

func TestDecodeSchedulesStoredShape(t *testing.T) {
	raw := `[{"start":"2024-03-15T11:50:00Z","end":"2024-03-15T12:10:00Z","cron":"* * * * *","durationMinutes":1,"alternativeUrl":"https://alt.com"}]`
	schedules, err := DecodeSchedules(raw)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "https://alt.com", schedules[0].AlternativeUrl)
	assert.True(t, schedules[0].Start.Before(schedules[0].End))
}

func TestDecodeSchedulesEmptyAndMalformed(t *testing.T) {
	schedules, err := DecodeSchedules("")
	require.NoError(t, err)
	assert.Nil(t, schedules)

	_, err = DecodeSchedules("{not json")
	assert.Error(t, err)
}

func TestPartitionOf(t *testing.T) {
	assert.Equal(t, "a", PartitionOf("Abc"))
	assert.Equal(t, "9", PartitionOf("9lives"))
	assert.Equal(t, "", PartitionOf(""))
}
