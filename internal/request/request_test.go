package request

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"thrive-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsers(t *testing.T) {
	id := uuid.New()
	var (
		gotID     uuid.UUID
		gotFilter *uuid.UUID
		gotBool   *bool
		gotDate   *time.Time
		errs      []error
	)

	app := fiber.New()
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		var err error
		gotID, err = ParamID(c)
		errs = append(errs, err)
		gotFilter, err = QueryID(c, "owner_id")
		errs = append(errs, err)
		gotBool, err = QueryBool(c, "active")
		errs = append(errs, err)
		gotDate, err = QueryDate(c, "date", time.UTC)
		errs = append(errs, err)
		return nil
	})

	_, err := app.Test(httptest.NewRequest("GET", "/things/"+id.String()+"?owner_id="+id.String()+"&active=false&date=2024-03-09", nil))
	require.NoError(t, err)
	for _, e := range errs {
		require.NoError(t, e)
	}
	assert.Equal(t, id, gotID)
	require.NotNil(t, gotFilter)
	assert.Equal(t, id, *gotFilter)
	require.NotNil(t, gotBool)
	assert.False(t, *gotBool)
	require.NotNil(t, gotDate)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), *gotDate)

	errs = nil
	_, err = app.Test(httptest.NewRequest("GET", "/things/nope?owner_id=x&active=maybe&date=09/03/2024", nil))
	require.NoError(t, err)
	require.Len(t, errs, 4)
	for _, e := range errs {
		assert.True(t, apperr.Is(e, apperr.Validation))
	}

	errs = nil
	_, err = app.Test(httptest.NewRequest("GET", "/things/"+id.String(), nil))
	require.NoError(t, err)
	assert.Nil(t, gotFilter)
	assert.Nil(t, gotBool)
	assert.Nil(t, gotDate)
}

func TestOptionalID(t *testing.T) {
	id := uuid.New()
	var body struct {
		Kept    OptionalID `json:"kept"`
		Cleared OptionalID `json:"cleared"`
		Zero    OptionalID `json:"zero"`
		Moved   OptionalID `json:"moved"`
	}
	raw := `{"cleared": null, "zero": "00000000-0000-0000-0000-000000000000", "moved": "` + id.String() + `"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &body))

	assert.Nil(t, body.Kept.Patch())
	require.NotNil(t, body.Cleared.Patch())
	assert.Equal(t, uuid.Nil, *body.Cleared.Patch())
	require.NotNil(t, body.Zero.Patch())
	assert.Equal(t, uuid.Nil, *body.Zero.Patch())
	require.NotNil(t, body.Moved.Patch())
	assert.Equal(t, id, *body.Moved.Patch())

	assert.Error(t, json.Unmarshal([]byte(`{"moved": "nope"}`), &body))
}
