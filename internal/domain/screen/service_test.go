package screen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAvailability(t *testing.T) {
	valid := Availability{
		"1": {{Start: "09:00", End: "12:00"}, {Start: "13:00", End: "18:00"}},
		"6": {{Start: "00:00", End: "23:59"}},
	}
	assert.NoError(t, ValidateAvailability(valid))
	assert.NoError(t, ValidateAvailability(nil))
	assert.NoError(t, ValidateAvailability(Availability{}))
}

func TestValidateAvailabilityRejectsBadDays(t *testing.T) {
	for _, day := range []string{"7", "-1", "monday", ""} {
		av := Availability{day: {{Start: "09:00", End: "10:00"}}}
		assert.True(t, IsErrBadRequest(ValidateAvailability(av)), "day %q", day)
	}
}

func TestValidateAvailabilityRejectsBadTimes(t *testing.T) {
	cases := []TimeRange{
		{Start: "9:00", End: "10:00"},
		{Start: "09:00", End: "24:00"},
		{Start: "09:60", End: "10:00"},
		{Start: "0900", End: "1000"},
		{Start: "10:00", End: "10:00"},
		{Start: "11:00", End: "10:00"},
	}
	for _, tr := range cases {
		av := Availability{"0": {tr}}
		assert.True(t, IsErrBadRequest(ValidateAvailability(av)), "range %s-%s", tr.Start, tr.End)
	}
}

func TestValidateAvailabilityRejectsOverlapAndDisorder(t *testing.T) {
	overlap := Availability{"2": {
		{Start: "09:00", End: "12:00"},
		{Start: "11:00", End: "14:00"},
	}}
	assert.True(t, IsErrBadRequest(ValidateAvailability(overlap)))

	unsorted := Availability{"2": {
		{Start: "13:00", End: "14:00"},
		{Start: "09:00", End: "10:00"},
	}}
	assert.True(t, IsErrBadRequest(ValidateAvailability(unsorted)))

	touching := Availability{"2": {
		{Start: "09:00", End: "12:00"},
		{Start: "12:00", End: "14:00"},
	}}
	assert.NoError(t, ValidateAvailability(touching), "back-to-back ranges are fine")
}

// Validation failures return before the repository is touched, so a nil repo
// is safe here.
func TestCreateValidation(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner-1", CreateScreenInput{
		Name: "", DayPrice: 1000, Timezone: "America/New_York",
	})
	assert.True(t, IsErrBadRequest(err), "empty name")

	_, err = svc.Create(ctx, "owner-1", CreateScreenInput{
		Name: "Lobby Screen", DayPrice: 0, Timezone: "America/New_York",
	})
	assert.True(t, IsErrBadRequest(err), "zero price")

	_, err = svc.Create(ctx, "owner-1", CreateScreenInput{
		Name: "Lobby Screen", DayPrice: -100, Timezone: "America/New_York",
	})
	assert.True(t, IsErrBadRequest(err), "negative price")

	_, err = svc.Create(ctx, "owner-1", CreateScreenInput{
		Name: "Lobby Screen", DayPrice: 1000, Timezone: "Mars/Olympus_Mons",
	})
	assert.True(t, IsErrBadRequest(err), "bad timezone")

	_, err = svc.Create(ctx, "owner-1", CreateScreenInput{
		Name: "Lobby Screen", DayPrice: 1000, Timezone: "",
	})
	assert.True(t, IsErrBadRequest(err), "missing timezone")
}
