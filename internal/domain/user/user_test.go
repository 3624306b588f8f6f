package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() *UserProfile {
	return &UserProfile{
		Name:      "Ana",
		Age:       30,
		Gender:    "female",
		Email:     "ana@example.com",
		City:      "Lisbon",
		Interests: []string{"reading", "chess"},
	}
}

func TestInterestsRoundTrip(t *testing.T) {
	in := []string{"reading", "chess", "reading"}

	raw, err := EncodeInterests(in)
	require.NoError(t, err)
	out, err := DecodeInterests(raw)
	require.NoError(t, err)

	assert.Equal(t, in, out)
}

func TestEncodeNilInterests(t *testing.T) {
	raw, err := EncodeInterests(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	out, err := DecodeInterests(raw)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestDecodeInterestsRejectsGarbage(t *testing.T) {
	out, err := DecodeInterests("{not json")
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestUserProfileValidate(t *testing.T) {
	assert.NoError(t, validProfile().Validate())

	bad := validProfile()
	bad.Email = "not-an-email"
	assert.ErrorContains(t, bad.Validate(), ErrInvalidEmail.Error())

	missing := validProfile()
	missing.City = ""
	assert.ErrorContains(t, missing.Validate(), "city is required")
}

func TestPatchValidateAndApply(t *testing.T) {
	city := "Porto"
	interests := []string{"surf"}
	p := Patch{City: &city, Interests: &interests}
	require.NoError(t, p.Validate())

	u := validProfile()
	u.Version = 4
	p.Apply(u)

	assert.Equal(t, "Porto", u.City)
	assert.Equal(t, []string{"surf"}, u.Interests)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, 4, u.Version)

	bad := "nope"
	assert.ErrorIs(t, Patch{Email: &bad}.Validate(), ErrInvalidEmail)

	blank := "  "
	assert.ErrorContains(t, Patch{Name: &blank}.Validate(), "name must not be empty")
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(EventUpdated, 12, 3)

	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, int64(12), ev.UserID)
	assert.Equal(t, 3, ev.Version)
	assert.True(t, ev.Type.Valid())
	assert.False(t, EventType("user.renamed").Valid())
}

func TestPatchValidateReportsFirstBlankFieldInOrder(t *testing.T) {
	blank := "  "
	p := Patch{Name: &blank, Gender: &blank, City: &blank}

	for i := 0; i < 20; i++ {
		assert.EqualError(t, p.Validate(), "name must not be empty")
	}

	p.Name = nil
	assert.EqualError(t, p.Validate(), "gender must not be empty")
}
