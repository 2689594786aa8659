package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRole(t *testing.T) {
	cases := map[string]Role{
		"therapist": RoleTherapist,
		"user":      RoleUser,
		"":          RoleUser,
		"admin":     RoleUser,
		"Therapist": RoleUser,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeRole(in), "input %q", in)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail("A@B.com"))
	assert.Equal(t, "x@y.com", NormalizeEmail("  X@Y.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Jane Doe", User{FirstName: "Jane", LastName: "Doe"}.FullName())
	assert.Equal(t, "Jane", User{FirstName: "Jane"}.FullName())
	assert.Equal(t, "Doe", User{LastName: "Doe"}.FullName())
	assert.Equal(t, "", User{}.FullName())
}

func TestUserJSONHidesPasswordMaterial(t *testing.T) {
	u := User{
		Email:        "a@b.com",
		Role:         RoleUser,
		PasswordHash: "deadbeef",
		PasswordSalt: "cafebabe",
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	raw, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "deadbeef")
	assert.NotContains(t, string(raw), "cafebabe")
	assert.NotContains(t, string(raw), "password")
}

func TestAccountView(t *testing.T) {
	u := User{Email: "a@b.com", FirstName: "Jane", LastName: "Doe", Role: RoleTherapist, PasswordHash: "h"}
	assert.Equal(t, Account{
		Email:     "a@b.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      RoleTherapist,
		FullName:  "Jane Doe",
	}, u.Account())
}
