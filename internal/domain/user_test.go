package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleMember.Valid())
	assert.False(t, Role("owner").Valid())
	assert.False(t, Role("").Valid())
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleMember}).IsAdmin())
}

func TestUser_Name(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"display name", User{DisplayName: "Sam", Email: "sam@example.com"}, "Sam"},
		{"falls back to email", User{Email: "sam@example.com"}, "sam@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.Name())
		})
	}
}

func TestEntity_Timestamps(t *testing.T) {
	var e Entity
	e.InitTimestamps()
	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)

	time.Sleep(time.Millisecond)
	e.Touch()
	assert.True(t, e.UpdatedAt.After(e.CreatedAt))
}

func TestCatalogEntry_DisplayName(t *testing.T) {
	assert.Equal(t, "Nike Pegasus", (&CatalogEntry{Brand: "Nike", Model: "Pegasus"}).DisplayName())
	assert.Equal(t, "Nike", (&CatalogEntry{Brand: "Nike"}).DisplayName())
}

func TestCatalogEntry_HasImage(t *testing.T) {
	assert.False(t, (&CatalogEntry{}).HasImage())
	assert.True(t, (&CatalogEntry{ImageURL: "/api/v1/catalog/cat-1/image"}).HasImage())
}
