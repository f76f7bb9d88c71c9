package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validName        = "Category Name"
	validDescription = "Category Description"
)

func strPtr(s string) *string {
	return &s
}

func newValidCategory(t *testing.T) *Category {
	t.Helper()
	c, err := NewCategory(validName, strPtr(validDescription))
	require.NoError(t, err)
	return c
}

func requireValidationError(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)

	var vErr *EntityValidationError
	require.True(t, errors.As(err, &vErr), "expected EntityValidationError, got %T", err)
	assert.Equal(t, message, vErr.Error())
	assert.ErrorIs(t, err, e.ErrEntityValidation)
}

func TestNewCategory(t *testing.T) {
	before := time.Now()
	c, err := NewCategory(validName, strPtr(validDescription))
	after := time.Now()

	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, validName, c.Name())
	assert.Equal(t, validDescription, c.Description())
	assert.NotEqual(t, uuid.Nil, c.ID())
	assert.False(t, c.CreatedAt().IsZero())
	assert.WithinRange(t, c.CreatedAt(), before, after)
	assert.True(t, c.IsActive())
}

func TestNewCategory_WithIsActive(t *testing.T) {
	for _, isActive := range []bool{true, false} {
		t.Run(map[bool]string{true: "active", false: "inactive"}[isActive], func(t *testing.T) {
			before := time.Now()
			c, err := NewCategory(validName, strPtr(validDescription), WithIsActive(isActive))
			after := time.Now()

			require.NoError(t, err)
			assert.Equal(t, validName, c.Name())
			assert.Equal(t, validDescription, c.Description())
			assert.NotEqual(t, uuid.Nil, c.ID())
			assert.WithinRange(t, c.CreatedAt(), before, after)
			assert.Equal(t, isActive, c.IsActive())
		})
	}
}

func TestNewCategory_UniqueIDs(t *testing.T) {
	seen := make(map[uuid.UUID]struct{})
	for i := 0; i < 100; i++ {
		c := newValidCategory(t)
		_, dup := seen[c.ID()]
		require.False(t, dup, "duplicate id %s", c.ID())
		seen[c.ID()] = struct{}{}
	}
}

func TestNewCategory_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		catName     string
		description *string
		wantMsg     string
	}{
		{name: "empty name", catName: "", description: strPtr(validDescription), wantMsg: MsgNameRequired},
		{name: "whitespace name", catName: "     ", description: strPtr(validDescription), wantMsg: MsgNameRequired},
		{name: "tabs and newlines", catName: "\t\n ", description: strPtr(validDescription), wantMsg: MsgNameRequired},
		{name: "one digit", catName: "1", description: strPtr(validDescription), wantMsg: MsgNameTooShort},
		{name: "one letter", catName: "a", description: strPtr(validDescription), wantMsg: MsgNameTooShort},
		{name: "two letters", catName: "ab", description: strPtr(validDescription), wantMsg: MsgNameTooShort},
		{name: "256 characters", catName: strings.Repeat("a", 256), description: strPtr(validDescription), wantMsg: MsgNameTooLong},
		{name: "nil description", catName: validName, description: nil, wantMsg: MsgDescriptionRequired},
		{name: "10001 characters description", catName: validName, description: strPtr(strings.Repeat("a", 10_001)), wantMsg: MsgDescriptionTooLong},
		{name: "name checked before description", catName: "", description: nil, wantMsg: MsgNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCategory(tt.catName, tt.description)
			assert.Nil(t, c)
			requireValidationError(t, err, tt.wantMsg)
		})
	}
}

func TestNewCategory_Boundaries(t *testing.T) {
	tests := []struct {
		name        string
		catName     string
		description string
	}{
		{name: "3 characters name", catName: "abc", description: validDescription},
		{name: "255 characters name", catName: strings.Repeat("a", 255), description: validDescription},
		{name: "10000 characters description", catName: validName, description: strings.Repeat("a", 10_000)},
		{name: "empty description", catName: validName, description: ""},
		{name: "whitespace description", catName: validName, description: "   "},
		{name: "multibyte name counted in characters", catName: strings.Repeat("я", 255), description: validDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCategory(tt.catName, strPtr(tt.description))
			require.NoError(t, err)
			assert.Equal(t, tt.catName, c.Name())
			assert.Equal(t, tt.description, c.Description())
		})
	}
}

func TestCategory_Activate(t *testing.T) {
	for _, initial := range []bool{true, false} {
		c, err := NewCategory(validName, strPtr(validDescription), WithIsActive(initial))
		require.NoError(t, err)

		require.NoError(t, c.Activate())
		assert.True(t, c.IsActive())
	}
}

func TestCategory_Deactivate(t *testing.T) {
	for _, initial := range []bool{true, false} {
		c, err := NewCategory(validName, strPtr(validDescription), WithIsActive(initial))
		require.NoError(t, err)

		require.NoError(t, c.Deactivate())
		assert.False(t, c.IsActive())
	}
}

func TestCategory_Update(t *testing.T) {
	c := newValidCategory(t)
	id, createdAt := c.ID(), c.CreatedAt()

	require.NoError(t, c.Update("New Name", strPtr("New Description")))

	assert.Equal(t, "New Name", c.Name())
	assert.Equal(t, "New Description", c.Description())
	assert.Equal(t, id, c.ID())
	assert.Equal(t, createdAt, c.CreatedAt())
	assert.True(t, c.IsActive())
}

func TestCategory_UpdateOnlyName(t *testing.T) {
	c := newValidCategory(t)
	currentDescription := c.Description()

	require.NoError(t, c.Update("New Name", nil))

	assert.Equal(t, "New Name", c.Name())
	assert.Equal(t, currentDescription, c.Description())
}

func TestCategory_UpdateValidationErrorsKeepState(t *testing.T) {
	tests := []struct {
		name        string
		newName     string
		description *string
		wantMsg     string
	}{
		{name: "empty name", newName: "", description: strPtr("New Description"), wantMsg: MsgNameRequired},
		{name: "short name", newName: "ab", description: nil, wantMsg: MsgNameTooShort},
		{name: "long name", newName: strings.Repeat("a", 256), description: nil, wantMsg: MsgNameTooLong},
		{name: "long description", newName: "New Name", description: strPtr(strings.Repeat("a", 10_001)), wantMsg: MsgDescriptionTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newValidCategory(t)

			err := c.Update(tt.newName, tt.description)

			requireValidationError(t, err, tt.wantMsg)
			assert.Equal(t, validName, c.Name())
			assert.Equal(t, validDescription, c.Description())
		})
	}
}

func TestCategory_MutatorsRevalidateRestoredState(t *testing.T) {
	c := RestoreCategory(uuid.New(), "ab", validDescription, false, time.Now())

	err := c.Activate()

	requireValidationError(t, err, MsgNameTooShort)
	assert.False(t, c.IsActive())
}

func TestRestoreCategory(t *testing.T) {
	id := uuid.New()
	createdAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	c := RestoreCategory(id, "Movies", "", false, createdAt)

	assert.Equal(t, id, c.ID())
	assert.Equal(t, "Movies", c.Name())
	assert.Equal(t, "", c.Description())
	assert.False(t, c.IsActive())
	assert.Equal(t, createdAt, c.CreatedAt())
}
