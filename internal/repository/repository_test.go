package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewTemplateRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewTemplateRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewInstanceRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewInstanceRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}
