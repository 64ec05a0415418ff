package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactoryReturnsSingletonRepositories(t *testing.T) {
	f := NewFactory(nil)

	first := f.GetDatasetRepository()
	second := f.GetDatasetRepository()

	assert.NotNil(t, first)
	assert.Same(t, f.GetRepositories(), f.GetRepositories())
	assert.Equal(t, first, second)
}
