package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteBuilders(t *testing.T) {
	assert.Equal(t, "/datasets/abc", DatasetURL("abc"))
	assert.Equal(t, "/datasets/abc/charts/race", ChartURL("abc", "race", ""))
	assert.Equal(t, "/datasets/abc/charts/race?format=png", ChartURL("abc", "race", "png"))
	assert.Equal(t, "/d/Xy12", ShareURL("Xy12"))
}
