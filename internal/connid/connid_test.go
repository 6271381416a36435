package connid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/juanmilkah/volatix/internal/connid"
)

func TestNewGeneratesUniqueIDs(t *testing.T) {
	a := connid.New()
	b := connid.New()

	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a.String())
}
