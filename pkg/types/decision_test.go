package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestrictiveness(t *testing.T) {
	assert.Greater(t, DecisionDeny.Restrictiveness(), DecisionAsk.Restrictiveness())
	assert.Greater(t, DecisionAsk.Restrictiveness(), DecisionAllow.Restrictiveness())
}

func TestMostRestrictive(t *testing.T) {
	assert.Equal(t, DecisionDeny, MostRestrictive(DecisionAsk, DecisionDeny))
	assert.Equal(t, DecisionDeny, MostRestrictive(DecisionDeny, DecisionAllow))
	assert.Equal(t, DecisionAsk, MostRestrictive(DecisionAllow, DecisionAsk))
	assert.Equal(t, DecisionAllow, MostRestrictive(DecisionAllow, DecisionAllow))
}
