package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActor(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, SystemActor, Actor(ctx))
	assert.Equal(t, SystemActor, Actor(ctx, "  "))

	authed := WithUserID(ctx, "user-7")
	assert.Equal(t, "user-7", Actor(authed))
	assert.Equal(t, "storekeeper", Actor(authed, "", "storekeeper"))
}
