package mongodb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/repositories"
)

func TestTranslate(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: duplicateKeyCode}}}

	assert.NoError(t, translate(nil, "op"))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments, "op"), repositories.ErrNotFound)
	assert.ErrorIs(t, translate(dup, "op"), repositories.ErrDuplicate)
	assert.ErrorIs(t, translate(context.DeadlineExceeded, "op"), models.ErrStoreUnavailable)
	assert.ErrorIs(t, translate(mongo.ErrClientDisconnected, "op"), models.ErrStoreUnavailable)

	other := errors.New("bad filter")
	assert.ErrorIs(t, translate(other, "op"), other)
}

func TestIgnoreDuplicates(t *testing.T) {
	allDup := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
		{WriteError: mongo.WriteError{Code: duplicateKeyCode}},
		{WriteError: mongo.WriteError{Code: duplicateKeyCode}},
	}}
	assert.NoError(t, ignoreDuplicates(allDup))

	mixed := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
		{WriteError: mongo.WriteError{Code: duplicateKeyCode}},
		{WriteError: mongo.WriteError{Code: 121}},
	}}
	assert.Error(t, ignoreDuplicates(mixed))

	single := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: duplicateKeyCode}}}
	assert.NoError(t, ignoreDuplicates(single))

	assert.NoError(t, ignoreDuplicates(nil))
}
