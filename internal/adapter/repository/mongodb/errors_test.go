package mongodb

import (
	"context"
	"errors"
	"testing"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMapError(t *testing.T) {
	duplicate := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no documents", mongo.ErrNoDocuments, domain.ErrNotFound},
		{"duplicate key", duplicate, domain.ErrAlreadyExists},
		{"deadline", context.DeadlineExceeded, domain.ErrTransient},
		{"other", errors.New("boom"), domain.ErrRepository},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "thing")
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), "thing")
		})
	}
	assert.NoError(t, mapError(nil, "thing"))
}
