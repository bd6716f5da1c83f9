package repository

import (
	"errors"
	"testing"

	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "missing document",
			err:  mongo.ErrNoDocuments,
			want: apperrors.ErrNotFound,
		},
		{
			name: "duplicate key",
			err:  mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}},
			want: apperrors.ErrConflict,
		},
		{
			name: "write conflict command error",
			err:  mongo.CommandError{Code: 112, Name: "WriteConflict"},
			want: apperrors.ErrConflict,
		},
		{
			name: "write conflict inside write exception",
			err:  mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 112}}},
			want: apperrors.ErrConflict,
		},
		{
			name: "anything else is a storage failure",
			err:  errors.New("connection reset"),
			want: apperrors.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapError("op failed", tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), "op failed")
		})
	}
}
