package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/stockledger/internal/ledger"
	"github.com/mamadbah2/stockledger/internal/repository/blob"
	"github.com/mamadbah2/stockledger/internal/service/auth"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: no items", ledger.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: ISS-1", ledger.ErrNotFound), http.StatusNotFound},
		{ledger.ErrInvalidTransition, http.StatusConflict},
		{fmt.Errorf("%w: disk full", ledger.ErrPersistence), http.StatusInternalServerError},
		{fmt.Errorf("%w: s3 down", ledger.ErrDependency), http.StatusBadGateway},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrForbidden, http.StatusForbidden},
		{auth.ErrUserExists, http.StatusConflict},
		{auth.ErrMissingCredentials, http.StatusBadRequest},
		{fmt.Errorf("%w: x", blob.ErrNotFound), http.StatusNotFound},
		{blob.ErrInvalidName, http.StatusBadRequest},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
