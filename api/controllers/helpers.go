package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/avolkov/orderflow-backend/api/middleware"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
)

func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid subject")
	}
	return id, nil
}
