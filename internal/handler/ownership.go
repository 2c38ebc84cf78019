package handler

import (
	"net/http"
	"strconv"

	"github.com/Deepesh2575/Online-Banking-System/internal/auth"
)

func customerFromContext(r *http.Request) (int64, *AppError) {
	customerID, ok := auth.CustomerIDFromContext(r.Context())
	if !ok {
		return 0, ErrMissingToken
	}
	return customerID, nil
}

// accountIDFromPath reads {id}. Malformed ids look like missing accounts.
func accountIDFromPath(r *http.Request) (int64, *AppError) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrResourceNotFound
	}
	return id, nil
}
