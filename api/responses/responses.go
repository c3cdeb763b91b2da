package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/angelmondragon/shopfront-backend/pkg/types"
)

// Codes whose service message is safe to show the client. Everything else
// gets the catalog's generic text.
var clientFacing = map[pkgerrors.Code]bool{
	pkgerrors.CodeValidation:        true,
	pkgerrors.CodeUnauthorized:      true,
	pkgerrors.CodeForbidden:         true,
	pkgerrors.CodeNotFound:          true,
	pkgerrors.CodeConflict:          true,
	pkgerrors.CodeInsufficientStock: true,
	pkgerrors.CodeIdempotency:       true,
	pkgerrors.CodeRateLimit:         true,
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.Envelope[any]{Data: data})
}

// WriteError renders err as an error envelope and logs it, at error level
// for 5xx and warn otherwise.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	status, body := render(err)

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Diagnose(err).LogFields())
		if status >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, status, types.ErrorEnvelope{Error: body})
}

func render(err error) (int, types.ErrorBody) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	code := typed.Code()
	meta := pkgerrors.MetadataFor(code)

	body := types.ErrorBody{Code: string(code), Message: meta.PublicMessage}
	if msg := typed.Message(); msg != "" && clientFacing[code] {
		body.Message = msg
	}
	// dependency details name internal hosts and are never returned
	if meta.DetailsAllowed && code != pkgerrors.CodeDependency {
		body.Details = typed.Details()
	}
	return meta.HTTPStatus, body
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("response.encode_failed")
	}
}
