package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shoefit/shoefit-server/internal/http/response"
)

// EnvelopeVersion is the envelope format version sent as "v".
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in the standard
// envelope: {"v", "success", "data"} or {"v", "success", "error", "code",
// "details"}.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		return errorEnvelope(v), nil
	}
	return response.Envelope{V: EnvelopeVersion, Success: true, Data: v}, nil
}

func errorEnvelope(v any) response.Envelope {
	env := response.Envelope{V: EnvelopeVersion}

	var apiErr *APIError
	switch e := v.(type) {
	case *APIError:
		apiErr = e
	case error:
		if !errors.As(e, &apiErr) {
			env.Error = e.Error()
			return env
		}
	default:
		env.Data = v
		return env
	}

	env.Error = apiErr.Message
	env.Code = apiErr.Code
	env.Details = apiErr.Details
	return env
}
