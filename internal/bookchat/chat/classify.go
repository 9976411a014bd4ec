package chat

import (
	"errors"
	"net/http"

	"github.com/longkey1/bookchat/internal/bookchat/api"
)

// Messages shown to the user in place of raw errors
const (
	UnreachableMessage = "Unable to connect to the AI service."
	EndpointMessage    = "The AI service endpoint is not available. Please check if the backend is properly configured."
	ServerErrorMessage = "The AI service encountered an error. Please try again or contact support."
	GenericMessage     = "Sorry, I encountered an error processing your request. Please try again."
)

// Classify maps a failed exchange to the text of the system message shown for it
func Classify(err error) string {
	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return UnreachableMessage
	}

	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return EndpointMessage
		case http.StatusInternalServerError:
			return ServerErrorMessage
		}
	}

	return GenericMessage
}
