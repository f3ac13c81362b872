package handler

import (
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

const (
	// DataStarAcceptHeader is sent by DataStar for every backend action.
	DataStarAcceptHeader = "text/event-stream"
	// DataStarQueryParam carries signals on GET actions.
	DataStarQueryParam = "datastar"
)

// PatchPrepend inserts toasts ahead of the ones already shown.
const PatchPrepend = datastar.ElementPatchModePrepend

// IsDataStar reports whether r was issued by the DataStar client and expects
// an SSE answer instead of a full page.
func IsDataStar(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), DataStarAcceptHeader) {
		return true
	}
	return r.URL.Query().Has(DataStarQueryParam)
}
