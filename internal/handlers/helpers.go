package handlers

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/pmsworkflow/pms-api/internal/dto"
	apierrors "github.com/pmsworkflow/pms-api/internal/errors"
	"github.com/pmsworkflow/pms-api/internal/repository"
	"github.com/pmsworkflow/pms-api/internal/utils"
)

// respondResult writes a data-access result as the response envelope
func respondResult[D any](c *gin.Context, res repository.Result[D], message string, shape func(D) any) {
	if !res.OK() {
		apierrors.Respond(c, res.StatusCode, res.Message)
		return
	}
	c.JSON(res.StatusCode, dto.FromResult(res, message, shape))
}

func respondList[E any](c *gin.Context, res repository.Result[[]E], message string) {
	if !res.OK() {
		apierrors.Respond(c, res.StatusCode, res.Message)
		return
	}
	c.JSON(res.StatusCode, dto.List(res.StatusCode, res.Data, message))
}

// listFilters turns the query string into equality filters, skipping
// pagination keys. Repeated keys use their first value.
func listFilters(c *gin.Context) map[string]string {
	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if slices.Contains(utils.PaginationQueryKeys, key) || len(values) == 0 {
			continue
		}
		filters[key] = values[0]
	}
	return filters
}

// patchRequest is a typed partial-update body. changes returns the columns
// whose fields were set.
type patchRequest interface {
	changes() map[string]any
}

// bindPatch validates a partial update body against req and returns the
// column changes it carries. JSON null is accepted only for the nullable
// columns, where it clears the value. Keys req does not declare are passed
// on so the repository can reject them.
func bindPatch(c *gin.Context, req patchRequest, nullable ...string) (map[string]any, bool) {
	var present map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&present, binding.JSON); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return nil, false
	}
	if len(present) == 0 {
		apierrors.BadRequest(c, "No fields to update")
		return nil, false
	}

	var nulls []apierrors.FieldError
	for key, raw := range present {
		if string(raw) == "null" && !slices.Contains(nullable, key) {
			nulls = append(nulls, apierrors.FieldError{Field: key, Message: "must not be null"})
		}
	}
	if len(nulls) > 0 {
		slices.SortFunc(nulls, func(a, b apierrors.FieldError) int { return strings.Compare(a.Field, b.Field) })
		apierrors.BadRequestWithDetails(c, "Validation failed", nulls)
		return nil, false
	}

	if err := c.ShouldBindBodyWith(req, binding.JSON); err != nil {
		apierrors.ValidationFailed(c, err)
		return nil, false
	}

	changes := req.changes()
	fields := make(map[string]any, len(present))
	for key, raw := range present {
		switch v, ok := changes[key]; {
		case ok:
			fields[key] = v
		case string(raw) == "null":
			fields[key] = nil
		default:
			fields[key] = string(raw)
		}
	}
	return fields, true
}

// setIf records *v under key when the field was present in the body
func setIf[V any](changes map[string]any, key string, v *V) {
	if v != nil {
		changes[key] = *v
	}
}

func successMessage(message string) dto.Envelope {
	return dto.Success(http.StatusOK, nil, message)
}
