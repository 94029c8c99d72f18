package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bond-registry/internal/domain"
	"bond-registry/internal/lei"
	"bond-registry/internal/service"
)

func (h *Handler) listBonds(c *gin.Context) {
	params := make(map[string]string)
	for _, field := range domain.BondFilterFields {
		if values, ok := c.GetQueryArray(string(field)); ok && len(values) > 0 {
			params[string(field)] = values[len(values)-1]
		}
	}

	bonds, err := h.bonds.List(c.Request.Context(), currentUser(c), params)
	if err != nil {
		h.writeBondError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.NewBondViews(bonds))
}

func (h *Handler) createBond(c *gin.Context) {
	var payload map[string]json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	bond, err := h.bonds.Create(c.Request.Context(), currentUser(c), payload)
	if err != nil {
		h.writeBondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service.NewBondView(*bond))
}

func (h *Handler) exportBonds(c *gin.Context) {
	export, err := h.exports.Export(c.Request.Context(), currentUser(c))
	if err != nil {
		h.writeBondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"location": export.Location,
		"url":      export.URL,
		"count":    export.Count,
	})
}

// writeBondError translates a service failure into exactly one response.
func (h *Handler) writeBondError(c *gin.Context, err error) {
	var (
		verr *service.ValidationError
		ferr *service.FilterError
	)
	switch {
	case errors.Is(err, service.ErrMissingLEI):
		c.JSON(http.StatusBadRequest, gin.H{"error": "LEI not specified"})
	case errors.Is(err, lei.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to connect to the legal entity registry"})
	case errors.Is(err, lei.ErrUnknownLEI):
		c.JSON(http.StatusBadRequest, gin.H{"error": "LEI is invalid or does not exist"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bond", "fields": verr.Fields})
	case errors.As(err, &ferr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query value(s) provided", "field": ferr.Field})
	case errors.Is(err, service.ErrExportDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.internalError(c, "bond request", err)
	}
}
