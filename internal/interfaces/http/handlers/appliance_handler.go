package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearthware/ovenlink/internal/application/dto"
	"github.com/hearthware/ovenlink/internal/application/service"
	"github.com/hearthware/ovenlink/internal/domain/models"
	"github.com/hearthware/ovenlink/pkg/constants"
	"github.com/hearthware/ovenlink/pkg/errors"
	"github.com/hearthware/ovenlink/pkg/logger"
)

// ApplianceHandler serves the pairing lifecycle and the per-appliance
// state/command surface.
type ApplianceHandler struct {
	registry *service.Registry
	factory  *service.SessionFactory
	log      logger.Logger
}

// NewApplianceHandler creates the appliance handler.
func NewApplianceHandler(registry *service.Registry, factory *service.SessionFactory, log logger.Logger) *ApplianceHandler {
	return &ApplianceHandler{registry: registry, factory: factory, log: log}
}

// Pair handles POST /api/v1/appliances. It runs the full session setup before
// registering anything, so a failed credential chain or channel connect never
// leaves a half-paired appliance behind.
func (h *ApplianceHandler) Pair(c *gin.Context) {
	var req dto.PairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.Wrap(err, errors.CodeInvalidRequest, "malformed pairing request"))
		return
	}
	if !req.HasCredentials() {
		h.fail(c, errors.New(errors.CodeInvalidRequest, "pairing needs a stored token or account login"))
		return
	}

	identity, err := models.NewApplianceIdentity(req.SAID, req.Model, req.Brand)
	if err != nil {
		h.fail(c, err)
		return
	}

	session := h.factory.New(identity, service.AccountLogin{
		Brand:    req.Brand,
		Username: req.Username,
		Password: req.Password,
	}, req.StoredCredential(), nil)

	if err := session.Start(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.registry.Add(session); err != nil {
		session.Close(c.Request.Context())
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessResponse(dto.NewApplianceResponse(identity), h.requestID(c)))
}

// Unpair handles DELETE /api/v1/appliances/:said.
func (h *ApplianceHandler) Unpair(c *gin.Context) {
	if err := h.registry.Remove(c.Request.Context(), c.Param("said")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(gin.H{"said": c.Param("said")}, h.requestID(c)))
}

// List handles GET /api/v1/appliances.
func (h *ApplianceHandler) List(c *gin.Context) {
	identities := h.registry.List()
	out := make([]dto.ApplianceResponse, 0, len(identities))
	for _, identity := range identities {
		out = append(out, dto.NewApplianceResponse(identity))
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(out, h.requestID(c)))
}

// State handles GET /api/v1/appliances/:said/state.
func (h *ApplianceHandler) State(c *gin.Context) {
	session, err := h.registry.Get(c.Param("said"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(session.Snapshot(), h.requestID(c)))
}

// StateStream handles GET /api/v1/appliances/:said/state/stream as a
// server-sent-events feed. Each merged update delivers the full snapshot.
func (h *ApplianceHandler) StateStream(c *gin.Context) {
	session, err := h.registry.Get(c.Param("said"))
	if err != nil {
		h.fail(c, err)
		return
	}

	updates, cancel := session.SubscribeState()
	defer cancel()

	// The current snapshot first, so a new observer never starts blind.
	c.SSEvent("state", session.Snapshot())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("state", snapshot)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// Favourites handles GET /api/v1/appliances/:said/favourites.
func (h *ApplianceHandler) Favourites(c *gin.Context) {
	session, err := h.registry.Get(c.Param("said"))
	if err != nil {
		h.fail(c, err)
		return
	}
	favourites, err := session.ListFavourites(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(dto.NewFavouriteResponses(favourites), h.requestID(c)))
}

// RefreshFavourites handles POST /api/v1/appliances/:said/favourites/refresh.
func (h *ApplianceHandler) RefreshFavourites(c *gin.Context) {
	session, err := h.registry.Get(c.Param("said"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := session.RefreshFavourites(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(gin.H{"refreshed": true}, h.requestID(c)))
}

// RunFavourite handles POST /api/v1/appliances/:said/favourites/:id/run.
func (h *ApplianceHandler) RunFavourite(c *gin.Context) {
	session, err := h.registry.Get(c.Param("said"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := session.TriggerFavourite(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.SuccessResponse(gin.H{"favourite": c.Param("id")}, h.requestID(c)))
}

// Cancel handles POST /api/v1/appliances/:said/cancel.
func (h *ApplianceHandler) Cancel(c *gin.Context) {
	session, err := h.registry.Get(c.Param("said"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := session.CancelActiveCycle(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.SuccessResponse(gin.H{"cancelled": true}, h.requestID(c)))
}

// SetField handles POST /api/v1/appliances/:said/set.
func (h *ApplianceHandler) SetField(c *gin.Context) {
	session, err := h.registry.Get(c.Param("said"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var req dto.SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, errors.Wrap(err, errors.CodeInvalidRequest, "malformed set request"))
		return
	}
	if err := session.SetField(c.Request.Context(), req.Name, req.Value); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.SuccessResponse(gin.H{req.Name: req.Value}, h.requestID(c)))
}

func (h *ApplianceHandler) fail(c *gin.Context, err error) {
	h.log.Warn(c.Request.Context(), "request failed", logger.Fields{
		"path":  c.FullPath(),
		"error": err.Error(),
	})
	c.JSON(statusOf(err), dto.ErrorResponse(err, h.requestID(c)))
}

func (h *ApplianceHandler) requestID(c *gin.Context) string {
	return c.GetString(string(constants.ContextKeyRequestID))
}

// statusOf maps the failure taxonomy onto HTTP status codes.
func statusOf(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeSessionNotFound, errors.CodeFavouriteNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidRequest:
		return http.StatusBadRequest
	case errors.CodeIncompleteFavourite:
		return http.StatusUnprocessableEntity
	case errors.CodeChannelUnavailable:
		return http.StatusServiceUnavailable
	case errors.CodeAuthentication, errors.CodeCredentialExchange, errors.CodeChannelConnect:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
