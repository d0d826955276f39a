package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devbyilmir/incidents-manager/internal/incident"
	"github.com/devbyilmir/incidents-manager/internal/store"
)

func (s *Server) handleListIncidents(c *gin.Context) {
	incidents, err := s.store.ListIncidents(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("list incidents")
		detail(c, http.StatusInternalServerError, "failed to load incidents")
		return
	}
	if incidents == nil {
		incidents = []incident.Incident{}
	}
	c.JSON(http.StatusOK, incidents)
}

func (s *Server) handleGetIncident(c *gin.Context) {
	id, ok := incidentID(c)
	if !ok {
		return
	}
	inc, err := s.store.GetIncident(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		detail(c, http.StatusNotFound, "incident not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("get incident")
		detail(c, http.StatusInternalServerError, "failed to load incident")
		return
	}
	c.JSON(http.StatusOK, inc)
}

func (s *Server) handleCreateIncident(c *gin.Context) {
	var draft incident.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := draft.Validate(); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !draft.Type.IsValid() {
		detail(c, http.StatusUnprocessableEntity, "unknown incident type")
		return
	}
	if !draft.Priority.IsValid() {
		detail(c, http.StatusUnprocessableEntity, "unknown priority")
		return
	}

	user := currentUser(c)
	created, err := s.store.CreateIncident(c.Request.Context(), draft, user.ID)
	if err != nil {
		s.logger.WithError(err).Error("create incident")
		detail(c, http.StatusInternalServerError, "failed to create incident")
		return
	}

	s.audit(c, created.ID, "create", map[string]any{"title": created.Title})
	c.JSON(http.StatusOK, created)
}

// handlePatchIncident serves both PATCH shapes of the contract: a
// ?status= query parameter toggles status only; otherwise the JSON body
// updates the editable fields.
func (s *Server) handlePatchIncident(c *gin.Context) {
	id, ok := incidentID(c)
	if !ok {
		return
	}

	if raw, present := c.GetQuery("status"); present {
		status := incident.Status(raw)
		if !status.IsValid() {
			detail(c, http.StatusUnprocessableEntity, "unknown status")
			return
		}
		updated, err := s.store.UpdateIncidentStatus(c.Request.Context(), id, status)
		if errors.Is(err, store.ErrNotFound) {
			detail(c, http.StatusNotFound, "incident not found")
			return
		}
		if err != nil {
			s.logger.WithError(err).Error("update status")
			detail(c, http.StatusInternalServerError, "failed to update status")
			return
		}
		s.audit(c, id, "update_status", map[string]any{"status": status})
		c.JSON(http.StatusOK, updated)
		return
	}

	var draft incident.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := draft.Validate(); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := s.store.UpdateIncidentFields(c.Request.Context(), id, draft)
	if errors.Is(err, store.ErrNotFound) {
		detail(c, http.StatusNotFound, "incident not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("update incident")
		detail(c, http.StatusInternalServerError, "failed to update incident")
		return
	}
	s.audit(c, id, "update_fields", map[string]any{"title": draft.Title})
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteIncident(c *gin.Context) {
	id, ok := incidentID(c)
	if !ok {
		return
	}
	err := s.store.DeleteIncident(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		detail(c, http.StatusNotFound, "incident not found")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("delete incident")
		detail(c, http.StatusInternalServerError, "failed to delete incident")
		return
	}
	s.audit(c, id, "delete", nil)
	c.JSON(http.StatusOK, gin.H{"message": "incident deleted"})
}

func incidentID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		detail(c, http.StatusBadRequest, "invalid incident id")
		return 0, false
	}
	return id, true
}

// audit records the mutation without failing the request.
func (s *Server) audit(c *gin.Context, incidentID int, action string, details map[string]any) {
	actor := "system"
	if user := currentUser(c); user != nil {
		actor = user.Email
	}
	entry := store.AuditEntry{
		IncidentID: incidentID,
		Action:     action,
		Actor:      actor,
		Details:    details,
	}
	if err := s.store.LogAction(c.Request.Context(), entry); err != nil {
		s.logger.WithError(err).Warn("audit log failed")
	}
}
