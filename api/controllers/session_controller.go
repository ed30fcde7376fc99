package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/veritaslabs/veritas-gateway/api/models"
	"github.com/veritaslabs/veritas-gateway/tool"
	"github.com/veritaslabs/veritas-gateway/types"
)

// SessionController manages the per-review upload set: three optional file
// slots tied to a model selection, staged in memory until submission.
type SessionController struct {
	maxUploadBytes int64
}

func NewSessionController(maxUploadBytes int64) *SessionController {
	return &SessionController{maxUploadBytes: maxUploadBytes}
}

// CreateSessionRequest selects the sneaker model the review is about.
type CreateSessionRequest struct {
	Model string `json:"model"`
}

// HandleCreateSession opens a fresh upload set.
// POST /api/flow/v1/session
func (ctrl *SessionController) HandleCreateSession(c *gin.Context) {
	var request CreateSessionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body: "+err.Error()))
		return
	}
	if _, ok := models.ResolveModel(request.Model); !ok {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Unknown sneaker model: "+request.Model))
		return
	}
	session := types.NewUploadSession(uuid.NewString(), request.Model)
	models.StoreUploadSession(session)
	tool.DefaultLogger.Infof("Opened upload session %s for model %q", session.ID, session.Model)
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"sessionId": session.ID,
		"model":     session.Model,
	}))
}

// HandleSelectFile stages a file into one category slot. Replacing a slot
// clears any stale result or error text for that category.
// POST /api/flow/v1/session/:id/file/:category
func (ctrl *SessionController) HandleSelectFile(c *gin.Context) {
	session, category, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing required field: file"))
		return
	}
	if ctrl.maxUploadBytes > 0 && fileHeader.Size > ctrl.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, tool.FastReturnError("Uploaded file exceeds the size limit"))
		return
	}
	opened, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read uploaded file: "+err.Error()))
		return
	}
	defer func() {
		if err := opened.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close uploaded file: %v", err)
		}
	}()
	data, err := io.ReadAll(opened)
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Failed to read uploaded file: "+err.Error()))
		return
	}

	session.SelectFile(category, &types.StagedFile{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	tool.DefaultLogger.Debugf("Session %s: staged %s file %q (%d bytes)", session.ID, category, fileHeader.Filename, len(data))
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"sessionId": session.ID,
		"slots":     session.Slots(),
		"ready":     session.Ready(),
	}))
}

// HandleRemoveFile empties one category slot, dropping that category's
// previously obtained result and error text with it.
// DELETE /api/flow/v1/session/:id/file/:category
func (ctrl *SessionController) HandleRemoveFile(c *gin.Context) {
	session, category, ok := ctrl.lookup(c)
	if !ok {
		return
	}
	session.RemoveFile(category)
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"sessionId": session.ID,
		"slots":     session.Slots(),
		"ready":     session.Ready(),
	}))
}

// HandleSessionStatus reports slot population and accumulated error text.
// GET /api/flow/v1/session/:id
func (ctrl *SessionController) HandleSessionStatus(c *gin.Context) {
	session, ok := models.GetUploadSession(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Session not found"))
		return
	}
	errors := make(map[string]string)
	for _, category := range types.Categories {
		if msg := session.ErrorText(category); msg != "" {
			errors[string(category)] = msg
		}
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"sessionId": session.ID,
		"model":     session.Model,
		"slots":     session.Slots(),
		"ready":     session.Ready(),
		"errors":    errors,
	}))
}

func (ctrl *SessionController) lookup(c *gin.Context) (*types.UploadSession, types.Category, bool) {
	session, ok := models.GetUploadSession(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Session not found"))
		return nil, "", false
	}
	category := types.Category(c.Param("category"))
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Unknown category: "+c.Param("category")))
		return nil, "", false
	}
	return session, category, true
}
