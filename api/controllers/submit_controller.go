package controllers

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/veritaslabs/veritas-gateway/api/models"
	"github.com/veritaslabs/veritas-gateway/api/notifyhub"
	"github.com/veritaslabs/veritas-gateway/relay"
	"github.com/veritaslabs/veritas-gateway/tool"
	"github.com/veritaslabs/veritas-gateway/types"
)

// SubmitController runs a submission end to end: concurrent fan-out of the
// three category analyses, a single conditional aggregation call, and the
// encoding of whatever results exist into the results-view URL.
type SubmitController struct {
	relay *relay.Client
	hub   *notifyhub.Hub
}

func NewSubmitController(relayClient *relay.Client, hub *notifyhub.Hub) *SubmitController {
	return &SubmitController{relay: relayClient, hub: hub}
}

// HandleSubmit drives idle → uploading → all-settled → aggregating →
// navigated for one session.
// POST /api/flow/v1/session/:id/submit
func (ctrl *SubmitController) HandleSubmit(c *gin.Context) {
	session, ok := models.GetUploadSession(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Session not found"))
		return
	}
	if !session.Ready() {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("All three files are required before analysis can run"))
		return
	}
	shoeID, ok := models.ResolveModel(session.Model)
	if !ok {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Unknown sneaker model: "+session.Model))
		return
	}

	ctx := c.Request.Context()

	// Fan out the three category analyses. Every call settles on its own;
	// a failure never cancels its siblings.
	var wg sync.WaitGroup
	for _, category := range types.Categories {
		wg.Add(1)
		go func(category types.Category) {
			defer wg.Done()
			result, err := ctrl.relay.AnalyzeCategory(ctx, category, shoeID, session.File(category))
			if err != nil {
				session.SetError(category, err.Error())
				tool.DefaultLogger.Warnf("Session %s: %s analysis failed: %v", session.ID, category, err)
				ctrl.notify(session.ID, types.NotifyTypeCategoryFailed, category, err.Error())
				return
			}
			session.SetResult(category, result)
			ctrl.notify(session.ID, types.NotifyTypeCategorySettled, category,
				fmt.Sprintf("%s: %s (%d%%)", category, result.Verdict, int(result.RealnessPercent)))
		}(category)
	}
	wg.Wait()

	bundle := &types.ResultBundle{Model: session.Model}
	for _, category := range types.Categories {
		bundle.SetCategory(category, session.Result(category))
	}

	// Aggregation runs exactly once, strictly after the fan-out join, and
	// only when all three categories produced a usable result.
	if session.AllSucceeded() {
		ctrl.notify(session.ID, types.NotifyTypeAggregating, "", "combining category scores")
		combined, err := ctrl.relay.Combine(ctx, shoeID,
			bundle.Sneaker.RealnessPercent,
			bundle.Box.RealnessPercent,
			bundle.Video.RealnessPercent,
		)
		if err != nil {
			tool.DefaultLogger.Warnf("Session %s: aggregation failed: %v", session.ID, err)
		} else {
			bundle.Combined = combined
		}
	}

	values, err := bundle.Encode()
	if err != nil {
		// Degrade to one generic message; the submission stays re-triable.
		tool.DefaultLogger.Errorf("Session %s: failed to encode result bundle: %v", session.ID, err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("analysis failed"))
		return
	}

	categoryErrors := make(map[string]string)
	for _, category := range types.Categories {
		if msg := session.ErrorText(category); msg != "" {
			categoryErrors[string(category)] = msg
		}
	}

	resultsURL := "/results?" + values.Encode()
	ctrl.notify(session.ID, types.NotifyTypeSubmissionDone, "", resultsURL)
	models.RemoveUploadSession(session.ID)
	tool.DefaultLogger.Infof("Session %s: submission settled, %d category error(s)", session.ID, len(categoryErrors))

	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"resultsUrl": resultsURL,
		"errors":     categoryErrors,
	}))
}

func (ctrl *SubmitController) notify(sessionID, notifyType string, category types.Category, message string) {
	if ctrl.hub == nil {
		return
	}
	data := map[string]any{"sessionId": sessionID}
	if category != "" {
		data["category"] = string(category)
	}
	ctrl.hub.Broadcast(&types.Notification{
		Type:    notifyType,
		Title:   "Analysis progress",
		Message: message,
		Data:    data,
	})
}
