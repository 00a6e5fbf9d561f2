// Package handler serves the status API: current exclusions, manual syncs and
// a websocket feed of completed syncs.
package handler

import (
	"net/http"

	"github.com/CageChen/hideme/internal/exclude"
	"github.com/CageChen/hideme/internal/workspace"
	"github.com/gin-gonic/gin"
)

// FolderStatus is the exclusion set of one workspace folder
type FolderStatus struct {
	Path    string      `json:"path"`
	Alias   string      `json:"alias"`
	Exclude exclude.Set `json:"exclude"`
}

// StatusHandler handles folder status and sync requests
type StatusHandler struct {
	syncer *workspace.Syncer
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(syncer *workspace.Syncer) *StatusHandler {
	return &StatusHandler{syncer: syncer}
}

// GetFolders returns every folder with the exclusions currently stored for it
func (h *StatusHandler) GetFolders(c *gin.Context) {
	results, err := h.syncer.Current()
	if err != nil && len(results) == 0 && len(h.syncer.Folders()) > 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"folders": toStatus(results)}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// Sync runs a sync and returns the written sets
func (h *StatusHandler) Sync(c *gin.Context) {
	results, err := h.syncer.Sync()
	if err != nil && len(results) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"folders": toStatus(results)}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// Register mounts the status routes on r
func Register(r gin.IRouter, status *StatusHandler, ws *WSHandler) {
	api := r.Group("/api")
	{
		api.GET("/folders", status.GetFolders)
		api.POST("/sync", status.Sync)
		api.GET("/ws", ws.HandleWS)
	}
}

func toStatus(results []workspace.Result) []FolderStatus {
	out := make([]FolderStatus, 0, len(results))
	for _, r := range results {
		set := r.Set
		if set == nil {
			set = exclude.Set{}
		}
		out = append(out, FolderStatus{
			Path:    r.Folder.Path,
			Alias:   r.Folder.Alias,
			Exclude: set,
		})
	}
	return out
}
