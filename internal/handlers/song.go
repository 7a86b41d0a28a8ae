// internal/handlers/song.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/services"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

type SongHandler struct {
	songService   *services.SongService
	writerService *services.ManagedWriterService
}

func NewSongHandler(songService *services.SongService, writerService *services.ManagedWriterService) *SongHandler {
	return &SongHandler{
		songService:   songService,
		writerService: writerService,
	}
}

// GET /songs
func (h *SongHandler) ListSongs(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	songs, err := h.songService.List(a)
	if err != nil {
		respondError(c, err)
		return
	}
	if songs == nil {
		songs = []models.Song{}
	}

	utils.SuccessResponse(c, songs)
}

// GET /songs/:id
func (h *SongHandler) GetSong(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "song")
	if !ok {
		return
	}

	song, err := h.songService.Get(a, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, song)
}

// POST /songs
func (h *SongHandler) CreateSong(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req services.CreateSongRequest
	if !bind(c, &req) {
		return
	}

	song, err := h.songService.Create(a, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, song)
}

// PATCH /songs/:id/status
func (h *SongHandler) UpdateStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "song")
	if !ok {
		return
	}

	var req services.UpdateSongStatusRequest
	if !bind(c, &req) {
		return
	}

	song, err := h.songService.UpdateStatus(a, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, song)
}

// PATCH /songs/:id/sync-status
func (h *SongHandler) UpdateSyncStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "song")
	if !ok {
		return
	}

	var req services.UpdateSyncStatusRequest
	if !bind(c, &req) {
		return
	}

	song, err := h.songService.UpdateSyncStatus(a, id, req.SyncStatus)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, song)
}

// GET /managed-writers
func (h *SongHandler) ListManagedWriters(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	writers, err := h.writerService.List(a)
	if err != nil {
		respondError(c, err)
		return
	}
	if writers == nil {
		writers = []models.ManagedWriter{}
	}

	utils.SuccessResponse(c, writers)
}

// POST /managed-writers
func (h *SongHandler) CreateManagedWriter(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req services.CreateManagedWriterRequest
	if !bind(c, &req) {
		return
	}

	writer, err := h.writerService.Create(a, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, writer)
}
