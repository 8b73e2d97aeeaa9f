package handlers

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/srgchrksv/bitecast/logger"
	"github.com/srgchrksv/bitecast/models"
	"github.com/srgchrksv/bitecast/playlist"
	"github.com/srgchrksv/bitecast/services"
	"github.com/srgchrksv/bitecast/storage"
)

const (
	SessionKey = "sessionID"

	flashSuccess = "success"
	flashInfo    = "info"
	flashError   = "error"

	maxVoiceUpload      = 10 << 20
	defaultRelatedCount = 3
	maxRelatedCount     = 10
)

var flashCategories = []string{flashSuccess, flashInfo, flashError}

func init() {
	// flash lists live in the cookie session as []interface{}
	gob.Register([]interface{}{})
}

// Pipeline is the part of services.Services the web layer drives.
type Pipeline interface {
	ProcessRequest(ctx context.Context, req models.Request) (models.Result, error)
	Transcribe(ctx context.Context, audio []byte) (string, error)
	SuggestRelated(ctx context.Context, topics []string, n int) []string
	BaseDir() string
}

type Handler struct {
	pipeline Pipeline
	store    *storage.Storage
	log      *logger.Logger
	voice    bool

	upgrader websocket.Upgrader
	origins  []string
}

func NewHandler(p Pipeline, store *storage.Storage, log *logger.Logger, voice bool) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := &Handler{pipeline: p, store: store, log: log, voice: voice}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// SetAllowedOrigins sets the cross-site origins allowed to open the progress
// websocket. Same-host pages are always accepted.
func (h *Handler) SetAllowedOrigins(origins []string) {
	h.origins = append([]string(nil), origins...)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	h.log.Warn("Rejected websocket origin", "origin", origin)
	return false
}

type flash struct {
	Category string
	Message  string
}

// Index renders the request form, pending flashes and past playlists.
func (h *Handler) Index(c *gin.Context) {
	session := sessions.Default(c)
	var flashes []flash
	for _, category := range flashCategories {
		for _, msg := range session.Flashes(category) {
			flashes = append(flashes, flash{Category: category, Message: fmt.Sprint(msg)})
		}
	}
	if len(flashes) > 0 {
		if err := session.Save(); err != nil {
			h.log.Warn("Failed to clear flashes", "error", err)
		}
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"folders": h.store.Folders.List(),
		"flashes": flashes,
		"voice":   h.voice,
	})
}

// Generate handles the text form.
func (h *Handler) Generate(c *gin.Context) {
	prompt := strings.TrimSpace(c.PostForm("text_input"))
	if prompt == "" {
		h.redirectWithFlash(c, flashError, "Please enter some text.")
		return
	}
	h.runPipeline(c, prompt)
}

// Voice handles a spoken request uploaded as audio_file.
func (h *Handler) Voice(c *gin.Context) {
	header, err := c.FormFile("audio_file")
	if err != nil {
		h.redirectWithFlash(c, flashError, "Please upload an audio file.")
		return
	}
	f, err := header.Open()
	if err != nil {
		h.log.Error("Failed to open upload", "error", err)
		h.redirectWithFlash(c, flashError, "Could not read the uploaded file.")
		return
	}
	defer f.Close()
	audio, err := io.ReadAll(io.LimitReader(f, maxVoiceUpload))
	if err != nil {
		h.log.Error("Failed to read upload", "error", err)
		h.redirectWithFlash(c, flashError, "Could not read the uploaded file.")
		return
	}

	prompt, err := h.pipeline.Transcribe(c.Request.Context(), audio)
	switch {
	case errors.Is(err, services.ErrTranscriberDisabled):
		h.redirectWithFlash(c, flashError, "Voice requests are not enabled.")
		return
	case err != nil:
		h.log.Warn("Transcription failed", "error", err)
		h.redirectWithFlash(c, flashError, "Could not understand the recording.")
		return
	}
	h.runPipeline(c, prompt)
}

// runPipeline finishes the run even if the browser disconnects, so narrated
// topics still reach the session history and the folder index.
func (h *Handler) runPipeline(c *gin.Context, prompt string) {
	ctx := context.WithoutCancel(c.Request.Context())
	sessionID := SessionID(c)

	history, err := h.store.History.Get(ctx, sessionID)
	if err != nil {
		h.log.Warn("Could not load session history", "session_id", sessionID, "error", err)
	}

	res, err := h.pipeline.ProcessRequest(ctx, models.Request{
		Prompt:    prompt,
		History:   history,
		SessionID: sessionID,
		Progress:  h.store.Progress.Reporter(sessionID),
	})
	if err != nil {
		h.redirectWithFlash(c, flashError, "Playlist generation failed during processing.")
		return
	}

	if err := h.store.History.Append(ctx, sessionID, res.Topics...); err != nil {
		h.log.Warn("Could not save session history", "session_id", sessionID, "error", err)
	}
	if h.store.Folders.Add(models.FolderInfo{Name: res.FolderName, Title: res.Title}) {
		h.redirectWithFlash(c, flashSuccess, "Successfully generated playlist: "+res.FolderName)
		return
	}
	h.redirectWithFlash(c, flashInfo, "Playlist folder already generated: "+res.FolderName)
}

// ViewFolder lists the audio of one playlist.
func (h *Handler) ViewFolder(c *gin.Context) {
	name := c.Param("folder")
	dir, err := playlist.Resolve(h.pipeline.BaseDir(), name)
	if err == nil {
		var info os.FileInfo
		if info, err = os.Stat(dir); err == nil && !info.IsDir() {
			err = os.ErrNotExist
		}
	}
	if err != nil {
		h.redirectWithFlash(c, flashError, fmt.Sprintf("Folder '%s' not found or is inaccessible.", name))
		return
	}

	var errMsg string
	listing, err := playlist.List(dir, name)
	if err != nil {
		h.log.Error("Failed to read playlist folder", "folder", name, "error", err)
		errMsg = fmt.Sprintf("Could not read contents of the folder. Error: %v", err)
	}
	c.HTML(http.StatusOK, "view_folder.html", gin.H{
		"folder_name":    name,
		"playlist_title": listing.Title,
		"audio_files":    listing.AudioFiles,
		"error":          errMsg,
	})
}

// Audio serves a file under the playlist directory. Paths escaping the
// directory are refused before anything is read.
func (h *Handler) Audio(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("filepath"), "/")
	abs, err := playlist.Resolve(h.pipeline.BaseDir(), rel)
	if err != nil {
		h.log.Warn("Forbidden audio path", "path", rel)
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	if info, err := os.Stat(filepath.Dir(abs)); err != nil || !info.IsDir() {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if info, err := os.Stat(abs); err != nil || info.IsDir() {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.File(abs)
}

// Related suggests follow-up topics for a finished playlist.
func (h *Handler) Related(c *gin.Context) {
	name := c.Param("folder")
	dir, err := playlist.Resolve(h.pipeline.BaseDir(), name)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid folder"})
		return
	}
	m, err := playlist.ReadManifest(dir)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "playlist summary not found"})
		return
	}

	n := defaultRelatedCount
	if v, err := strconv.Atoi(c.Query("count")); err == nil && v > 0 {
		n = min(v, maxRelatedCount)
	}
	topics := make([]string, 0, len(m.Segments))
	for _, seg := range m.Segments {
		topics = append(topics, seg.Topic)
	}
	related := h.pipeline.SuggestRelated(c.Request.Context(), topics, n)
	if related == nil {
		related = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"folder": name, "related": related})
}

// Progress streams the session's pipeline events over a websocket until the
// client goes away.
func (h *Handler) Progress(c *gin.Context) {
	sessionID := SessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No sessions found"})
		return
	}
	// subscribe before the handshake completes so no event published right
	// after the client connects is lost
	events, unsubscribe := h.store.Progress.Subscribe(sessionID)
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Upgrade error", "error", err)
		return
	}
	defer conn.Close()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				unsubscribe()
				return
			}
		}
	}()

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			h.log.Debug("Progress listener gone", "session_id", sessionID, "error", err)
			return
		}
	}
}

// SessionID returns the browser session's ID, or "" when none was assigned.
func SessionID(c *gin.Context) string {
	id, _ := sessions.Default(c).Get(SessionKey).(string)
	return id
}

func (h *Handler) redirectWithFlash(c *gin.Context, category, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg, category)
	if err := session.Save(); err != nil {
		h.log.Warn("Failed to save flash", "error", err)
	}
	c.Redirect(http.StatusFound, "/")
}
