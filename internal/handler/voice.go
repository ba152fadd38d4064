package handler

import (
    "errors"
    "log"
    "net/http"

    "github.com/labstack/echo/v4"
    openai "github.com/sashabaranov/go-openai"

    "github.com/iliyamo/doulacare/internal/transcribe"
)

// VoiceHandler turns a spoken query into text for the doula search.
type VoiceHandler struct {
    Transcriber transcribe.Transcriber
}

func NewVoiceHandler(t transcribe.Transcriber) *VoiceHandler {
    if t == nil {
        panic("nil transcriber passed to NewVoiceHandler")
    }
    return &VoiceHandler{Transcriber: t}
}

// Search handles POST /voice-search with a multipart "file" field and
// answers {"text": ...}.
func (h *VoiceHandler) Search(c echo.Context) error {
    fh, err := c.FormFile("file")
    if err != nil {
        return errJSON(c, http.StatusBadRequest, "No file uploaded")
    }
    f, err := fh.Open()
    if err != nil {
        return errJSON(c, http.StatusBadRequest, "unreadable upload")
    }
    defer f.Close()

    text, err := h.Transcriber.Transcribe(c.Request().Context(), fh.Filename, f)
    if err != nil {
        if errors.Is(err, transcribe.ErrNotConfigured) {
            return errJSON(c, http.StatusInternalServerError, "Missing OPENAI_API_KEY")
        }
        log.Printf("[voice] transcription failed for %s (%d bytes): %v", fh.Filename, fh.Size, err)
        var apiErr *openai.APIError
        if errors.As(err, &apiErr) {
            return errJSON(c, http.StatusBadGateway, apiErr.Message)
        }
        return errJSON(c, http.StatusBadGateway, "transcription failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"text": text})
}
