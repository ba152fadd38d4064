package handler

import (
    "io"
    "net/http"
    "os"
    "path/filepath"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
)

// Upload subdirectories below the static root.
const (
    certificateDir = "certificates"
    imageDir       = "images"
)

var imageExt = map[string]string{
    "image/jpeg": ".jpg",
    "image/png":  ".png",
    "image/webp": ".webp",
}

// UploadHandler stores doula certificates and profile photos under the
// static directory served at /static.
type UploadHandler struct {
    StaticDir string
}

// NewUploadHandler creates the upload directories under staticDir.
func NewUploadHandler(staticDir string) (*UploadHandler, error) {
    for _, d := range []string{certificateDir, imageDir} {
        if err := os.MkdirAll(filepath.Join(staticDir, d), 0o755); err != nil {
            return nil, err
        }
    }
    return &UploadHandler{StaticDir: staticDir}, nil
}

// Certificate handles POST /upload/certificate.  Only PDFs are accepted.
func (h *UploadHandler) Certificate(c echo.Context) error {
    return h.store(c, certificateDir, func(ct string) (string, bool) {
        return ".pdf", ct == "application/pdf"
    }, "Only PDF files are allowed")
}

// Photo handles POST /upload/photo.  JPEG, PNG and WebP are accepted.
func (h *UploadHandler) Photo(c echo.Context) error {
    return h.store(c, imageDir, func(ct string) (string, bool) {
        ext, ok := imageExt[ct]
        return ext, ok
    }, "Only JPG/PNG/WebP allowed")
}

// store streams the multipart "file" field to dir under a random name and
// answers with its public URL.  accept maps the declared content type to
// a file extension.
func (h *UploadHandler) store(c echo.Context, dir string, accept func(string) (string, bool), rejectMsg string) error {
    fh, err := c.FormFile("file")
    if err != nil {
        return errJSON(c, http.StatusBadRequest, "No file uploaded")
    }
    ext, ok := accept(fh.Header.Get(echo.HeaderContentType))
    if !ok {
        return errJSON(c, http.StatusBadRequest, rejectMsg)
    }
    src, err := fh.Open()
    if err != nil {
        return errJSON(c, http.StatusBadRequest, "unreadable upload")
    }
    defer src.Close()

    name := uuid.NewString() + ext
    path := filepath.Join(h.StaticDir, dir, name)
    if err := writeFile(path, src); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"url": "/static/" + dir + "/" + name})
}

// writeFile copies src to path, removing the partial file when the copy
// fails.
func writeFile(path string, src io.Reader) error {
    dst, err := os.Create(path)
    if err != nil {
        return err
    }
    _, err = io.Copy(dst, src)
    if cerr := dst.Close(); err == nil {
        err = cerr
    }
    if err != nil {
        _ = os.Remove(path)
    }
    return err
}
