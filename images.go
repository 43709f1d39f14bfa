package wikiedit

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/eringen/wikiedit/pageapi"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// uploadResult is the response body the widget's image upload expects.
type uploadResult struct {
	Data  *uploadData `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

type uploadData struct {
	FilePath string `json:"filePath"`
}

// processImage decodes an image, scales it down to maxImageWidth when wider,
// and re-encodes it as JPEG.
func processImage(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if w, h := bounds.Dx(), bounds.Dy(); w > maxImageWidth {
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, max(1, h*maxImageWidth/w)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// uploadFilename derives a unique, URL-safe file name from the original.
func uploadFilename(original string) string {
	base := pageapi.Slugify(strings.TrimSuffix(original, filepath.Ext(original)))
	if base == "" {
		base = "image"
	}
	return base + "-" + uuid.NewString()[:8] + ".jpg"
}

// handleImageUpload stores an image dropped into the widget and answers
// with the URL the widget inserts into the markdown.
func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResult{Error: "no image file provided"})
	}
	if file.Size > maxUploadSize {
		return c.JSON(http.StatusRequestEntityTooLarge, uploadResult{Error: "file too large (max 10MB)"})
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := processImage(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResult{Error: "invalid image: " + err.Error()})
	}

	if err := os.MkdirAll(a.Config.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	name := uploadFilename(file.Filename)
	if err := os.WriteFile(filepath.Join(a.Config.UploadDir, name), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	c.Logger().Infof("%s uploaded %s (%d bytes)", CurrentUser(c), name, len(data))

	return c.JSON(http.StatusOK, uploadResult{Data: &uploadData{
		FilePath: strings.TrimSuffix(a.Config.URL, "/") + "/uploads/" + name,
	}})
}
