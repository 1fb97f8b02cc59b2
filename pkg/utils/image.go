package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG декодер

	"github.com/nfnt/resize"
)

// ResizeBase64 принимает base64 картинку (JPEG или PNG) и возвращает
// base64 JPEG шириной не больше maxWidth, с сохранением пропорций.
//
// maxWidth <= 0 — без ресайза, только перекодирование в JPEG.
func ResizeBase64(b64 string, maxWidth, quality int) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if w := img.Bounds().Dx(); maxWidth > 0 && w > maxWidth {
		// высота 0 — resize сохраняет aspect ratio сам
		img = resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
