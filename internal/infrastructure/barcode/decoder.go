// Package barcode implementa la lectura de códigos de barras / QR desde imágenes con gozxing.
package barcode

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // registro de formato
	_ "image/jpeg" // registro de formato
	_ "image/png"  // registro de formato
	"io"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
)

var _ inventory.BarcodeDecoder = (*GozxingDecoder)(nil)

// GozxingDecoder prueba lectores 1D de retail (EAN-13, UPC-A, Code 128, Code 39) y luego QR.
type GozxingDecoder struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewGozxingDecoder construye el decodificador.
func NewGozxingDecoder() *GozxingDecoder {
	return &GozxingDecoder{
		readers: []gozxing.Reader{
			oned.NewEAN13Reader(),
			oned.NewUPCAReader(),
			oned.NewCode128Reader(),
			oned.NewCode39Reader(),
			qrcode.NewQRCodeReader(),
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode lee la imagen y devuelve el texto del primer código encontrado.
// Una imagen sin código devuelve ("", false, nil); una imagen ilegible, un ValidationError.
func (d *GozxingDecoder) Decode(ctx context.Context, r io.Reader) (string, bool, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", false, &domain.ValidationError{Field: "image", Reason: fmt.Sprintf("imagen ilegible: %v", err)}
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false, fmt.Errorf("binarizar imagen: %w", err)
	}
	for _, reader := range d.readers {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		res, err := reader.Decode(bmp, d.hints)
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(res.GetText()); text != "" {
			return text, true, nil
		}
	}
	return "", false, nil
}
