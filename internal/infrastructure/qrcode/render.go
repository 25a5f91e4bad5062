package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const DefaultSize = 256

var ErrEmptyContent = errors.New("qr code content is empty")

// RenderPNG encodes a PIX copy-paste code as a PNG image of size x size pixels.
func RenderPNG(content string, size int) ([]byte, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}

// RenderBase64 returns the PNG as standard base64 without a data URI prefix,
// the same shape providers send in paymentCodeBase64.
func RenderBase64(content string, size int) (string, error) {
	png, err := RenderPNG(content, size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// DecodeImage accepts a provider image with or without a "data:image/png;base64,"
// prefix and returns the raw bytes.
func DecodeImage(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if i := strings.Index(encoded, ","); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+1:]
	}
	if encoded == "" {
		return nil, ErrEmptyContent
	}
	return base64.StdEncoding.DecodeString(encoded)
}
