package qrcode

import (
	"encoding/base64"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

// Generator renders a payload into a base64 encoded PNG.
type Generator interface {
	Generate(data string) (string, error)
}

type PNGGenerator struct {
	size  int
	level goqrcode.RecoveryLevel
}

func NewGenerator() Generator {
	return &PNGGenerator{size: defaultSize, level: goqrcode.High}
}

func (g *PNGGenerator) Generate(data string) (string, error) {
	if data == "" {
		return "", fmt.Errorf("qr payload is empty")
	}
	png, err := goqrcode.Encode(data, g.level, g.size)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
