package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"
	"time"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"menu-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// Service 菜單照片處理：解析輸入、驗證格式與大小、縮圖並轉成 JPEG
type Service struct {
	maxSizeBytes int64
	maxDimension int
	client       *resty.Client
}

// DefaultMaxDimension 長邊超過此值會被縮小，文字辨識不需要更高解析度
const DefaultMaxDimension = 2048

// NewService 創建新的圖片處理服務
func NewService(maxSizeBytes int64) *Service {
	return &Service{
		maxSizeBytes: maxSizeBytes,
		maxDimension: DefaultMaxDimension,
		client:       resty.New().SetTimeout(30 * time.Second),
	}
}

// Decode 接受 http(s) URL、data URI 或純 base64，回傳 JPEG 位元組
func (s *Service) Decode(ctx context.Context, input string) ([]byte, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, common.ErrInvalidImageFormat
	}

	var raw []byte
	var err error
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		raw, err = s.download(ctx, input)
	} else {
		raw, err = decodeBase64(input)
	}
	if err != nil {
		return nil, err
	}
	return s.Process(raw)
}

// Process 驗證原始圖片並轉為 JPEG
func (s *Service) Process(raw []byte) ([]byte, error) {
	// 檢查文件大小
	if s.maxSizeBytes > 0 && int64(len(raw)) > s.maxSizeBytes {
		return nil, common.ErrInvalidImageSize.Wrap(fmt.Errorf("image size %d exceeds maximum limit of %d bytes", len(raw), s.maxSizeBytes))
	}

	// 解碼圖片
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}

	// 檢查圖片格式
	if !isSupportedFormat(format) {
		return nil, common.ErrInvalidImageType.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}

	img = s.resize(img)

	// 將圖片轉換為 JPEG 格式
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image as JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resize 等比縮小到長邊不超過 maxDimension
func (s *Service) resize(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if s.maxDimension <= 0 || longest <= s.maxDimension {
		return img
	}

	nw := w * s.maxDimension / longest
	nh := h * s.maxDimension / longest
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func (s *Service) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to download image: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to download image: status code %d", resp.StatusCode()))
	}
	return resp.Body(), nil
}

// decodeBase64 接受 data:image/...;base64, 前綴或純 base64
func decodeBase64(input string) ([]byte, error) {
	data := input
	if strings.HasPrefix(input, "data:") {
		i := strings.Index(input, ",")
		if i < 0 || !strings.Contains(input[:i], ";base64") {
			return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("invalid data URI"))
		}
		if !strings.HasPrefix(input, "data:image/") {
			return nil, common.ErrInvalidImageType.Wrap(fmt.Errorf("data URI is not an image"))
		}
		data = input[i+1:]
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
	}
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}
	return decoded, nil
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
