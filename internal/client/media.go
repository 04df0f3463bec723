package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/flyasher/fiora/internal/models"
)

// ErrImageTooLarge rejects an image before any placeholder or upload exists.
var ErrImageTooLarge = errors.New("client: image exceeds maximum size")

// Image is a selected or pasted picture ready for upload.
type Image struct {
	Data []byte
	MIME string // image/png, image/jpeg or image/gif
}

// Uploader transfers a blob to the storage backend, reporting progress as a
// 0-100 percentage, and returns the durable object key.
type Uploader interface {
	Upload(ctx context.Context, token, key string, data []byte, onProgress func(percent int)) (string, error)
}

// MediaPipeline turns an image into a placeholder message, uploads it
// out-of-band, and hands the durable URL to the normal send flow.
type MediaPipeline struct {
	store    *Store
	channel  Channel
	uploader Uploader
	maxSize  int64
	now      func() time.Time
}

// NewMediaPipeline constructs a MediaPipeline.
func NewMediaPipeline(store *Store, channel Channel, uploader Uploader, maxSize int64) *MediaPipeline {
	return &MediaPipeline{
		store:    store,
		channel:  channel,
		uploader: uploader,
		maxSize:  maxSize,
		now:      time.Now,
	}
}

// SendImage starts the upload flow for a selected image and returns the
// placeholder's local id. An oversized or undecodable image is rejected
// up-front: no placeholder is created and nothing is uploaded. Failures after
// the placeholder exists mark it failed in place.
func (p *MediaPipeline) SendImage(ctx context.Context, groupID string, img Image) (string, error) {
	if int64(len(img.Data)) > p.maxSize {
		return "", ErrImageTooLarge
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	content := fmt.Sprintf("blob:local?width=%d&height=%d", cfg.Width, cfg.Height)
	localID := p.store.CreateLocal(groupID, models.TypeImage, content)

	err = p.channel.Send("uploadToken", struct{}{}, func(data json.RawMessage, err error) {
		if err != nil {
			p.store.Fail(groupID, localID)
			return
		}
		var grant models.UploadTokenResponse
		if err := json.Unmarshal(data, &grant); err != nil {
			p.store.Fail(groupID, localID)
			return
		}
		// the transfer blocks; keep it off the channel's read loop
		go p.upload(ctx, groupID, localID, grant, img, cfg)
	})
	if err != nil {
		p.store.Fail(groupID, localID)
		return localID, err
	}
	return localID, nil
}

// SendPastedImage re-encodes a pasted image to quality-reduced JPEG to bound
// its payload size, then enters the normal image flow.
func (p *MediaPipeline) SendPastedImage(ctx context.Context, groupID string, img Image) (string, error) {
	reencoded, err := ReencodeJPEG(img.Data, pastedImageQuality)
	if err != nil {
		return "", err
	}
	return p.SendImage(ctx, groupID, Image{Data: reencoded, MIME: "image/jpeg"})
}

func (p *MediaPipeline) upload(ctx context.Context, groupID, localID string, grant models.UploadTokenResponse, img Image, cfg image.Config) {
	key := fmt.Sprintf("ImageMessage/%s_%d.%s", p.store.Self().ID, p.now().UnixMilli(), extFromMIME(img.MIME))

	storedKey, err := p.uploader.Upload(ctx, grant.Token, key, img.Data, func(percent int) {
		p.store.SetProgress(groupID, localID, percent)
	})
	if err != nil {
		p.store.Fail(groupID, localID)
		return
	}

	url := fmt.Sprintf("%s%s?width=%d&height=%d", grant.URLPrefix, storedKey, cfg.Width, cfg.Height)
	_ = p.store.SendRemote(localID, groupID, models.TypeImage, url)
}

func extFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}
