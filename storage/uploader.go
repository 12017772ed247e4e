package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader абстрагирует S3-совместимое хранилище медиафайлов
// (аватары игроков, логотипы клубов).
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// AvatarKey строит ключ объекта для аватара пользователя. Временная метка
// в ключе делает каждую загрузку уникальной, чтобы CDN-кэш не отдавал
// старую картинку после замены.
func AvatarKey(userID int, ext string) string {
	return fmt.Sprintf("avatars/%d/%d%s", userID, time.Now().UnixNano(), ext)
}

// LogoKey строит ключ объекта для логотипа клуба.
func LogoKey(clubID int, ext string) string {
	return fmt.Sprintf("logos/%d/%d%s", clubID, time.Now().UnixNano(), ext)
}
