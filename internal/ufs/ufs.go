// Package ufs определяет узкий интерфейс клиента нижележащей файловой
// системы: листинг, статус и позиционное чтение. Воркер не делает никаких
// предположений о реализации, кроме её потокобезопасности.
package ufs

import "context"

// FileStatus — метаданные одного файла или каталога.
type FileStatus struct {
	Name               string
	Path               string
	UfsPath            string
	Folder             bool
	LastModifiedMillis int64
	Length             int64
}

// PositionReader читает диапазон байт независимо от какого-либо курсора.
// Возвращает число прочитанных байт; при отсутствии источника — -1 и
// models.ErrPageNotFound.
type PositionReader interface {
	ReadAt(ctx context.Context, offset int64, buf []byte) (int, error)
	Close() error
}

// Client — клиент нижележащей файловой системы.
type Client interface {
	ListStatus(ctx context.Context, path string) ([]FileStatus, error)
	GetStatus(ctx context.Context, path string) (FileStatus, error)
	OpenPositionRead(path string) (PositionReader, error)
}
