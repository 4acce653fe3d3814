package models

// Типы записей в ответах /files и /info.
const (
	EntryTypeFile      = "file"
	EntryTypeDirectory = "directory"
)

// FileEntry описывает один файл или каталог; /info отдаёт ровно одну запись,
// /files — все записи каталога, форма ответа одинаковая.
type FileEntry struct {
	Type               string `json:"type"`
	Name               string `json:"name"`
	Path               string `json:"path"`
	UfsPath            string `json:"ufs_path"`
	LastModifiedMillis int64  `json:"last_modification_time_ms"`
	Length             int64  `json:"length"`
}

// WriteOutcome — тело ответа на запись страницы. Статус всегда 200,
// неуспех передаётся внутри тела, а не HTTP-кодом.
type WriteOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
