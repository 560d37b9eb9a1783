package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/ruralfund-backend/internal/pkg/apperror"
)

// байт для определения типа по сигнатуре
const sniffLen = 512

// Разрешённые типы документов проекта (по реальному содержимому файла).
var allowedDocumentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// DocumentStorage хранит документы проектов на локальном диске.
type DocumentStorage struct {
	rootPath       string
	maxUploadBytes int64
}

func NewDocumentStorage(rootPath string, maxUploadMB int64) (*DocumentStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &DocumentStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Root возвращает каталог, который раздаётся как /uploads.
func (s *DocumentStorage) Root() string {
	return s.rootPath
}

// Save проверяет тип файла по сигнатуре, пишет его во временный файл и атомарно
// переименовывает. Возвращает путь относительно корня хранилища.
func (s *DocumentStorage) Save(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", apperror.Validation("файл не может быть пустым")
	}

	ext, err := detectDocumentType(head)
	if err != nil {
		return "", err
	}

	ownerDir := filepath.Join(s.rootPath, ownerID.String())
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return "", fmt.Errorf("storage: не удалось создать каталог владельца: %w", err)
	}

	base := strings.TrimSuffix(sanitizeFilename(originalName), filepath.Ext(originalName))
	fileName := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), base, ext)
	targetPath := filepath.Join(ownerDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", apperror.Validation(fmt.Sprintf("размер файла превышает лимит %d МБ", s.maxUploadBytes/1024/1024))
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return filepath.ToSlash(filepath.Join(ownerID.String(), fileName)), nil
}

// Delete удаляет файл; отсутствие файла не считается ошибкой.
func (s *DocumentStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("storage: недопустимый путь %q", relativePath)
	}

	if err := os.Remove(filepath.Join(s.rootPath, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

func detectDocumentType(head []byte) (string, error) {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", apperror.Validation("не удалось определить тип файла. Разрешены PDF, DOCX и изображения")
	}
	ext, ok := allowedDocumentTypes[kind.MIME.Value]
	if !ok {
		return "", apperror.Validation(fmt.Sprintf("неподдерживаемый тип файла (%s)", kind.MIME.Value))
	}
	return ext, nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." {
		name = "document"
	}
	return name
}
