package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pmsworkflow/pms-api/internal/constants"
	"github.com/pmsworkflow/pms-api/internal/metrics"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/repository"
	"github.com/pmsworkflow/pms-api/internal/utils"
)

var (
	ErrFileTooLarge        = errors.New("file exceeds the upload size limit")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// FileService stores uploads on local disk and records them in the files table
type FileService struct {
	repository.Repository[models.File]
	dir      string
	maxBytes int64
	logger   *slog.Logger
	now      func() time.Time
}

// NewFileService creates a new FileService
func NewFileService(repo repository.Repository[models.File], dir string, maxBytes int64, logger *slog.Logger) *FileService {
	return &FileService{
		Repository: repo,
		dir:        dir,
		maxBytes:   maxBytes,
		logger:     logger,
		now:        time.Now,
	}
}

// Upload sniffs the content type, writes the file and records it
func (s *FileService) Upload(ctx context.Context, header *multipart.FileHeader, createdBy string) repository.Result[*models.File] {
	if header.Size > s.maxBytes {
		return repository.Failure[*models.File](http.StatusBadRequest, ErrFileTooLarge.Error())
	}

	src, err := header.Open()
	if err != nil {
		return repository.Failure[*models.File](http.StatusBadRequest, "Unable to read uploaded file")
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return repository.Failure[*models.File](http.StatusBadRequest, "Unable to read uploaded file")
	}
	if !allowedMIME(mtype) {
		return repository.Failure[*models.File](http.StatusBadRequest,
			fmt.Sprintf("%s: %s", ErrUnsupportedFileType, mtype.String()))
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return repository.Failure[*models.File](http.StatusInternalServerError, repository.MsgInternalError)
	}

	name, err := utils.StoredFileName(header.Filename, s.now())
	if err != nil {
		return repository.Failure[*models.File](http.StatusInternalServerError, repository.MsgInternalError)
	}

	written, err := s.write(name, src)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return repository.Failure[*models.File](http.StatusBadRequest, err.Error())
		}
		s.logger.ErrorContext(ctx, "failed to store upload", "file", name, "error", err)
		return repository.Failure[*models.File](http.StatusInternalServerError, repository.MsgInternalError)
	}

	record := &models.File{FileName: name, MimeType: mtype.String()}
	if createdBy != "" {
		record.CreatedBy = &createdBy
	}
	res := s.Create(ctx, record)
	if !res.OK() {
		if rmErr := os.Remove(s.Path(name)); rmErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned upload", "file", name, "error", rmErr)
		}
		return res
	}

	metrics.UploadedBytesTotal.Add(float64(written))
	return res
}

// Path returns the on-disk location of a stored file
func (s *FileService) Path(fileName string) string {
	return filepath.Join(s.dir, filepath.Base(fileName))
}

func (s *FileService) write(name string, src io.Reader) (int64, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, err
	}

	dst, err := os.OpenFile(s.Path(name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil && written > s.maxBytes {
		err = ErrFileTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(s.Path(name))
		return 0, err
	}
	return written, nil
}

func allowedMIME(mtype *mimetype.MIME) bool {
	for _, allowed := range constants.AllowedUploadMIMETypes {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}
