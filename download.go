package datasets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Download fetches path from the dataset's resolved layout and writes it to
// dest. The file is written to a temporary sibling first and renamed into
// place, so dest is either absent, unchanged, or complete.
func (r *resolver) Download(ctx context.Context, repoID, path, dest string, progress func(delta int64)) (int64, error) {
	url := r.VersionedURL(repoID, "", path)

	ctx, span := tracer.Start(ctx, "datasets.Download", trace.WithAttributes(
		attribute.String("dataset.repo_id", repoID),
		attribute.String("http.url", url),
	))
	defer span.End()

	n, err := r.download(ctx, repoID, url, dest, progress)
	if err != nil {
		err = normalize(repoID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "download failed")
		return 0, err
	}
	span.SetAttributes(attribute.Int64("download.bytes", n))
	return n, nil
}

func (r *resolver) download(ctx context.Context, repoID, url, dest string, progress func(delta int64)) (int64, error) {
	if err := ValidateRepoID(repoID); err != nil {
		return 0, err
	}

	body, size, err := r.host.open(ctx, repoID, url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	if r.logger != nil {
		r.logger.Debug("downloading dataset file", "url", url, "size", size, "dest", dest)
	}

	var reader io.Reader = body
	if progress != nil {
		reader = &progressReader{reader: body, onProgress: progress}
	}

	n, err := atomicWriteFrom(dest, reader, size)
	if err != nil {
		if errors.Is(err, ErrStorageError) {
			return 0, err
		}
		return 0, &Error{Kind: KindNetwork, RepoID: repoID, URL: url, Err: err}
	}
	return n, nil
}

// atomicWriteFrom streams r into path using write-then-rename. When size is
// not negative, a body of any other length is rejected before the rename.
// Filesystem failures wrap ErrStorageError; read failures are returned as is.
func atomicWriteFrom(path string, r io.Reader, size int64) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("%w: failed to create directory: %v", ErrStorageError, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create temp file: %v", ErrStorageError, err)
	}
	tmpName := tmp.Name()

	n, copyErr := io.Copy(storageWriter{tmp}, r)
	closeErr := tmp.Close()
	switch {
	case copyErr != nil:
		os.Remove(tmpName)
		return 0, copyErr
	case closeErr != nil:
		os.Remove(tmpName)
		return 0, fmt.Errorf("%w: failed to write temp file: %v", ErrStorageError, closeErr)
	case size >= 0 && n != size:
		os.Remove(tmpName)
		return 0, fmt.Errorf("short body: got %d of %d bytes", n, size)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) // cleanup on failure
		return 0, fmt.Errorf("%w: failed to rename temp file: %v", ErrStorageError, err)
	}
	return n, nil
}

// storageWriter tags write failures with ErrStorageError so they can be told
// apart from read failures after io.Copy.
type storageWriter struct {
	w io.Writer
}

func (s storageWriter) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err != nil {
		err = fmt.Errorf("%w: failed to write temp file: %v", ErrStorageError, err)
	}
	return n, err
}

// progressReader wraps an io.Reader and reports progress as bytes are read.
type progressReader struct {
	reader     io.Reader
	onProgress func(delta int64)
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 && pr.onProgress != nil {
		pr.onProgress(int64(n))
	}
	return
}
