package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type gridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(bucket *gridfs.Bucket) Store {
	return &gridFSStore{bucket: bucket}
}

func (s *gridFSStore) Upload(_ context.Context, name, contentType string, r io.Reader) (*File, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})

	stream, err := s.bucket.OpenUploadStream(name, opts)
	if err != nil {
		return nil, fmt.Errorf("filestore: failed to open upload stream: %w", err)
	}

	size, err := io.Copy(stream, r)
	if err != nil {
		_ = stream.Abort()
		return nil, fmt.Errorf("filestore: failed to write %s: %w", name, err)
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("filestore: failed to finish upload of %s: %w", name, err)
	}

	oid, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("filestore: unexpected file id type %T", stream.FileID)
	}

	return &File{
		ID:          oid.Hex(),
		Name:        name,
		ContentType: contentType,
		Size:        size,
	}, nil
}

func (s *gridFSStore) Open(_ context.Context, id string) (io.ReadCloser, *File, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, ErrNotFound
	}

	stream, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("filestore: failed to open %s: %w", id, err)
	}

	meta := stream.GetFile()
	file := &File{
		ID:          id,
		Name:        meta.Name,
		Size:        meta.Length,
		ContentType: "application/octet-stream",
	}
	if len(meta.Metadata) > 0 {
		if ct, ok := meta.Metadata.Lookup("contentType").StringValueOK(); ok && ct != "" {
			file.ContentType = ct
		}
	}

	return stream, file, nil
}

func (s *gridFSStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	if err := s.bucket.DeleteContext(ctx, oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("filestore: failed to delete %s: %w", id, err)
	}

	return nil
}
