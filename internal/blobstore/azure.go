package blobstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureStore реализует Store поверх azblob.Client
type AzureStore struct {
	client     *azblob.Client
	credential *azblob.SharedKeyCredential
	account    string
}

// OpenAzure создает клиент хранилища по строке подключения.
// Реализует Opener.
func OpenAzure(connectionString string) (Store, error) {
	parsed, err := ParseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedConnectionString, err)
	}

	store := &AzureStore{
		client:  client,
		account: parsed.AccountName(),
	}

	if key := parsed.AccountKey(); key != "" {
		credential, err := azblob.NewSharedKeyCredential(parsed.AccountName(), key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedConnectionString, err)
		}
		store.credential = credential
	}

	return store, nil
}

// AccountName возвращает имя аккаунта
func (s *AzureStore) AccountName() string {
	return s.account
}

// ListBlobs перечисляет блобы постранично
func (s *AzureStore) ListBlobs(ctx context.Context, container string, pageSize int32, fn func(page []BlobItem) error) error {
	opts := &azblob.ListBlobsFlatOptions{}
	if pageSize > 0 {
		opts.MaxResults = to.Ptr(pageSize)
	}

	pager := s.client.NewListBlobsFlatPager(container, opts)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list blobs in %s: %w", container, err)
		}
		if resp.Segment == nil {
			continue
		}

		page := make([]BlobItem, 0, len(resp.Segment.BlobItems))
		for _, item := range resp.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			bi := BlobItem{Name: *item.Name}
			if item.Properties != nil && item.Properties.ContentLength != nil {
				bi.Size = *item.Properties.ContentLength
			}
			page = append(page, bi)
		}

		if err := fn(page); err != nil {
			return err
		}
	}
	return nil
}

// AccountReadSAS выпускает SAS аккаунта на чтение
func (s *AzureStore) AccountReadSAS(expiry time.Time) (string, error) {
	return signAccountReadSAS(s.credential, expiry)
}

// BlobURL возвращает экранированный адрес блоба
func (s *AzureStore) BlobURL(container, name string) string {
	return s.blobClient(container, name).URL()
}

// StartCopyFromURL запускает асинхронное копирование, сервис отвечает 202
func (s *AzureStore) StartCopyFromURL(ctx context.Context, container, name, sourceURL string) (CopyInfo, error) {
	resp, err := s.blobClient(container, name).StartCopyFromURL(ctx, sourceURL, nil)
	if err != nil {
		return CopyInfo{}, fmt.Errorf("start copy to %s/%s: %w", container, name, err)
	}

	info := CopyInfo{}
	if resp.CopyID != nil {
		info.CopyID = *resp.CopyID
	}
	if resp.CopyStatus != nil {
		info.Status = string(*resp.CopyStatus)
	}
	return info, nil
}

// Download читает содержимое блоба в память
func (s *AzureStore) Download(ctx context.Context, container, name string, limit int64) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("download %s/%s: %w", container, name, ErrBlobNotFound)
		}
		return nil, fmt.Errorf("download %s/%s: %w", container, name, err)
	}
	defer resp.Body.Close()

	return readLimited(resp.Body, limit)
}

// Upload записывает блок-блоб из буфера
func (s *AzureStore) Upload(ctx context.Context, container, name string, data []byte, contentType string) error {
	opts := &azblob.UploadBufferOptions{}
	if contentType != "" {
		opts.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)}
	}

	if _, err := s.client.UploadBuffer(ctx, container, name, data, opts); err != nil {
		return fmt.Errorf("upload %s/%s: %w", container, name, err)
	}
	return nil
}

// CopyStatus читает свойства копирования блоба
func (s *AzureStore) CopyStatus(ctx context.Context, container, name string) (CopyInfo, error) {
	props, err := s.blobClient(container, name).GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return CopyInfo{}, fmt.Errorf("properties %s/%s: %w", container, name, ErrBlobNotFound)
		}
		return CopyInfo{}, fmt.Errorf("properties %s/%s: %w", container, name, err)
	}

	info := CopyInfo{}
	if props.CopyID != nil {
		info.CopyID = *props.CopyID
	}
	if props.CopyStatus != nil {
		info.Status = string(*props.CopyStatus)
	}
	if props.CopyProgress != nil {
		info.Progress = *props.CopyProgress
	}
	if props.CopyStatusDescription != nil {
		info.Description = *props.CopyStatusDescription
	}
	return info, nil
}

func (s *AzureStore) blobClient(container, name string) *blob.Client {
	return s.client.ServiceClient().NewContainerClient(container).NewBlobClient(name)
}

// readLimited читает не больше limit байт и сообщает о превышении
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read blob body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSourceTooLarge, limit)
	}
	return data, nil
}
